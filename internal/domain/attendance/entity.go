package attendance

import (
	"fmt"
	"time"
)

// DateLayout is the wire and key format of a civil date.
const DateLayout = "2006-01-02"

// Record is one subject's attendance for one civil date. At most one Record
// exists per (SubjectID, Date).
type Record struct {
	ID        string
	SubjectID string
	// Date is the civil date in the institution's zone, carried as midnight UTC.
	Date time.Time

	CheckInTime       *time.Time
	CheckInLocation   string
	CheckInLatitude   *float64
	CheckInLongitude  *float64
	CheckOutTime      *time.Time
	CheckOutLocation  string
	CheckOutLatitude  *float64
	CheckOutLongitude *float64

	// Course is the optional class label submitted with the check-in.
	Course string

	// Device-reported times, kept for display only.
	ClientCheckInAt  *time.Time
	ClientCheckOutAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Duration returns the time between check-in and check-out, if both are set.
func (r Record) Duration() (time.Duration, bool) {
	if r.CheckInTime == nil || r.CheckOutTime == nil {
		return 0, false
	}
	return r.CheckOutTime.Sub(*r.CheckInTime), true
}

// LocationName is the most recent location recorded on the record.
func (r Record) LocationName() string {
	if r.CheckOutTime != nil && r.CheckOutLocation != "" {
		return r.CheckOutLocation
	}
	return r.CheckInLocation
}

// CivilDate truncates t to its calendar date in t's own location and returns
// that date at midnight UTC.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey formats a civil date for map keys and the wire.
func DateKey(date time.Time) string {
	return date.Format(DateLayout)
}

// LockKey identifies the serialized unit for a subject's day.
func LockKey(subjectID string, date time.Time) string {
	return subjectID + "|" + DateKey(date)
}

// FormatDuration renders d as "Xh Ym", truncating seconds.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Minute)
	return fmt.Sprintf("%dh %dm", total/60, total%60)
}
