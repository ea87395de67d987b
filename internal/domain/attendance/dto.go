package attendance

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/pkg/geo"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// TOGGLE DTOs
// ========================================

// FlexibleID accepts an identifier sent as either a JSON string or number.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("employee_id must be a string or number")
	}
	*f = FlexibleID(n.String())
	return nil
}

type ToggleRequest struct {
	SubjectID    string     `json:"-"`
	EmployeeID   FlexibleID `json:"employee_id,omitempty"`
	Latitude     *float64   `json:"latitude" validate:"required,latitude"`
	Longitude    *float64   `json:"longitude" validate:"required,longitude"`
	Action       Action     `json:"action,omitempty" validate:"omitempty,oneof=checkin checkout"`
	LocationName string     `json:"location_name,omitempty" validate:"max=255"`
	Subject      string     `json:"subject,omitempty" validate:"max=100"`
	// Timestamp is the device clock. It is stored for display and never
	// used to accept or reject the request.
	Timestamp string `json:"timestamp,omitempty"`
}

func (r *ToggleRequest) Validate() error {
	return validator.Struct(r)
}

func (r *ToggleRequest) Coordinate() geo.Coordinate {
	var c geo.Coordinate
	if r.Latitude != nil {
		c.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		c.Longitude = *r.Longitude
	}
	return c
}

// ClientTime parses Timestamp, returning nil when it is absent or malformed.
func (r *ToggleRequest) ClientTime() *time.Time {
	if r.Timestamp == "" {
		return nil
	}
	t, ok := validator.IsValidDateTime(r.Timestamp)
	if !ok {
		return nil
	}
	return &t
}

type ToggleResponse struct {
	Message string         `json:"message"`
	Status  State          `json:"status"`
	Action  Action         `json:"action"`
	Record  RecordResponse `json:"record"`

	CheckInTime  *string `json:"checkInTime,omitempty"`
	CheckOutTime *string `json:"checkOutTime,omitempty"`
	Location     string  `json:"location,omitempty"`
	Duration     *string `json:"duration,omitempty"`
}

// ========================================
// RECORD VIEWS
// ========================================

type RecordResponse struct {
	ID               string  `json:"id"`
	SubjectID        string  `json:"subject_id"`
	Date             string  `json:"date"`
	State            State   `json:"state"`
	CheckInTime      *string `json:"check_in_time"`
	CheckOutTime     *string `json:"check_out_time"`
	CheckInLocation  string  `json:"check_in_location,omitempty"`
	CheckOutLocation string  `json:"check_out_location,omitempty"`
	LocationName     string  `json:"location_name,omitempty"`
	Subject          string  `json:"subject,omitempty"`
	Duration         *string `json:"duration"`
	ClientCheckInAt  *string `json:"client_check_in_at,omitempty"`
	ClientCheckOutAt *string `json:"client_check_out_at,omitempty"`
}

// ToRecordResponse renders r with timestamps in loc.
func ToRecordResponse(r Record, loc *time.Location) RecordResponse {
	resp := RecordResponse{
		ID:               r.ID,
		SubjectID:        r.SubjectID,
		Date:             DateKey(r.Date),
		State:            StateOf(&r),
		CheckInTime:      formatTime(r.CheckInTime, loc),
		CheckOutTime:     formatTime(r.CheckOutTime, loc),
		CheckInLocation:  r.CheckInLocation,
		CheckOutLocation: r.CheckOutLocation,
		LocationName:     r.LocationName(),
		Subject:          r.Course,
		ClientCheckInAt:  formatTime(r.ClientCheckInAt, nil),
		ClientCheckOutAt: formatTime(r.ClientCheckOutAt, nil),
	}
	if d, ok := r.Duration(); ok {
		s := FormatDuration(d)
		resp.Duration = &s
	}
	return resp
}

func formatTime(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	v := *t
	if loc != nil {
		v = v.In(loc)
	}
	s := v.Format(time.RFC3339)
	return &s
}

// ========================================
// STATUS DTOs
// ========================================

type StatusResponse struct {
	SubjectID            string  `json:"subjectId"`
	Date                 string  `json:"date"`
	State                State   `json:"state"`
	CheckedIn            bool    `json:"checkedIn"`
	CheckedOut           bool    `json:"checkedOut"`
	IsCurrentlyCheckedIn bool    `json:"isCurrentlyCheckedIn"`
	CheckInTime          *string `json:"checkInTime"`
	CheckOutTime         *string `json:"checkOutTime"`
	Location             *string `json:"location"`
	NextAction           Action  `json:"nextAction,omitempty"`
}

// ToStatusResponse derives the day's view. A nil record yields state NONE.
func ToStatusResponse(subjectID string, date time.Time, r *Record, loc *time.Location) StatusResponse {
	state := StateOf(r)
	resp := StatusResponse{
		SubjectID:            subjectID,
		Date:                 DateKey(date),
		State:                state,
		CheckedIn:            state != StateNone,
		CheckedOut:           state == StateCheckedOut,
		IsCurrentlyCheckedIn: state == StateCheckedIn,
	}
	if next, ok := NextAction(state); ok {
		resp.NextAction = next
	}
	if r != nil {
		resp.CheckInTime = formatTime(r.CheckInTime, loc)
		resp.CheckOutTime = formatTime(r.CheckOutTime, loc)
		if name := r.LocationName(); name != "" {
			resp.Location = &name
		}
	}
	return resp
}

// ========================================
// HISTORY DTOs
// ========================================

type HistoryFilter struct {
	SubjectID string  `json:"-"`
	StartDate *string `json:"startDate,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"endDate,omitempty"`   // YYYY-MM-DD
}

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	var start, end time.Time
	var hasStart, hasEnd bool

	if f.StartDate != nil && *f.StartDate != "" {
		start, hasStart = validator.IsValidDate(*f.StartDate)
		if !hasStart {
			errs = append(errs, validator.ValidationError{
				Field:   "startDate",
				Message: "startDate must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		end, hasEnd = validator.IsValidDate(*f.EndDate)
		if !hasEnd {
			errs = append(errs, validator.ValidationError{
				Field:   "endDate",
				Message: "endDate must be in YYYY-MM-DD format",
			})
		}
	}

	if hasStart && hasEnd && start.After(end) {
		errs = append(errs, validator.ValidationError{
			Field:   "startDate",
			Message: ErrInvalidDateRange.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// ROSTER DTOs
// ========================================

type RosterFilter struct {
	Date *string `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	// FacultyID, when set, scopes the roster to that faculty member's course.
	FacultyID string `json:"-"`
	// Course limits checked-in status to records for this course.
	Course string `json:"-"`
}

func (f *RosterFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Date != nil && *f.Date != "" {
		if _, valid := validator.IsValidDate(*f.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RosterItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Date         string  `json:"date"`
	CheckedIn    bool    `json:"checkedIn"`
	CheckedOut   bool    `json:"checkedOut"`
	CheckInTime  *string `json:"checkInTime"`
	CheckOutTime *string `json:"checkOutTime"`
	Location     *string `json:"location"`
	Subject      string  `json:"subject"`
}

// ToRosterItem renders one roster row. subjectLabel is the course being viewed,
// or the record's own course when no course scope applies.
func ToRosterItem(entry RosterEntry, date time.Time, subjectLabel string, loc *time.Location) RosterItem {
	item := RosterItem{
		ID:      entry.Subject.ID,
		Name:    entry.Subject.Name,
		Date:    DateKey(date),
		Subject: subjectLabel,
	}
	if r := entry.Record; r != nil {
		state := StateOf(r)
		item.CheckedIn = state != StateNone
		item.CheckedOut = state == StateCheckedOut
		item.CheckInTime = formatTime(r.CheckInTime, loc)
		item.CheckOutTime = formatTime(r.CheckOutTime, loc)
		if name := r.LocationName(); name != "" {
			item.Location = &name
		}
		if item.Subject == "" {
			item.Subject = r.Course
		}
	}
	return item
}
