package attendance

import (
	"errors"
	"fmt"
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/domain/location"
)

// Attendance domain errors
var (
	// Transition errors, matched through InvalidTransitionError.Is
	ErrAlreadyCheckedIn    = errors.New("already checked in today")
	ErrNotCheckedIn        = errors.New("no active check-in found to check out")
	ErrAttendanceCompleted = errors.New("already completed attendance for today")

	ErrCheckOutBeforeCheckIn = errors.New("check-out time must be after check-in time")
	ErrInvalidAction         = errors.New("invalid action: must be checkin or checkout")

	// Request errors
	ErrUnauthenticated    = errors.New("authentication required")
	ErrSubjectMismatch    = errors.New("employee_id does not match the authenticated subject")
	ErrForbidden          = errors.New("not allowed to view this subject's attendance")
	ErrInvalidDateRange   = errors.New("startDate must not be after endDate")
	ErrAttendanceNotFound = errors.New("attendance record not found")

	// ErrStoreUnavailable is the only retryable failure: the store could not
	// complete the serialized read-modify-write in time.
	ErrStoreUnavailable = errors.New("attendance store unavailable, please retry")

	ErrNoLocationsConfigured = location.ErrNoLocationsConfigured
)

// IsRetryable reports whether a caller may safely retry the request.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// GeofenceRejectedError means the coordinate is outside the nearest location's radius.
type GeofenceRejectedError struct {
	LocationName  string
	Distance      float64
	AllowedRadius float64
}

func (e *GeofenceRejectedError) Error() string {
	return "outside allowed radius"
}

// OutsideTimeWindowError means the action was attempted outside its window.
type OutsideTimeWindowError struct {
	Action Action
	Window Window
	At     time.Time
	Zone   string
}

func (e *OutsideTimeWindowError) Error() string {
	return fmt.Sprintf("%s allowed only between %s and %s (%s)",
		capitalize(e.Action.Label()), e.Window.Start, e.Window.End, e.Zone)
}

// NonWorkingDayError means no attendance is taken on that civil date.
type NonWorkingDayError struct {
	Date    time.Time
	Weekday time.Weekday
}

func (e *NonWorkingDayError) Error() string {
	return fmt.Sprintf("no classes today: %s is a non-working day", e.Weekday)
}

// InvalidTransitionError means the requested action is illegal from Current.
type InvalidTransitionError struct {
	Current   State
	Requested Action
}

func (e *InvalidTransitionError) Error() string {
	switch {
	case e.Current == StateCheckedOut:
		return ErrAttendanceCompleted.Error()
	case e.Current == StateCheckedIn && e.Requested == ActionCheckIn:
		return ErrAlreadyCheckedIn.Error()
	case e.Current == StateNone && e.Requested == ActionCheckOut:
		return ErrNotCheckedIn.Error()
	}
	return fmt.Sprintf("cannot %s from state %s", e.Requested.Label(), e.Current)
}

func (e *InvalidTransitionError) Is(target error) bool {
	switch target {
	case ErrAttendanceCompleted:
		return e.Current == StateCheckedOut
	case ErrAlreadyCheckedIn:
		return e.Current == StateCheckedIn && e.Requested == ActionCheckIn
	case ErrNotCheckedIn:
		return e.Current == StateNone && e.Requested == ActionCheckOut
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
