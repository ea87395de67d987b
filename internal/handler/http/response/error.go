package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/campusgeo/attendance-backend-go/internal/domain/attendance"
	"github.com/campusgeo/attendance-backend-go/internal/domain/auth"
	"github.com/campusgeo/attendance-backend-go/internal/domain/location"
	"github.com/campusgeo/attendance-backend-go/internal/domain/subject"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/validator"
)

// RetryAfterSeconds is advertised on retryable failures.
const RetryAfterSeconds = 1

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Attendance gates, in the order they are evaluated
	var (
		nonWorking *attendance.NonWorkingDayError
		window     *attendance.OutsideTimeWindowError
		geofence   *attendance.GeofenceRejectedError
		transition *attendance.InvalidTransitionError
	)
	switch {
	case errors.As(err, &nonWorking):
		writeError(w, http.StatusBadRequest, "NON_WORKING_DAY", err.Error())
		return
	case errors.As(err, &window):
		writeError(w, http.StatusBadRequest, "OUTSIDE_TIME_WINDOW", err.Error())
		return
	case errors.As(err, &geofence):
		GeofenceRejected(w, err.Error(), int(geofence.Distance), geofence.AllowedRadius)
		return
	case errors.As(err, &transition):
		writeError(w, http.StatusBadRequest, transitionCode(transition), err.Error())
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrStoreUnavailable):
		ServiceUnavailable(w, "STORE_UNAVAILABLE", attendance.ErrStoreUnavailable.Error(), RetryAfterSeconds)
	case errors.Is(err, location.ErrNoLocationsConfigured):
		ServiceUnavailable(w, "NO_LOCATIONS_CONFIGURED", err.Error(), 0)
	case errors.Is(err, attendance.ErrCheckOutBeforeCheckIn):
		writeError(w, http.StatusBadRequest, "CHECKOUT_BEFORE_CHECKIN", err.Error())
	case errors.Is(err, attendance.ErrInvalidAction):
		writeError(w, http.StatusBadRequest, "INVALID_ACTION", err.Error())
	case errors.Is(err, attendance.ErrUnauthenticated):
		Unauthorized(w, err.Error())
	case errors.Is(err, attendance.ErrSubjectMismatch):
		Forbidden(w, err.Error())
	case errors.Is(err, attendance.ErrForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, attendance.ErrInvalidDateRange):
		ValidationError(w, map[string]string{"startDate": err.Error()})
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, err.Error())

	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid credentials")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrFacultyRequired), errors.Is(err, auth.ErrStudentRequired):
		Forbidden(w, err.Error())

	// Subject and location errors
	case errors.Is(err, subject.ErrSubjectNotFound):
		NotFound(w, "Subject not found")
	case errors.Is(err, subject.ErrSubjectEmailExists):
		Conflict(w, "EMAIL_EXISTS", "Email already registered")
	case errors.Is(err, subject.ErrSubjectNameExists):
		Conflict(w, "NAME_EXISTS", "Name already registered")
	case errors.Is(err, subject.ErrFacultyCourseNotSet):
		writeError(w, http.StatusBadRequest, "FACULTY_COURSE_NOT_SET", err.Error())
	case errors.Is(err, location.ErrLocationNameExists):
		Conflict(w, "LOCATION_EXISTS", err.Error())
	case errors.Is(err, location.ErrLocationNotFound):
		NotFound(w, err.Error())

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

func transitionCode(e *attendance.InvalidTransitionError) string {
	switch {
	case errors.Is(e, attendance.ErrAttendanceCompleted):
		return "ATTENDANCE_COMPLETED"
	case errors.Is(e, attendance.ErrAlreadyCheckedIn):
		return "ALREADY_CHECKED_IN"
	case errors.Is(e, attendance.ErrNotCheckedIn):
		return "NOT_CHECKED_IN"
	}
	return "INVALID_TRANSITION"
}
