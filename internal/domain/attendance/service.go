package attendance

import (
	"context"

	"github.com/campusgeo/attendance-backend-go/internal/domain/location"
	"github.com/campusgeo/attendance-backend-go/internal/domain/subject"
)

//go:generate mockgen -destination=mocks/service_mock.go -package=mocks . AttendanceService

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// Toggle checks the subject in or out. With an empty action the next
	// action is derived from today's state.
	Toggle(ctx context.Context, req ToggleRequest) (ToggleResponse, error)

	// Status returns the subject's derived view for today
	Status(ctx context.Context, subjectID string) (StatusResponse, error)

	// History returns the subject's records in ascending date order
	History(ctx context.Context, filter HistoryFilter) ([]RecordResponse, error)

	// Roster returns every student for a date with their check-in state
	Roster(ctx context.Context, filter RosterFilter) ([]RosterItem, error)

	ListStudents(ctx context.Context) ([]subject.SubjectResponse, error)

	// NearestLocations ranks the authorized locations by distance
	NearestLocations(ctx context.Context, req location.NearestLocationsRequest) ([]location.NearestLocationResponse, error)
}
