package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/domain/attendance"
	"github.com/campusgeo/attendance-backend-go/internal/domain/location"
	"github.com/campusgeo/attendance-backend-go/internal/domain/subject"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/clock"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/geo"
)

// DefaultLockTimeout bounds the serialized read-modify-write of one toggle.
const DefaultLockTimeout = 5 * time.Second

type Options struct {
	Policy      attendance.TimeWindowPolicy
	LockTimeout time.Duration
	// GeofenceEnforced rejects coordinates outside the nearest location's
	// radius. When false the submitted location_name is recorded instead.
	GeofenceEnforced bool
}

type AttendanceServiceImpl struct {
	attendance.AttendanceStore
	subject.SubjectRepository
	location.LocationRepository
	clock     clock.Clock
	publisher attendance.EventPublisher

	policy           attendance.TimeWindowPolicy
	lockTimeout      time.Duration
	geofenceEnforced bool
}

// site is the location a toggle is evaluated against.
type site struct {
	name   string
	result location.ValidationResult
}

// Toggle implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Toggle(ctx context.Context, req attendance.ToggleRequest) (attendance.ToggleResponse, error) {
	if req.SubjectID == "" {
		return attendance.ToggleResponse{}, attendance.ErrUnauthenticated
	}
	if err := req.Validate(); err != nil {
		return attendance.ToggleResponse{}, err
	}
	if req.EmployeeID != "" && string(req.EmployeeID) != req.SubjectID {
		return attendance.ToggleResponse{}, attendance.ErrSubjectMismatch
	}

	subj, err := s.SubjectRepository.GetByID(ctx, req.SubjectID)
	if err != nil {
		return attendance.ToggleResponse{}, err
	}

	now := s.clock.Now()
	if err := s.policy.CheckWorkingDay(now); err != nil {
		return attendance.ToggleResponse{}, err
	}
	date := s.policy.CivilDate(now)

	// Site errors belong to the geofence stage and are reported after the window.
	coord := req.Coordinate()
	st, siteErr := s.resolveSite(ctx, coord, req.LocationName)

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	var performed attendance.Action
	record, err := s.AttendanceStore.UpsertToday(lockCtx, subj.ID, date, func(current *attendance.Record) (attendance.Record, error) {
		state := attendance.StateOf(current)

		action := req.Action
		if action == "" {
			next, ok := attendance.NextAction(state)
			if !ok {
				return attendance.Record{}, &attendance.InvalidTransitionError{Current: state}
			}
			action = next
		}

		// Time of the serialized section, so queued toggles observe a later clock.
		at := s.clock.Now()
		if err := s.policy.CheckWindow(at, action); err != nil {
			return attendance.Record{}, err
		}
		if siteErr != nil {
			return attendance.Record{}, siteErr
		}
		if s.geofenceEnforced && !st.result.Accepted {
			return attendance.Record{}, &attendance.GeofenceRejectedError{
				LocationName:  st.name,
				Distance:      st.result.DistanceMeters,
				AllowedRadius: st.result.Location.Radius(),
			}
		}

		performed = action
		return attendance.Transition(current, attendance.TransitionInput{
			Action:       action,
			SubjectID:    subj.ID,
			Date:         date,
			At:           at,
			Coordinate:   coord,
			LocationName: st.name,
			Course:       strings.TrimSpace(req.Subject),
			ClientAt:     req.ClientTime(),
		})
	})
	if err != nil {
		s.logRejection(subj.ID, date, err)
		return attendance.ToggleResponse{}, err
	}

	slog.Info("attendance transition committed",
		"subject_id", subj.ID,
		"date", attendance.DateKey(date),
		"action", performed,
		"location", st.name,
	)

	s.publish(ctx, record, performed)

	return s.toToggleResponse(record, performed), nil
}

// resolveSite picks the nearest authorized location for coord. Without
// enforcement the submitted label wins when present.
func (s *AttendanceServiceImpl) resolveSite(ctx context.Context, coord geo.Coordinate, label string) (site, error) {
	locs, err := s.LocationRepository.List(ctx)
	if err != nil {
		return site{}, fmt.Errorf("%w: list locations: %v", attendance.ErrStoreUnavailable, err)
	}

	nearest, found := location.Nearest(coord, locs)
	label = strings.TrimSpace(label)

	if s.geofenceEnforced {
		if !found {
			return site{}, attendance.ErrNoLocationsConfigured
		}
		return site{name: nearest.Location.Name, result: nearest}, nil
	}

	st := site{name: label, result: nearest}
	if st.name == "" && found {
		st.name = nearest.Location.Name
	}
	return st, nil
}

func (s *AttendanceServiceImpl) logRejection(subjectID string, date time.Time, err error) {
	attrs := []any{"subject_id", subjectID, "date", attendance.DateKey(date), "error", err}

	var geofence *attendance.GeofenceRejectedError
	switch {
	case attendance.IsRetryable(err):
		slog.Error("attendance toggle failed", attrs...)
	case errors.As(err, &geofence):
		attrs = append(attrs, "distance", geofence.Distance, "allowed_radius", geofence.AllowedRadius)
		slog.Info("attendance toggle rejected", attrs...)
	default:
		slog.Info("attendance toggle rejected", attrs...)
	}
}

func (s *AttendanceServiceImpl) publish(ctx context.Context, record attendance.Record, action attendance.Action) {
	event := attendance.Event{
		Type:      attendance.EventCheckedIn,
		SubjectID: record.SubjectID,
		Date:      attendance.DateKey(record.Date),
		State:     attendance.StateOf(&record),
		Location:  record.LocationName(),
		Course:    record.Course,
	}
	if action == attendance.ActionCheckOut {
		event.Type = attendance.EventCheckedOut
		event.At = record.CheckOutTime.In(s.policy.Location)
	} else {
		event.At = record.CheckInTime.In(s.policy.Location)
	}
	s.publisher.Publish(ctx, event)
}

func (s *AttendanceServiceImpl) toToggleResponse(record attendance.Record, action attendance.Action) attendance.ToggleResponse {
	view := attendance.ToRecordResponse(record, s.policy.Location)
	resp := attendance.ToggleResponse{
		Status:      attendance.StateOf(&record),
		Action:      action,
		Record:      view,
		CheckInTime: view.CheckInTime,
		Location:    record.LocationName(),
	}
	if action == attendance.ActionCheckOut {
		resp.Message = "Checked out successfully"
		resp.CheckOutTime = view.CheckOutTime
		resp.Duration = view.Duration
	} else {
		resp.Message = "Checked in successfully"
	}
	return resp
}

// Status implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Status(ctx context.Context, subjectID string) (attendance.StatusResponse, error) {
	if subjectID == "" {
		return attendance.StatusResponse{}, attendance.ErrUnauthenticated
	}

	date := s.policy.CivilDate(s.clock.Now())
	record, err := s.AttendanceStore.GetToday(ctx, subjectID, date)
	if err != nil {
		return attendance.StatusResponse{}, err
	}

	return attendance.ToStatusResponse(subjectID, date, record, s.policy.Location), nil
}

// History implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) History(ctx context.Context, filter attendance.HistoryFilter) ([]attendance.RecordResponse, error) {
	if filter.SubjectID == "" {
		return nil, attendance.ErrUnauthenticated
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var start time.Time
	if filter.StartDate != nil && *filter.StartDate != "" {
		start, _ = time.Parse(attendance.DateLayout, *filter.StartDate)
	}
	end := s.policy.CivilDate(s.clock.Now())
	if filter.EndDate != nil && *filter.EndDate != "" {
		end, _ = time.Parse(attendance.DateLayout, *filter.EndDate)
	}

	// An implicit end of today can still precede an explicit start.
	if !start.IsZero() && start.After(end) {
		return []attendance.RecordResponse{}, nil
	}

	records, err := s.AttendanceStore.QueryRange(ctx, filter.SubjectID, start, end)
	if err != nil {
		return nil, err
	}

	history := make([]attendance.RecordResponse, 0, len(records))
	for _, r := range records {
		history = append(history, attendance.ToRecordResponse(r, s.policy.Location))
	}
	return history, nil
}

// Roster implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Roster(ctx context.Context, filter attendance.RosterFilter) ([]attendance.RosterItem, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	date := s.policy.CivilDate(s.clock.Now())
	if filter.Date != nil && *filter.Date != "" {
		date, _ = time.Parse(attendance.DateLayout, *filter.Date)
	}

	course := subject.NormalizeCourse(filter.Course)
	if filter.FacultyID != "" {
		faculty, err := s.SubjectRepository.GetByID(ctx, filter.FacultyID)
		if err != nil {
			return nil, err
		}
		if course = faculty.Course(); course == "" {
			return nil, subject.ErrFacultyCourseNotSet
		}
	}
	entries, err := s.AttendanceStore.QueryByDateAcrossSubjects(ctx, date, attendance.ScopeFilter{
		Role:   subject.RoleStudent,
		Course: course,
	})
	if err != nil {
		return nil, err
	}

	items := make([]attendance.RosterItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, attendance.ToRosterItem(entry, date, course, s.policy.Location))
	}
	return items, nil
}

// ListStudents implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListStudents(ctx context.Context) ([]subject.SubjectResponse, error) {
	students, err := s.SubjectRepository.ListByRole(ctx, subject.RoleStudent)
	if err != nil {
		return nil, err
	}

	resp := make([]subject.SubjectResponse, 0, len(students))
	for _, st := range students {
		resp = append(resp, subject.SubjectResponse{ID: st.ID, Name: st.Name})
	}
	return resp, nil
}

// NearestLocations implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) NearestLocations(ctx context.Context, req location.NearestLocationsRequest) ([]location.NearestLocationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	locs, err := s.LocationRepository.List(ctx)
	if err != nil {
		return nil, err
	}

	ranked := location.Rank(geo.Coordinate{Latitude: *req.Lat, Longitude: *req.Lng}, locs)
	if len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}

	resp := make([]location.NearestLocationResponse, 0, len(ranked))
	for _, r := range ranked {
		resp = append(resp, location.ToNearestResponse(r))
	}
	return resp, nil
}

func NewAttendanceService(
	store attendance.AttendanceStore,
	subjectRepo subject.SubjectRepository,
	locationRepo location.LocationRepository,
	clk clock.Clock,
	publisher attendance.EventPublisher,
	opts Options,
) attendance.AttendanceService {
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}
	if opts.Policy.Location == nil {
		opts.Policy = attendance.DefaultPolicy()
	}
	if publisher == nil {
		publisher = attendance.NopPublisher{}
	}
	if clk == nil {
		clk = clock.New()
	}

	return &AttendanceServiceImpl{
		AttendanceStore:    store,
		SubjectRepository:  subjectRepo,
		LocationRepository: locationRepo,
		clock:              clk,
		publisher:          publisher,
		policy:             opts.Policy,
		lockTimeout:        opts.LockTimeout,
		geofenceEnforced:   opts.GeofenceEnforced,
	}
}
