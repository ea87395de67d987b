package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/domain/attendance"
	"github.com/campusgeo/attendance-backend-go/internal/domain/subject"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/lock"
	"github.com/google/uuid"
)

type attendanceStore struct {
	locks    *lock.KeyedMutex
	subjects subject.SubjectRepository
	now      func() time.Time

	mu      sync.RWMutex
	records map[string]attendance.Record
}

// UpsertToday implements attendance.AttendanceStore.
func (s *attendanceStore) UpsertToday(ctx context.Context, subjectID string, date time.Time, mutate attendance.MutationFunc) (attendance.Record, error) {
	key := attendance.LockKey(subjectID, date)

	unlock, err := s.locks.Lock(ctx, key)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("%w: %v", attendance.ErrStoreUnavailable, err)
	}
	defer unlock()

	s.mu.RLock()
	existing, ok := s.records[key]
	s.mu.RUnlock()

	var current *attendance.Record
	if ok {
		current = cloneRecord(existing)
	}

	next, err := mutate(current)
	if err != nil {
		return attendance.Record{}, err
	}

	now := s.now()
	next.SubjectID = subjectID
	next.Date = date
	if current == nil {
		next.ID = newID()
		next.CreatedAt = now
	} else {
		next.ID = current.ID
		next.CreatedAt = current.CreatedAt
	}
	next.UpdatedAt = now

	s.mu.Lock()
	s.records[key] = next
	s.mu.Unlock()

	return *cloneRecord(next), nil
}

// GetToday implements attendance.AttendanceStore.
func (s *attendanceStore) GetToday(ctx context.Context, subjectID string, date time.Time) (*attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[attendance.LockKey(subjectID, date)]
	if !ok {
		return nil, nil
	}
	return cloneRecord(r), nil
}

// QueryRange implements attendance.AttendanceStore.
func (s *attendanceStore) QueryRange(ctx context.Context, subjectID string, start, end time.Time) ([]attendance.Record, error) {
	s.mu.RLock()
	records := make([]attendance.Record, 0)
	for _, r := range s.records {
		if r.SubjectID != subjectID {
			continue
		}
		if !start.IsZero() && r.Date.Before(start) {
			continue
		}
		if r.Date.After(end) {
			continue
		}
		records = append(records, *cloneRecord(r))
	}
	s.mu.RUnlock()

	slices.SortFunc(records, func(a, b attendance.Record) int {
		return a.Date.Compare(b.Date)
	})
	return records, nil
}

// QueryByDateAcrossSubjects implements attendance.AttendanceStore.
func (s *attendanceStore) QueryByDateAcrossSubjects(ctx context.Context, date time.Time, scope attendance.ScopeFilter) ([]attendance.RosterEntry, error) {
	subjects, err := s.subjects.ListByRole(ctx, scope.Role)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]attendance.RosterEntry, 0, len(subjects))
	for _, subj := range subjects {
		entry := attendance.RosterEntry{Subject: subj}
		if r, ok := s.records[attendance.LockKey(subj.ID, date)]; ok && scope.Matches(&r) {
			entry.Record = cloneRecord(r)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// CountOpenSessions implements attendance.AttendanceStore.
func (s *attendanceStore) CountOpenSessions(ctx context.Context, before time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, r := range s.records {
		if r.Date.Before(before) && attendance.StateOf(&r) == attendance.StateCheckedIn {
			count++
		}
	}
	return count, nil
}

// cloneRecord copies r including its pointer fields so callers never share
// memory with the stored value.
func cloneRecord(r attendance.Record) *attendance.Record {
	c := r
	c.CheckInTime = clonePtr(r.CheckInTime)
	c.CheckInLatitude = clonePtr(r.CheckInLatitude)
	c.CheckInLongitude = clonePtr(r.CheckInLongitude)
	c.CheckOutTime = clonePtr(r.CheckOutTime)
	c.CheckOutLatitude = clonePtr(r.CheckOutLatitude)
	c.CheckOutLongitude = clonePtr(r.CheckOutLongitude)
	c.ClientCheckInAt = clonePtr(r.ClientCheckInAt)
	c.ClientCheckOutAt = clonePtr(r.ClientCheckOutAt)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewAttendanceStore returns a process-local store. Records for the same
// subject and date are serialized through a keyed mutex; subjects supplies the
// roster for cross-subject queries.
func NewAttendanceStore(subjects subject.SubjectRepository) attendance.AttendanceStore {
	return &attendanceStore{
		locks:    lock.NewKeyedMutex(),
		subjects: subjects,
		now:      time.Now,
		records:  make(map[string]attendance.Record),
	}
}
