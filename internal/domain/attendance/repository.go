package attendance

import (
	"context"
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/domain/subject"
)

// MutationFunc computes the next record from the current one (nil when the day
// has no record yet). Returning an error aborts the upsert without writing.
type MutationFunc func(current *Record) (Record, error)

// ScopeFilter selects the roster for a cross-subject query.
type ScopeFilter struct {
	Role subject.Role
	// Course, when set, only counts records whose course matches, ignoring case.
	Course string
}

// Matches reports whether r counts as attendance under f.
func (f ScopeFilter) Matches(r *Record) bool {
	if r == nil {
		return false
	}
	if f.Course == "" {
		return true
	}
	return subject.NormalizeCourse(r.Course) == subject.NormalizeCourse(f.Course)
}

// RosterEntry is one roster subject and their matching record for the date, if any.
type RosterEntry struct {
	Subject subject.Subject
	Record  *Record
}

// AttendanceStore owns persisted attendance records.
type AttendanceStore interface {
	// UpsertToday runs mutate against the subject's record for date while
	// holding that record's lock, then persists the result. Concurrent calls
	// for the same subject and date are serialized; others run in parallel.
	// Lock waits are bounded by ctx and reported as ErrStoreUnavailable.
	UpsertToday(ctx context.Context, subjectID string, date time.Time, mutate MutationFunc) (Record, error)

	// GetToday returns the subject's record for date, or nil when none exists.
	GetToday(ctx context.Context, subjectID string, date time.Time) (*Record, error)

	// QueryRange returns the subject's records with start <= date <= end in
	// ascending date order. A zero start means no lower bound.
	QueryRange(ctx context.Context, subjectID string, start, end time.Time) ([]Record, error)

	// QueryByDateAcrossSubjects returns one entry per subject in the scope's
	// role, ordered by name. Subjects without a matching record have a nil Record.
	QueryByDateAcrossSubjects(ctx context.Context, date time.Time, scope ScopeFilter) ([]RosterEntry, error)

	// CountOpenSessions counts records dated before the given date that were
	// checked in but never checked out.
	CountOpenSessions(ctx context.Context, before time.Time) (int, error)
}
