package postgresql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/domain/attendance"
	"github.com/campusgeo/attendance-backend-go/internal/domain/subject"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const recordColumns = `
	id, subject_id, date,
	check_in_time, check_in_location, check_in_latitude, check_in_longitude,
	check_out_time, check_out_location, check_out_latitude, check_out_longitude,
	course, client_check_in_at, client_check_out_at,
	created_at, updated_at`

type attendanceStore struct {
	db *database.DB
	// fallbackLockTimeout bounds lock waits when ctx carries no deadline.
	fallbackLockTimeout time.Duration
}

// mutationError marks errors returned by the caller's MutationFunc so they
// pass through unwrapped.
type mutationError struct {
	err error
}

func (e *mutationError) Error() string { return e.err.Error() }
func (e *mutationError) Unwrap() error { return e.err }

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var r attendance.Record
	err := row.Scan(
		&r.ID, &r.SubjectID, &r.Date,
		&r.CheckInTime, &r.CheckInLocation, &r.CheckInLatitude, &r.CheckInLongitude,
		&r.CheckOutTime, &r.CheckOutLocation, &r.CheckOutLatitude, &r.CheckOutLongitude,
		&r.Course, &r.ClientCheckInAt, &r.ClientCheckOutAt,
		&r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// UpsertToday implements attendance.AttendanceStore.
func (s *attendanceStore) UpsertToday(ctx context.Context, subjectID string, date time.Time, mutate attendance.MutationFunc) (attendance.Record, error) {
	if _, err := uuid.Parse(subjectID); err != nil {
		return attendance.Record{}, subject.ErrSubjectNotFound
	}

	var saved attendance.Record

	err := WithTransaction(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, s.lockTimeout(ctx)); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}

		// Serializes the day even before its row exists.
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, attendance.LockKey(subjectID, date)); err != nil {
			return fmt.Errorf("acquire attendance lock: %w", err)
		}

		current, err := s.getToday(ctx, tx, subjectID, date, true)
		if err != nil {
			return err
		}

		next, err := mutate(current)
		if err != nil {
			return &mutationError{err: err}
		}
		next.SubjectID = subjectID
		next.Date = date

		if current == nil {
			saved, err = s.insert(ctx, tx, next)
		} else {
			next.ID = current.ID
			saved, err = s.update(ctx, tx, next)
		}
		return err
	})

	if err != nil {
		var mErr *mutationError
		if errors.As(err, &mErr) {
			return attendance.Record{}, mErr.err
		}
		if pgCode(err) == pgForeignKeyViolation {
			return attendance.Record{}, subject.ErrSubjectNotFound
		}
		if isTransient(err) {
			slog.Warn("attendance upsert could not complete", "subject_id", subjectID, "date", attendance.DateKey(date), "error", err)
		} else {
			slog.Error("attendance upsert failed", "subject_id", subjectID, "date", attendance.DateKey(date), "error", err)
		}
		return attendance.Record{}, fmt.Errorf("%w: %v", attendance.ErrStoreUnavailable, err)
	}

	return saved, nil
}

// lockTimeout converts the time left on ctx into a lock_timeout setting.
func (s *attendanceStore) lockTimeout(ctx context.Context) string {
	timeout := s.fallbackLockTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	ms := timeout.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return fmt.Sprintf("%dms", ms)
}

func (s *attendanceStore) insert(ctx context.Context, q database.Querier, r attendance.Record) (attendance.Record, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Record{}, fmt.Errorf("generate record id: %w", err)
	}

	query := `
		INSERT INTO attendance_records (
			id, subject_id, date,
			check_in_time, check_in_location, check_in_latitude, check_in_longitude,
			check_out_time, check_out_location, check_out_latitude, check_out_longitude,
			course, client_check_in_at, client_check_out_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + recordColumns

	saved, err := scanRecord(q.QueryRow(ctx, query,
		id.String(), r.SubjectID, r.Date,
		r.CheckInTime, r.CheckInLocation, r.CheckInLatitude, r.CheckInLongitude,
		r.CheckOutTime, r.CheckOutLocation, r.CheckOutLatitude, r.CheckOutLongitude,
		r.Course, r.ClientCheckInAt, r.ClientCheckOutAt,
	))
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to insert attendance record: %w", err)
	}
	return saved, nil
}

func (s *attendanceStore) update(ctx context.Context, q database.Querier, r attendance.Record) (attendance.Record, error) {
	query := `
		UPDATE attendance_records SET
			check_in_time = $2, check_in_location = $3, check_in_latitude = $4, check_in_longitude = $5,
			check_out_time = $6, check_out_location = $7, check_out_latitude = $8, check_out_longitude = $9,
			course = $10, client_check_in_at = $11, client_check_out_at = $12,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + recordColumns

	saved, err := scanRecord(q.QueryRow(ctx, query,
		r.ID,
		r.CheckInTime, r.CheckInLocation, r.CheckInLatitude, r.CheckInLongitude,
		r.CheckOutTime, r.CheckOutLocation, r.CheckOutLatitude, r.CheckOutLongitude,
		r.Course, r.ClientCheckInAt, r.ClientCheckOutAt,
	))
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to update attendance record: %w", err)
	}
	return saved, nil
}

func (s *attendanceStore) getToday(ctx context.Context, q database.Querier, subjectID string, date time.Time, forUpdate bool) (*attendance.Record, error) {
	query := `SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE subject_id = $1 AND date = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	r, err := scanRecord(q.QueryRow(ctx, query, subjectID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if pgCode(err) == pgInvalidTextRepr {
			// Not a UUID, so no record can exist.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return &r, nil
}

// GetToday implements attendance.AttendanceStore.
func (s *attendanceStore) GetToday(ctx context.Context, subjectID string, date time.Time) (*attendance.Record, error) {
	r, err := s.getToday(ctx, GetQuerier(ctx, s.db), subjectID, date, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrStoreUnavailable, err)
	}
	return r, nil
}

// QueryRange implements attendance.AttendanceStore.
func (s *attendanceStore) QueryRange(ctx context.Context, subjectID string, start, end time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, s.db)

	query := `SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE subject_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC`

	rows, err := q.Query(ctx, query, subjectID, start, end)
	if err != nil {
		if pgCode(err) == pgInvalidTextRepr {
			return []attendance.Record{}, nil
		}
		return nil, fmt.Errorf("%w: query attendance range: %v", attendance.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	records := []attendance.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		if pgCode(err) == pgInvalidTextRepr {
			return []attendance.Record{}, nil
		}
		return nil, fmt.Errorf("%w: query attendance range: %v", attendance.ErrStoreUnavailable, err)
	}

	return records, nil
}

// QueryByDateAcrossSubjects implements attendance.AttendanceStore.
func (s *attendanceStore) QueryByDateAcrossSubjects(ctx context.Context, date time.Time, scope attendance.ScopeFilter) ([]attendance.RosterEntry, error) {
	q := GetQuerier(ctx, s.db)

	role := scope.Role
	if role == "" {
		role = subject.RoleStudent
	}

	query := `
		SELECT s.id, s.name, s.email, s.role, s.position, s.created_at, s.updated_at,
			r.id, r.subject_id, r.date,
			r.check_in_time, r.check_in_location, r.check_in_latitude, r.check_in_longitude,
			r.check_out_time, r.check_out_location, r.check_out_latitude, r.check_out_longitude,
			r.course, r.client_check_in_at, r.client_check_out_at,
			r.created_at, r.updated_at
		FROM subjects s
		LEFT JOIN attendance_records r
			ON r.subject_id = s.id
			AND r.date = $2
			AND ($3 = '' OR LOWER(TRIM(r.course)) = $3)
		WHERE s.role = $1
		ORDER BY s.name ASC, s.id ASC`

	rows, err := q.Query(ctx, query, string(role), date, subject.NormalizeCourse(scope.Course))
	if err != nil {
		return nil, fmt.Errorf("%w: query roster: %v", attendance.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	entries := []attendance.RosterEntry{}
	for rows.Next() {
		var (
			sub subject.Subject
			rec nullableRecord
		)
		err := rows.Scan(
			&sub.ID, &sub.Name, &sub.Email, &sub.Role, &sub.Position, &sub.CreatedAt, &sub.UpdatedAt,
			&rec.ID, &rec.SubjectID, &rec.Date,
			&rec.CheckInTime, &rec.CheckInLocation, &rec.CheckInLatitude, &rec.CheckInLongitude,
			&rec.CheckOutTime, &rec.CheckOutLocation, &rec.CheckOutLatitude, &rec.CheckOutLongitude,
			&rec.Course, &rec.ClientCheckInAt, &rec.ClientCheckOutAt,
			&rec.CreatedAt, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", err)
		}
		entries = append(entries, attendance.RosterEntry{Subject: sub, Record: rec.toRecord()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: query roster: %v", attendance.ErrStoreUnavailable, err)
	}

	return entries, nil
}

// CountOpenSessions implements attendance.AttendanceStore.
func (s *attendanceStore) CountOpenSessions(ctx context.Context, before time.Time) (int, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT COUNT(*)
		FROM attendance_records
		WHERE check_in_time IS NOT NULL
		  AND check_out_time IS NULL
		  AND date < $1`

	var count int
	if err := q.QueryRow(ctx, query, before).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count open sessions: %w", err)
	}
	return count, nil
}

// nullableRecord receives the LEFT JOIN side of a roster row.
type nullableRecord struct {
	ID                *string
	SubjectID         *string
	Date              *time.Time
	CheckInTime       *time.Time
	CheckInLocation   *string
	CheckInLatitude   *float64
	CheckInLongitude  *float64
	CheckOutTime      *time.Time
	CheckOutLocation  *string
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
	Course            *string
	ClientCheckInAt   *time.Time
	ClientCheckOutAt  *time.Time
	CreatedAt         *time.Time
	UpdatedAt         *time.Time
}

func (n nullableRecord) toRecord() *attendance.Record {
	if n.ID == nil {
		return nil
	}
	r := &attendance.Record{
		ID:                *n.ID,
		SubjectID:         deref(n.SubjectID),
		CheckInTime:       n.CheckInTime,
		CheckInLocation:   deref(n.CheckInLocation),
		CheckInLatitude:   n.CheckInLatitude,
		CheckInLongitude:  n.CheckInLongitude,
		CheckOutTime:      n.CheckOutTime,
		CheckOutLocation:  deref(n.CheckOutLocation),
		CheckOutLatitude:  n.CheckOutLatitude,
		CheckOutLongitude: n.CheckOutLongitude,
		Course:            deref(n.Course),
		ClientCheckInAt:   n.ClientCheckInAt,
		ClientCheckOutAt:  n.ClientCheckOutAt,
	}
	if n.Date != nil {
		r.Date = *n.Date
	}
	if n.CreatedAt != nil {
		r.CreatedAt = *n.CreatedAt
	}
	if n.UpdatedAt != nil {
		r.UpdatedAt = *n.UpdatedAt
	}
	return r
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func NewAttendanceStore(db *database.DB, fallbackLockTimeout time.Duration) attendance.AttendanceStore {
	return &attendanceStore{db: db, fallbackLockTimeout: fallbackLockTimeout}
}
