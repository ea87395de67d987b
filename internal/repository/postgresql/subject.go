package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campusgeo/attendance-backend-go/internal/domain/subject"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const subjectColumns = `id, name, email, role, position, password_hash, created_at, updated_at`

type subjectRepository struct {
	db *database.DB
}

func scanSubject(row pgx.Row) (subject.Subject, error) {
	var s subject.Subject
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Role, &s.Position, &s.PasswordHash, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *subjectRepository) getOne(ctx context.Context, query string, args ...interface{}) (subject.Subject, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanSubject(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == pgInvalidTextRepr {
			return subject.Subject{}, subject.ErrSubjectNotFound
		}
		return subject.Subject{}, fmt.Errorf("failed to get subject: %w", err)
	}
	return s, nil
}

// GetByID implements subject.SubjectRepository.
func (r *subjectRepository) GetByID(ctx context.Context, id string) (subject.Subject, error) {
	return r.getOne(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, id)
}

// GetByName implements subject.SubjectRepository.
func (r *subjectRepository) GetByName(ctx context.Context, name string, role subject.Role) (subject.Subject, error) {
	return r.getOne(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE name = $1 AND role = $2`, name, string(role))
}

// GetByEmail implements subject.SubjectRepository.
func (r *subjectRepository) GetByEmail(ctx context.Context, email string) (subject.Subject, error) {
	return r.getOne(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE LOWER(email) = LOWER($1)`, email)
}

// Create implements subject.SubjectRepository.
func (r *subjectRepository) Create(ctx context.Context, newSubject subject.Subject) (subject.Subject, error) {
	q := GetQuerier(ctx, r.db)

	if newSubject.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return subject.Subject{}, fmt.Errorf("generate subject id: %w", err)
		}
		newSubject.ID = id.String()
	}

	query := `
		INSERT INTO subjects (id, name, email, role, position, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + subjectColumns

	created, err := scanSubject(q.QueryRow(ctx, query,
		newSubject.ID,
		newSubject.Name,
		strings.ToLower(newSubject.Email),
		string(newSubject.Role),
		newSubject.Position,
		newSubject.PasswordHash,
	))
	if err != nil {
		switch {
		case isUniqueViolation(err, "subjects_email_key"):
			return subject.Subject{}, subject.ErrSubjectEmailExists
		case isUniqueViolation(err, "subjects_name_role_key"):
			return subject.Subject{}, subject.ErrSubjectNameExists
		}
		return subject.Subject{}, fmt.Errorf("failed to create subject: %w", err)
	}

	return created, nil
}

// ListByRole implements subject.SubjectRepository.
func (r *subjectRepository) ListByRole(ctx context.Context, role subject.Role) ([]subject.Subject, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE role = $1 ORDER BY name ASC, id ASC`, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	subjects := []subject.Subject{}
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}

	return subjects, nil
}

func NewSubjectRepository(db *database.DB) subject.SubjectRepository {
	return &subjectRepository{db: db}
}
