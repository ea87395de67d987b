package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/domain/subject"
)

type subjectRepository struct {
	mu       sync.RWMutex
	subjects map[string]subject.Subject
}

// GetByID implements subject.SubjectRepository.
func (r *subjectRepository) GetByID(ctx context.Context, id string) (subject.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.subjects[id]
	if !ok {
		return subject.Subject{}, subject.ErrSubjectNotFound
	}
	return s, nil
}

// GetByName implements subject.SubjectRepository.
func (r *subjectRepository) GetByName(ctx context.Context, name string, role subject.Role) (subject.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.subjects {
		if s.Role == role && strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return subject.Subject{}, subject.ErrSubjectNotFound
}

// GetByEmail implements subject.SubjectRepository.
func (r *subjectRepository) GetByEmail(ctx context.Context, email string) (subject.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.subjects {
		if s.Email != "" && strings.EqualFold(s.Email, strings.TrimSpace(email)) {
			return s, nil
		}
	}
	return subject.Subject{}, subject.ErrSubjectNotFound
}

// Create implements subject.SubjectRepository.
func (r *subjectRepository) Create(ctx context.Context, newSubject subject.Subject) (subject.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	newSubject.Email = strings.ToLower(strings.TrimSpace(newSubject.Email))
	for _, s := range r.subjects {
		if newSubject.Email != "" && s.Email == newSubject.Email {
			return subject.Subject{}, subject.ErrSubjectEmailExists
		}
		if s.Role == newSubject.Role && strings.EqualFold(s.Name, newSubject.Name) {
			return subject.Subject{}, subject.ErrSubjectNameExists
		}
	}

	now := time.Now()
	if newSubject.ID == "" {
		newSubject.ID = newID()
	}
	newSubject.CreatedAt = now
	newSubject.UpdatedAt = now
	r.subjects[newSubject.ID] = newSubject

	return newSubject, nil
}

// ListByRole implements subject.SubjectRepository.
func (r *subjectRepository) ListByRole(ctx context.Context, role subject.Role) ([]subject.Subject, error) {
	r.mu.RLock()
	subjects := make([]subject.Subject, 0)
	for _, s := range r.subjects {
		if s.Role == role {
			subjects = append(subjects, s)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(subjects, func(a, b subject.Subject) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return subjects, nil
}

func NewSubjectRepository() subject.SubjectRepository {
	return &subjectRepository{subjects: make(map[string]subject.Subject)}
}
