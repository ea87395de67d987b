package subject

import "context"

type SubjectRepository interface {
	GetByID(ctx context.Context, id string) (Subject, error)
	GetByName(ctx context.Context, name string, role Role) (Subject, error)
	GetByEmail(ctx context.Context, email string) (Subject, error)
	Create(ctx context.Context, newSubject Subject) (Subject, error)
	// ListByRole returns every subject with the given role ordered by name.
	ListByRole(ctx context.Context, role Role) ([]Subject, error)
}
