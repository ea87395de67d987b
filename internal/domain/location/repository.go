package location

import "context"

// LocationRepository gives read access to the authorized locations plus the
// seeding operations used at startup.
type LocationRepository interface {
	// List returns all locations ordered by name.
	List(ctx context.Context) ([]Location, error)
	Create(ctx context.Context, loc Location) (Location, error)
	Count(ctx context.Context) (int, error)
}
