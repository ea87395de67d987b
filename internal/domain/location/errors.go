package location

import "errors"

var (
	ErrLocationNotFound      = errors.New("location not found")
	ErrNoLocationsConfigured = errors.New("no attendance locations configured")
	ErrLocationNameExists    = errors.New("a location with this name already exists")
)
