package location

import (
	"math"

	"github.com/campusgeo/attendance-backend-go/internal/pkg/validator"
)

const (
	DefaultNearestLimit = 5
	MaxNearestLimit     = 50
)

type NearestLocationsRequest struct {
	Lat   *float64 `json:"lat" validate:"required,latitude"`
	Lng   *float64 `json:"lng" validate:"required,longitude"`
	Limit int      `json:"limit" validate:"min=0,max=50"`
}

func (r *NearestLocationsRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	if r.Limit == 0 {
		r.Limit = DefaultNearestLimit
	}
	return nil
}

type NearestLocationResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
	Distance  int     `json:"distance"`
}

func ToNearestResponse(r ValidationResult) NearestLocationResponse {
	return NearestLocationResponse{
		ID:        r.Location.ID,
		Name:      r.Location.Name,
		Latitude:  r.Location.Latitude,
		Longitude: r.Location.Longitude,
		Radius:    r.Location.Radius(),
		Distance:  int(math.Round(r.DistanceMeters)),
	}
}
