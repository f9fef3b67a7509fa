package pipeline

import (
	"context"

	"github.com/i474232898/airaware/internal/airquality"
)

// Geolocator reports the device position.
type Geolocator interface {
	Locate(ctx context.Context) (airquality.Coordinates, error)
}

// StaticGeolocator always reports the same position.
type StaticGeolocator airquality.Coordinates

func (g StaticGeolocator) Locate(context.Context) (airquality.Coordinates, error) {
	return airquality.Coordinates(g), nil
}

// GeolocatorFunc adapts a function to Geolocator.
type GeolocatorFunc func(ctx context.Context) (airquality.Coordinates, error)

func (f GeolocatorFunc) Locate(ctx context.Context) (airquality.Coordinates, error) {
	return f(ctx)
}
