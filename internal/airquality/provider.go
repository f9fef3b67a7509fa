package airquality

import "context"

// Resolver turns a free-text place name into coordinates and a display label.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, query string) (LocationResult, error)
}

// Fetcher retrieves current pollutant readings for a position.
type Fetcher interface {
	Name() string
	FetchCurrent(ctx context.Context, coords Coordinates) (AirReading, error)
}
