package airquality

// Coordinates is a point on the globe in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// LocationResult is the outcome of resolving a free-text place name.
type LocationResult struct {
	Coordinates   Coordinates `json:"coordinates"`
	DisplayLabel  string      `json:"displayLabel"`
	CanonicalName string      `json:"canonicalName"`
}

// AirReading holds the current pollutant values for one location.
// Readings are never persisted; they are re-fetched on every load.
type AirReading struct {
	AQI   int     `json:"usAqi"`
	PM10  float64 `json:"pm10"`
	PM2_5 float64 `json:"pm2_5"`
}

// City is a named member of the ranking set.
type City struct {
	Name        string      `json:"name" validate:"required"`
	Coordinates Coordinates `json:"coordinates"`
}

// RankedCityEntry is one row of a ranking result.
type RankedCityEntry struct {
	Name string `json:"name"`
	AQI  int    `json:"aqi"`
	Tier Tier   `json:"tier"`
}
