package models

import "math"

// Scale factors approximating km per degree at our reference latitude.
// The resulting distance is not a great-circle distance; it only has to
// match the SQL nearby-station query, which uses the same formula.
const (
	kmPerDegreeLon = 71.5
	kmPerDegreeLat = 111.3

	// NearbyThresholdKm is the distance below which two coordinates count
	// as the same station location.
	NearbyThresholdKm = 0.5
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsValid reports whether the coordinates are within the valid range.
func (c Coordinates) IsValid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// HasZeroCoords reports whether the coordinates are the unset sentinel (0,0).
func (c Coordinates) HasZeroCoords() bool {
	return c.Lat == 0 && c.Lon == 0
}

// Nearby reports whether other is within NearbyThresholdKm of c using the
// simplified planar distance formula.
func (c Coordinates) Nearby(other Coordinates) bool {
	dLon := kmPerDegreeLon * (c.Lon - other.Lon)
	dLat := kmPerDegreeLat * (c.Lat - other.Lat)
	return math.Sqrt(dLon*dLon+dLat*dLat) < NearbyThresholdKm
}

// StationKey identifies a station by country code and station id.
type StationKey struct {
	Country string `json:"country"`
	ID      string `json:"id"`
}

// Station is a catalog entry. A station without photos is valid.
type Station struct {
	Key         StationKey  `json:"key"`
	Title       string      `json:"title"`
	Coordinates Coordinates `json:"coordinates"`
	DS100       string      `json:"ds100,omitempty"`
	Active      bool        `json:"active"`
	Photos      []Photo     `json:"photos,omitempty"`
}

// HasPhoto reports whether the station has at least one photo.
func (s *Station) HasPhoto() bool {
	return len(s.Photos) > 0
}

// PrimaryPhoto returns the station's primary photo, or nil if it has none.
func (s *Station) PrimaryPhoto() *Photo {
	for i := range s.Photos {
		if s.Photos[i].Primary {
			return &s.Photos[i]
		}
	}
	return nil
}
