package models

import "time"

// License identifies the license a photo is published under.
type License string

// Licenses accepted for photo submissions.
const (
	LicenseCC0         License = "CC0 1.0 Universell (CC0 1.0)"
	LicenseCCBySA40    License = "CC BY-SA 4.0"
	LicenseCCByNCSA30  License = "CC BY-NC-SA 3.0 DE"
	LicenseCCByNC40Int License = "CC BY-NC 4.0 International"
)

// Photo belongs to exactly one station. At most one photo per station may be
// primary at any time.
type Photo struct {
	ID           int64       `json:"id"`
	StationKey   StationKey  `json:"stationKey"`
	Primary      bool        `json:"primary"`
	Outdated     bool        `json:"outdated"`
	URLPath      string      `json:"urlPath"`
	Photographer *User       `json:"photographer,omitempty"`
	License      License     `json:"license"`
	CreatedAt    time.Time   `json:"createdAt"`
}
