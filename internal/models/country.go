package models

// Country holds per-country catalog settings.
//
// OverrideLicense, when set, replaces the photographer's personal license for
// all photos in this country. Some countries restrict the "freedom of
// panorama", so the license has to be fixed regardless of what the
// photographer normally publishes under.
type Country struct {
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	OverrideLicense License `json:"overrideLicense,omitempty"`
	Active          bool    `json:"active"`
}
