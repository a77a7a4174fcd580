package models

import "testing"

func TestCoordinatesIsValid(t *testing.T) {
	tests := []struct {
		name   string
		coords Coordinates
		want   bool
	}{
		{"origin", Coordinates{0, 0}, true},
		{"typical station", Coordinates{50.1, 9.1}, true},
		{"boundary", Coordinates{90, 180}, true},
		{"negative boundary", Coordinates{-90, -180}, true},
		{"lat too high", Coordinates{90.1, 0}, false},
		{"lat too low", Coordinates{-90.1, 0}, false},
		{"lon too high", Coordinates{0, 180.1}, false},
		{"lon too low", Coordinates{0, -180.1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coords.IsValid(); got != tt.want {
				t.Errorf("IsValid(%+v) = %v, want %v", tt.coords, got, tt.want)
			}
		})
	}
}

func TestCoordinatesNearby(t *testing.T) {
	base := Coordinates{Lat: 50.1, Lon: 9.1}

	tests := []struct {
		name  string
		other Coordinates
		want  bool
	}{
		{"same point", Coordinates{50.1, 9.1}, true},
		{"a few hundred meters", Coordinates{50.102, 9.102}, true},
		{"one degree away", Coordinates{51.1, 9.1}, false},
		{"just outside threshold latitude", Coordinates{50.1 + 0.5/111.3 + 0.0001, 9.1}, false},
		{"just inside threshold latitude", Coordinates{50.1 + 0.5/111.3 - 0.0001, 9.1}, true},
		{"just outside threshold longitude", Coordinates{50.1, 9.1 + 0.5/71.5 + 0.0001}, false},
		{"just inside threshold longitude", Coordinates{50.1, 9.1 + 0.5/71.5 - 0.0001}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Nearby(tt.other); got != tt.want {
				t.Errorf("Nearby(%+v) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}

func TestStationPrimaryPhoto(t *testing.T) {
	station := Station{
		Key:    StationKey{Country: "de", ID: "4711"},
		Photos: []Photo{{ID: 1}, {ID: 2, Primary: true}, {ID: 3}},
	}

	if !station.HasPhoto() {
		t.Error("HasPhoto() = false, want true")
	}
	primary := station.PrimaryPhoto()
	if primary == nil || primary.ID != 2 {
		t.Errorf("PrimaryPhoto() = %+v, want photo 2", primary)
	}

	empty := Station{Key: StationKey{Country: "de", ID: "1"}}
	if empty.HasPhoto() {
		t.Error("HasPhoto() on empty station = true, want false")
	}
	if empty.PrimaryPhoto() != nil {
		t.Error("PrimaryPhoto() on empty station should be nil")
	}
}
