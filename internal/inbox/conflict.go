package inbox

import (
	"context"

	"github.com/mbalthasar/stationpix/internal/models"
)

// hasStationConflict reports whether importing into station would collide
// with existing catalog data or another pending entry bound to the same key.
// excludeID keeps an entry from conflicting with itself; 0 means no
// exclusion.
func (s *Service) hasStationConflict(ctx context.Context, excludeID int64, station *models.Station) (bool, error) {
	if station.HasPhoto() {
		return true, nil
	}
	count, err := s.entries.CountPendingForStation(ctx, excludeID, station.Key.Country, station.Key.ID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// hasCoordinateConflict reports whether coords lie near an existing station
// or another pending entry. The zero coordinate sentinel never conflicts.
func (s *Service) hasCoordinateConflict(ctx context.Context, excludeID int64, coords models.Coordinates) (bool, error) {
	if coords.HasZeroCoords() {
		return false, nil
	}

	pending, err := s.entries.CountPendingNearCoordinates(ctx, excludeID, coords)
	if err != nil {
		return false, err
	}
	if pending > 0 {
		return true, nil
	}

	stations, err := s.stations.CountNearby(ctx, coords)
	if err != nil {
		return false, err
	}
	return stations > 0, nil
}
