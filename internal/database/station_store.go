package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/mbalthasar/stationpix/internal/models"
)

// ErrStationExists is returned when inserting a station whose key is already
// taken. Concurrent imports proposing the same station id race on the primary
// key; the loser gets this error instead of a duplicate row.
var ErrStationExists = errors.New("station already exists")

// StationStore persists stations in PostgreSQL.
type StationStore struct {
	db *DB
}

// NewStationStore creates a new station store.
func NewStationStore(db *DB) *StationStore {
	return &StationStore{db: db}
}

// FindByKey loads a station with its photos, or nil if it does not exist.
func (s *StationStore) FindByKey(ctx context.Context, country, id string) (*models.Station, error) {
	if country == "" || id == "" {
		return nil, nil
	}

	query := `
		SELECT country_code, station_id, title, lat, lon, ds100, active
		FROM stations
		WHERE country_code = $1 AND station_id = $2
	`

	var station models.Station
	var ds100 sql.NullString
	err := s.db.QueryRowContext(ctx, query, country, id).Scan(
		&station.Key.Country,
		&station.Key.ID,
		&station.Title,
		&station.Coordinates.Lat,
		&station.Coordinates.Lon,
		&ds100,
		&station.Active,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find station: %w", err)
	}
	if ds100.Valid {
		station.DS100 = ds100.String
	}

	photos, err := s.loadPhotos(ctx, station.Key)
	if err != nil {
		return nil, err
	}
	station.Photos = photos

	return &station, nil
}

func (s *StationStore) loadPhotos(ctx context.Context, key models.StationKey) ([]models.Photo, error) {
	query := `
		SELECT p.id, p.is_primary, p.outdated, p.url_path, p.license, p.created_at,
		       u.id, u.name, u.license, u.email_verified, u.anonymous
		FROM photos p
		JOIN users u ON u.id = p.photographer_id
		WHERE p.country_code = $1 AND p.station_id = $2
		ORDER BY p.is_primary DESC, p.id
	`

	rows, err := s.db.QueryContext(ctx, query, key.Country, key.ID)
	if err != nil {
		return nil, fmt.Errorf("load photos: %w", err)
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		var photo models.Photo
		var photographer models.User
		if err := rows.Scan(
			&photo.ID,
			&photo.Primary,
			&photo.Outdated,
			&photo.URLPath,
			&photo.License,
			&photo.CreatedAt,
			&photographer.ID,
			&photographer.Name,
			&photographer.License,
			&photographer.EmailVerified,
			&photographer.Anonymous,
		); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photo.StationKey = key
		photo.Photographer = &photographer
		photos = append(photos, photo)
	}

	return photos, rows.Err()
}

// Insert creates a new station. Returns ErrStationExists when the key is
// already taken.
func (s *StationStore) Insert(ctx context.Context, station *models.Station) error {
	query := `
		INSERT INTO stations (country_code, station_id, title, lat, lon, ds100, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	ds100 := sql.NullString{}
	if station.DS100 != "" {
		ds100 = sql.NullString{String: station.DS100, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		station.Key.Country,
		station.Key.ID,
		station.Title,
		station.Coordinates.Lat,
		station.Coordinates.Lon,
		ds100,
		station.Active,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrStationExists
		}
		return fmt.Errorf("insert station: %w", err)
	}
	return nil
}

// UpdateActive flips the active flag of a station.
func (s *StationStore) UpdateActive(ctx context.Context, key models.StationKey, active bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE stations SET active = $3 WHERE country_code = $1 AND station_id = $2`,
		key.Country, key.ID, active)
	if err != nil {
		return fmt.Errorf("update station active: %w", err)
	}
	return nil
}

// UpdateTitle renames a station.
func (s *StationStore) UpdateTitle(ctx context.Context, key models.StationKey, title string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE stations SET title = $3 WHERE country_code = $1 AND station_id = $2`,
		key.Country, key.ID, title)
	if err != nil {
		return fmt.Errorf("update station title: %w", err)
	}
	return nil
}

// UpdateLocation relocates a station.
func (s *StationStore) UpdateLocation(ctx context.Context, key models.StationKey, coords models.Coordinates) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE stations SET lat = $3, lon = $4 WHERE country_code = $1 AND station_id = $2`,
		key.Country, key.ID, coords.Lat, coords.Lon)
	if err != nil {
		return fmt.Errorf("update station location: %w", err)
	}
	return nil
}

// Delete removes a station; its photos cascade at the schema level.
func (s *StationStore) Delete(ctx context.Context, key models.StationKey) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM stations WHERE country_code = $1 AND station_id = $2`,
		key.Country, key.ID)
	if err != nil {
		return fmt.Errorf("delete station: %w", err)
	}
	return nil
}

// CountNearby counts stations within the nearby threshold of the given
// coordinates. The formula must stay in sync with models.Coordinates.Nearby.
func (s *StationStore) CountNearby(ctx context.Context, coords models.Coordinates) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM stations
		WHERE SQRT(POWER(71.5 * (lon - $2), 2) + POWER(111.3 * (lat - $1), 2)) < 0.5
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, coords.Lat, coords.Lon).Scan(&count); err != nil {
		return 0, fmt.Errorf("count nearby stations: %w", err)
	}
	return count, nil
}

// MaxZ returns the highest numeric suffix among synthetic "Z" station ids.
func (s *StationStore) MaxZ(ctx context.Context) (int, error) {
	query := `
		SELECT COALESCE(MAX(CAST(SUBSTRING(station_id FROM 2) AS INTEGER)), 0)
		FROM stations
		WHERE station_id ~ '^Z[0-9]+$'
	`

	var max int
	if err := s.db.QueryRowContext(ctx, query).Scan(&max); err != nil {
		return 0, fmt.Errorf("max z station id: %w", err)
	}
	return max, nil
}
