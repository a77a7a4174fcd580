package database

import (
	"context"
	"fmt"

	"github.com/mbalthasar/stationpix/internal/models"
)

// PhotoStore persists photos in PostgreSQL.
type PhotoStore struct {
	db *DB
}

// NewPhotoStore creates a new photo store.
func NewPhotoStore(db *DB) *PhotoStore {
	return &PhotoStore{db: db}
}

// Insert stores a new photo and returns its id.
func (s *PhotoStore) Insert(ctx context.Context, photo *models.Photo) (int64, error) {
	query := `
		INSERT INTO photos (country_code, station_id, is_primary, outdated, url_path, photographer_id, license, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		photo.StationKey.Country,
		photo.StationKey.ID,
		photo.Primary,
		photo.Outdated,
		photo.URLPath,
		photo.Photographer.ID,
		photo.License,
		photo.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert photo: %w", err)
	}
	return id, nil
}

// InsertPrimary demotes all photos of the station to secondary and inserts
// the new photo as primary, in a single transaction. A reader never observes
// a station with zero or two primary photos.
func (s *PhotoStore) InsertPrimary(ctx context.Context, photo *models.Photo) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert primary photo: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE photos SET is_primary = false WHERE country_code = $1 AND station_id = $2`,
		photo.StationKey.Country, photo.StationKey.ID)
	if err != nil {
		return 0, fmt.Errorf("demote photos: %w", err)
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO photos (country_code, station_id, is_primary, outdated, url_path, photographer_id, license, created_at)
		VALUES ($1, $2, true, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		photo.StationKey.Country,
		photo.StationKey.ID,
		photo.Outdated,
		photo.URLPath,
		photo.Photographer.ID,
		photo.License,
		photo.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert primary photo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert primary photo: %w", err)
	}
	return id, nil
}

// Update replaces the stored record of an existing photo in place.
func (s *PhotoStore) Update(ctx context.Context, photo *models.Photo) error {
	query := `
		UPDATE photos
		SET country_code = $2, station_id = $3, is_primary = $4, outdated = $5,
		    url_path = $6, photographer_id = $7, license = $8, created_at = $9
		WHERE id = $1
	`

	_, err := s.db.ExecContext(ctx, query,
		photo.ID,
		photo.StationKey.Country,
		photo.StationKey.ID,
		photo.Primary,
		photo.Outdated,
		photo.URLPath,
		photo.Photographer.ID,
		photo.License,
		photo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("update photo: %w", err)
	}
	return nil
}

// Delete removes a photo by id.
func (s *PhotoStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM photos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}

// MarkOutdated flags a photo as outdated.
func (s *PhotoStore) MarkOutdated(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE photos SET outdated = true WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark photo outdated: %w", err)
	}
	return nil
}

// SetAllSecondary demotes every photo of a station to secondary.
func (s *PhotoStore) SetAllSecondary(ctx context.Context, key models.StationKey) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE photos SET is_primary = false WHERE country_code = $1 AND station_id = $2`,
		key.Country, key.ID)
	if err != nil {
		return fmt.Errorf("set photos secondary: %w", err)
	}
	return nil
}
