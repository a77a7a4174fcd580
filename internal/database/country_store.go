package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mbalthasar/stationpix/internal/models"
)

// CountryStore persists countries in PostgreSQL.
type CountryStore struct {
	db *DB
}

// NewCountryStore creates a new country store.
func NewCountryStore(db *DB) *CountryStore {
	return &CountryStore{db: db}
}

// FindByCode loads a country, or nil if unknown. Codes are stored lowercase.
func (s *CountryStore) FindByCode(ctx context.Context, code string) (*models.Country, error) {
	query := `
		SELECT code, name, override_license, active
		FROM countries
		WHERE code = $1
	`

	var country models.Country
	var overrideLicense sql.NullString
	err := s.db.QueryRowContext(ctx, query, strings.ToLower(code)).Scan(
		&country.Code,
		&country.Name,
		&overrideLicense,
		&country.Active,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find country: %w", err)
	}
	if overrideLicense.Valid {
		country.OverrideLicense = models.License(overrideLicense.String)
	}

	return &country, nil
}
