package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Config holds database configuration
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            5432,
		User:            "postgres",
		Password:        "postgres",
		Database:        "stationpix",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DB wraps the sql.DB connection
type DB struct {
	*sql.DB
	config Config
}

// New creates a new database connection
func New(config Config) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.Database, config.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, config: config}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Migrate runs database migrations
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		migrationCountries,
		migrationUsers,
		migrationStations,
		migrationPhotos,
		migrationInbox,
		migrationIndexes,
	}

	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// Migration SQL statements
const migrationCountries = `
CREATE TABLE IF NOT EXISTS countries (
    code VARCHAR(2) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    override_license VARCHAR(100),
    active BOOLEAN NOT NULL DEFAULT true
);
`

const migrationUsers = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(50) NOT NULL UNIQUE,
    email VARCHAR(255),
    license VARCHAR(100),
    email_verified BOOLEAN NOT NULL DEFAULT false,
    anonymous BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMPTZ DEFAULT NOW()
);
`

const migrationStations = `
CREATE TABLE IF NOT EXISTS stations (
    country_code VARCHAR(2) NOT NULL REFERENCES countries(code),
    station_id VARCHAR(30) NOT NULL,
    title VARCHAR(255) NOT NULL,
    lat DOUBLE PRECISION NOT NULL,
    lon DOUBLE PRECISION NOT NULL,
    ds100 VARCHAR(30),
    active BOOLEAN NOT NULL DEFAULT true,
    PRIMARY KEY (country_code, station_id)
);
`

const migrationPhotos = `
CREATE TABLE IF NOT EXISTS photos (
    id BIGSERIAL PRIMARY KEY,
    country_code VARCHAR(2) NOT NULL,
    station_id VARCHAR(30) NOT NULL,
    is_primary BOOLEAN NOT NULL DEFAULT false,
    outdated BOOLEAN NOT NULL DEFAULT false,
    url_path VARCHAR(255) NOT NULL,
    photographer_id BIGINT NOT NULL REFERENCES users(id),
    license VARCHAR(100) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    FOREIGN KEY (country_code, station_id) REFERENCES stations(country_code, station_id) ON DELETE CASCADE
);
`

const migrationInbox = `
CREATE TABLE IF NOT EXISTS inbox (
    id BIGSERIAL PRIMARY KEY,
    photographer_id BIGINT NOT NULL REFERENCES users(id),
    country_code VARCHAR(2),
    station_id VARCHAR(30),
    title VARCHAR(255),
    lat DOUBLE PRECISION,
    lon DOUBLE PRECISION,
    extension VARCHAR(10),
    comment TEXT,
    reject_reason TEXT,
    problem_report_type VARCHAR(30),
    active BOOLEAN NOT NULL DEFAULT true,
    crc32 BIGINT,
    done BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const migrationIndexes = `
CREATE INDEX IF NOT EXISTS idx_photos_station ON photos(country_code, station_id);
CREATE INDEX IF NOT EXISTS idx_photos_station_primary ON photos(country_code, station_id) WHERE is_primary;
CREATE INDEX IF NOT EXISTS idx_inbox_done ON inbox(done);
CREATE INDEX IF NOT EXISTS idx_inbox_station ON inbox(country_code, station_id) WHERE NOT done;
CREATE INDEX IF NOT EXISTS idx_inbox_photographer ON inbox(photographer_id);
`
