package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mbalthasar/stationpix/internal/models"
)

// ErrNoPendingRow is returned when a terminal-state update matched no pending
// row. The affected-row check is what makes command processing at-most-once:
// two concurrent commands on the same entry cannot both flip done.
var ErrNoPendingRow = errors.New("no pending inbox row")

// InboxStore persists moderation-queue entries in PostgreSQL.
type InboxStore struct {
	db *DB
}

// NewInboxStore creates a new inbox store.
func NewInboxStore(db *DB) *InboxStore {
	return &InboxStore{db: db}
}

const entryColumns = `
	i.id, i.photographer_id, u.name, i.country_code, i.station_id, i.title,
	i.lat, i.lon, i.extension, i.comment, i.reject_reason,
	i.problem_report_type, i.active, i.crc32, i.done, i.created_at
`

// Insert stores a new entry and returns its id.
func (s *InboxStore) Insert(ctx context.Context, entry *models.InboxEntry) (int64, error) {
	query := `
		INSERT INTO inbox (photographer_id, country_code, station_id, title, lat, lon,
		                   extension, comment, problem_report_type, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		entry.PhotographerID,
		nullString(entry.CountryCode),
		nullString(entry.StationID),
		nullString(entry.Title),
		nullFloat(entry.Coordinates.Lat, entry.HasCoords()),
		nullFloat(entry.Coordinates.Lon, entry.HasCoords()),
		nullString(entry.Extension),
		nullString(entry.Comment),
		nullString(string(entry.ProblemReportType)),
		entry.Active,
		entry.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert inbox entry: %w", err)
	}
	return id, nil
}

// FindByID loads an entry, or nil if unknown.
func (s *InboxStore) FindByID(ctx context.Context, id int64) (*models.InboxEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM inbox i
		JOIN users u ON u.id = i.photographer_id
		WHERE i.id = $1
	`

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find inbox entry: %w", err)
	}
	return entry, nil
}

// FindPending returns all entries awaiting moderation, oldest first.
func (s *InboxStore) FindPending(ctx context.Context) ([]models.InboxEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM inbox i
		JOIN users u ON u.id = i.photographer_id
		WHERE NOT i.done
		ORDER BY i.id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find pending inbox entries: %w", err)
	}
	defer rows.Close()

	var entries []models.InboxEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inbox entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// FindPublic returns the public-safe projection of pending photo uploads.
func (s *InboxStore) FindPublic(ctx context.Context) ([]models.PublicInboxEntry, error) {
	query := `
		SELECT i.country_code, i.station_id,
		       COALESCE(s.title, i.title), COALESCE(s.lat, i.lat), COALESCE(s.lon, i.lon)
		FROM inbox i
		LEFT JOIN stations s ON s.country_code = i.country_code AND s.station_id = i.station_id
		WHERE NOT i.done AND i.problem_report_type IS NULL
		ORDER BY i.id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find public inbox entries: %w", err)
	}
	defer rows.Close()

	var entries []models.PublicInboxEntry
	for rows.Next() {
		var entry models.PublicInboxEntry
		var countryCode, stationID, title sql.NullString
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&countryCode, &stationID, &title, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan public inbox entry: %w", err)
		}
		entry.CountryCode = countryCode.String
		entry.StationID = stationID.String
		entry.Title = title.String
		entry.Coordinates = models.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// MarkDone flips an entry to its terminal accepted state. Returns
// ErrNoPendingRow if the entry is missing or already done.
func (s *InboxStore) MarkDone(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE inbox SET done = true WHERE id = $1 AND NOT done`, id)
	if err != nil {
		return fmt.Errorf("mark inbox entry done: %w", err)
	}
	return requireRow(res)
}

// MarkRejected flips an entry to its terminal rejected state. Returns
// ErrNoPendingRow if the entry is missing or already done.
func (s *InboxStore) MarkRejected(ctx context.Context, id int64, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE inbox SET done = true, reject_reason = $2 WHERE id = $1 AND NOT done`, id, reason)
	if err != nil {
		return fmt.Errorf("mark inbox entry rejected: %w", err)
	}
	return requireRow(res)
}

// CountPendingForStation counts other pending entries bound to the same
// station key. excludeID 0 means no exclusion.
func (s *InboxStore) CountPendingForStation(ctx context.Context, excludeID int64, country, stationID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM inbox
		WHERE NOT done AND country_code = $2 AND station_id = $3 AND ($1 = 0 OR id <> $1)
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, excludeID, country, stationID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending entries for station: %w", err)
	}
	return count, nil
}

// CountPendingNearCoordinates counts other pending entries with coordinates
// within the nearby threshold. The formula must stay in sync with
// models.Coordinates.Nearby.
func (s *InboxStore) CountPendingNearCoordinates(ctx context.Context, excludeID int64, coords models.Coordinates) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM inbox
		WHERE NOT done AND ($1 = 0 OR id <> $1)
		  AND lat IS NOT NULL AND lon IS NOT NULL
		  AND SQRT(POWER(71.5 * (lon - $3), 2) + POWER(111.3 * (lat - $2), 2)) < 0.5
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, excludeID, coords.Lat, coords.Lon).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending entries near coordinates: %w", err)
	}
	return count, nil
}

// UpdateChecksum stores the CRC32 of the uploaded file once the upload
// completed.
func (s *InboxStore) UpdateChecksum(ctx context.Context, id int64, crc32 int64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE inbox SET crc32 = $2 WHERE id = $1`, id, crc32); err != nil {
		return fmt.Errorf("update inbox checksum: %w", err)
	}
	return nil
}

// CountPending returns the number of entries awaiting moderation.
func (s *InboxStore) CountPending(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inbox WHERE NOT done`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending inbox entries: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*models.InboxEntry, error) {
	var entry models.InboxEntry
	var countryCode, stationID, title, extension, comment, rejectReason, problemType sql.NullString
	var lat, lon sql.NullFloat64
	var crc32 sql.NullInt64

	err := row.Scan(
		&entry.ID,
		&entry.PhotographerID,
		&entry.PhotographerNickname,
		&countryCode,
		&stationID,
		&title,
		&lat,
		&lon,
		&extension,
		&comment,
		&rejectReason,
		&problemType,
		&entry.Active,
		&crc32,
		&entry.Done,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.CountryCode = countryCode.String
	entry.StationID = stationID.String
	entry.Title = title.String
	entry.Coordinates = models.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
	entry.Extension = extension.String
	entry.Comment = comment.String
	entry.RejectReason = rejectReason.String
	entry.ProblemReportType = models.ProblemReportType(problemType.String)
	entry.CRC32 = crc32.Int64

	return &entry, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNoPendingRow
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat(f float64, valid bool) sql.NullFloat64 {
	if !valid {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: valid}
}
