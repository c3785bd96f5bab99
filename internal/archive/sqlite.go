package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/crisislab/crisis-monitor/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS disasters (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			location TEXT NOT NULL,
			severity TEXT NOT NULL,
			category TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			source TEXT NOT NULL,
			confidence REAL NOT NULL,
			affected_people INTEGER,
			damage_estimate TEXT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			coords_valid INTEGER NOT NULL,
			quality_score REAL,
			archived_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_disasters_timestamp ON disasters(timestamp);
		CREATE INDEX IF NOT EXISTS idx_disasters_category ON disasters(category);
		CREATE INDEX IF NOT EXISTS idx_disasters_severity ON disasters(severity);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) Add(ctx context.Context, rec *models.DisasterRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO disasters (
			id, title, description, location, severity, category, timestamp,
			source, confidence, affected_people, damage_estimate,
			latitude, longitude, coords_valid, quality_score, archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, strftime('%s','now'))`,
		rec.ID, rec.Title, rec.Description, rec.Location, string(rec.Severity),
		string(rec.Category), rec.Timestamp, rec.Source, rec.Confidence,
		rec.AffectedPeople, rec.DamageEstimate,
		rec.Coordinates.Lat, rec.Coordinates.Lng, boolToInt(rec.Coordinates.Valid),
		rec.QualityScore,
	)
	if err != nil {
		return fmt.Errorf("error inserting disaster: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetByID(ctx context.Context, id string) (*models.DisasterRecord, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM disasters WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying disaster: %w", err)
	}
	return rec, nil
}

func (s *SQLiteDB) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM disasters WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error checking existence: %w", err)
	}
	return true, nil
}

const selectColumns = `SELECT id, title, description, location, severity, category, timestamp,
	source, confidence, affected_people, damage_estimate,
	latitude, longitude, coords_valid, quality_score`

func (s *SQLiteDB) List(ctx context.Context, opts Filter) ([]models.DisasterRecord, error) {
	query := selectColumns + ` FROM disasters`

	var conds []string
	var args []any

	if opts.Category != nil {
		conds = append(conds, "category = ?")
		args = append(args, string(*opts.Category))
	}
	if opts.Severity != nil {
		conds = append(conds, "severity = ?")
		args = append(args, string(*opts.Severity))
	}
	if opts.Since != nil {
		conds = append(conds, "timestamp >= ?")
		args = append(args, opts.Since.Unix())
	}
	if opts.MinQuality != nil {
		conds = append(conds, "quality_score >= ?")
		args = append(args, *opts.MinQuality)
	}
	if opts.Source != "" {
		conds = append(conds, "source = ?")
		args = append(args, opts.Source)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " ORDER BY timestamp DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing disasters: %w", err)
	}
	defer rows.Close()

	var records []models.DisasterRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning disaster: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.DisasterRecord, error) {
	var rec models.DisasterRecord
	var severity, category string
	var coordsValid int

	err := row.Scan(
		&rec.ID, &rec.Title, &rec.Description, &rec.Location, &severity,
		&category, &rec.Timestamp, &rec.Source, &rec.Confidence,
		&rec.AffectedPeople, &rec.DamageEstimate,
		&rec.Coordinates.Lat, &rec.Coordinates.Lng, &coordsValid,
		&rec.QualityScore,
	)
	if err != nil {
		return nil, err
	}

	rec.Severity = models.Severity(severity)
	rec.Category = models.Category(category)
	rec.Coordinates.Valid = coordsValid != 0
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
