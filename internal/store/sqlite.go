package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/prospecta/leads-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	address         TEXT,
	phone           TEXT,
	email           TEXT,
	website         TEXT,
	category        TEXT,
	rating          REAL NOT NULL DEFAULT 0,
	rating_count    INTEGER NOT NULL DEFAULT 0,
	opening_hours   TEXT,
	latitude        REAL,
	longitude       REAL,
	quality_score   REAL NOT NULL DEFAULT 0,
	quality_tier    TEXT NOT NULL DEFAULT 'low',
	detail          TEXT,
	search_term     TEXT,
	search_location TEXT,
	captured_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	notes           TEXT
);

CREATE TABLE IF NOT EXISTS campaigns (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	term       TEXT,
	location   TEXT,
	status     TEXT NOT NULL DEFAULT 'active',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS stage_snapshots (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	stage      TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_search_term ON leads(search_term);
CREATE INDEX IF NOT EXISTS idx_leads_captured_at ON leads(captured_at);
CREATE INDEX IF NOT EXISTS idx_stage_snapshots_run_id ON stage_snapshots(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveLead(ctx context.Context, lead model.QualifiedLead, term, location string) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	var lat, lng any
	if lead.Location != nil {
		lat, lng = lead.Location.Lat, lead.Location.Lng
	}

	detailJSON, err := json.Marshal(lead)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal lead")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads (
			id, name, address, phone, email, website, category,
			rating, rating_count, opening_hours, latitude, longitude,
			quality_score, quality_tier, detail, search_term, search_location,
			captured_at, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '')`,
		id, lead.Name, lead.Address, lead.Phone, lead.Email, lead.Website,
		lead.Category, lead.Rating, lead.RatingCount, lead.OpeningHours,
		lat, lng, lead.Score, string(lead.Tier), string(detailJSON),
		term, location, now,
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert lead")
	}
	return id, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]StoredLead, error) {
	query := `SELECT id, detail, latitude, longitude, search_term, search_location, captured_at, notes
		FROM leads WHERE 1=1`
	var args []any

	if filter.Term != "" {
		query += ` AND search_term = ?`
		args = append(args, filter.Term)
	}
	query += ` ORDER BY quality_score DESC, captured_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close() //nolint:errcheck

	var leads []StoredLead
	for rows.Next() {
		var (
			sl         StoredLead
			detailJSON string
			lat, lng   sql.NullFloat64
			notes      sql.NullString
		)
		if err := rows.Scan(&sl.ID, &detailJSON, &lat, &lng, &sl.SearchTerm, &sl.SearchLocation, &sl.CapturedAt, &notes); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		if err := json.Unmarshal([]byte(detailJSON), &sl.Lead); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal lead detail")
		}
		if lat.Valid && lng.Valid {
			sl.Lead.Location = &model.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
		}
		sl.Notes = notes.String
		leads = append(leads, sl)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}

func (s *SQLiteStore) CreateCampaign(ctx context.Context, name, term, location string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO campaigns (id, name, term, location, status, created_at) VALUES (?, ?, ?, ?, 'active', ?)`,
		id, name, term, location, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert campaign")
	}
	return id, nil
}

func (s *SQLiteStore) SaveStageSnapshot(ctx context.Context, runID, stage string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal snapshot")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO stage_snapshots (id, run_id, stage, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), runID, stage, string(payloadJSON), time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: insert snapshot")
}
