package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/prospecta/leads-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	address         TEXT,
	phone           TEXT,
	email           TEXT,
	website         TEXT,
	category        TEXT,
	rating          DOUBLE PRECISION NOT NULL DEFAULT 0,
	rating_count    INTEGER NOT NULL DEFAULT 0,
	opening_hours   TEXT,
	latitude        DOUBLE PRECISION,
	longitude       DOUBLE PRECISION,
	quality_score   DOUBLE PRECISION NOT NULL DEFAULT 0,
	quality_tier    TEXT NOT NULL DEFAULT 'low',
	detail          JSONB,
	search_term     TEXT,
	search_location TEXT,
	captured_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	notes           TEXT
);

CREATE TABLE IF NOT EXISTS campaigns (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	term       TEXT,
	location   TEXT,
	status     TEXT NOT NULL DEFAULT 'active',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS stage_snapshots (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	stage      TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_search_term ON leads(search_term);
CREATE INDEX IF NOT EXISTS idx_leads_captured_at ON leads(captured_at);
CREATE INDEX IF NOT EXISTS idx_stage_snapshots_run_id ON stage_snapshots(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveLead(ctx context.Context, lead model.QualifiedLead, term, location string) (string, error) {
	id := uuid.New().String()

	var lat, lng any
	if lead.Location != nil {
		lat, lng = lead.Location.Lat, lead.Location.Lng
	}

	detailJSON, err := json.Marshal(lead)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal lead")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO leads (
			id, name, address, phone, email, website, category,
			rating, rating_count, opening_hours, latitude, longitude,
			quality_score, quality_tier, detail, search_term, search_location,
			captured_at, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, '')`,
		id, lead.Name, lead.Address, lead.Phone, lead.Email, lead.Website,
		lead.Category, lead.Rating, lead.RatingCount, lead.OpeningHours,
		lat, lng, lead.Score, string(lead.Tier), detailJSON,
		term, location, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert lead")
	}
	return id, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]StoredLead, error) {
	query := `SELECT id, detail, latitude, longitude, search_term, search_location, captured_at, notes
		FROM leads WHERE 1=1`
	var args []any

	if filter.Term != "" {
		args = append(args, filter.Term)
		query += ` AND search_term = $1`
	}
	query += ` ORDER BY quality_score DESC, captured_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []StoredLead
	for rows.Next() {
		var (
			sl         StoredLead
			detailJSON []byte
			lat, lng   *float64
			notes      *string
		)
		if err := rows.Scan(&sl.ID, &detailJSON, &lat, &lng, &sl.SearchTerm, &sl.SearchLocation, &sl.CapturedAt, &notes); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		if err := json.Unmarshal(detailJSON, &sl.Lead); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal lead detail")
		}
		if lat != nil && lng != nil {
			sl.Lead.Location = &model.Coordinate{Lat: *lat, Lng: *lng}
		}
		if notes != nil {
			sl.Notes = *notes
		}
		leads = append(leads, sl)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: iterate leads")
}

func (s *PostgresStore) CreateCampaign(ctx context.Context, name, term, location string) (string, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO campaigns (id, name, term, location, status, created_at) VALUES ($1, $2, $3, $4, 'active', $5)`,
		id, name, term, location, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert campaign")
	}
	return id, nil
}

func (s *PostgresStore) SaveStageSnapshot(ctx context.Context, runID, stage string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal snapshot")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO stage_snapshots (id, run_id, stage, payload, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), runID, stage, payloadJSON, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: insert snapshot")
}
