// Package store persists qualified leads and the intermediate stage
// snapshots of a pipeline run. Two drivers implement the same interface:
// SQLite (default, local file) and Postgres.
package store

import (
	"context"
	"time"

	"github.com/prospecta/leads-cli/internal/model"
)

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	Term  string `json:"term,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// StoredLead is a persisted lead together with its capture context.
type StoredLead struct {
	ID             string              `json:"id"`
	Lead           model.QualifiedLead `json:"lead"`
	SearchTerm     string              `json:"search_term"`
	SearchLocation string              `json:"search_location"`
	CapturedAt     time.Time           `json:"captured_at"`
	Notes          string              `json:"notes,omitempty"`
}

// Store defines the persistence interface for the lead capture pipeline.
type Store interface {
	// Leads
	SaveLead(ctx context.Context, lead model.QualifiedLead, term, location string) (string, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]StoredLead, error)

	// Campaigns
	CreateCampaign(ctx context.Context, name, term, location string) (string, error)

	// Stage snapshots
	SaveStageSnapshot(ctx context.Context, runID, stage string, payload any) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
