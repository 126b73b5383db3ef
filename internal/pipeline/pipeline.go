// Package pipeline sequences the lead capture stages: acquisition,
// enrichment and qualification. Stages run strictly one after another and
// each stage's full output is materialized (and snapshotted) before the
// next begins, so intermediate results stay inspectable.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/prospecta/leads-cli/internal/acquire"
	"github.com/prospecta/leads-cli/internal/model"
	"github.com/prospecta/leads-cli/internal/qualify"
	"github.com/prospecta/leads-cli/internal/store"
)

// Enricher augments one business with website-derived detail.
type Enricher interface {
	Enrich(ctx context.Context, b model.Business) model.EnrichedLead
}

// Pipeline orchestrates the capture stages for one search.
type Pipeline struct {
	searcher acquire.Searcher
	enricher Enricher
	store    store.Store
}

// New creates a Pipeline with all dependencies.
func New(searcher acquire.Searcher, enricher Enricher, st store.Store) *Pipeline {
	return &Pipeline{
		searcher: searcher,
		enricher: enricher,
		store:    st,
	}
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID      string                `json:"run_id"`
	Leads      []model.QualifiedLead `json:"leads"`
	Discovered int                   `json:"discovered"`
	Qualified  int                   `json:"qualified"`
	SavedIDs   []string              `json:"saved_ids,omitempty"`
}

// Run executes the full pipeline for one search. Acquisition failures
// abort the run; an empty acquisition result is not an error, the later
// stages simply run on empty input. There are no orchestrator-level
// retries; per-item recovery lives inside the stages.
func (p *Pipeline) Run(ctx context.Context, q acquire.Query) (*Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	log := zap.L().With(
		zap.String("run_id", runID),
		zap.String("term", q.Term),
		zap.String("location", q.Location),
	)
	log.Info("pipeline: starting run")

	if _, err := p.store.CreateCampaign(ctx, q.Term+" / "+q.Location, q.Term, q.Location); err != nil {
		log.Warn("pipeline: create campaign failed", zap.Error(err))
	}

	// Stage 1: acquisition.
	start := time.Now()
	businesses, err := p.searcher.Search(ctx, q)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: acquisition")
	}
	p.snapshot(ctx, log, runID, "acquire", businesses)
	log.Info("pipeline: acquisition complete",
		zap.Int("discovered", len(businesses)),
		zap.Duration("took", time.Since(start)),
	)

	// Stage 2: enrichment. Each record enriches independently; the stage
	// never drops a record.
	start = time.Now()
	enriched := make([]model.EnrichedLead, 0, len(businesses))
	for _, b := range businesses {
		enriched = append(enriched, p.enricher.Enrich(ctx, b))
	}
	p.snapshot(ctx, log, runID, "enrich", enriched)
	log.Info("pipeline: enrichment complete",
		zap.Int("enriched", len(enriched)),
		zap.Duration("took", time.Since(start)),
	)

	// Stage 3: qualification.
	qualified := qualify.Classify(enriched)
	p.snapshot(ctx, log, runID, "qualify", qualified)

	// Persist the survivors. A failed save loses one row, not the run.
	result := &Result{
		RunID:      runID,
		Leads:      qualified,
		Discovered: len(businesses),
		Qualified:  len(qualified),
	}
	for _, lead := range qualified {
		id, err := p.store.SaveLead(ctx, lead, q.Term, q.Location)
		if err != nil {
			log.Warn("pipeline: save lead failed",
				zap.String("name", lead.Name),
				zap.Error(err),
			)
			continue
		}
		result.SavedIDs = append(result.SavedIDs, id)
	}

	log.Info("pipeline: run complete",
		zap.Int("discovered", result.Discovered),
		zap.Int("qualified", result.Qualified),
		zap.Int("saved", len(result.SavedIDs)),
	)
	return result, nil
}

// snapshot persists an intermediate stage payload, best-effort.
func (p *Pipeline) snapshot(ctx context.Context, log *zap.Logger, runID, stage string, payload any) {
	if err := p.store.SaveStageSnapshot(ctx, runID, stage, payload); err != nil {
		log.Warn("pipeline: stage snapshot failed",
			zap.String("stage", stage),
			zap.Error(err),
		)
	}
}
