// Package pipeline turns normalized application records into the immutable
// snapshot the dashboard renders: stage classification, flow aggregation and
// summary rates.
package pipeline

import (
	"context"
	"fmt"
	"time"

	gnt "github.com/dstotijn/go-notion"
	"go.uber.org/zap"

	"visualjobs.local/internal/domain"
)

// Build classifies records and derives edges, details and rates for mode.
func Build(records []domain.ApplicationRecord, mode domain.AggregationMode, fetchedAt time.Time) (*domain.Snapshot, error) {
	classified := ClassifyAll(records)

	flow, err := Aggregate(mode, classified)
	if err != nil {
		return nil, err
	}

	return &domain.Snapshot{
		FetchedAt:    fetchedAt,
		Mode:         mode,
		Records:      classified,
		Nodes:        flow.Nodes,
		Edges:        flow.Edges,
		Details:      flow.Details,
		Summary:      Summarize(classified),
		Distribution: Distribution(classified),
	}, nil
}

// Fetcher returns every raw page of the tracker database.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]gnt.Page, error)
}

// Normalizer maps raw pages onto records.
type Normalizer interface {
	NormalizeAll(pages []gnt.Page) []domain.ApplicationRecord
}

// Run executes fetch, normalize, classify and aggregate once. Any fetch
// error aborts the run.
func Run(ctx context.Context, f Fetcher, n Normalizer, mode domain.AggregationMode, log *zap.Logger) (*domain.Snapshot, error) {
	start := time.Now()
	pages, err := f.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	log.Info("records fetched", zap.Int("count", len(pages)), zap.Duration("took", time.Since(start)))

	snap, err := Build(n.NormalizeAll(pages), mode, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	log.Info("snapshot built",
		zap.String("mode", string(mode)),
		zap.Int("nodes", len(snap.Nodes)),
		zap.Int("edges", len(snap.Edges)),
	)
	return snap, nil
}
