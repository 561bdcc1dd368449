package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"visualjobs.local/internal/domain"
)

// SaveRun archives the snapshot summary and stage distribution.
func (s *Store) SaveRun(ctx context.Context, snap *domain.Snapshot) (string, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	id := uuid.NewString()
	sum := snap.Summary
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, fetched_at, mode, total, offers, response_rate, oa_rate,
			interview_rate, offer_rate, rejection_rate, acceptance_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		snap.FetchedAt.UTC(),
		string(snap.Mode),
		sum.Total,
		sum.Offers,
		sum.ResponseRate,
		sum.OARate,
		sum.InterviewRate,
		sum.OfferRate,
		sum.RejectionRate,
		sum.AcceptanceRate,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, sc := range snap.Distribution {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_stages (run_id, stage, count) VALUES (?, ?, ?)`,
			id, string(sc.Stage), sc.Count,
		); err != nil {
			return "", fmt.Errorf("insert run stage: %w", err)
		}
	}

	committed = true
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListRuns returns the most recent runs first, at most limit of them.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, fetched_at, mode, total, offers, response_rate, oa_rate,
			interview_rate, offer_rate, rejection_rate, acceptance_rate
		FROM runs
		ORDER BY fetched_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.Run
	byID := map[string]int{}
	for rows.Next() {
		var (
			r         domain.Run
			mode      string
			fetchedAt time.Time
		)
		if err := rows.Scan(
			&r.ID, &fetchedAt, &mode,
			&r.Summary.Total, &r.Summary.Offers,
			&r.Summary.ResponseRate, &r.Summary.OARate, &r.Summary.InterviewRate,
			&r.Summary.OfferRate, &r.Summary.RejectionRate, &r.Summary.AcceptanceRate,
		); err != nil {
			return nil, err
		}
		r.FetchedAt = fetchedAt.UTC()
		r.Mode = domain.AggregationMode(mode)
		r.Stages = map[domain.Stage]int{}
		byID[r.ID] = len(runs)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return runs, nil
	}

	stageRows, err := s.DB.QueryContext(ctx, `SELECT run_id, stage, count FROM run_stages`)
	if err != nil {
		return nil, err
	}
	defer stageRows.Close()
	for stageRows.Next() {
		var (
			runID, stage string
			n            int
		)
		if err := stageRows.Scan(&runID, &stage, &n); err != nil {
			return nil, err
		}
		if i, ok := byID[runID]; ok {
			runs[i].Stages[domain.Stage(stage)] = n
		}
	}
	return runs, stageRows.Err()
}
