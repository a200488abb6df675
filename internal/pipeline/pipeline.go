// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github-rank-tracker/internal/model"
)

// Fetcher is the slice of the GitHub client the pipeline depends on.
type Fetcher interface {
	TopRepositories(ctx context.Context, n int) ([]model.SnapshotEntry, error)
	CommitActivity(ctx context.Context, fullName string, windowDays int) ([]model.ActivityRecord, error)
}

// Gateway is the slice of the persistence store the pipeline depends on.
type Gateway interface {
	EnsureSchema(ctx context.Context) error
	RankStates(ctx context.Context) (map[string]model.RankState, error)
	ApplyRanking(ctx context.Context, directives []model.RankingDirective) error
	ReplaceActivityWindow(ctx context.Context, records []model.ActivityRecord) error
}

// Runner drives one ingestion cycle: fetch ranking, fan out activity fetches,
// ensure schema, reconcile and persist ranking, replace the activity window.
// Steps run strictly in that order; the first failure aborts the cycle.
type Runner struct {
	fetcher     Fetcher
	gateway     Gateway
	logger      *slog.Logger
	topN        int
	windowDays  int
	concurrency int
}

// NewRunner creates a Runner. concurrency bounds the activity fan-out.
func NewRunner(fetcher Fetcher, gateway Gateway, logger *slog.Logger, topN, windowDays, concurrency int) *Runner {
	return &Runner{
		fetcher:     fetcher,
		gateway:     gateway,
		logger:      logger,
		topN:        topN,
		windowDays:  windowDays,
		concurrency: concurrency,
	}
}

// Run executes a single ingestion cycle. There is no retry; a failed cycle
// leaves whatever was already committed and the next invocation starts fresh.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("Fetching repository ranking", "top_n", r.topN)
	snapshot, err := r.fetcher.TopRepositories(ctx, r.topN)
	if err != nil {
		return fmt.Errorf("fetch ranking: %w", err)
	}
	r.logger.Info("Ranking snapshot fetched", "repositories", len(snapshot))

	activity, err := r.fetchActivity(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("fetch activity: %w", err)
	}
	r.logger.Info("Commit activity collected", "rows", len(activity))

	if err := r.gateway.EnsureSchema(ctx); err != nil {
		return err
	}

	states, err := r.gateway.RankStates(ctx)
	if err != nil {
		return fmt.Errorf("read persisted rank states: %w", err)
	}

	directives := Reconcile(snapshot, states)
	if err := r.gateway.ApplyRanking(ctx, directives); err != nil {
		return fmt.Errorf("persist ranking: %w", err)
	}
	r.logger.Info("Ranking persisted", "directives", len(directives))

	if err := r.gateway.ReplaceActivityWindow(ctx, activity); err != nil {
		return err
	}
	r.logger.Info("Activity window replaced", "rows", len(activity))

	return nil
}

// fetchActivity issues one CommitActivity call per snapshot entry, at most
// concurrency in flight. Any single failure cancels the rest and fails the
// whole fan-out; there is no partial-results mode.
func (r *Runner) fetchActivity(ctx context.Context, snapshot []model.SnapshotEntry) ([]model.ActivityRecord, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	results := make([][]model.ActivityRecord, len(snapshot))
	for i, entry := range snapshot {
		g.Go(func() error {
			records, err := r.fetcher.CommitActivity(gctx, entry.FullName, r.windowDays)
			if err != nil {
				return fmt.Errorf("activity for %s: %w", entry.FullName, err)
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.ActivityRecord
	for _, records := range results {
		all = append(all, records...)
	}
	return all, nil
}
