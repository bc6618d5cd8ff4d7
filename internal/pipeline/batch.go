package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seiran-lab/domainscan/internal/model"
)

// BatchProcessor scans multiple targets concurrently. Each target gets
// its own execution, state, and pipeline; only the Store is shared.
//
// Design decision: a separate BatchProcessor rather than batch support
// inside Pipeline keeps the pipeline focused on one execution and
// leaves room for batch-level strategies (rate limiting, retries)
// without touching the scan logic.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline per target so no step
	// state leaks between scans.
	pipelineFactory func() *Pipeline

	// store receives every execution's findings.
	store Store

	// concurrency is the maximum number of concurrent scans.
	concurrency int

	logger *slog.Logger

	results []*model.Summary
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent scans.
// Non-positive values are ignored and the default of 3 applies.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor writing to store.
func NewBatchProcessor(pipelineFactory func() *Pipeline, store Store, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		store:           store,
		concurrency:     3,
		results:         make([]*model.Summary, 0),
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch scans the targets concurrently, bounded by the
// configured concurrency, and returns one summary per target in input
// order. A failed target yields a summary with ERROR status; it does
// not stop the other scans. The error return reports cancellation.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.Summary, error) {
	bp.logger.Info("starting batch scan",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	bp.results = make([]*model.Summary, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("scanning target",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			summary := bp.scanOne(ctx, target)

			bp.mu.Lock()
			bp.results[i] = summary
			bp.mu.Unlock()
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch scan complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)
	return bp.results, err
}

// scanOne runs the full pipeline for a single target and always returns
// a summary, even when persistence or a step failed.
func (bp *BatchProcessor) scanOne(ctx context.Context, target string) *model.Summary {
	exec := model.NewExecution(target)
	state := NewState(exec, bp.store)

	runErr := bp.runExecution(ctx, state)
	if runErr != nil {
		bp.logger.Warn("scan failed", "target", target, "reason", runErr)
		exec.Fail()
	} else {
		exec.Finish()
	}

	if err := bp.store.UpdateExecution(ctx, exec); err != nil {
		bp.logger.Error("failed to finalize execution", "target", target, "reason", err)
	}

	return &model.Summary{
		Execution:      exec,
		Domains:        len(state.Domains),
		NewEmails:      state.NewEmailCount(),
		NewCredentials: state.NewCredentialCount(),
		Metrics:        state.Metrics,
	}
}

// runExecution persists the execution and seed domain, then runs the
// pipeline. The seed row exists before any step so DNS can update its
// status even when subdomain discovery is disabled.
func (bp *BatchProcessor) runExecution(ctx context.Context, state *State) error {
	exec := state.Execution

	if err := bp.store.InsertExecution(ctx, exec); err != nil {
		return err
	}
	if err := bp.store.InsertDomain(ctx, exec.ID, exec.Target,
		model.TechniqueSubdomains, model.DomainStatusNotEvaluated); err != nil {
		return err
	}

	return bp.pipelineFactory().Execute(ctx, state)
}
