package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talentforge/candidate-os/internal/application/service"
	"github.com/talentforge/candidate-os/internal/domain/candidate"
	"github.com/talentforge/candidate-os/internal/domain/ingest"
	"github.com/talentforge/candidate-os/pkg/apperror"
	"github.com/talentforge/candidate-os/pkg/logger"
	"github.com/talentforge/candidate-os/pkg/retrier"
)

// Processor drives the per-record pipeline over a batch. Each record moves
// through normalize → enrich → merge → persist and is durably checkpointed
// the moment it reaches a terminal state. One record's failure never aborts
// the batch; losing the store does.
type Processor struct {
	store     ingest.ProfileStore
	enricher  service.Enricher
	locations service.LocationStandardizer
	reporter  ingest.Reporter
	logger    logger.Logger
	workers   int
	retry     retrier.Policy
	tracer    trace.Tracer
}

func NewProcessor(
	store ingest.ProfileStore,
	enricher service.Enricher,
	locations service.LocationStandardizer,
	reporter ingest.Reporter,
	log logger.Logger,
	workers int,
	retry retrier.Policy,
) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		store:     store,
		enricher:  enricher,
		locations: locations,
		reporter:  reporter,
		logger:    log,
		workers:   workers,
		retry:     retry,
		tracer:    otel.Tracer("candidate-os/ingest"),
	}
}

type outcome struct {
	id      string
	failure *ingest.RecordFailure
}

// Run processes every record in the batch and returns a report covering each
// input identifier exactly once. Records already persisted for this batch ID
// are skipped without touching the enricher, so resuming an interrupted
// batch is safe and a completed batch re-run is a no-op.
func (p *Processor) Run(ctx context.Context, batch ingest.Batch) (*ingest.BatchReport, error) {
	started := time.Now().UTC()
	log := p.logger.With(zap.String("batch_id", batch.ID), zap.Int("records", len(batch.Records)))
	log.Info("batch processing started")

	if err := p.store.Healthy(ctx); err != nil {
		return nil, apperror.NewUnavailable("store unreachable before batch start", err)
	}

	persisted, err := p.store.PersistedIDs(ctx, batch.ID)
	if err != nil {
		return nil, apperror.NewUnavailable("cannot load batch checkpoints", err)
	}

	results := make([]outcome, len(batch.Records))

	if p.workers == 1 {
		for i, rec := range batch.Records {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := p.processRecord(ctx, batch.ID, i, rec, persisted, results); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.workers)
		for i, rec := range batch.Records {
			g.Go(func() error {
				return p.processRecord(gctx, batch.ID, i, rec, persisted, results)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	report := &ingest.BatchReport{
		BatchID:    batch.ID,
		Persisted:  make([]string, 0, len(results)),
		Failed:     make([]ingest.RecordFailure, 0),
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
	}
	for _, res := range results {
		if res.failure != nil {
			report.Failed = append(report.Failed, *res.failure)
		} else {
			report.Persisted = append(report.Persisted, res.id)
		}
	}

	if p.reporter != nil {
		if err := p.reporter.PublishReport(ctx, report); err != nil {
			log.Error("failed to publish batch report", err)
		}
	}

	log.Info("batch processing finished",
		zap.Int("persisted", len(report.Persisted)),
		zap.Int("failed", len(report.Failed)))
	return report, nil
}

// processRecord takes one record to a terminal state. It returns a non-nil
// error only for batch-fatal conditions (store loss, cancellation); every
// per-record failure is absorbed into results.
func (p *Processor) processRecord(
	ctx context.Context,
	batchID string,
	idx int,
	raw candidate.RawRecord,
	persisted map[string]bool,
	results []outcome,
) error {
	id := raw.ID()
	if id == "" {
		id = fmt.Sprintf("record[%d]", idx)
	}
	if persisted[id] {
		results[idx] = outcome{id: id}
		return nil
	}

	ctx, span := p.tracer.Start(ctx, "ingest.record",
		trace.WithAttributes(attribute.String("candidate.id", id)))
	defer span.End()

	log := p.logger.With(zap.String("batch_id", batchID), zap.String("candidate_id", id))

	fail := func(step ingest.Step, cause error) {
		log.Warn("record failed", zap.String("step", string(step)), zap.Error(cause))
		f := &ingest.RecordFailure{ID: id, Step: step, Reason: cause.Error()}
		results[idx] = outcome{id: id, failure: f}
		if err := p.store.RecordFailure(ctx, batchID, *f); err != nil {
			log.Error("failed to checkpoint record failure", err)
		}
	}

	norm, err := Normalize(raw)
	if err != nil {
		fail(ingest.StepNormalizing, err)
		return nil
	}

	var enr *candidate.EnrichmentResult
	err = p.retry.Do(ctx, func() error {
		var enrichErr error
		enr, enrichErr = p.enricher.Enrich(ctx, norm)
		return enrichErr
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fail(ingest.StepEnriching, err)
		return nil
	}

	profile := Merge(raw, norm, enr)
	p.standardizeLocation(ctx, log, profile)

	err = p.retry.Do(ctx, func() error {
		return p.store.Save(ctx, profile, batchID)
	})
	if err != nil {
		if errors.Is(err, apperror.ErrUnavailable) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fail(ingest.StepPersisting, err)
		return nil
	}

	results[idx] = outcome{id: id}
	log.Debug("record persisted")
	return nil
}

// standardizeLocation is best effort: a standardizer failure downgrades to
// the raw location instead of failing the record.
func (p *Processor) standardizeLocation(ctx context.Context, log logger.Logger, profile *candidate.CanonicalProfile) {
	if p.locations == nil || profile.Location == "" {
		return
	}
	std, err := p.locations.Standardize(ctx, profile.Location)
	if err != nil {
		log.Warn("location standardization failed", zap.Error(err))
		return
	}
	if std != "" && std != service.LocationUnknown {
		profile.LocationNormalized = std
	}
}
