// Package pipeline drives the ingestion run: bounded fan-out over source
// documents, idempotency against already-ingested files, and per-document
// and per-candidate failure isolation.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/robostock/catalog-ingest/internal/catalog"
	"github.com/robostock/catalog-ingest/internal/entity"
	"github.com/robostock/catalog-ingest/internal/price"
	"github.com/robostock/catalog-ingest/internal/source"
)

// IngestionStore is the idempotency-marker port.
type IngestionStore interface {
	Exists(ctx context.Context, fileName string) (bool, error)
	Record(ctx context.Context, rec *entity.IngestionRecord) error
}

// Matcher is the product-matching port.
type Matcher interface {
	// Match returns the candidates plus the number of response elements it
	// dropped as invalid, which the run tally counts as candidate failures.
	Match(ctx context.Context, documentText string, m *entity.Manifest) ([]entity.CandidateProduct, int)
}

// Upserter is the dedup/merge port.
type Upserter interface {
	Upsert(ctx context.Context, c entity.CandidateProduct, prov entity.SourceRef) (catalog.Outcome, uuid.UUID, error)
}

// RunStats is the run-level tally. Every failure a run survives shows up in
// one of these counters; nothing is silently dropped.
type RunStats struct {
	Documents         int
	Processed         int
	Skipped           int
	Failed            int
	Matched           int
	Inserted          int
	Updated           int
	Unchanged         int
	CandidateFailures int
}

// Orchestrator coordinates one ingestion run.
type Orchestrator struct {
	logger     *slog.Logger
	manifest   *entity.Manifest
	matcher    Matcher
	merger     Upserter
	ingestions IngestionStore
	providers  map[entity.SourceKind]source.TextProvider
	groupSize  int
}

func NewOrchestrator(
	logger *slog.Logger,
	manifest *entity.Manifest,
	matcher Matcher,
	merger Upserter,
	ingestions IngestionStore,
	providers map[entity.SourceKind]source.TextProvider,
	groupSize int,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if groupSize <= 0 {
		groupSize = 3
	}
	return &Orchestrator{
		logger:     logger,
		manifest:   manifest,
		matcher:    matcher,
		merger:     merger,
		ingestions: ingestions,
		providers:  providers,
		groupSize:  groupSize,
	}
}

type docStatus int

const (
	statusProcessed docStatus = iota
	statusSkipped
	statusFailed
)

type docResult struct {
	status    docStatus
	matched   int
	inserted  int
	updated   int
	unchanged int
	candFail  int
}

// Run processes every source in fixed-size groups. All members of a group
// are dispatched concurrently and all outcomes awaited; one failing document
// never aborts its siblings or later groups. The returned tally covers the
// whole run.
func (o *Orchestrator) Run(ctx context.Context, sources []entity.SourceDocument) RunStats {
	start := time.Now()
	stats := RunStats{Documents: len(sources)}

	for gi := 0; gi < len(sources); gi += o.groupSize {
		end := gi + o.groupSize
		if end > len(sources) {
			end = len(sources)
		}
		group := sources[gi:end]
		results := make([]docResult, len(group))

		var g errgroup.Group
		for i := range group {
			g.Go(func() error {
				results[i] = o.processDocument(ctx, group[i])
				return nil
			})
		}
		_ = g.Wait()

		var gProcessed, gSkipped, gFailed int
		for _, r := range results {
			switch r.status {
			case statusProcessed:
				gProcessed++
			case statusSkipped:
				gSkipped++
			case statusFailed:
				gFailed++
			}
			stats.Matched += r.matched
			stats.Inserted += r.inserted
			stats.Updated += r.updated
			stats.Unchanged += r.unchanged
			stats.CandidateFailures += r.candFail
		}
		stats.Processed += gProcessed
		stats.Skipped += gSkipped
		stats.Failed += gFailed

		o.logger.Info("pipeline.group.done",
			"group", gi/o.groupSize,
			"size", len(group),
			"processed", gProcessed,
			"skipped", gSkipped,
			"failed", gFailed,
		)
	}

	o.logger.Info("pipeline.run.done",
		"documents", stats.Documents,
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"matched", stats.Matched,
		"inserted", stats.Inserted,
		"updated", stats.Updated,
		"candidate_failures", stats.CandidateFailures,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return stats
}

// processDocument is the per-document boundary: any failure here marks the
// document failed and the run moves on.
func (o *Orchestrator) processDocument(ctx context.Context, doc entity.SourceDocument) docResult {
	exists, err := o.ingestions.Exists(ctx, doc.FileName)
	if err != nil {
		o.logger.Error("pipeline.document.lookup_failed", "file", doc.FileName, "error", err)
		return docResult{status: statusFailed}
	}
	if exists {
		o.logger.Info("pipeline.document.skipped", "file", doc.FileName)
		return docResult{status: statusSkipped}
	}

	provider, ok := o.providers[doc.Kind]
	if !ok {
		o.logger.Error("pipeline.document.no_provider", "file", doc.FileName, "kind", doc.Kind)
		return docResult{status: statusFailed}
	}

	extracted, err := provider.FetchText(ctx, doc)
	if err != nil {
		o.logger.Error("pipeline.document.fetch_failed", "file", doc.FileName, "error", err)
		return docResult{status: statusFailed}
	}

	candidates, dropped := o.matcher.Match(ctx, extracted.FullText, o.manifest)

	res := docResult{status: statusProcessed, matched: len(candidates), candFail: dropped}
	for i, cand := range candidates {
		// fallback heuristic when the reasoning service supplied no price
		if cand.Price == nil {
			cand.Price = price.Extract(extracted.FullText, cand.Name)
		}

		prov := entity.SourceRef{
			Source:        doc.Kind,
			Collection:    "ingestions",
			SourceID:      doc.OriginKey,
			Page:          cand.Page,
			FileName:      doc.FileName,
			FilePath:      doc.FilePath,
			ComponentType: cand.ComponentType,
		}

		outcome, id, err := o.merger.Upsert(ctx, cand, prov)
		if err != nil {
			// candidate-level boundary: siblings still get processed
			o.logger.Error("pipeline.candidate.failed",
				"file", doc.FileName, "index", i, "name", cand.Name, "error", err)
			res.candFail++
			continue
		}
		switch outcome {
		case catalog.Inserted:
			res.inserted++
		case catalog.Updated:
			res.updated++
		case catalog.Unchanged:
			res.unchanged++
		}
		o.logger.Debug("pipeline.candidate.merged",
			"file", doc.FileName, "id", id, "outcome", string(outcome))
	}

	rec := &entity.IngestionRecord{
		FileName:             doc.FileName,
		SourceKey:            doc.OriginKey,
		Source:               doc.Kind,
		ExtractedText:        extracted.FullText,
		PageMap:              extracted.PageMap,
		MatchedProductsCount: len(candidates),
		CreatedAt:            time.Now().UTC(),
	}
	if err := o.ingestions.Record(ctx, rec); err != nil {
		o.logger.Error("pipeline.document.record_failed", "file", doc.FileName, "error", err)
		return docResult{status: statusFailed, matched: res.matched,
			inserted: res.inserted, updated: res.updated, unchanged: res.unchanged, candFail: res.candFail}
	}

	o.logger.Info("pipeline.document.done",
		"file", doc.FileName,
		"matched", res.matched,
		"inserted", res.inserted,
		"updated", res.updated,
		"candidate_failures", res.candFail,
	)
	return res
}
