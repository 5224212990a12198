package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/robostock/catalog-ingest/internal/catalog"
	"github.com/robostock/catalog-ingest/internal/common"
	"github.com/robostock/catalog-ingest/internal/entity"
	"github.com/robostock/catalog-ingest/internal/export"
	"github.com/robostock/catalog-ingest/internal/llm"
	"github.com/robostock/catalog-ingest/internal/llm/openai"
	"github.com/robostock/catalog-ingest/internal/manifest"
	"github.com/robostock/catalog-ingest/internal/ocrclient"
	"github.com/robostock/catalog-ingest/internal/pipeline"
	repo "github.com/robostock/catalog-ingest/internal/repository"
	"github.com/robostock/catalog-ingest/internal/source"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		out     = flag.String("out", "", "optional XLSX catalog export path")
		urdfDir = flag.String("urdf-dir", "", "override URDF source directory")
	)
	flag.Parse()

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *urdfDir != "" {
		cfg.Ingest.URDFDir = *urdfDir
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Document store (failure here is fatal: no partial runs without it)
	client, db, err := repo.Open(ctx, repo.Config{
		URI:         cfg.Store.URI,
		Database:    cfg.Store.Database,
		DialTimeout: cfg.Store.DialTimeout,
	}, logger)
	if err != nil {
		printError("Error: document store connection failed: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close(ctx, client, logger)

	if err := repo.EnsureIndexes(ctx, db, logger); err != nil {
		printError("Error: ensuring indexes failed: %v\n", err)
		os.Exit(1)
	}

	// Reference data
	man, err := manifest.Load(cfg.Manifest.Path)
	if err != nil {
		printError("Error: loading manifest failed: %v\n", err)
		os.Exit(1)
	}
	logger.Info("manifest loaded", "path", cfg.Manifest.Path, "vendors", len(man.Vendors))

	// Reasoning service + matcher
	oaClient := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	matcher, err := llm.NewMatcher(oaClient, llm.DefaultRetryPolicy(), logger)
	if err != nil {
		printError("Error: building matcher failed: %v\n", err)
		os.Exit(1)
	}

	productsRepo := repo.NewProductRepository(db, logger)
	ingestionsRepo := repo.NewIngestionRepository(db, logger)
	merger := catalog.NewMerger(productsRepo, logger)

	// Collect sources: URDF directory always, OCR origin when configured
	urdfSrc := source.NewURDFSource(cfg.Ingest.URDFDir, logger)
	providers := map[entity.SourceKind]source.TextProvider{
		entity.SourceURDFExtract: urdfSrc,
	}

	var sources []entity.SourceDocument
	urdfDocs, err := urdfSrc.List(ctx)
	if err != nil {
		printError("Error: listing URDF sources failed: %v\n", err)
		os.Exit(1)
	}
	sources = append(sources, urdfDocs...)

	if cfg.OCR.BaseURL != "" {
		ocr := ocrclient.NewClient(ocrclient.Config{
			BaseURL:      cfg.OCR.BaseURL,
			PollInterval: cfg.OCR.PollInterval,
		}, logger)
		providers[entity.SourcePDFExtract] = ocr

		ocrDocs, err := ocr.List(ctx)
		if err != nil {
			printError("Error: listing OCR documents failed: %v\n", err)
			os.Exit(1)
		}
		sources = append(sources, ocrDocs...)
	} else {
		logger.Warn("OCR_BASE_URL not configured, PDF sources will be skipped")
	}

	logger.Info("starting ingestion run",
		"sources", len(sources),
		"batch_size", cfg.Ingest.BatchSize,
	)

	orch := pipeline.NewOrchestrator(logger, man, matcher, merger, ingestionsRepo, providers, cfg.Ingest.BatchSize)
	stats := orch.Run(ctx, sources)

	if *out != "" {
		exporter := export.NewService(productsRepo, logger)
		xlsx, err := exporter.ExportCatalogXLSX(ctx)
		if err != nil {
			printError("Error: exporting catalog failed: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
			printError("Error: writing %s failed: %v\n", *out, err)
			os.Exit(1)
		}
		logger.Info("catalog exported", "path", *out)
	}

	fmt.Printf("Ingestion run complete!\n")
	fmt.Printf("- Documents:          %d\n", stats.Documents)
	fmt.Printf("- Processed:          %d\n", stats.Processed)
	fmt.Printf("- Skipped:            %d\n", stats.Skipped)
	fmt.Printf("- Failed:             %d\n", stats.Failed)
	fmt.Printf("- Products matched:   %d\n", stats.Matched)
	fmt.Printf("- Inserted:           %d\n", stats.Inserted)
	fmt.Printf("- Updated:            %d\n", stats.Updated)
	fmt.Printf("- Unchanged:          %d\n", stats.Unchanged)
	fmt.Printf("- Candidate failures: %d\n", stats.CandidateFailures)
}
