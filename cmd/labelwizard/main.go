// labelwizard drives the label purchase flow from the command line:
// upload a CSV, watch the import settle, review the aggregate counts,
// assign the cheapest service to every ready shipment, and purchase.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/elvongray/shipping-labels/internal/aggregate"
	"github.com/elvongray/shipping-labels/internal/api"
	"github.com/elvongray/shipping-labels/internal/config"
	"github.com/elvongray/shipping-labels/internal/domain"
	"github.com/elvongray/shipping-labels/internal/logger"
	"github.com/elvongray/shipping-labels/internal/orchestrator"
	"github.com/elvongray/shipping-labels/internal/readmodel"
	"github.com/elvongray/shipping-labels/internal/selection"
	"github.com/elvongray/shipping-labels/internal/validator"
	"github.com/elvongray/shipping-labels/internal/wizard"
)

func main() {
	var (
		file        = flag.String("file", "", "order CSV to upload")
		labelFormat = flag.String("format", domain.LabelFormatLetter, "label format: LETTER or LABEL_4X6")
		agreeTerms  = flag.Bool("agree-terms", false, "accept the carrier terms and purchase labels")
		timeout     = flag.Duration("timeout", 10*time.Minute, "overall deadline for the flow")
	)
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration",
			slog.String("error", err.Error()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, cfg, *file, *labelFormat, *agreeTerms); err != nil {
		logger.Fatal("Label flow failed",
			slog.String("error", err.Error()))
	}
}

func run(ctx context.Context, cfg *config.Config, path, labelFormat string, agreeTerms bool) error {
	client := api.NewClient(cfg.APIBaseURL)
	nav := wizard.NewNavigator()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open order file: %w", err)
	}
	defer f.Close()

	job, err := client.UploadImport(ctx, filepath.Base(path), f)
	if err != nil {
		return fmt.Errorf("upload import: %w", err)
	}
	logger.Info("Import created",
		slog.String("import_job_id", job.ID),
		slog.Int("rows", job.ProgressTotal))

	state := wizard.State{ImportID: job.ID}
	if err := nav.Advance(state); err != nil {
		return err
	}

	watcher := readmodel.NewJobWatcher(client, job.ID, cfg.JobPollInterval)
	watcher.Start(ctx)
	defer watcher.Close()

	list := readmodel.NewShipmentList(client, job.ID,
		readmodel.WithPageSize(cfg.DefaultPageSize),
		readmodel.WithPollInterval(cfg.ListPollInterval),
		readmodel.WithSearchDebounce(cfg.SearchDebounce),
		readmodel.WithActive(func() bool { return !watcher.Settled() }))
	list.Start(ctx)
	defer list.Close()

	if err := waitForImport(ctx, watcher); err != nil {
		return err
	}

	if err := list.Refresh(ctx); err != nil {
		return fmt.Errorf("load shipments: %w", err)
	}

	selected := selection.NewStore()
	orch := orchestrator.New(client, job.ID, validator.NewValidator(),
		orchestrator.WithShipmentsChangedHook(func() {
			list.Invalidate(context.Background())
		}))

	state.Job, _ = watcher.Snapshot()
	state.Summary = summarize(watcher, list)
	printSummary(state.Summary)

	if err := nav.Advance(state); err != nil {
		return err
	}

	for _, s := range list.Snapshot().Shipments {
		if s.ValidationStatus == domain.ValidationReady && !s.HasService() {
			selected.Add(s.ID)
		}
	}
	if selected.Count() > 0 {
		logger.Info("Assigning cheapest services",
			slog.Int("shipments", selected.Count()))
		if err := orch.AssignCheapestServices(ctx, selected.SelectedIDs()); err != nil {
			return fmt.Errorf("assign services: %w", err)
		}
		selected.Clear()

		job, err := client.GetImport(ctx, state.ImportID)
		if err != nil {
			return fmt.Errorf("refresh job: %w", err)
		}
		state.Job = job
		state.Summary = aggregate.Compute(job, list.Snapshot().Shipments)
	}

	if err := nav.Advance(state); err != nil {
		return err
	}

	if !agreeTerms {
		logger.Info("Stopping before purchase, rerun with -agree-terms to buy labels",
			slog.Int("purchasable", state.Summary.PurchasableCount),
			slog.Int("total_cents", state.Summary.TotalCents))
		return nil
	}

	result, err := orch.PurchaseLabels(ctx, labelFormat, true)
	if err != nil {
		return fmt.Errorf("purchase labels: %w", err)
	}
	if err := nav.Advance(state); err != nil {
		return err
	}

	logger.Info("Purchase complete",
		slog.String("purchase_id", result.PurchaseID),
		slog.Int("purchased", result.PurchasedCount),
		slog.Int("skipped", result.SkippedCount),
		slog.String("labels", result.LabelDownloadURL))
	return nil
}

// waitForImport blocks until the job settles, logging progress on the
// way, and fails if the import itself failed.
func waitForImport(ctx context.Context, watcher *readmodel.JobWatcher) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			job, pollErr := watcher.Snapshot()
			if pollErr != nil {
				logger.Warn("Job poll failed",
					slog.String("error", pollErr.Error()))
				continue
			}
			if job != nil {
				logger.Info("Import progress",
					slog.String("status", string(job.Status)),
					slog.Int("percent", aggregate.ProgressPercent(job)))
			}
		case <-watcher.Done():
			job, _ := watcher.Snapshot()
			if job.Status == domain.ImportStatusFailed {
				summary := "unknown error"
				if job.ErrorSummary != nil {
					summary = *job.ErrorSummary
				}
				return fmt.Errorf("import failed: %s", summary)
			}
			return nil
		}
	}
}

func summarize(watcher *readmodel.JobWatcher, list *readmodel.ShipmentList) aggregate.Summary {
	job, _ := watcher.Snapshot()
	return aggregate.Compute(job, list.Snapshot().Shipments)
}

func printSummary(s aggregate.Summary) {
	logger.Info("Import review",
		slog.Int("ready", s.ReadyCount),
		slog.Int("needs_info", s.NeedsInfoCount),
		slog.Int("invalid", s.InvalidCount),
		slog.Int("missing_service", s.MissingServiceCount),
		slog.Int("purchasable", s.PurchasableCount))
}
