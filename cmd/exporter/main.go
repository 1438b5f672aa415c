// Command exporter runs a single export from the command line, mainly
// for backfills and for testing mail configuration without the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/g-result/uoden/internal/config"
	"github.com/g-result/uoden/internal/export"
	"github.com/g-result/uoden/internal/infrastructure"
	"github.com/g-result/uoden/internal/mailer"
	"github.com/g-result/uoden/internal/services"
	"github.com/g-result/uoden/internal/store"
)

const timeLayout = "2006-01-02T15:04"

func main() {
	from := flag.String("from", "", "window start, e.g. 2024-07-01T15:00 (defaults to yesterday 15:00)")
	to := flag.String("to", "", "window end, e.g. 2024-07-02T09:00 (defaults to today 09:00)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	window, err := parseWindow(*from, *to, cfg.Location())
	if err != nil {
		logger.Error("invalid window flags", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	orderStore, err := store.New(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect order store", "error", err)
		os.Exit(1)
	}
	defer orderStore.Close()

	sender := mailer.New(cfg.Mail, logger)
	service := services.NewExportService(orderStore, sender, cfg, logger)

	result, err := service.Run(ctx, window)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	logger.Info("export complete",
		slog.String("filename", result.Filename),
		slog.Int("orders", result.Orders),
		slog.Int("columns", result.Columns),
		slog.Int("rows", result.Rows))
}

// parseWindow builds an explicit window from the flags. Both or neither
// must be given; neither means the default daily rule applies.
func parseWindow(from, to string, loc *time.Location) (*export.Window, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("-from and -to must be given together")
	}

	start, err := time.ParseInLocation(timeLayout, from, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid -from: %w", err)
	}
	end, err := time.ParseInLocation(timeLayout, to, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid -to: %w", err)
	}

	w := export.Window{Start: start, End: end}
	if !w.Valid() {
		return nil, fmt.Errorf("window end must be after start")
	}
	return &w, nil
}
