package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/g-result/uoden/internal/config"
	apperrors "github.com/g-result/uoden/internal/errors"
	"github.com/g-result/uoden/internal/export"
	"github.com/g-result/uoden/internal/mailer"
	"github.com/g-result/uoden/pkg/contracts/domain"
)

// Daily order-acceptance cutoffs: one export covers everything submitted
// from yesterday's close to this morning's open.
const (
	windowStartHour = 15 // yesterday 15:00
	windowEndHour   = 9  // today 09:00
)

// OrderSource is the read-only view of the order store the runner needs
type OrderSource interface {
	FetchWindow(ctx context.Context, start, end time.Time) ([]domain.Order, error)
	StockLevels(ctx context.Context) (map[string]int64, error)
}

// Result summarizes one export run
type Result struct {
	Sent        bool      `json:"sent"`
	Filename    string    `json:"filename"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Orders      int       `json:"orders"`
	Columns     int       `json:"columns"`
	Rows        int       `json:"rows"`
}

// ExportService orchestrates fetch → group → pivot → serialize → deliver
// for one window. It holds no mutable state between runs; callers needing
// mutual exclusion across overlapping triggers must provide it externally.
type ExportService struct {
	source     OrderSource
	sender     mailer.Sender
	grouper    *export.Grouper
	serializer *export.Serializer
	mailCfg    config.MailConfig
	exportCfg  config.ExportConfig
	location   *time.Location
	logger     *slog.Logger
	now        func() time.Time
}

// NewExportService creates the export runner
func NewExportService(source OrderSource, sender mailer.Sender, cfg *config.Config, logger *slog.Logger) *ExportService {
	var renderer export.FieldRenderer = export.RawFieldRenderer{}
	if cfg.Export.QuoteFields {
		renderer = export.RFC4180FieldRenderer{}
	}

	return &ExportService{
		source:     source,
		sender:     sender,
		grouper:    export.NewGrouper(logger),
		serializer: export.NewSerializer(renderer),
		mailCfg:    cfg.Mail,
		exportCfg:  cfg.Export,
		location:   cfg.Location(),
		logger:     logger.With(slog.String("component", "export_service")),
		now:        time.Now,
	}
}

// DefaultWindow computes [yesterday 15:00, today 09:00) around now
func DefaultWindow(now time.Time) export.Window {
	year, month, day := now.Date()
	end := time.Date(year, month, day, windowEndHour, 0, 0, 0, now.Location())
	start := time.Date(year, month, day, windowStartHour, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
	return export.Window{Start: start, End: end}
}

// Run executes one export. A nil window applies the default daily rule.
// An empty batch still produces and sends a header-only file so the
// recipient can tell "no orders" from "export never ran".
func (s *ExportService) Run(ctx context.Context, window *export.Window) (*Result, error) {
	w := DefaultWindow(s.now().In(s.location))
	if window != nil {
		w = *window
	}
	if !w.Valid() {
		return nil, apperrors.NewValidationError("window end must be after window start", nil).
			WithContext("window", w.String())
	}

	runID := uuid.New().String()
	logger := s.logger.With(slog.String("run_id", runID), slog.String("window", w.String()))
	started := s.now()
	logger.InfoContext(ctx, "export run started")

	var (
		orders []domain.Order
		stock  map[string]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.source.FetchWindow(gctx, w.Start, w.End)
		return err
	})
	g.Go(func() error {
		var err error
		stock, err = s.source.StockLevels(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		exportsTotal.WithLabelValues("fetch_failed").Inc()
		logger.ErrorContext(ctx, "export run failed", slog.String("stage", "fetch"), slog.String("error", err.Error()))
		return nil, s.wrapStageError(err, "fetch", w)
	}

	groups := s.grouper.Group(ctx, orders, stock)
	table := export.BuildPivot(groups)

	payload, filename, contentType, err := s.serialize(table, w)
	if err != nil {
		exportsTotal.WithLabelValues("serialize_failed").Inc()
		logger.ErrorContext(ctx, "export run failed", slog.String("stage", "serialize"), slog.String("error", err.Error()))
		return nil, apperrors.NewStorageError("report serialization failed", err).
			WithContext("window", w.String()).
			WithContext("stage", "serialize")
	}

	msg := mailer.Message{
		From:        s.mailCfg.From,
		FromName:    s.mailCfg.FromName,
		To:          s.mailCfg.To,
		Subject:     s.exportCfg.Subject,
		Body:        s.exportCfg.Body,
		Attachment:  payload,
		Filename:    filename,
		ContentType: contentType,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		exportsTotal.WithLabelValues("delivery_failed").Inc()
		logger.ErrorContext(ctx, "export run failed", slog.String("stage", "deliver"), slog.String("error", err.Error()))
		return nil, s.wrapStageError(err, "deliver", w)
	}

	exportsTotal.WithLabelValues("sent").Inc()
	exportDuration.Observe(s.now().Sub(started).Seconds())
	logger.InfoContext(ctx, "export run finished",
		slog.String("filename", filename),
		slog.Int("orders", len(orders)),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", table.RowCount),
		slog.Int("payload_bytes", len(payload)))

	return &Result{
		Sent:        true,
		Filename:    filename,
		WindowStart: w.Start,
		WindowEnd:   w.End,
		Orders:      len(orders),
		Columns:     len(table.Columns),
		Rows:        table.RowCount,
	}, nil
}

func (s *ExportService) serialize(table domain.PivotTable, w export.Window) ([]byte, string, string, error) {
	if s.exportCfg.Format == "xlsx" {
		payload, filename, err := s.serializer.SerializeXLSX(table, w)
		return payload, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	}
	payload, filename, err := s.serializer.Serialize(table, w)
	return payload, filename, "text/csv", err
}

// wrapStageError keeps the taxonomy of AppErrors from collaborators and
// always attaches the window bounds and failed stage for diagnosis.
func (s *ExportService) wrapStageError(err error, stage string, w export.Window) error {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		switch stage {
		case "deliver":
			appErr = apperrors.NewDeliveryFailedError("delivery collaborator failed", err)
		default:
			appErr = apperrors.NewSourceUnavailableError("order source failed", err)
		}
	}
	return appErr.
		WithContext("stage", stage).
		WithContext("window_start", w.Start.Format(time.RFC3339)).
		WithContext("window_end", w.End.Format(time.RFC3339))
}
