package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/g-result/uoden/internal/errors"
	"github.com/g-result/uoden/internal/export"
)

// ExportRequest optionally overrides the default daily window. Both
// bounds must be supplied together.
type ExportRequest struct {
	WindowStart time.Time `json:"window_start" validate:"required"`
	WindowEnd   time.Time `json:"window_end" validate:"required,gtfield=WindowStart"`
}

// ExportHandler handles export trigger requests from the scheduler
type ExportHandler struct {
	service  ExportServiceInterface
	logger   *slog.Logger
	validate *validator.Validate
}

// NewExportHandler creates a new export handler
func NewExportHandler(service ExportServiceInterface, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		service:  service,
		logger:   logger.With(slog.String("handler", "export")),
		validate: validator.New(),
	}
}

// Routes returns the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/", h.RunExport)
	return r
}

// RunExport handles POST /api/v1/exports. An empty body applies the
// default window rule; a JSON body with both bounds overrides it.
func (h *ExportHandler) RunExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	window, err := h.parseWindow(r)
	if err != nil {
		apperrors.HandleError(w, r, err)
		return
	}

	result, err := h.service.Run(ctx, window)
	if err != nil {
		apperrors.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

func (h *ExportHandler) parseWindow(r *http.Request) (*export.Window, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read request body", err)
	}
	if len(body) == 0 {
		return nil, nil
	}

	var req ExportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, apperrors.NewValidationError("invalid JSON body", err)
	}
	if err := h.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, apperrors.NewValidationError("invalid export window", err).
				WithContext("field", verrs[0].Field())
		}
		return nil, apperrors.NewValidationError("invalid export window", err)
	}

	return &export.Window{Start: req.WindowStart, End: req.WindowEnd}, nil
}
