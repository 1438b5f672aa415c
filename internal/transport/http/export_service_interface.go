package http

import (
	"context"

	"github.com/g-result/uoden/internal/export"
	"github.com/g-result/uoden/internal/services"
)

// ExportServiceInterface defines the export operations the handler needs
type ExportServiceInterface interface {
	Run(ctx context.Context, window *export.Window) (*services.Result, error)
}
