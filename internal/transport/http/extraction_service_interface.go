package http

import (
	"context"

	"paygcli/internal/dataprocessing"
	"paygcli/internal/services"
	"paygcli/pkg/contracts/domain"
)

// ExtractionServiceInterface defines the extraction operations the API
// exposes
type ExtractionServiceInterface interface {
	Modes() []dataprocessing.ModeSpec
	Mode(name string) (dataprocessing.ModeSpec, error)
	ListCounters(ctx context.Context, mode domain.Mode, uploads []services.Upload) ([]string, error)
	Extract(ctx context.Context, req services.ExtractRequest) (*services.ExtractResponse, error)
}

var _ ExtractionServiceInterface = (*services.ExtractionService)(nil)
