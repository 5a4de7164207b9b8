package ports

import (
	"context"
	"route-dashboard/internal/domain"
)

// Optimizer is the boundary to the external route computation service.
type Optimizer interface {
	// Submit the parameters and return the complete result snapshot.
	Optimize(ctx context.Context, req domain.OptimizationRequest) (*domain.OptimizationResult, error)
}
