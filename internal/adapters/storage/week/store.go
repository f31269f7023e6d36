package week

import (
	"context"

	domain "shoptrack/internal/domain/ledger"
)

// Store persists week period markers. The newest marker is the current
// accounting period; rollover appends a new one.
type Store interface {
	// Latest returns the current period marker, or
	// domain.ErrNoWeeks when tracking has not started.
	Latest(ctx context.Context) (domain.Week, error)
	Create(ctx context.Context, value domain.Week) error
	List(ctx context.Context) ([]domain.Week, error)
}
