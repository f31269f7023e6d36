package account

import (
	"context"

	domain "shoptrack/internal/domain/account"
)

// Store persists login accounts.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Save(ctx context.Context, a domain.Account) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Account, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter narrows List results. A zero Limit means no paging.
type ListFilter struct {
	Limit  int
	Offset int
	Role   string
}
