package ports

import (
	"context"

	"github.com/agencia-oeste/viajes-api/internal/core/domain"
)

// IDAssigner picks the id of a new record given every id currently stored.
type IDAssigner func(existing []string) string

// TravelRequestMutation rewrites a stored record. It runs against the latest
// stored version; returning an error aborts the update.
type TravelRequestMutation func(current domain.TravelRequest) (domain.TravelRequest, error)

// TravelRequestRepository defines the request store.
type TravelRequestRepository interface {
	// All returns every record in insertion order.
	All(ctx context.Context) ([]domain.TravelRequest, error)
	FindByID(ctx context.Context, id string) (*domain.TravelRequest, error)
	// Append assigns the id through assign and stores the record in one
	// indivisible step, so concurrent appends never share an id.
	Append(ctx context.Context, r *domain.TravelRequest, assign IDAssigner) error
	Update(ctx context.Context, id string, mutate TravelRequestMutation) (*domain.TravelRequest, error)
	Remove(ctx context.Context, id string) (bool, error)
}
