package jsonfile

import (
	"context"

	"github.com/agencia-oeste/viajes-api/internal/core/domain"
	"github.com/agencia-oeste/viajes-api/internal/core/ports"
)

type TravelRequestRepository struct {
	requests *Collection[domain.TravelRequest]
}

func (r *TravelRequestRepository) All(ctx context.Context) ([]domain.TravelRequest, error) {
	return r.requests.Load(ctx)
}

func (r *TravelRequestRepository) FindByID(ctx context.Context, id string) (*domain.TravelRequest, error) {
	all, err := r.requests.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, domain.ErrTravelRequestNotFound
}

func (r *TravelRequestRepository) Append(ctx context.Context, rec *domain.TravelRequest, assign ports.IDAssigner) error {
	return r.requests.Update(ctx, func(all []domain.TravelRequest) ([]domain.TravelRequest, error) {
		ids := make([]string, len(all))
		for i := range all {
			ids[i] = all[i].ID
		}
		rec.ID = assign(ids)
		return append(all, *rec), nil
	})
}

func (r *TravelRequestRepository) Update(ctx context.Context, id string, mutate ports.TravelRequestMutation) (*domain.TravelRequest, error) {
	var updated domain.TravelRequest
	err := r.requests.Update(ctx, func(all []domain.TravelRequest) ([]domain.TravelRequest, error) {
		for i := range all {
			if all[i].ID != id {
				continue
			}
			next, err := mutate(all[i])
			if err != nil {
				return nil, err
			}
			next.ID = id
			all[i] = next
			updated = next
			return all, nil
		}
		return nil, domain.ErrTravelRequestNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *TravelRequestRepository) Remove(ctx context.Context, id string) (bool, error) {
	removed := false
	err := r.requests.Update(ctx, func(all []domain.TravelRequest) ([]domain.TravelRequest, error) {
		for i := range all {
			if all[i].ID == id {
				removed = true
				return append(all[:i], all[i+1:]...), nil
			}
		}
		return nil, errSkipWrite
	})
	return removed, err
}
