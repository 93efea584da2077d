package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/agencia-oeste/viajes-api/internal/core/domain"
	"github.com/agencia-oeste/viajes-api/internal/core/ports"
	"github.com/agencia-oeste/viajes-api/internal/core/validation"
	"github.com/agencia-oeste/viajes-api/internal/pkg/metrics"
)

// AllStatuses is the list filter value meaning "no status filter".
const AllStatuses = "todas"

type TravelRequestService struct {
	repo   ports.TravelRequestRepository
	roles  ports.RoleResolver
	logger zerolog.Logger
	now    func() time.Time
}

func NewTravelRequestService(repo ports.TravelRequestRepository, roles ports.RoleResolver, logger zerolog.Logger) *TravelRequestService {
	return &TravelRequestService{repo: repo, roles: roles, logger: logger, now: time.Now}
}

func (s *TravelRequestService) Create(ctx context.Context, in ports.TravelRequestInput, ownerEmail string) (*domain.TravelRequest, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	r := &domain.TravelRequest{
		OwnerEmail:   ownerEmail,
		RegisteredAt: s.timestamp(),
	}
	applyInput(r, in)

	if err := s.repo.Append(ctx, r, domain.NextRequestID); err != nil {
		return nil, fmt.Errorf("store travel request: %w", err)
	}

	metrics.TravelRequestsCreatedTotal.WithLabelValues(string(r.TripType)).Inc()
	s.logger.Info().Str("id", r.ID).Str("owner", ownerEmail).Msg("travel request created")
	return r, nil
}

func (s *TravelRequestService) Get(ctx context.Context, id string) (*domain.TravelRequest, error) {
	return s.repo.FindByID(ctx, id)
}

// Update replaces the client-editable fields. The id, owner and registration
// timestamp of the stored record are preserved.
func (s *TravelRequestService) Update(ctx context.Context, id string, in ports.TravelRequestInput) (*domain.TravelRequest, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	updatedAt := s.timestamp()
	updated, err := s.repo.Update(ctx, id, func(current domain.TravelRequest) (domain.TravelRequest, error) {
		applyInput(&current, in)
		current.UpdatedAt = &updatedAt
		return current, nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TravelRequestsUpdatedTotal.WithLabelValues(string(updated.Status)).Inc()
	s.logger.Info().Str("id", id).Str("estado", string(updated.Status)).Msg("travel request updated")
	return updated, nil
}

// Delete removes a request. Only agents may delete.
func (s *TravelRequestService) Delete(ctx context.Context, id, callerEmail string) error {
	if s.roles.RoleOf(callerEmail) != domain.RoleAgent {
		return domain.ErrForbidden
	}

	removed, err := s.repo.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("remove travel request: %w", err)
	}
	if !removed {
		return domain.ErrTravelRequestNotFound
	}

	metrics.TravelRequestsDeletedTotal.Inc()
	s.logger.Info().Str("id", id).Str("by", callerEmail).Msg("travel request deleted")
	return nil
}

// List returns the requests visible to the caller, optionally filtered by
// status. An empty status or AllStatuses disables the filter.
func (s *TravelRequestService) List(ctx context.Context, callerEmail, status string) (*ports.ListResult, error) {
	role := s.roles.RoleOf(callerEmail)
	visible, err := s.visible(ctx, callerEmail, role)
	if err != nil {
		return nil, err
	}

	items := visible
	if !isAllStatuses(status) {
		items = make([]domain.TravelRequest, 0, len(visible))
		for _, r := range visible {
			if string(r.Status) == status {
				items = append(items, r)
			}
		}
	}
	return &ports.ListResult{Items: items, Role: role}, nil
}

// Stats counts the caller's visible requests by status.
func (s *TravelRequestService) Stats(ctx context.Context, callerEmail string) (*ports.Stats, error) {
	role := s.roles.RoleOf(callerEmail)
	visible, err := s.visible(ctx, callerEmail, role)
	if err != nil {
		return nil, err
	}

	st := &ports.Stats{Total: len(visible), Role: role}
	for _, r := range visible {
		switch r.Status {
		case domain.StatusPending:
			st.Pending++
		case domain.StatusInProgress:
			st.InProgress++
		case domain.StatusFinished:
			st.Finished++
		}
	}
	return st, nil
}

// ClientNames returns the distinct client names across every request, in
// byte-wise ascending order.
func (s *TravelRequestService) ClientNames(ctx context.Context) ([]string, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load travel requests: %w", err)
	}

	seen := make(map[string]struct{}, len(all))
	names := make([]string, 0, len(all))
	for _, r := range all {
		if _, ok := seen[r.ClientName]; ok {
			continue
		}
		seen[r.ClientName] = struct{}{}
		names = append(names, r.ClientName)
	}
	sort.Strings(names)
	return names, nil
}

// NextID reports the id the next created request would receive.
func (s *TravelRequestService) NextID(ctx context.Context) (string, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return "", fmt.Errorf("load travel requests: %w", err)
	}
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID
	}
	return domain.NextRequestID(ids), nil
}

func (s *TravelRequestService) visible(ctx context.Context, callerEmail string, role domain.Role) ([]domain.TravelRequest, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load travel requests: %w", err)
	}
	if role == domain.RoleAgent {
		if all == nil {
			all = []domain.TravelRequest{}
		}
		return all, nil
	}

	own := make([]domain.TravelRequest, 0)
	for _, r := range all {
		if r.OwnerEmail == callerEmail {
			own = append(own, r)
		}
	}
	return own, nil
}

// timestamp is UTC with millisecond precision so every store round-trips it.
func (s *TravelRequestService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func validateInput(in ports.TravelRequestInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	departure, _ := validation.ParseDateTime(in.DepartureDate)
	ret, _ := validation.ParseDateTime(in.ReturnDate)
	if !ret.After(departure) {
		return domain.NewValidationError("fechaRegreso must be after fechaSalida")
	}
	return nil
}

func applyInput(r *domain.TravelRequest, in ports.TravelRequestInput) {
	r.DNI = in.DNI
	r.ClientName = in.ClientName
	r.Origin = in.Origin
	r.Destination = in.Destination
	r.TripType = domain.TripType(in.TripType)
	r.DepartureDate = in.DepartureDate
	r.ReturnDate = in.ReturnDate
	r.Status = domain.RequestStatus(in.Status)
}

func isAllStatuses(status string) bool {
	return status == "" || status == AllStatuses || status == "all"
}
