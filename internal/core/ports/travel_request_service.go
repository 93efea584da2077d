package ports

import (
	"context"

	"github.com/agencia-oeste/viajes-api/internal/core/domain"
)

// TravelRequestInput carries the client-editable fields of a travel request.
type TravelRequestInput struct {
	DNI           string `json:"dni"           validate:"required,dni"`
	ClientName    string `json:"nombreCliente" validate:"required,notblank"`
	Origin        string `json:"origen"        validate:"required,notblank"`
	Destination   string `json:"destino"       validate:"required,notblank"`
	TripType      string `json:"tipoViaje"     validate:"required,oneof=negocios turismo otros"`
	DepartureDate string `json:"fechaSalida"   validate:"required,isodatetime"`
	ReturnDate    string `json:"fechaRegreso"  validate:"required,isodatetime"`
	Status        string `json:"estado"        validate:"required,oneof=pendiente 'en proceso' finalizada"`
}

// ListResult is a role-filtered page of requests plus the caller's role.
type ListResult struct {
	Items []domain.TravelRequest
	Role  domain.Role
}

// Stats counts the requests visible to the caller by status.
type Stats struct {
	Total      int
	Pending    int
	InProgress int
	Finished   int
	Role       domain.Role
}

// TravelRequestService defines use-case operations for travel requests.
type TravelRequestService interface {
	Create(ctx context.Context, in TravelRequestInput, ownerEmail string) (*domain.TravelRequest, error)
	Get(ctx context.Context, id string) (*domain.TravelRequest, error)
	Update(ctx context.Context, id string, in TravelRequestInput) (*domain.TravelRequest, error)
	Delete(ctx context.Context, id, callerEmail string) error
	List(ctx context.Context, callerEmail, status string) (*ListResult, error)
	Stats(ctx context.Context, callerEmail string) (*Stats, error)
	ClientNames(ctx context.Context) ([]string, error)
	NextID(ctx context.Context) (string, error)
}
