package domain

import (
	"strconv"
	"time"
)

// TripType classifies the purpose of a trip.
type TripType string

const (
	TripBusiness TripType = "negocios"
	TripTourism  TripType = "turismo"
	TripOther    TripType = "otros"
)

// RequestStatus represents the processing state of a travel request.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pendiente"
	StatusInProgress RequestStatus = "en proceso"
	StatusFinished   RequestStatus = "finalizada"
)

// FirstRequestID is the correlative id handed out on an empty store.
const FirstRequestID = 1118

// TravelRequest is the core aggregate. JSON names are part of the public
// contract and of the on-disk format.
type TravelRequest struct {
	ID            string        `json:"id" bson:"_id"`
	DNI           string        `json:"dni" bson:"dni"`
	ClientName    string        `json:"nombreCliente" bson:"nombre_cliente"`
	Origin        string        `json:"origen" bson:"origen"`
	Destination   string        `json:"destino" bson:"destino"`
	TripType      TripType      `json:"tipoViaje" bson:"tipo_viaje"`
	DepartureDate string        `json:"fechaSalida" bson:"fecha_salida"`
	ReturnDate    string        `json:"fechaRegreso" bson:"fecha_regreso"`
	Status        RequestStatus `json:"estado" bson:"estado"`
	RegisteredAt  time.Time     `json:"fechaRegistro" bson:"fecha_registro"`
	UpdatedAt     *time.Time    `json:"fechaActualizacion,omitempty" bson:"fecha_actualizacion,omitempty"`
	OwnerEmail    string        `json:"usuarioEmail" bson:"usuario_email"`
}

// NextRequestID returns the id that follows the given ones: FirstRequestID
// when no numeric id exists, otherwise the numeric maximum plus one.
// Non-numeric ids are ignored.
func NextRequestID(ids []string) string {
	maxID, found := 0, false
	for _, raw := range ids {
		n, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		if !found || n > maxID {
			maxID, found = n, true
		}
	}
	if !found {
		return strconv.Itoa(FirstRequestID)
	}
	return strconv.Itoa(maxID + 1)
}
