package handler

import (
	"time"

	"github.com/agencia-oeste/viajes-api/internal/core/domain"
)

type messageResponse struct {
	Message string `json:"message"`
}

type credentialsRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type authResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    userSummary `json:"user"`
}

type profileResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	CreatedAt time.Time   `json:"createdAt"`
	Role      domain.Role `json:"rol"`
}

type travelRequestResponse struct {
	Message string                `json:"message,omitempty"`
	Request *domain.TravelRequest `json:"solicitud"`
}

type travelRequestListResponse struct {
	Requests []domain.TravelRequest `json:"solicitudes"`
	Role     domain.Role            `json:"rol"`
}

type statsResponse struct {
	Total      int         `json:"total"`
	Pending    int         `json:"pendientes"`
	InProgress int         `json:"enProceso"`
	Finished   int         `json:"finalizadas"`
	Role       domain.Role `json:"rol"`
}

type clientsResponse struct {
	Clients []string `json:"clientes"`
}

type nextIDResponse struct {
	ID string `json:"id"`
}
