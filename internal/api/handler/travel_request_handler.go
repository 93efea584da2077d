package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agencia-oeste/viajes-api/internal/core/ports"
)

type TravelRequestHandler struct {
	service ports.TravelRequestService
}

func NewTravelRequestHandler(service ports.TravelRequestService) *TravelRequestHandler {
	return &TravelRequestHandler{service: service}
}

// Create registers a travel request owned by the caller.
//
// @Summary      Create a travel request
// @Tags         solicitudes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.TravelRequestInput  true  "Travel request"
// @Success      201   {object}  travelRequestResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/solicitudes [post]
func (h *TravelRequestHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var in ports.TravelRequestInput
	if err := bind(c, &in); err != nil {
		return err
	}

	created, err := h.service.Create(c.Request().Context(), in, id.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, travelRequestResponse{
		Message: "travel request registered successfully",
		Request: created,
	})
}

// List returns the requests visible to the caller.
//
// @Summary      List travel requests
// @Description  Clients only see their own requests. estado=todas disables the status filter.
// @Tags         solicitudes
// @Produce      json
// @Security     BearerAuth
// @Param        estado  query     string  false  "pendiente, en proceso, finalizada or todas"
// @Success      200     {object}  travelRequestListResponse
// @Failure      401     {object}  map[string]string
// @Router       /api/solicitudes [get]
func (h *TravelRequestHandler) List(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	res, err := h.service.List(c.Request().Context(), id.Email, c.QueryParam("estado"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, travelRequestListResponse{Requests: res.Items, Role: res.Role})
}

// Stats counts the caller's visible requests by status.
//
// @Summary      Travel request counters
// @Tags         solicitudes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statsResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/solicitudes/stats [get]
func (h *TravelRequestHandler) Stats(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	st, err := h.service.Stats(c.Request().Context(), id.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statsResponse{
		Total:      st.Total,
		Pending:    st.Pending,
		InProgress: st.InProgress,
		Finished:   st.Finished,
		Role:       st.Role,
	})
}

// NextID previews the id the next request will receive.
//
// @Summary      Next correlative id
// @Tags         solicitudes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  nextIDResponse
// @Router       /api/solicitudes/next-id [get]
func (h *TravelRequestHandler) NextID(c echo.Context) error {
	next, err := h.service.NextID(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nextIDResponse{ID: next})
}

// Get returns a single request.
//
// @Summary      Get a travel request
// @Tags         solicitudes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  travelRequestResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/solicitudes/{id} [get]
func (h *TravelRequestHandler) Get(c echo.Context) error {
	r, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, travelRequestResponse{Request: r})
}

// Update replaces the editable fields of a request.
//
// @Summary      Update a travel request
// @Tags         solicitudes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Request id"
// @Param        body  body      ports.TravelRequestInput  true  "Travel request"
// @Success      200   {object}  travelRequestResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/solicitudes/{id} [put]
func (h *TravelRequestHandler) Update(c echo.Context) error {
	var in ports.TravelRequestInput
	if err := bind(c, &in); err != nil {
		return err
	}

	updated, err := h.service.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, travelRequestResponse{
		Message: "travel request updated successfully",
		Request: updated,
	})
}

// Delete removes a request. Agents only.
//
// @Summary      Delete a travel request
// @Tags         solicitudes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/solicitudes/{id} [delete]
func (h *TravelRequestHandler) Delete(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), id.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "travel request deleted successfully"})
}

// Clients lists the distinct client names across all requests.
//
// @Summary      Client names
// @Tags         clientes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  clientsResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/clientes [get]
func (h *TravelRequestHandler) Clients(c echo.Context) error {
	names, err := h.service.ClientNames(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clientsResponse{Clients: names})
}
