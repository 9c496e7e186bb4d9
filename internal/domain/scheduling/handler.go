package scheduling

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medvault/medvault/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments/:id", h.GetAppointment)
	api.GET("/users/:id/appointments", h.ListByPatient)
	api.GET("/practitioners/:id/appointments", h.ListByPractitioner)

	write := api.Group("", auth.RequireRole("practitioner"))
	write.POST("/appointments", h.CreateAppointment)
	write.PUT("/appointments/:id", h.UpdateAppointment)
	write.PATCH("/appointments/:id/status", h.UpdateStatus)
	write.DELETE("/appointments/:id", h.DeleteAppointment)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// serviceError maps a service failure onto an HTTP error. Missing rows become
// 404, rejected input becomes 400, and everything else is a storage failure
// answered with a generic 500 so driver detail never reaches the body.
func serviceError(err error, notFound string) error {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Reason)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateAppointment(c.Request().Context(), &a); err != nil {
		return serviceError(err, "appointment not found")
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return serviceError(err, "appointment not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListByPatient(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListByPractitioner(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListByPractitioner(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.AppID = id
	if err := h.svc.UpdateAppointment(c.Request().Context(), &a); err != nil {
		return serviceError(err, "appointment not found")
	}
	return c.JSON(http.StatusOK, a)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status); err != nil {
		return serviceError(err, "appointment not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteAppointment(c.Request().Context(), id); err != nil {
		return serviceError(err, "appointment not found")
	}
	return c.NoContent(http.StatusNoContent)
}
