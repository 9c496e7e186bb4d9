package clinical

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
	api.GET("/users/:id/vitals", h.ListVitalsByPatient)
	api.GET("/users/:id/medication", h.ListMedicationByPatient)
	api.GET("/users/:id/conditions", h.ListConditionsByPatient)

	write := api.Group("", auth.RequireRole("practitioner"))
	write.POST("/vitals", h.RecordVitals)
	write.DELETE("/vitals/:id", h.DeleteVitals)
	write.POST("/medication", h.PrescribeMedication)
	write.PUT("/medication/:id", h.UpdateMedication)
	write.DELETE("/medication/:id", h.DeleteMedication)
	write.POST("/conditions", h.DiagnoseCondition)
	write.DELETE("/conditions/:id", h.DeleteCondition)
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

// -- Vitals --

func (h *Handler) RecordVitals(c echo.Context) error {
	var v Vitals
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.RecordVitals(c.Request().Context(), &v); err != nil {
		return serviceError(err, "vitals not found")
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) ListVitalsByPatient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListVitalsByPatient(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
	if items == nil {
		items = []*Vitals{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) DeleteVitals(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteVitals(c.Request().Context(), id); err != nil {
		return serviceError(err, "vitals not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Medication --

func (h *Handler) PrescribeMedication(c echo.Context) error {
	var m Medication
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.PrescribeMedication(c.Request().Context(), &m); err != nil {
		return serviceError(err, "medication not found")
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) ListMedicationByPatient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListMedicationByPatient(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
	if items == nil {
		items = []*Medication{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateMedication(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var m Medication
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m.MedicationID = id
	if err := h.svc.UpdateMedication(c.Request().Context(), &m); err != nil {
		return serviceError(err, "medication not found")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteMedication(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteMedication(c.Request().Context(), id); err != nil {
		return serviceError(err, "medication not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Conditions --

func (h *Handler) DiagnoseCondition(c echo.Context) error {
	var cond Condition
	if err := c.Bind(&cond); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.DiagnoseCondition(c.Request().Context(), &cond); err != nil {
		return serviceError(err, "condition not found")
	}
	return c.JSON(http.StatusCreated, cond)
}

func (h *Handler) ListConditionsByPatient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListConditionsByPatient(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
	if items == nil {
		items = []*Condition{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) DeleteCondition(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteCondition(c.Request().Context(), id); err != nil {
		return serviceError(err, "condition not found")
	}
	return c.NoContent(http.StatusNoContent)
}
