package patient

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patientData", h.AllPatients)
	api.GET("/patientData/:id", h.PatientByID)
	api.GET("/patientData/email/:email", h.PatientByEmail)
}

func (h *Handler) AllPatients(c echo.Context) error {
	return h.serve(c, All(), true)
}

func (h *Handler) PatientByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return h.serve(c, ByID(id), false)
}

func (h *Handler) PatientByEmail(c echo.Context) error {
	return h.serve(c, ByEmail(c.Param("email")), false)
}

// serve runs one aggregation and writes the response: the full slice in list
// mode, the single record otherwise. Storage failures surface as a generic
// 500; the caller never sees driver details.
func (h *Handler) serve(c echo.Context, sel Selector, list bool) error {
	records, err := h.svc.Aggregate(c.Request().Context(), sel)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Patient not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
	if list {
		return c.JSON(http.StatusOK, records)
	}
	return c.JSON(http.StatusOK, records[0])
}
