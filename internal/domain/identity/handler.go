package identity

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medvault/medvault/internal/platform/auth"
	"github.com/medvault/medvault/pkg/pagination"
)

type Handler struct {
	svc *Service
	jwt auth.JWTConfig
}

func NewHandler(svc *Service, jwt auth.JWTConfig) *Handler {
	return &Handler{svc: svc, jwt: jwt}
}

// RegisterRoutes wires the identity endpoints. Login goes on the public group;
// everything else sits behind the authenticated API group.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/auth/login", h.Login)

	api.GET("/users", h.ListUsers)
	api.POST("/users", h.CreateUser)
	api.GET("/users/:id", h.GetUser)
	api.PUT("/users/:id", h.UpdateUser)
	api.PUT("/users/:id/name", h.UpdateUserName)
	api.DELETE("/users/:id", h.DeleteUser, auth.RequireRole("admin"))

	api.GET("/users/:id/address", h.GetAddress)
	api.PUT("/users/:id/address", h.UpdateAddress)
	api.GET("/users/:id/medical-aid", h.GetMedicalAid)
	api.PUT("/users/:id/medical-aid", h.UpdateMedicalAid)

	api.GET("/practitioners", h.ListPractitioners)
	api.GET("/practitioners/:id", h.GetPractitioner)

	write := api.Group("", auth.RequireRole("practitioner"))
	write.POST("/practitioners", h.CreatePractitioner)
	write.PUT("/practitioners/:id", h.UpdatePractitioner)
	write.DELETE("/practitioners/:id", h.DeletePractitioner)
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

// -- Users --

type createUserRequest struct {
	User
	Password string `json:"password"`
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateUser(c.Request().Context(), &req.User, req.Password); err != nil {
		return serviceError(err, "user not found")
	}
	return c.JSON(http.StatusCreated, req.User)
}

func (h *Handler) ListUsers(c echo.Context) error {
	items, err := h.svc.ListUsersWithAddresses(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
	if items == nil {
		items = []*UserWithAddress{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return serviceError(err, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var u User
	if err := c.Bind(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u.UserID = id
	if err := h.svc.UpdateUser(c.Request().Context(), &u); err != nil {
		return serviceError(err, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

type updateNameRequest struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

func (h *Handler) UpdateUserName(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateNameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateUserName(c.Request().Context(), id, req.Name, req.Surname); err != nil {
		return serviceError(err, "user not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteUser(c.Request().Context(), id); err != nil {
		return serviceError(err, "user not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Address --

func (h *Handler) GetAddress(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.GetAddress(c.Request().Context(), id)
	if err != nil {
		return serviceError(err, "address not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateAddress(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var a Address
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.UserID = id
	if err := h.svc.UpdateAddress(c.Request().Context(), &a); err != nil {
		return serviceError(err, "user not found")
	}
	return c.JSON(http.StatusOK, a)
}

// -- Medical aid --

func (h *Handler) GetMedicalAid(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	m, err := h.svc.GetMedicalAid(c.Request().Context(), id)
	if err != nil {
		return serviceError(err, "medical aid not found")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) UpdateMedicalAid(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var m MedicalAid
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m.UserID = id
	if err := h.svc.UpdateMedicalAid(c.Request().Context(), &m); err != nil {
		return serviceError(err, "user not found")
	}
	return c.JSON(http.StatusOK, m)
}

// -- Practitioners --

func (h *Handler) CreatePractitioner(c echo.Context) error {
	var p Practitioner
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePractitioner(c.Request().Context(), &p); err != nil {
		return serviceError(err, "user not found")
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPractitioner(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetPractitioner(c.Request().Context(), id)
	if err != nil {
		return serviceError(err, "practitioner not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPractitioners(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPractitioners(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePractitioner(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var p Practitioner
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.PractitionerID = id
	if err := h.svc.UpdatePractitioner(c.Request().Context(), &p); err != nil {
		return serviceError(err, "practitioner not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePractitioner(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeletePractitioner(c.Request().Context(), id); err != nil {
		return serviceError(err, "practitioner not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Login --

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string `json:"token"`
	UserID  int64  `json:"userid"`
	Role    string `json:"role"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, role, err := h.svc.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
	token, err := auth.IssueToken(h.jwt, strconv.FormatInt(u.UserID, 10), role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
	return c.JSON(http.StatusOK, loginResponse{
		Token:   token,
		UserID:  u.UserID,
		Role:    role,
		Name:    u.Name,
		Surname: u.Surname,
	})
}
