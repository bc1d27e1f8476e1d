package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"underwriting-backend/internal/domain/apperr"
	"underwriting-backend/internal/domain/user"
	useruc "underwriting-backend/internal/usecase/user"
)

// UserHandler covers signup/login and admin user management.
type UserHandler struct{ uc *useruc.Usecase }

func NewUserHandler(uc *useruc.Usecase) *UserHandler { return &UserHandler{uc: uc} }

type signupReq struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func (r signupReq) input() useruc.SignupInput {
	return useruc.SignupInput{Username: r.Username, Password: r.Password, Name: r.Name, Email: r.Email}
}

func (h *UserHandler) Signup(c echo.Context) error {
	var req signupReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	u, err := h.uc.Signup(c.Request().Context(), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *UserHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	s, err := h.uc.Login(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, apperr.ErrForbidden) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: apperr.MessageOf(err)})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *UserHandler) Me(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"username": actor.ID, "role": string(actor.Role)})
}

func (h *UserHandler) List(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	users, err := h.uc.ListUsers(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

type createUserReq struct {
	signupReq
	Role string `json:"role" validate:"required,role"`
}

func (h *UserHandler) Create(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var req createUserReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	u, err := h.uc.CreateUser(c.Request().Context(), actor, useruc.CreateInput{
		SignupInput: req.input(),
		Role:        user.Role(req.Role),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

type changeRoleReq struct {
	Role string `json:"role" validate:"required,role"`
}

func (h *UserHandler) ChangeRole(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var req changeRoleReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	u, err := h.uc.ChangeRole(c.Request().Context(), actor, c.Param("username"), user.Role(req.Role))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}
