package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-rate-configurator/internal/config"
	"github.com/iliyamo/hotel-rate-configurator/internal/middleware"
	"github.com/iliyamo/hotel-rate-configurator/internal/model"
	"github.com/iliyamo/hotel-rate-configurator/internal/repository"
	"github.com/iliyamo/hotel-rate-configurator/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg       config.Config
	Operators repository.OperatorRepository
}

func NewAuthHandler(cfg config.Config, ops repository.OperatorRepository) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Operators: ops}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // VIEWER | EDITOR | ADMIN
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type operatorPart struct {
	ID    uint64     `json:"id"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}
type authResp struct {
	Operator operatorPart `json:"operator"`
	Access   tokenPart    `json:"access"`
}

// Register creates an operator and returns an access token.  The very first
// operator of an empty deployment becomes ADMIN whatever role it asks for;
// after that only an ADMIN bearer may register operators.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Operators.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	role := model.ParseRole(req.Role)
	if n == 0 {
		role = model.RoleAdmin
	} else {
		// Parsed here rather than by JWTAuth so that bootstrap works
		// without a token.
		raw, ok := middleware.BearerToken(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
		}
		claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, raw)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}
		if model.ParseRole(claims.Role) != model.RoleAdmin {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}

	id, err := h.Operators.Create(ctx, req.Email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		case errors.Is(err, utils.ErrPasswordLength):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create operator failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, string(role), h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusCreated, authResp{
		Operator: operatorPart{ID: id, Email: req.Email, Role: role},
		Access:   tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Login verifies credentials and returns a fresh access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	op, err := h.Operators.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrOperatorNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(op.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, op.ID, string(op.Role), h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		Operator: operatorPart{ID: op.ID, Email: op.Email, Role: op.Role},
		Access:   tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Me returns the authenticated operator.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.OperatorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	op, err := h.Operators.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrOperatorNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown operator"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load operator failed"})
	}
	return c.JSON(http.StatusOK, operatorPart{ID: op.ID, Email: op.Email, Role: op.Role})
}
