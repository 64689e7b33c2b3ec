package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crudgrid/internal/auth"
	"crudgrid/internal/demo"
	"crudgrid/internal/http/v1/dto"
	"crudgrid/internal/storage/postgres"
	"crudgrid/pkg/apperror"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	db  postgres.Querier
	jwt *auth.JWTService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, db postgres.Querier, jwt *auth.JWTService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		db:          db,
		jwt:         jwt,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	account, err := demo.FindAccount(ctx, h.db, req.Username)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	if account == nil || !account.Enabled || !account.CheckPassword(req.Password) {
		h.Error(c, apperror.NewUnauthorized("invalid credentials"))
		return
	}

	token, expiresAt, err := h.jwt.GenerateAccessToken(
		account.ID.String(), account.Email, []string{account.Role}, account.IsAdmin())
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Username:    account.Username,
	})
}
