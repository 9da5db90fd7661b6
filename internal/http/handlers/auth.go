package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/repo/postgres"
	"github.com/geocoder89/bloghub/internal/service"
	"github.com/gin-gonic/gin"
)

type UserAuthenticator interface {
	Signup(ctx context.Context, req user.SignupRequest) (user.User, error)
	Login(ctx context.Context, req user.LoginRequest) (string, user.User, error)
}

type AuthHandler struct {
	users UserAuthenticator
}

func NewAuthHandler(users UserAuthenticator) *AuthHandler {
	return &AuthHandler{users: users}
}

func (h *AuthHandler) Signup(ctx *gin.Context) {
	var req user.SignupRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	u, err := h.users.Signup(cctx, req)

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrUsernameTaken):
			RespondConflict(ctx, "username_taken", "Username is already in use.")
		case errors.Is(err, service.ErrInvalidAdminToken):
			RespondError(ctx, http.StatusBadRequest, "invalid_admin_token", "Admin token is not valid.", nil)
		default:
			RespondInternal(ctx, "Could not create user")
		}
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	token, _, err := h.users.Login(cctx, req)

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrUserNotFound):
			RespondNotFound(ctx, "No account with that username.")
		case errors.Is(err, service.ErrInvalidCredentials):
			RespondUnAuthorized(ctx, "invalid_credentials", "Username or password is incorrect.")
		default:
			RespondInternal(ctx, "Could not log in")
		}
		return
	}

	// clients historically read the credential from the response header too
	ctx.Header("Authorization", "Bearer "+token)

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken": token,
	})
}
