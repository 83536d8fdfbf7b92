package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/crawler-api/app/identity"
	"github.com/lysyi3m/crawler-api/app/models"
	"github.com/lysyi3m/crawler-api/app/validation"
)

func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Malformed request body: "+err.Error())
		return
	}

	resp, err := h.accounts.Register(c.Request.Context(), req)
	var errs validation.Errors
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.As(err, &errs):
		respondValidation(c, errs)
	case errors.Is(err, identity.ErrDuplicateEmail):
		respondMessage(c, http.StatusConflict, "Email is already registered.")
	case errors.Is(err, identity.ErrDuplicateUserName):
		respondMessage(c, http.StatusConflict, "User name is already taken.")
	default:
		respondInternal(c, "register", err)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Malformed request body: "+err.Error())
		return
	}

	resp, err := h.accounts.Login(c.Request.Context(), req)
	var errs validation.Errors
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.As(err, &errs):
		respondValidation(c, errs)
	case errors.Is(err, identity.ErrInvalidCredentials):
		respondMessage(c, http.StatusBadRequest, identity.ErrInvalidCredentials.Error())
	default:
		respondInternal(c, "login", err)
	}
}

func (h *Handler) Me(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		respondUnauthorized(c, "Authentication required")
		return
	}

	user, err := h.accounts.Profile(c.Request.Context(), principal.UserID)
	if errors.Is(err, identity.ErrUserNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		respondInternal(c, "me", err)
		return
	}

	c.JSON(http.StatusOK, user)
}
