package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/crawler-api/app/validation"
)

func respondValidation(c *gin.Context, errs validation.Errors) {
	c.JSON(http.StatusBadRequest, validationProblem{
		Title:  validationTitle,
		Status: http.StatusBadRequest,
		Errors: errs,
	})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, messageResponse{Message: message})
}

func respondUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, messageResponse{Message: message})
}

func respondInternal(c *gin.Context, operation string, err error) {
	slog.Error("Database error", "operation", operation, "path", c.Request.URL.Path, "error", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, messageResponse{Message: unexpectedMessage})
}
