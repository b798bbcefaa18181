// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/procurement-backend/internal/interfaces/http/middleware"
	"github.com/your-org/procurement-backend/internal/pkg/apperrors"
	"github.com/your-org/procurement-backend/internal/pkg/authz"
)

// currentActor pulls the authenticated actor from the request context
func currentActor(c *gin.Context) (authz.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
	}
	return actor, ok
}

// respondError maps an error's kind to the right HTTP status
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch apperrors.KindOf(err) {
	case apperrors.KindValidation, apperrors.KindState:
		status = http.StatusBadRequest
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindAuthorization:
		status = http.StatusForbidden
	case apperrors.KindConflict:
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
	})
}

// bindError reports a request body that failed binding
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}
