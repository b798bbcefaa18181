// internal/interfaces/http/handlers/user_admin.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/domain/user"
	"github.com/your-org/procurement-backend/internal/interfaces/http/middleware"
	"github.com/your-org/procurement-backend/internal/pkg/authz"
	"gorm.io/gorm"
)

// UserAdminHandler handles user management endpoints
type UserAdminHandler struct {
	userService *user.Service
	config      *config.Config
}

// NewUserAdminHandler creates a new user admin handler
func NewUserAdminHandler(db *gorm.DB, cfg *config.Config) *UserAdminHandler {
	return &UserAdminHandler{
		userService: user.NewService(db, cfg),
		config:      cfg,
	}
}

// ListUsers returns users filtered by role
func (h *UserAdminHandler) ListUsers(c *gin.Context) {
	role := c.Query("role")
	activeOnly := c.Query("active") == "true"
	limit, offset := pagination(c)

	users, total, err := h.userService.List(role, activeOnly, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": users,
		"meta": gin.H{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// SetRole assigns a role to a user
func (h *UserAdminHandler) SetRole(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	userID, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.userService.SetRole(actor, userID, authz.Role(req.Role))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Role updated successfully",
		"data":    updated,
	})
}

// SetActive activates or deactivates an account
func (h *UserAdminHandler) SetActive(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	userID, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.userService.SetActive(actor, userID, *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Account status updated successfully",
		"data":    updated,
	})
}

// pathID parses a numeric path parameter
func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	return uint(id), err
}

// pagination parses limit/offset query parameters with sane defaults
func pagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
