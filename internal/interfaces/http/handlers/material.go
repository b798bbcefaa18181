// internal/interfaces/http/handlers/material.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/domain/material"
	"gorm.io/gorm"
)

// MaterialHandler handles material catalog endpoints
type MaterialHandler struct {
	materialService *material.Service
	config          *config.Config
}

// NewMaterialHandler creates a new material handler
func NewMaterialHandler(db *gorm.DB, cfg *config.Config) *MaterialHandler {
	return &MaterialHandler{
		materialService: material.NewService(db, cfg),
		config:          cfg,
	}
}

// Create adds a material to the catalog
func (h *MaterialHandler) Create(c *gin.Context) {
	var req material.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	mat, err := h.materialService.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Material created successfully",
		"data":    mat,
	})
}

// Get returns one catalog material
func (h *MaterialHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	mat, err := h.materialService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": mat,
	})
}

// List returns catalog materials with filters
func (h *MaterialHandler) List(c *gin.Context) {
	limit, offset := pagination(c)

	var categoryID *uint
	if raw := c.Query("category_id"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 32); err == nil {
			id := uint(parsed)
			categoryID = &id
		}
	}

	materials, total, err := h.materialService.List(
		c.Query("type"), c.Query("search"), categoryID,
		c.Query("active") == "true", limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": materials,
		"meta": gin.H{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// Update modifies catalog data
func (h *MaterialHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	var req material.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	mat, err := h.materialService.Update(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Material updated successfully",
		"data":    mat,
	})
}

// CreateCategory adds a material category
func (h *MaterialHandler) CreateCategory(c *gin.Context) {
	var cat material.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		bindError(c, err)
		return
	}

	created, err := h.materialService.CreateCategory(&cat)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Category created successfully",
		"data":    created,
	})
}

// ListCategories returns all material categories
func (h *MaterialHandler) ListCategories(c *gin.Context) {
	categories, err := h.materialService.ListCategories()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": categories,
	})
}
