// internal/interfaces/http/handlers/supplier.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/domain/supplier"
	"gorm.io/gorm"
)

// SupplierHandler handles supplier master endpoints
type SupplierHandler struct {
	supplierService *supplier.Service
	config          *config.Config
}

// NewSupplierHandler creates a new supplier handler
func NewSupplierHandler(db *gorm.DB, cfg *config.Config) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplier.NewService(db, cfg),
		config:          cfg,
	}
}

// Create registers a new supplier
func (h *SupplierHandler) Create(c *gin.Context) {
	var req supplier.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sup, err := h.supplierService.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Supplier created successfully",
		"data":    sup,
	})
}

// Get returns one supplier
func (h *SupplierHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	sup, err := h.supplierService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": sup,
	})
}

// List returns suppliers with filters
func (h *SupplierHandler) List(c *gin.Context) {
	limit, offset := pagination(c)

	suppliers, total, err := h.supplierService.List(
		c.Query("status"), c.Query("tier"), c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": suppliers,
		"meta": gin.H{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// Update modifies supplier master data
func (h *SupplierHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	var req supplier.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sup, err := h.supplierService.Update(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier updated successfully",
		"data":    sup,
	})
}

// SetStatus changes the supplier status
func (h *SupplierHandler) SetStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sup, err := h.supplierService.SetStatus(id, supplier.Status(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier status updated successfully",
		"data":    sup,
	})
}

// LinkMaterial associates a material with the supplier
func (h *SupplierHandler) LinkMaterial(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	var link supplier.SupplierMaterial
	if err := c.ShouldBindJSON(&link); err != nil {
		bindError(c, err)
		return
	}

	created, err := h.supplierService.LinkMaterial(id, &link)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Material linked successfully",
		"data":    created,
	})
}
