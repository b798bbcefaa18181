// internal/interfaces/http/handlers/material_instance.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/domain/materialinstance"
	"github.com/your-org/procurement-backend/internal/pkg/events"
	"gorm.io/gorm"
)

// MaterialInstanceHandler handles material instance and allocation endpoints
type MaterialInstanceHandler struct {
	instanceService *materialinstance.Service
	config          *config.Config
}

// NewMaterialInstanceHandler creates a new material instance handler
func NewMaterialInstanceHandler(db *gorm.DB, cfg *config.Config, publisher events.Publisher) *MaterialInstanceHandler {
	return &MaterialInstanceHandler{
		instanceService: materialinstance.NewService(db, cfg, publisher),
		config:          cfg,
	}
}

// Get returns one material instance with allocations and history
func (h *MaterialInstanceHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	mi, err := h.instanceService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": mi,
	})
}

// GetByItemNumber looks a material instance up by its item number
func (h *MaterialInstanceHandler) GetByItemNumber(c *gin.Context) {
	mi, err := h.instanceService.GetByItemNumber(c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": mi,
	})
}

// List returns material instances matching the query filters
func (h *MaterialInstanceHandler) List(c *gin.Context) {
	limit, offset := pagination(c)

	filter := materialinstance.ListFilter{
		LifecycleStatus: c.Query("status"),
		LotNumber:       c.Query("lot_number"),
		HeatNumber:      c.Query("heat_number"),
		SerialNumber:    c.Query("serial_number"),
		Limit:           limit,
		Offset:          offset,
	}
	if id := queryID(c, "material_id"); id != nil {
		filter.MaterialID = id
	}
	if id := queryID(c, "purchase_order_id"); id != nil {
		filter.PurchaseOrderID = id
	}
	if id := queryID(c, "supplier_id"); id != nil {
		filter.SupplierID = id
	}

	instances, total, err := h.instanceService.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": instances,
		"meta": gin.H{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// GetHistory returns the full status trail for an instance
func (h *MaterialInstanceHandler) GetHistory(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	history, err := h.instanceService.GetHistory(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": history,
	})
}

// ChangeStatus moves an instance through its lifecycle
func (h *MaterialInstanceHandler) ChangeStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	var req materialinstance.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	mi, err := h.instanceService.ChangeStatus(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Material instance status updated",
		"data":    mi,
	})
}

// Inspect records a QC inspection result for an instance
func (h *MaterialInstanceHandler) Inspect(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	var req materialinstance.InspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	mi, err := h.instanceService.Inspect(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inspection recorded",
		"data":    mi,
	})
}

// CreateAllocation reserves quantity from an instance for a project or work order
func (h *MaterialInstanceHandler) CreateAllocation(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	var req materialinstance.AllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	alloc, err := h.instanceService.CreateAllocation(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Allocation created successfully",
		"data":    alloc,
	})
}

// ListAllocations returns the allocations against an instance
func (h *MaterialInstanceHandler) ListAllocations(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	allocations, err := h.instanceService.ListAllocations(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": allocations,
	})
}

// Issue hands reserved material out against an allocation
func (h *MaterialInstanceHandler) Issue(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	allocationID, err := pathID(c, "allocation_id")
	if err != nil {
		bindError(c, err)
		return
	}

	var req materialinstance.QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	alloc, err := h.instanceService.Issue(c.Request.Context(), actor, allocationID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Material issued successfully",
		"data":    alloc,
	})
}

// Return books issued material back into storage
func (h *MaterialInstanceHandler) Return(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	allocationID, err := pathID(c, "allocation_id")
	if err != nil {
		bindError(c, err)
		return
	}

	var req materialinstance.QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	alloc, err := h.instanceService.Return(c.Request.Context(), actor, allocationID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Material returned successfully",
		"data":    alloc,
	})
}

// CancelAllocation releases a reservation that was never issued
func (h *MaterialInstanceHandler) CancelAllocation(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	allocationID, err := pathID(c, "allocation_id")
	if err != nil {
		bindError(c, err)
		return
	}

	alloc, err := h.instanceService.CancelAllocation(c.Request.Context(), actor, allocationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Allocation cancelled successfully",
		"data":    alloc,
	})
}

// queryID parses an optional uint query parameter
func queryID(c *gin.Context, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(parsed)
	return &id
}
