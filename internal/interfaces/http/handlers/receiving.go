// internal/interfaces/http/handlers/receiving.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/domain/receiving"
	"github.com/your-org/procurement-backend/internal/pkg/events"
	"gorm.io/gorm"
)

// ReceivingHandler handles goods receipt endpoints
type ReceivingHandler struct {
	receivingService *receiving.Service
	config           *config.Config
}

// NewReceivingHandler creates a new receiving handler
func NewReceivingHandler(db *gorm.DB, cfg *config.Config, publisher events.Publisher) *ReceivingHandler {
	return &ReceivingHandler{
		receivingService: receiving.NewService(db, cfg, publisher),
		config:           cfg,
	}
}

// Receive records a delivery against a purchase order and opens a goods receipt
func (h *ReceivingHandler) Receive(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	poID, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	var req receiving.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	grn, err := h.receivingService.Create(c.Request.Context(), actor, poID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Goods receipt created successfully",
		"data":    grn,
	})
}

// Get returns one goods receipt with its lines
func (h *ReceivingHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	grn, err := h.receivingService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": grn,
	})
}

// ListByPO returns all goods receipts recorded against a purchase order
func (h *ReceivingHandler) ListByPO(c *gin.Context) {
	poID, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	grns, err := h.receivingService.ListByPO(poID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": grns,
	})
}

// List returns goods receipts filtered by status
func (h *ReceivingHandler) List(c *gin.Context) {
	limit, offset := pagination(c)

	grns, total, err := h.receivingService.List(c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": grns,
		"meta": gin.H{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// SubmitForInspection queues a draft receipt for quality inspection
func (h *ReceivingHandler) SubmitForInspection(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	grn, err := h.receivingService.SubmitForInspection(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Goods receipt submitted for inspection",
		"data":    grn,
	})
}

// Inspect records the inspection verdict for a goods receipt
func (h *ReceivingHandler) Inspect(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	var req receiving.InspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	grn, err := h.receivingService.Inspect(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Goods receipt inspection recorded",
		"data":    grn,
	})
}

// Accept books an inspected receipt into stock, creating material instances
func (h *ReceivingHandler) Accept(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	grn, err := h.receivingService.Accept(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Goods receipt accepted into stock",
		"data":    grn,
	})
}

// Reject closes a failed receipt without booking stock
func (h *ReceivingHandler) Reject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	grn, err := h.receivingService.Reject(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Goods receipt rejected",
		"data":    grn,
	})
}
