// internal/interfaces/http/handlers/purchase_order.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/domain/purchaseorder"
	"github.com/your-org/procurement-backend/internal/pkg/events"
	"gorm.io/gorm"
)

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	poService *purchaseorder.Service
	config    *config.Config
}

// NewPurchaseOrderHandler creates a new purchase order handler
func NewPurchaseOrderHandler(db *gorm.DB, cfg *config.Config, publisher events.Publisher) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		poService: purchaseorder.NewService(db, cfg, publisher),
		config:    cfg,
	}
}

// Create creates a draft purchase order
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req purchaseorder.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	po, err := h.poService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Purchase order created successfully",
		"data":    po,
	})
}

// Get returns one purchase order with its line items and approval history
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	po, err := h.poService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": po,
	})
}

// GetByNumber looks a purchase order up by its document number
func (h *PurchaseOrderHandler) GetByNumber(c *gin.Context) {
	po, err := h.poService.GetByNumber(c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": po,
	})
}

// List returns purchase orders matching the query filters
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	limit, offset := pagination(c)

	filter := purchaseorder.ListFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
		Limit:    limit,
		Offset:   offset,
	}
	if raw := c.Query("supplier_id"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 32); err == nil {
			id := uint(parsed)
			filter.SupplierID = &id
		}
	}

	orders, total, err := h.poService.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": orders,
		"meta": gin.H{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// Update modifies a draft purchase order
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	var req purchaseorder.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	po, err := h.poService.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase order updated successfully",
		"data":    po,
	})
}

// Delete removes a draft purchase order
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	if err := h.poService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase order deleted successfully",
	})
}

// AddLineItem appends a line to a draft purchase order
func (h *PurchaseOrderHandler) AddLineItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	var req purchaseorder.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	po, err := h.poService.AddLineItem(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Line item added successfully",
		"data":    po,
	})
}

// UpdateLineItem replaces a line on a draft purchase order
func (h *PurchaseOrderHandler) UpdateLineItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}
	lineID, err := pathID(c, "line_id")
	if err != nil {
		bindError(c, err)
		return
	}

	var req purchaseorder.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	po, err := h.poService.UpdateLineItem(c.Request.Context(), actor, id, lineID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Line item updated successfully",
		"data":    po,
	})
}

// RemoveLineItem deletes a line from a draft purchase order
func (h *PurchaseOrderHandler) RemoveLineItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}
	lineID, err := pathID(c, "line_id")
	if err != nil {
		bindError(c, err)
		return
	}

	po, err := h.poService.RemoveLineItem(c.Request.Context(), actor, id, lineID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Line item removed successfully",
		"data":    po,
	})
}

type workflowFunc func(c *gin.Context, h *PurchaseOrderHandler, id uint) (*purchaseorder.PurchaseOrder, error)

// workflow runs one workflow action and renders the resulting order
func (h *PurchaseOrderHandler) workflow(c *gin.Context, message string, fn workflowFunc) {
	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	po, err := fn(c, h, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    po,
	})
}

// bindWorkflowRequest reads the optional workflow body, tolerating an empty one
func bindWorkflowRequest(c *gin.Context) *purchaseorder.WorkflowRequest {
	var req purchaseorder.WorkflowRequest
	if c.Request.ContentLength > 0 {
		_ = c.ShouldBindJSON(&req)
	}
	return &req
}

// Submit sends a draft purchase order for approval
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	h.workflow(c, "Purchase order submitted for approval", func(c *gin.Context, h *PurchaseOrderHandler, id uint) (*purchaseorder.PurchaseOrder, error) {
		return h.poService.Submit(c.Request.Context(), actor, id, bindWorkflowRequest(c), c.ClientIP())
	})
}

// Approve approves a pending purchase order
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	h.workflow(c, "Purchase order approved", func(c *gin.Context, h *PurchaseOrderHandler, id uint) (*purchaseorder.PurchaseOrder, error) {
		return h.poService.Approve(c.Request.Context(), actor, id, bindWorkflowRequest(c), c.ClientIP())
	})
}

// Reject rejects a pending purchase order
func (h *PurchaseOrderHandler) Reject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	h.workflow(c, "Purchase order rejected", func(c *gin.Context, h *PurchaseOrderHandler, id uint) (*purchaseorder.PurchaseOrder, error) {
		return h.poService.Reject(c.Request.Context(), actor, id, bindWorkflowRequest(c), c.ClientIP())
	})
}

// ReturnToDraft sends a pending or rejected order back for edits
func (h *PurchaseOrderHandler) ReturnToDraft(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	h.workflow(c, "Purchase order returned to draft", func(c *gin.Context, h *PurchaseOrderHandler, id uint) (*purchaseorder.PurchaseOrder, error) {
		return h.poService.ReturnToDraft(c.Request.Context(), actor, id, bindWorkflowRequest(c), c.ClientIP())
	})
}

// MarkOrdered records that an approved order was placed with the supplier
func (h *PurchaseOrderHandler) MarkOrdered(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	h.workflow(c, "Purchase order marked as ordered", func(c *gin.Context, h *PurchaseOrderHandler, id uint) (*purchaseorder.PurchaseOrder, error) {
		return h.poService.MarkOrdered(c.Request.Context(), actor, id, bindWorkflowRequest(c), c.ClientIP())
	})
}

// Close retires a fully received purchase order
func (h *PurchaseOrderHandler) Close(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	h.workflow(c, "Purchase order closed", func(c *gin.Context, h *PurchaseOrderHandler, id uint) (*purchaseorder.PurchaseOrder, error) {
		return h.poService.Close(c.Request.Context(), actor, id, bindWorkflowRequest(c), c.ClientIP())
	})
}

// Cancel cancels a purchase order
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	h.workflow(c, "Purchase order cancelled", func(c *gin.Context, h *PurchaseOrderHandler, id uint) (*purchaseorder.PurchaseOrder, error) {
		return h.poService.Cancel(c.Request.Context(), actor, id, bindWorkflowRequest(c), c.ClientIP())
	})
}

// SetLineStage moves a line item's material through the production stages
func (h *PurchaseOrderHandler) SetLineStage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}
	lineID, err := pathID(c, "line_id")
	if err != nil {
		bindError(c, err)
		return
	}

	var req struct {
		Stage string `json:"stage" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	line, err := h.poService.SetLineStage(c.Request.Context(), actor, id, lineID, purchaseorder.MaterialStage(req.Stage))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Line item stage updated successfully",
		"data":    line,
	})
}

// GetApprovalHistory returns the approval audit trail for an order
func (h *PurchaseOrderHandler) GetApprovalHistory(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		bindError(c, err)
		return
	}

	history, err := h.poService.GetApprovalHistory(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": history,
	})
}
