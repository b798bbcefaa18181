// internal/domain/purchaseorder/service.go
package purchaseorder

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/domain/material"
	"github.com/your-org/procurement-backend/internal/domain/supplier"
	"github.com/your-org/procurement-backend/internal/pkg/apperrors"
	"github.com/your-org/procurement-backend/internal/pkg/authz"
	"github.com/your-org/procurement-backend/internal/pkg/events"
	"gorm.io/gorm"
)

// Service handles purchase order business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	publisher events.Publisher
}

// NewService creates a new purchase order service
func NewService(db *gorm.DB, cfg *config.Config, publisher events.Publisher) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		publisher: publisher,
	}
}

// LineItemRequest represents one line of a create or update request
type LineItemRequest struct {
	MaterialID      uint            `json:"material_id" binding:"required"`
	QuantityOrdered decimal.Decimal `json:"quantity_ordered" binding:"required"`
	UnitOfMeasure   string          `json:"unit_of_measure"`
	UnitPrice       int64           `json:"unit_price" binding:"required"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	RequiredDate    *time.Time      `json:"required_date"`
	PromisedDate    *time.Time      `json:"promised_date"`
	Specification   string          `json:"specification"`
	Revision        string          `json:"revision"`
	Notes           string          `json:"notes"`
}

// CreateRequest represents purchase order creation data
type CreateRequest struct {
	SupplierID           uint              `json:"supplier_id" binding:"required"`
	Priority             string            `json:"priority"`
	TaxAmount            int64             `json:"tax_amount"`
	ShippingAmount       int64             `json:"shipping_amount"`
	DiscountAmount       int64             `json:"discount_amount"`
	Currency             string            `json:"currency"`
	RequiredDate         *time.Time        `json:"required_date"`
	ExpectedDeliveryDate *time.Time        `json:"expected_delivery_date"`
	ShippingMethod       string            `json:"shipping_method"`
	ShippingAddress      string            `json:"shipping_address"`
	RequisitionNumber    string            `json:"requisition_number"`
	ProjectReference     string            `json:"project_reference"`
	WorkOrderReference   string            `json:"work_order_reference"`
	PaymentTerms         string            `json:"payment_terms"`
	DeliveryTerms        string            `json:"delivery_terms"`
	Notes                string            `json:"notes"`
	InternalNotes        string            `json:"internal_notes"`
	LineItems            []LineItemRequest `json:"line_items"`
}

// UpdateRequest represents header updates to a draft purchase order
type UpdateRequest struct {
	Priority             *string    `json:"priority"`
	TaxAmount            *int64     `json:"tax_amount"`
	ShippingAmount       *int64     `json:"shipping_amount"`
	DiscountAmount       *int64     `json:"discount_amount"`
	RequiredDate         *time.Time `json:"required_date"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`
	ShippingMethod       *string    `json:"shipping_method"`
	ShippingAddress      *string    `json:"shipping_address"`
	TrackingNumber       *string    `json:"tracking_number"`
	RequisitionNumber    *string    `json:"requisition_number"`
	ProjectReference     *string    `json:"project_reference"`
	WorkOrderReference   *string    `json:"work_order_reference"`
	PaymentTerms         *string    `json:"payment_terms"`
	DeliveryTerms        *string    `json:"delivery_terms"`
	Notes                *string    `json:"notes"`
	InternalNotes        *string    `json:"internal_notes"`
}

// WorkflowRequest carries the optional comment for a workflow action
type WorkflowRequest struct {
	Comments string `json:"comments"`
	Reason   string `json:"reason"`
}

// Create creates a draft purchase order with its line items
func (s *Service) Create(ctx context.Context, actor authz.Actor, req *CreateRequest) (*PurchaseOrder, error) {
	if err := authz.Require(actor, authz.CapPurchase); err != nil {
		return nil, err
	}

	var sup supplier.Supplier
	if err := s.db.First(&sup, req.SupplierID).Error; err != nil {
		return nil, apperrors.Validation("supplier %d not found", req.SupplierID)
	}
	if !sup.CanReceiveOrders() {
		return nil, apperrors.Validation("supplier %s is not active", sup.Code)
	}

	po := PurchaseOrder{
		RevisionNumber: 1,
		SupplierID:     req.SupplierID,
		CreatedByID:    actor.UserID,
		Status:         StatusDraft,
		Priority:       PriorityNormal,
		TaxAmount:      req.TaxAmount,
		ShippingAmount: req.ShippingAmount,
		DiscountAmount: req.DiscountAmount,
		Currency:       req.Currency,

		PODate:               time.Now().UTC(),
		RequiredDate:         req.RequiredDate,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,

		ShippingMethod:     req.ShippingMethod,
		ShippingAddress:    req.ShippingAddress,
		RequisitionNumber:  req.RequisitionNumber,
		ProjectReference:   req.ProjectReference,
		WorkOrderReference: req.WorkOrderReference,
		PaymentTerms:       req.PaymentTerms,
		DeliveryTerms:      req.DeliveryTerms,
		Notes:              req.Notes,
		InternalNotes:      req.InternalNotes,
	}
	if req.Priority != "" {
		po.Priority = Priority(req.Priority)
	}
	if po.Currency == "" {
		po.Currency = "USD"
	}

	lines, err := s.buildLineItems(req.LineItems)
	if err != nil {
		return nil, err
	}
	po.LineItems = lines
	po.CalculateTotals()

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	po.PONumber, err = s.nextPONumber(tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Create(&po).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to create purchase order")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to commit purchase order")
	}

	return s.GetByID(po.ID)
}

// GetByID retrieves a purchase order with lines and approval history
func (s *Service) GetByID(id uint) (*PurchaseOrder, error) {
	var po PurchaseOrder
	err := s.db.
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("line_number") }).
		Preload("ApprovalHistory", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		First(&po, id).Error
	if err != nil {
		return nil, apperrors.NotFound("purchase order %d not found", id)
	}
	return &po, nil
}

// GetByNumber retrieves a purchase order by its PO number
func (s *Service) GetByNumber(poNumber string) (*PurchaseOrder, error) {
	var po PurchaseOrder
	err := s.db.
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("line_number") }).
		Where("po_number = ?", poNumber).First(&po).Error
	if err != nil {
		return nil, apperrors.NotFound("purchase order %s not found", poNumber)
	}
	return &po, nil
}

// ListFilter narrows the purchase order listing
type ListFilter struct {
	Status     string
	SupplierID *uint
	Priority   string
	Search     string
	Limit      int
	Offset     int
}

// List returns purchase orders matching the filter
func (s *Service) List(filter ListFilter) ([]PurchaseOrder, int64, error) {
	query := s.db.Model(&PurchaseOrder{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("po_number ILIKE ? OR project_reference ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindUnknown, err, "failed to count purchase orders")
	}

	var orders []PurchaseOrder
	err := query.Preload("LineItems").
		Order("created_at DESC").Limit(filter.Limit).Offset(filter.Offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindUnknown, err, "failed to list purchase orders")
	}
	return orders, total, nil
}

// Update modifies header fields of a draft purchase order
func (s *Service) Update(ctx context.Context, actor authz.Actor, id uint, req *UpdateRequest) (*PurchaseOrder, error) {
	if err := authz.Require(actor, authz.CapPurchase); err != nil {
		return nil, err
	}

	po, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !po.IsEditable() {
		return nil, apperrors.State("purchase order %s is not editable in status %s", po.PONumber, po.Status)
	}

	if req.Priority != nil {
		po.Priority = Priority(*req.Priority)
	}
	if req.TaxAmount != nil {
		po.TaxAmount = *req.TaxAmount
	}
	if req.ShippingAmount != nil {
		po.ShippingAmount = *req.ShippingAmount
	}
	if req.DiscountAmount != nil {
		po.DiscountAmount = *req.DiscountAmount
	}
	if req.RequiredDate != nil {
		po.RequiredDate = req.RequiredDate
	}
	if req.ExpectedDeliveryDate != nil {
		po.ExpectedDeliveryDate = req.ExpectedDeliveryDate
	}
	if req.ShippingMethod != nil {
		po.ShippingMethod = *req.ShippingMethod
	}
	if req.ShippingAddress != nil {
		po.ShippingAddress = *req.ShippingAddress
	}
	if req.TrackingNumber != nil {
		po.TrackingNumber = *req.TrackingNumber
	}
	if req.RequisitionNumber != nil {
		po.RequisitionNumber = *req.RequisitionNumber
	}
	if req.ProjectReference != nil {
		po.ProjectReference = *req.ProjectReference
	}
	if req.WorkOrderReference != nil {
		po.WorkOrderReference = *req.WorkOrderReference
	}
	if req.PaymentTerms != nil {
		po.PaymentTerms = *req.PaymentTerms
	}
	if req.DeliveryTerms != nil {
		po.DeliveryTerms = *req.DeliveryTerms
	}
	if req.Notes != nil {
		po.Notes = *req.Notes
	}
	if req.InternalNotes != nil {
		po.InternalNotes = *req.InternalNotes
	}

	po.RecordEdit()
	if err := s.db.Save(po).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to update purchase order")
	}
	return po, nil
}

// Delete removes a draft purchase order and its lines
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id uint) error {
	if err := authz.Require(actor, authz.CapPurchase); err != nil {
		return err
	}

	po, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if !po.IsEditable() {
		return apperrors.State("purchase order %s cannot be deleted in status %s", po.PONumber, po.Status)
	}

	if err := s.db.Select("LineItems", "ApprovalHistory").Delete(po).Error; err != nil {
		return apperrors.Wrap(apperrors.KindUnknown, err, "failed to delete purchase order")
	}
	return nil
}

// AddLineItem appends a line to a draft purchase order
func (s *Service) AddLineItem(ctx context.Context, actor authz.Actor, poID uint, req *LineItemRequest) (*PurchaseOrder, error) {
	if err := authz.Require(actor, authz.CapPurchase); err != nil {
		return nil, err
	}

	po, err := s.GetByID(poID)
	if err != nil {
		return nil, err
	}
	if !po.IsEditable() {
		return nil, apperrors.State("purchase order %s is not editable in status %s", po.PONumber, po.Status)
	}

	lines, err := s.buildLineItems([]LineItemRequest{*req})
	if err != nil {
		return nil, err
	}
	line := lines[0]
	line.PurchaseOrderID = po.ID
	line.LineNumber = len(po.LineItems) + 1

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&line).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to add line item")
	}

	po.LineItems = append(po.LineItems, line)
	po.RecordEdit()
	if err := tx.Model(po).Updates(map[string]interface{}{
		"subtotal_amount": po.SubtotalAmount,
		"total_amount":    po.TotalAmount,
		"revision_number": po.RevisionNumber,
	}).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to update totals")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to commit line item")
	}
	return s.GetByID(poID)
}

// UpdateLineItem replaces the editable fields of a line on a draft purchase order
func (s *Service) UpdateLineItem(ctx context.Context, actor authz.Actor, poID, lineID uint, req *LineItemRequest) (*PurchaseOrder, error) {
	if err := authz.Require(actor, authz.CapPurchase); err != nil {
		return nil, err
	}

	po, err := s.GetByID(poID)
	if err != nil {
		return nil, err
	}
	if !po.IsEditable() {
		return nil, apperrors.State("purchase order %s is not editable in status %s", po.PONumber, po.Status)
	}

	var line *POLineItem
	for i := range po.LineItems {
		if po.LineItems[i].ID == lineID {
			line = &po.LineItems[i]
			break
		}
	}
	if line == nil {
		return nil, apperrors.NotFound("line item %d not found on purchase order %d", lineID, poID)
	}

	rebuilt, err := s.buildLineItems([]LineItemRequest{*req})
	if err != nil {
		return nil, err
	}
	updated := rebuilt[0]

	line.MaterialID = updated.MaterialID
	line.QuantityOrdered = updated.QuantityOrdered
	line.UnitOfMeasure = updated.UnitOfMeasure
	line.UnitPrice = updated.UnitPrice
	line.DiscountPercent = updated.DiscountPercent
	line.RequiredDate = updated.RequiredDate
	line.PromisedDate = updated.PromisedDate
	line.Specification = updated.Specification
	line.Revision = updated.Revision
	line.Notes = updated.Notes
	line.CalculateTotal()

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Save(line).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to update line item")
	}

	po.RecordEdit()
	if err := tx.Model(po).Updates(map[string]interface{}{
		"subtotal_amount": po.SubtotalAmount,
		"total_amount":    po.TotalAmount,
		"revision_number": po.RevisionNumber,
	}).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to update totals")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to commit line update")
	}
	return s.GetByID(poID)
}

// RemoveLineItem deletes a line from a draft purchase order
func (s *Service) RemoveLineItem(ctx context.Context, actor authz.Actor, poID, lineID uint) (*PurchaseOrder, error) {
	if err := authz.Require(actor, authz.CapPurchase); err != nil {
		return nil, err
	}

	po, err := s.GetByID(poID)
	if err != nil {
		return nil, err
	}
	if !po.IsEditable() {
		return nil, apperrors.State("purchase order %s is not editable in status %s", po.PONumber, po.Status)
	}

	found := false
	kept := po.LineItems[:0]
	for _, li := range po.LineItems {
		if li.ID == lineID {
			found = true
			continue
		}
		kept = append(kept, li)
	}
	if !found {
		return nil, apperrors.NotFound("line item %d not found on purchase order %d", lineID, poID)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Delete(&POLineItem{}, lineID).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to remove line item")
	}

	po.LineItems = kept
	po.RecordEdit()
	if err := tx.Model(po).Updates(map[string]interface{}{
		"subtotal_amount": po.SubtotalAmount,
		"total_amount":    po.TotalAmount,
		"revision_number": po.RevisionNumber,
	}).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to update totals")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to commit line removal")
	}
	return s.GetByID(poID)
}

// Submit moves a draft PO into the approval queue
func (s *Service) Submit(ctx context.Context, actor authz.Actor, id uint, req *WorkflowRequest, ip string) (*PurchaseOrder, error) {
	return s.applyWorkflow(ctx, actor, id, ip, req.Comments, ActionSubmitted, func(po *PurchaseOrder) error {
		return Submit(po, actor)
	})
}

// Approve approves a pending PO
func (s *Service) Approve(ctx context.Context, actor authz.Actor, id uint, req *WorkflowRequest, ip string) (*PurchaseOrder, error) {
	threshold := s.config.Approval.HighValueThreshold
	return s.applyWorkflow(ctx, actor, id, ip, req.Comments, ActionApproved, func(po *PurchaseOrder) error {
		if err := Approve(po, actor, threshold); err != nil {
			return err
		}
		now := time.Now().UTC()
		po.ApprovedDate = &now
		po.ApprovalNotes = req.Comments
		return nil
	})
}

// Reject rejects a pending PO with a mandatory reason
func (s *Service) Reject(ctx context.Context, actor authz.Actor, id uint, req *WorkflowRequest, ip string) (*PurchaseOrder, error) {
	return s.applyWorkflow(ctx, actor, id, ip, req.Reason, ActionRejected, func(po *PurchaseOrder) error {
		return Reject(po, actor, req.Reason)
	})
}

// ReturnToDraft sends a PO back for edits, bumping its revision
func (s *Service) ReturnToDraft(ctx context.Context, actor authz.Actor, id uint, req *WorkflowRequest, ip string) (*PurchaseOrder, error) {
	return s.applyWorkflow(ctx, actor, id, ip, req.Comments, ActionReturned, func(po *PurchaseOrder) error {
		return ReturnToDraft(po, actor)
	})
}

// MarkOrdered records that the PO was placed with the supplier
func (s *Service) MarkOrdered(ctx context.Context, actor authz.Actor, id uint, req *WorkflowRequest, ip string) (*PurchaseOrder, error) {
	return s.applyWorkflow(ctx, actor, id, ip, req.Comments, ActionOrdered, func(po *PurchaseOrder) error {
		if err := MarkOrdered(po, actor); err != nil {
			return err
		}
		now := time.Now().UTC()
		po.OrderedDate = &now
		return nil
	})
}

// Close retires a fully received purchase order
func (s *Service) Close(ctx context.Context, actor authz.Actor, id uint, req *WorkflowRequest, ip string) (*PurchaseOrder, error) {
	return s.applyWorkflow(ctx, actor, id, ip, req.Comments, ActionClosed, func(po *PurchaseOrder) error {
		return Close(po, actor)
	})
}

// Cancel terminates a PO that has not been fully received
func (s *Service) Cancel(ctx context.Context, actor authz.Actor, id uint, req *WorkflowRequest, ip string) (*PurchaseOrder, error) {
	return s.applyWorkflow(ctx, actor, id, ip, req.Reason, ActionCancelled, func(po *PurchaseOrder) error {
		return Cancel(po, actor, req.Reason)
	})
}

// SetLineStage applies a table-checked material stage move on a PO line
func (s *Service) SetLineStage(ctx context.Context, actor authz.Actor, poID, lineID uint, stage MaterialStage) (*POLineItem, error) {
	if err := authz.Require(actor, authz.CapAllocate); err != nil {
		return nil, err
	}

	var line POLineItem
	err := s.db.Where("id = ? AND purchase_order_id = ?", lineID, poID).First(&line).Error
	if err != nil {
		return nil, apperrors.NotFound("line item %d not found on purchase order %d", lineID, poID)
	}

	if !CanTransitionStage(line.MaterialStage, stage) {
		return nil, apperrors.State(
			"line %d cannot move from stage %s to %s", line.LineNumber, line.MaterialStage, stage)
	}

	from := line.MaterialStage
	line.MaterialStage = stage
	if err := s.db.Model(&line).Update("material_stage", stage).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to update material stage")
	}

	s.publisher.Publish(ctx, events.DomainEvent{
		EntityType: "po_line_item",
		EntityID:   line.ID,
		FromState:  string(from),
		ToState:    string(stage),
		Actor:      actor.UserID,
		Timestamp:  time.Now().UTC(),
	})

	return &line, nil
}

// GetApprovalHistory returns the append-only workflow audit trail
func (s *Service) GetApprovalHistory(poID uint) ([]POApprovalHistory, error) {
	var history []POApprovalHistory
	err := s.db.Where("purchase_order_id = ?", poID).
		Order("created_at").Find(&history).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to load approval history")
	}
	return history, nil
}

// applyWorkflow loads the PO, applies the mutation, records the audit row
// and persists everything in one transaction. The domain event publishes
// after commit.
func (s *Service) applyWorkflow(ctx context.Context, actor authz.Actor, id uint, ip, comments string, action ApprovalAction, mutate func(*PurchaseOrder) error) (*PurchaseOrder, error) {
	po, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	fromStatus := po.Status

	if err := mutate(po); err != nil {
		return nil, err
	}

	history := POApprovalHistory{
		PurchaseOrderID:    po.ID,
		UserID:             actor.UserID,
		Action:             action,
		FromStatus:         fromStatus,
		ToStatus:           po.Status,
		Comments:           comments,
		POTotalAtAction:    po.TotalAmount,
		PORevisionAtAction: po.RevisionNumber,
		IPAddress:          ip,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Save(po).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to save purchase order")
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to record approval history")
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to commit workflow action")
	}

	s.publisher.Publish(ctx, events.DomainEvent{
		EntityType: "purchase_order",
		EntityID:   po.ID,
		FromState:  string(fromStatus),
		ToState:    string(po.Status),
		Actor:      actor.UserID,
		Timestamp:  time.Now().UTC(),
	})

	return s.GetByID(id)
}

// buildLineItems validates and constructs line items from requests
func (s *Service) buildLineItems(reqs []LineItemRequest) ([]POLineItem, error) {
	lines := make([]POLineItem, 0, len(reqs))
	for i, req := range reqs {
		if req.QuantityOrdered.LessThanOrEqual(decimal.Zero) {
			return nil, apperrors.Validation("line %d: quantity ordered must be positive", i+1)
		}
		if req.UnitPrice < 0 {
			return nil, apperrors.Validation("line %d: unit price cannot be negative", i+1)
		}

		var mat material.Material
		if err := s.db.First(&mat, req.MaterialID).Error; err != nil {
			return nil, apperrors.Validation("line %d: material %d not found", i+1, req.MaterialID)
		}

		uom := req.UnitOfMeasure
		if uom == "" {
			uom = mat.UnitOfMeasure
		}

		line := POLineItem{
			MaterialID:       req.MaterialID,
			LineNumber:       i + 1,
			QuantityOrdered:  req.QuantityOrdered,
			QuantityReceived: decimal.Zero,
			QuantityAccepted: decimal.Zero,
			QuantityRejected: decimal.Zero,
			UnitOfMeasure:    uom,
			UnitPrice:        req.UnitPrice,
			DiscountPercent:  req.DiscountPercent,
			MaterialStage:    StageOnOrder,
			RequiredDate:     req.RequiredDate,
			PromisedDate:     req.PromisedDate,
			Specification:    req.Specification,
			Revision:         req.Revision,
			Notes:            req.Notes,
		}
		line.CalculateTotal()
		lines = append(lines, line)
	}
	return lines, nil
}

// nextPONumber issues the next sequential PO number for today
func (s *Service) nextPONumber(tx *gorm.DB) (string, error) {
	now := time.Now().UTC()
	prefix := fmt.Sprintf("PO-%s-", now.Format("20060102"))

	var count int64
	err := tx.Model(&PurchaseOrder{}).Unscoped().
		Where("po_number LIKE ?", prefix+"%").Count(&count).Error
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindUnknown, err, "failed to generate PO number")
	}
	return GeneratePONumber(now, fmt.Sprintf("%04d", count+1)), nil
}
