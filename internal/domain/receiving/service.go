// internal/domain/receiving/service.go
package receiving

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/domain/material"
	"github.com/your-org/procurement-backend/internal/domain/materialinstance"
	"github.com/your-org/procurement-backend/internal/domain/purchaseorder"
	"github.com/your-org/procurement-backend/internal/pkg/apperrors"
	"github.com/your-org/procurement-backend/internal/pkg/authz"
	"github.com/your-org/procurement-backend/internal/pkg/events"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles goods receipt and inspection logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	publisher events.Publisher
}

// NewService creates a new receiving service
func NewService(db *gorm.DB, cfg *config.Config, publisher events.Publisher) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		publisher: publisher,
	}
}

// LineRequest represents one received line of a GRN
type LineRequest struct {
	POLineItemID     uint            `json:"po_line_item_id" binding:"required"`
	QuantityReceived decimal.Decimal `json:"quantity_received" binding:"required"`
	LotNumber        string          `json:"lot_number"`
	BatchNumber      string          `json:"batch_number"`
	SerialNumbers    string          `json:"serial_numbers"`
	HeatNumber       string          `json:"heat_number"`
	ManufactureDate  *time.Time      `json:"manufacture_date"`
	ExpiryDate       *time.Time      `json:"expiry_date"`
	StorageLocation  string          `json:"storage_location"`
	BinNumber        string          `json:"bin_number"`
	Notes            string          `json:"notes"`
}

// CreateRequest represents GRN creation data
type CreateRequest struct {
	DeliveryNoteNumber  string        `json:"delivery_note_number"`
	InvoiceNumber       string        `json:"invoice_number"`
	Carrier             string        `json:"carrier"`
	TrackingNumber      string        `json:"tracking_number"`
	PackingSlipReceived bool          `json:"packing_slip_received"`
	CocReceived         bool          `json:"coc_received"`
	MtrReceived         bool          `json:"mtr_received"`
	StorageLocation     string        `json:"storage_location"`
	Notes               string        `json:"notes"`
	LineItems           []LineRequest `json:"line_items" binding:"required"`
}

// InspectRequest represents a whole-GRN inspection result
type InspectRequest struct {
	Passed          bool   `json:"passed"`
	Notes           string `json:"notes"`
	RejectionReason string `json:"rejection_reason"`
	NCRNumber       string `json:"ncr_number"`
}

// Create records a delivery against an ordered PO. The overage tolerance is
// enforced per line against the cumulative received total, re-evaluated under
// a row lock so concurrent receipts cannot overshoot together.
func (s *Service) Create(ctx context.Context, actor authz.Actor, poID uint, req *CreateRequest) (*GoodsReceiptNote, error) {
	if err := authz.Require(actor, authz.CapReceive); err != nil {
		return nil, err
	}
	if len(req.LineItems) == 0 {
		return nil, apperrors.Validation("goods receipt requires at least one line item")
	}

	overage := s.config.Approval.ReceiptOveragePercent

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var po purchaseorder.PurchaseOrder
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&po, poID).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.NotFound("purchase order %d not found", poID)
	}
	if po.Status != purchaseorder.StatusOrdered && po.Status != purchaseorder.StatusPartiallyReceived {
		tx.Rollback()
		return nil, apperrors.State("cannot receive against purchase order in status %s", po.Status)
	}
	fromStatus := po.Status

	grn := GoodsReceiptNote{
		GRNNumber:           nextDocumentNumber("GRN"),
		PurchaseOrderID:     po.ID,
		ReceivedByID:        actor.UserID,
		Status:              StatusDraft,
		ReceiptDate:         time.Now().UTC(),
		DeliveryNoteNumber:  req.DeliveryNoteNumber,
		InvoiceNumber:       req.InvoiceNumber,
		Carrier:             req.Carrier,
		TrackingNumber:      req.TrackingNumber,
		PackingSlipReceived: req.PackingSlipReceived,
		CocReceived:         req.CocReceived,
		MtrReceived:         req.MtrReceived,
		StorageLocation:     req.StorageLocation,
		Notes:               req.Notes,
	}

	for _, lineReq := range req.LineItems {
		var poLine purchaseorder.POLineItem
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND purchase_order_id = ?", lineReq.POLineItemID, po.ID).
			First(&poLine).Error
		if err != nil {
			tx.Rollback()
			return nil, apperrors.Validation("PO line item %d not found on purchase order %d", lineReq.POLineItemID, po.ID)
		}

		// The lock holds until commit, so the tolerance check sees every
		// previously committed receipt for this line.
		if err := purchaseorder.ApplyReceipt(&poLine, lineReq.QuantityReceived, overage); err != nil {
			tx.Rollback()
			return nil, err
		}

		updates := map[string]interface{}{
			"quantity_received": poLine.QuantityReceived,
		}
		if purchaseorder.CanTransitionStage(poLine.MaterialStage, purchaseorder.StageInInspection) {
			poLine.MaterialStage = purchaseorder.StageInInspection
			updates["material_stage"] = poLine.MaterialStage
		}
		if err := tx.Model(&purchaseorder.POLineItem{}).Where("id = ?", poLine.ID).Updates(updates).Error; err != nil {
			tx.Rollback()
			return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to update PO line")
		}

		grn.LineItems = append(grn.LineItems, GRNLineItem{
			POLineItemID:     poLine.ID,
			QuantityReceived: lineReq.QuantityReceived,
			QuantityAccepted: decimal.Zero,
			QuantityRejected: decimal.Zero,
			UnitOfMeasure:    poLine.UnitOfMeasure,
			LotNumber:        lineReq.LotNumber,
			BatchNumber:      lineReq.BatchNumber,
			SerialNumbers:    lineReq.SerialNumbers,
			HeatNumber:       lineReq.HeatNumber,
			ManufactureDate:  lineReq.ManufactureDate,
			ExpiryDate:       lineReq.ExpiryDate,
			InspectionStatus: InspectionPending,
			StorageLocation:  lineReq.StorageLocation,
			BinNumber:        lineReq.BinNumber,
			Notes:            lineReq.Notes,
		})
	}

	// Derive the PO status from the post-update line totals
	var lines []purchaseorder.POLineItem
	if err := tx.Where("purchase_order_id = ?", po.ID).Find(&lines).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to reload PO lines")
	}
	po.LineItems = lines
	newStatus := po.DeriveReceiptStatus()
	if newStatus != po.Status && purchaseorder.CanTransition(po.Status, newStatus) {
		po.Status = newStatus
		if err := tx.Model(&po).Update("status", newStatus).Error; err != nil {
			tx.Rollback()
			return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to update PO status")
		}
	}

	if err := tx.Create(&grn).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to create goods receipt")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to commit goods receipt")
	}

	if fromStatus != po.Status {
		s.publisher.Publish(ctx, events.DomainEvent{
			EntityType: "purchase_order",
			EntityID:   po.ID,
			FromState:  string(fromStatus),
			ToState:    string(po.Status),
			Actor:      actor.UserID,
			Timestamp:  time.Now().UTC(),
		})
	}

	return s.GetByID(grn.ID)
}

// GetByID retrieves a GRN with its line items
func (s *Service) GetByID(id uint) (*GoodsReceiptNote, error) {
	var grn GoodsReceiptNote
	if err := s.db.Preload("LineItems").First(&grn, id).Error; err != nil {
		return nil, apperrors.NotFound("goods receipt %d not found", id)
	}
	return &grn, nil
}

// ListByPO returns all GRNs for a purchase order
func (s *Service) ListByPO(poID uint) ([]GoodsReceiptNote, error) {
	var grns []GoodsReceiptNote
	err := s.db.Preload("LineItems").
		Where("purchase_order_id = ?", poID).
		Order("receipt_date").Find(&grns).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to list goods receipts")
	}
	return grns, nil
}

// List returns GRNs filtered by status
func (s *Service) List(status string, limit, offset int) ([]GoodsReceiptNote, int64, error) {
	query := s.db.Model(&GoodsReceiptNote{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindUnknown, err, "failed to count goods receipts")
	}

	var grns []GoodsReceiptNote
	err := query.Preload("LineItems").
		Order("receipt_date DESC").Limit(limit).Offset(offset).Find(&grns).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindUnknown, err, "failed to list goods receipts")
	}
	return grns, total, nil
}

// SubmitForInspection queues a draft GRN for QC
func (s *Service) SubmitForInspection(ctx context.Context, actor authz.Actor, id uint) (*GoodsReceiptNote, error) {
	if err := authz.Require(actor, authz.CapReceive); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, StatusPendingInspection, func(grn *GoodsReceiptNote, tx *gorm.DB) error {
		return nil
	})
}

// Inspect records a whole-GRN QC result. Pass accepts every received
// quantity and moves the PO lines to raw material; fail rejects every
// received quantity and leaves the rejection trail on the lines.
func (s *Service) Inspect(ctx context.Context, actor authz.Actor, id uint, req *InspectRequest) (*GoodsReceiptNote, error) {
	if err := authz.Require(actor, authz.CapInspect); err != nil {
		return nil, err
	}

	target := StatusInspectionPassed
	if !req.Passed {
		target = StatusInspectionFailed
	}

	return s.transition(ctx, actor, id, target, func(grn *GoodsReceiptNote, tx *gorm.DB) error {
		now := time.Now().UTC()
		grn.InspectedByID = &actor.UserID
		grn.InspectionDate = &now
		grn.InspectionNotes = req.Notes

		for i := range grn.LineItems {
			line := &grn.LineItems[i]

			var poLine purchaseorder.POLineItem
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&poLine, line.POLineItemID).Error; err != nil {
				return apperrors.Wrap(apperrors.KindUnknown, err, "failed to load PO line %d", line.POLineItemID)
			}

			if err := ApplyInspection(line, &poLine, req); err != nil {
				return err
			}

			updates := map[string]interface{}{
				"quantity_accepted": poLine.QuantityAccepted,
				"quantity_rejected": poLine.QuantityRejected,
			}
			stage := purchaseorder.StageRawMaterial
			if !req.Passed {
				stage = purchaseorder.StageScrapped
			}
			if purchaseorder.CanTransitionStage(poLine.MaterialStage, stage) {
				updates["material_stage"] = stage
			}

			if err := tx.Model(&purchaseorder.POLineItem{}).Where("id = ?", poLine.ID).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.KindUnknown, err, "failed to update PO line")
			}
			if err := tx.Save(line).Error; err != nil {
				return apperrors.Wrap(apperrors.KindUnknown, err, "failed to save GRN line")
			}
		}
		return nil
	})
}

// Accept brings inspected materials into stock, creating one traceable
// material instance per accepted line.
func (s *Service) Accept(ctx context.Context, actor authz.Actor, id uint) (*GoodsReceiptNote, error) {
	if err := authz.Require(actor, authz.CapReceive); err != nil {
		return nil, err
	}

	grn, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if grn.Status != StatusInspectionPassed {
		return nil, apperrors.State("goods receipt %s cannot be accepted from status %s", grn.GRNNumber, grn.Status)
	}

	target := StatusAccepted
	for i := range grn.LineItems {
		if !grn.LineItems[i].QuantityAccepted.IsPositive() {
			target = StatusPartial
			break
		}
	}

	return s.transition(ctx, actor, id, target, func(grn *GoodsReceiptNote, tx *gorm.DB) error {
		var po purchaseorder.PurchaseOrder
		if err := tx.First(&po, grn.PurchaseOrderID).Error; err != nil {
			return apperrors.Wrap(apperrors.KindUnknown, err, "failed to load purchase order")
		}

		receiptDate := grn.ReceiptDate

		for i := range grn.LineItems {
			line := &grn.LineItems[i]
			if !line.QuantityAccepted.IsPositive() {
				continue
			}

			var poLine purchaseorder.POLineItem
			if err := tx.First(&poLine, line.POLineItemID).Error; err != nil {
				return apperrors.Wrap(apperrors.KindUnknown, err, "failed to load PO line %d", line.POLineItemID)
			}
			var mat material.Material
			if err := tx.First(&mat, poLine.MaterialID).Error; err != nil {
				return apperrors.Wrap(apperrors.KindUnknown, err, "failed to load material %d", poLine.MaterialID)
			}

			storage := line.StorageLocation
			if storage == "" {
				storage = grn.StorageLocation
			}

			instance := materialinstance.MaterialInstance{
				ItemNumber:          nextDocumentNumber("MI"),
				Title:               mat.Title,
				MaterialID:          mat.ID,
				PurchaseOrderID:     &po.ID,
				POLineItemID:        &poLine.ID,
				GRNLineItemID:       &line.ID,
				SupplierID:          &po.SupplierID,
				Specification:       poLine.Specification,
				Revision:            poLine.Revision,
				Quantity:            line.QuantityAccepted,
				ReservedQuantity:    decimal.Zero,
				IssuedQuantity:      decimal.Zero,
				UnitOfMeasure:       line.UnitOfMeasure,
				UnitCost:            poLine.UnitPrice,
				LotNumber:           line.LotNumber,
				BatchNumber:         line.BatchNumber,
				HeatNumber:          line.HeatNumber,
				LifecycleStatus:     materialinstance.StatusReceived,
				Condition:           materialinstance.ConditionNew,
				OrderDate:           po.OrderedDate,
				ReceivedDate:        &receiptDate,
				ManufactureDate:     line.ManufactureDate,
				ExpiryDate:          line.ExpiryDate,
				StorageLocation:     storage,
				BinNumber:           line.BinNumber,
				CertificateReceived: grn.CocReceived,
				POReference:         po.PONumber,
				ProjectReference:    po.ProjectReference,
				WorkOrderReference:  po.WorkOrderReference,
				ReceivedByID:        &grn.ReceivedByID,
				Notes:               fmt.Sprintf("Received via %s from PO %s", grn.GRNNumber, po.PONumber),
			}
			if err := tx.Create(&instance).Error; err != nil {
				return apperrors.Wrap(apperrors.KindUnknown, err, "failed to create material instance")
			}

			history := materialinstance.MaterialStatusHistory{
				MaterialInstanceID: instance.ID,
				FromStatus:         materialinstance.StatusOrdered,
				ToStatus:           materialinstance.StatusReceived,
				ChangedByID:        actor.UserID,
				ReferenceType:      "GRN",
				ReferenceNumber:    grn.GRNNumber,
			}
			if err := tx.Create(&history).Error; err != nil {
				return apperrors.Wrap(apperrors.KindUnknown, err, "failed to record instance history")
			}

			line.MaterialInstanceID = &instance.ID
			if err := tx.Model(&GRNLineItem{}).Where("id = ?", line.ID).
				Update("material_instance_id", instance.ID).Error; err != nil {
				return apperrors.Wrap(apperrors.KindUnknown, err, "failed to link material instance")
			}
		}
		return nil
	})
}

// Reject closes out a failed-inspection GRN
func (s *Service) Reject(ctx context.Context, actor authz.Actor, id uint) (*GoodsReceiptNote, error) {
	if err := authz.Require(actor, authz.CapReceive); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, StatusRejected, func(grn *GoodsReceiptNote, tx *gorm.DB) error {
		return nil
	})
}

// transition loads the GRN, checks the table, applies the mutation and
// persists it in one transaction. The domain event publishes after commit.
func (s *Service) transition(ctx context.Context, actor authz.Actor, id uint, to Status, mutate func(*GoodsReceiptNote, *gorm.DB) error) (*GoodsReceiptNote, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var grn GoodsReceiptNote
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("LineItems").First(&grn, id).Error
	if err != nil {
		tx.Rollback()
		return nil, apperrors.NotFound("goods receipt %d not found", id)
	}
	from := grn.Status

	if !CanTransition(from, to) {
		tx.Rollback()
		return nil, apperrors.State("goods receipt %s cannot move from %s to %s", grn.GRNNumber, from, to)
	}
	grn.Status = to

	if err := mutate(&grn, tx); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Save(&grn).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to save goods receipt")
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to commit goods receipt")
	}

	s.publisher.Publish(ctx, events.DomainEvent{
		EntityType: "goods_receipt_note",
		EntityID:   grn.ID,
		FromState:  string(from),
		ToState:    string(grn.Status),
		Actor:      actor.UserID,
		Timestamp:  time.Now().UTC(),
	})

	return s.GetByID(id)
}

// nextDocumentNumber formats a document number with a random suffix
func nextDocumentNumber(prefix string) string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("20060102"), suffix)
}
