// internal/domain/materialinstance/service.go
package materialinstance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/domain/purchaseorder"
	"github.com/your-org/procurement-backend/internal/pkg/apperrors"
	"github.com/your-org/procurement-backend/internal/pkg/authz"
	"github.com/your-org/procurement-backend/internal/pkg/events"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles material instance lifecycle and allocation logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	publisher events.Publisher
}

// NewService creates a new material instance service
func NewService(db *gorm.DB, cfg *config.Config, publisher events.Publisher) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		publisher: publisher,
	}
}

// ChangeStatusRequest represents a lifecycle status change
type ChangeStatusRequest struct {
	ToStatus        string `json:"to_status" binding:"required"`
	Reason          string `json:"reason"`
	Notes           string `json:"notes"`
	ReferenceType   string `json:"reference_type"`
	ReferenceNumber string `json:"reference_number"`
}

// InspectRequest represents a QC inspection result
type InspectRequest struct {
	Passed          bool   `json:"passed"`
	Notes           string `json:"notes"`
	StorageLocation string `json:"storage_location"`
	BinNumber       string `json:"bin_number"`
}

// AllocationRequest represents a material allocation
type AllocationRequest struct {
	QuantityAllocated  decimal.Decimal `json:"quantity_allocated" binding:"required"`
	ProjectReference   string          `json:"project_reference"`
	WorkOrderReference string          `json:"work_order_reference"`
	RequiredDate       *time.Time      `json:"required_date"`
	Priority           int             `json:"priority"`
	Notes              string          `json:"notes"`
}

// QuantityRequest carries the quantity for issue and return operations
type QuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	Notes    string          `json:"notes"`
}

// GetByID retrieves an instance with allocations and history
func (s *Service) GetByID(id uint) (*MaterialInstance, error) {
	var mi MaterialInstance
	err := s.db.
		Preload("Allocations", func(db *gorm.DB) *gorm.DB { return db.Order("allocation_date") }).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		First(&mi, id).Error
	if err != nil {
		return nil, apperrors.NotFound("material instance %d not found", id)
	}
	return &mi, nil
}

// GetByItemNumber retrieves an instance by its unique item number
func (s *Service) GetByItemNumber(itemNumber string) (*MaterialInstance, error) {
	var mi MaterialInstance
	err := s.db.Where("item_number = ?", strings.ToUpper(itemNumber)).First(&mi).Error
	if err != nil {
		return nil, apperrors.NotFound("material instance %s not found", itemNumber)
	}
	return &mi, nil
}

// ListFilter narrows the instance listing
type ListFilter struct {
	LifecycleStatus string
	MaterialID      *uint
	PurchaseOrderID *uint
	SupplierID      *uint
	LotNumber       string
	HeatNumber      string
	SerialNumber    string
	Limit           int
	Offset          int
}

// List returns instances matching the filter
func (s *Service) List(filter ListFilter) ([]MaterialInstance, int64, error) {
	query := s.db.Model(&MaterialInstance{})
	if filter.LifecycleStatus != "" {
		query = query.Where("lifecycle_status = ?", filter.LifecycleStatus)
	}
	if filter.MaterialID != nil {
		query = query.Where("material_id = ?", *filter.MaterialID)
	}
	if filter.PurchaseOrderID != nil {
		query = query.Where("purchase_order_id = ?", *filter.PurchaseOrderID)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.LotNumber != "" {
		query = query.Where("lot_number = ?", filter.LotNumber)
	}
	if filter.HeatNumber != "" {
		query = query.Where("heat_number = ?", filter.HeatNumber)
	}
	if filter.SerialNumber != "" {
		query = query.Where("serial_number = ?", filter.SerialNumber)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindUnknown, err, "failed to count material instances")
	}

	var instances []MaterialInstance
	err := query.Order("created_at DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&instances).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindUnknown, err, "failed to list material instances")
	}
	return instances, total, nil
}

// GetHistory returns the append-only lifecycle audit trail
func (s *Service) GetHistory(instanceID uint) ([]MaterialStatusHistory, error) {
	var history []MaterialStatusHistory
	err := s.db.Where("material_instance_id = ?", instanceID).
		Order("created_at DESC").Find(&history).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to load status history")
	}
	return history, nil
}

// ChangeStatus applies a table-checked lifecycle transition and records it.
// Source back-references stay untouched.
func (s *Service) ChangeStatus(ctx context.Context, actor authz.Actor, id uint, req *ChangeStatusRequest) (*MaterialInstance, error) {
	if err := authz.Require(actor, authz.CapAllocate); err != nil {
		return nil, err
	}

	to := LifecycleStatus(req.ToStatus)

	var mi MaterialInstance
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&mi, id).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.NotFound("material instance %d not found", id)
	}
	from := mi.LifecycleStatus

	if err := ApplyTransition(&mi, to); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Save(&mi).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to save material instance")
	}
	if err := s.appendHistory(tx, &mi, from, mi.LifecycleStatus, actor, req.ReferenceType, req.ReferenceNumber, req.Reason, req.Notes); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to commit status change")
	}

	s.publishTransition(ctx, &mi, from, mi.LifecycleStatus, actor)
	return s.GetByID(id)
}

// Inspect records a QC result: pass moves the instance into storage and the
// source PO line to raw material, fail rejects it and scraps the line stage.
func (s *Service) Inspect(ctx context.Context, actor authz.Actor, id uint, req *InspectRequest) (*MaterialInstance, error) {
	if err := authz.Require(actor, authz.CapInspect); err != nil {
		return nil, err
	}

	var mi MaterialInstance
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&mi, id).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.NotFound("material instance %d not found", id)
	}
	type hop struct{ from, to LifecycleStatus }
	var hops []hop
	for _, next := range InspectionPath(mi.LifecycleStatus, req.Passed) {
		prev := mi.LifecycleStatus
		if err := ApplyTransition(&mi, next); err != nil {
			tx.Rollback()
			return nil, err
		}
		hops = append(hops, hop{prev, next})
	}

	lineStage := purchaseorder.StageRawMaterial
	if !req.Passed {
		lineStage = purchaseorder.StageScrapped
	}

	now := time.Now().UTC()
	passed := req.Passed
	mi.InspectionPassed = &passed
	mi.InspectionDate = &now
	mi.InspectedByID = &actor.UserID
	mi.InspectionNotes = req.Notes
	if req.StorageLocation != "" {
		mi.StorageLocation = req.StorageLocation
	}
	if req.BinNumber != "" {
		mi.BinNumber = req.BinNumber
	}

	if err := tx.Save(&mi).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to save inspection result")
	}

	if err := s.mirrorLineStage(tx, &mi, lineStage); err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, h := range hops {
		if err := s.appendHistory(tx, &mi, h.from, h.to, actor, "INSPECTION", mi.POReference, "", req.Notes); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to commit inspection")
	}

	for _, h := range hops {
		s.publishTransition(ctx, &mi, h.from, h.to, actor)
	}
	return s.GetByID(id)
}

// CreateAllocation reserves quantity on an in-storage instance
func (s *Service) CreateAllocation(ctx context.Context, actor authz.Actor, instanceID uint, req *AllocationRequest) (*MaterialAllocation, error) {
	if err := authz.Require(actor, authz.CapAllocate); err != nil {
		return nil, err
	}
	if req.ProjectReference == "" && req.WorkOrderReference == "" {
		return nil, apperrors.Validation("allocation requires a project or work order reference")
	}

	var mi MaterialInstance
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&mi, instanceID).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.NotFound("material instance %d not found", instanceID)
	}
	from := mi.LifecycleStatus

	if err := ApplyAllocation(&mi, req.QuantityAllocated); err != nil {
		tx.Rollback()
		return nil, err
	}

	if mi.LifecycleStatus == StatusInStorage {
		if err := ApplyTransition(&mi, StatusReserved); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	priority := req.Priority
	if priority == 0 {
		priority = 5
	}

	alloc := MaterialAllocation{
		MaterialInstanceID: mi.ID,
		AllocationNumber:   nextDocumentNumber("ALLOC"),
		ProjectReference:   req.ProjectReference,
		WorkOrderReference: req.WorkOrderReference,
		QuantityAllocated:  req.QuantityAllocated,
		QuantityIssued:     decimal.Zero,
		QuantityReturned:   decimal.Zero,
		UnitOfMeasure:      mi.UnitOfMeasure,
		IsActive:           true,
		AllocationDate:     time.Now().UTC(),
		RequiredDate:       req.RequiredDate,
		AllocatedByID:      actor.UserID,
		Priority:           priority,
		Notes:              req.Notes,
	}

	if err := tx.Create(&alloc).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to create allocation")
	}
	if err := tx.Save(&mi).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to save material instance")
	}
	if from != mi.LifecycleStatus {
		if err := s.appendHistory(tx, &mi, from, mi.LifecycleStatus, actor, "ALLOC", alloc.AllocationNumber, "", req.Notes); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to commit allocation")
	}

	if from != mi.LifecycleStatus {
		s.publishTransition(ctx, &mi, from, mi.LifecycleStatus, actor)
	}
	return &alloc, nil
}

// Issue moves allocated quantity into production use and advances the
// source PO line to work in progress.
func (s *Service) Issue(ctx context.Context, actor authz.Actor, allocationID uint, req *QuantityRequest) (*MaterialAllocation, error) {
	if err := authz.Require(actor, authz.CapAllocate); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	alloc, mi, err := s.lockAllocation(tx, allocationID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	from := mi.LifecycleStatus

	if err := ApplyIssue(mi, alloc, req.Quantity); err != nil {
		tx.Rollback()
		return nil, err
	}

	if mi.LifecycleStatus == StatusReserved || mi.LifecycleStatus == StatusInStorage {
		if err := ApplyTransition(mi, StatusIssued); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	now := time.Now().UTC()
	alloc.IssuedDate = &now
	alloc.IssuedByID = &actor.UserID

	if err := tx.Save(alloc).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to save allocation")
	}
	if err := tx.Save(mi).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to save material instance")
	}
	if err := s.mirrorLineStage(tx, mi, purchaseorder.StageWIP); err != nil {
		tx.Rollback()
		return nil, err
	}
	if from != mi.LifecycleStatus {
		if err := s.appendHistory(tx, mi, from, mi.LifecycleStatus, actor, "ISSUE", alloc.AllocationNumber, "", req.Notes); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to commit issue")
	}

	if from != mi.LifecycleStatus {
		s.publishTransition(ctx, mi, from, mi.LifecycleStatus, actor)
	}
	return alloc, nil
}

// Return brings issued quantity back to storage. When nothing remains
// issued or reserved the instance returns to in_storage.
func (s *Service) Return(ctx context.Context, actor authz.Actor, allocationID uint, req *QuantityRequest) (*MaterialAllocation, error) {
	if err := authz.Require(actor, authz.CapAllocate); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	alloc, mi, err := s.lockAllocation(tx, allocationID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	from := mi.LifecycleStatus

	if err := ApplyReturn(mi, alloc, req.Quantity); err != nil {
		tx.Rollback()
		return nil, err
	}

	if mi.IssuedQuantity.IsZero() && mi.LifecycleStatus == StatusIssued {
		if err := ApplyTransition(mi, StatusInStorage); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Save(alloc).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to save allocation")
	}
	if err := tx.Save(mi).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to save material instance")
	}
	if from != mi.LifecycleStatus {
		if err := s.appendHistory(tx, mi, from, mi.LifecycleStatus, actor, "RETURN", alloc.AllocationNumber, "", req.Notes); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to commit return")
	}

	if from != mi.LifecycleStatus {
		s.publishTransition(ctx, mi, from, mi.LifecycleStatus, actor)
	}
	return alloc, nil
}

// CancelAllocation releases an unissued reservation
func (s *Service) CancelAllocation(ctx context.Context, actor authz.Actor, allocationID uint) (*MaterialAllocation, error) {
	if err := authz.Require(actor, authz.CapAllocate); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	alloc, mi, err := s.lockAllocation(tx, allocationID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	from := mi.LifecycleStatus

	if err := ApplyCancelAllocation(mi, alloc); err != nil {
		tx.Rollback()
		return nil, err
	}

	if mi.ReservedQuantity.IsZero() && mi.LifecycleStatus == StatusReserved {
		if err := ApplyTransition(mi, StatusInStorage); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Save(alloc).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to save allocation")
	}
	if err := tx.Save(mi).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to save material instance")
	}
	if from != mi.LifecycleStatus {
		if err := s.appendHistory(tx, mi, from, mi.LifecycleStatus, actor, "ALLOC", alloc.AllocationNumber, "allocation cancelled", ""); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to commit cancellation")
	}

	if from != mi.LifecycleStatus {
		s.publishTransition(ctx, mi, from, mi.LifecycleStatus, actor)
	}
	return alloc, nil
}

// ListAllocations returns the allocations on an instance
func (s *Service) ListAllocations(instanceID uint) ([]MaterialAllocation, error) {
	var allocations []MaterialAllocation
	err := s.db.Where("material_instance_id = ?", instanceID).
		Order("allocation_date").Find(&allocations).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to list allocations")
	}
	return allocations, nil
}

// lockAllocation loads the allocation and its instance under row locks
func (s *Service) lockAllocation(tx *gorm.DB, allocationID uint) (*MaterialAllocation, *MaterialInstance, error) {
	var alloc MaterialAllocation
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&alloc, allocationID).Error; err != nil {
		return nil, nil, apperrors.NotFound("allocation %d not found", allocationID)
	}
	var mi MaterialInstance
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&mi, alloc.MaterialInstanceID).Error; err != nil {
		return nil, nil, apperrors.NotFound("material instance %d not found", alloc.MaterialInstanceID)
	}
	return &alloc, &mi, nil
}

// mirrorLineStage advances the source PO line stage when the move is legal.
// Instances created outside a PO have no line to mirror.
func (s *Service) mirrorLineStage(tx *gorm.DB, mi *MaterialInstance, to purchaseorder.MaterialStage) error {
	if mi.POLineItemID == nil {
		return nil
	}
	var line purchaseorder.POLineItem
	if err := tx.First(&line, *mi.POLineItemID).Error; err != nil {
		return apperrors.Wrap(apperrors.KindUnknown, err, "failed to load PO line %d", *mi.POLineItemID)
	}
	if line.MaterialStage == to || !purchaseorder.CanTransitionStage(line.MaterialStage, to) {
		return nil
	}
	if err := tx.Model(&line).Update("material_stage", to).Error; err != nil {
		return apperrors.Wrap(apperrors.KindUnknown, err, "failed to update PO line stage")
	}
	return nil
}

func (s *Service) appendHistory(tx *gorm.DB, mi *MaterialInstance, from, to LifecycleStatus, actor authz.Actor, refType, refNumber, reason, notes string) error {
	history := MaterialStatusHistory{
		MaterialInstanceID: mi.ID,
		FromStatus:         from,
		ToStatus:           to,
		ChangedByID:        actor.UserID,
		ReferenceType:      refType,
		ReferenceNumber:    refNumber,
		Reason:             reason,
		Notes:              notes,
	}
	if err := tx.Create(&history).Error; err != nil {
		return apperrors.Wrap(apperrors.KindUnknown, err, "failed to record status history")
	}
	return nil
}

func (s *Service) publishTransition(ctx context.Context, mi *MaterialInstance, from, to LifecycleStatus, actor authz.Actor) {
	s.publisher.Publish(ctx, events.DomainEvent{
		EntityType: "material_instance",
		EntityID:   mi.ID,
		FromState:  string(from),
		ToState:    string(to),
		Actor:      actor.UserID,
		Timestamp:  time.Now().UTC(),
	})
}

// nextDocumentNumber formats a document number with a random suffix
func nextDocumentNumber(prefix string) string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("20060102"), suffix)
}
