// internal/domain/purchaseorder/entity.go
package purchaseorder

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Status represents the purchase order status
type Status string

const (
	StatusDraft             Status = "draft"
	StatusPendingApproval   Status = "pending_approval"
	StatusApproved          Status = "approved"
	StatusRejected          Status = "rejected"
	StatusOrdered           Status = "ordered"
	StatusPartiallyReceived Status = "partially_received"
	StatusReceived          Status = "received"
	StatusClosed            Status = "closed"
	StatusCancelled         Status = "cancelled"
)

// Priority represents purchase order priority
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
	PriorityAOG      Priority = "aog" // aircraft on ground
)

// ApprovalAction represents a workflow action recorded in history
type ApprovalAction string

const (
	ActionSubmitted ApprovalAction = "submitted"
	ActionApproved  ApprovalAction = "approved"
	ActionRejected  ApprovalAction = "rejected"
	ActionReturned  ApprovalAction = "returned"
	ActionOrdered   ApprovalAction = "ordered"
	ActionClosed    ApprovalAction = "closed"
	ActionCancelled ApprovalAction = "cancelled"
)

// MaterialStage tracks the coarse production position of a line's material
type MaterialStage string

const (
	StageOnOrder       MaterialStage = "on_order"
	StageInInspection  MaterialStage = "in_inspection"
	StageRawMaterial   MaterialStage = "raw_material"
	StageWIP           MaterialStage = "wip"
	StageFinishedGoods MaterialStage = "finished_goods"
	StageConsumed      MaterialStage = "consumed"
	StageScrapped      MaterialStage = "scrapped"
)

// stageTransitions is the single source of truth for legal material stage moves
var stageTransitions = map[MaterialStage][]MaterialStage{
	StageOnOrder:       {StageInInspection, StageRawMaterial},
	StageInInspection:  {StageRawMaterial, StageScrapped},
	StageRawMaterial:   {StageWIP, StageConsumed},
	StageWIP:           {StageFinishedGoods, StageScrapped},
	StageFinishedGoods: {StageConsumed, StageScrapped},
}

// CanTransitionStage reports whether a stage move is legal
func CanTransitionStage(from, to MaterialStage) bool {
	for _, next := range stageTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PurchaseOrder represents the purchase order header
type PurchaseOrder struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	PONumber       string `gorm:"uniqueIndex;not null;size:50" json:"po_number"`
	RevisionNumber int    `gorm:"not null;default:1" json:"revision_number"`

	SupplierID   uint  `gorm:"not null;index" json:"supplier_id"`
	CreatedByID  uint  `gorm:"not null;index" json:"created_by_id"`
	ApprovedByID *uint `gorm:"index" json:"approved_by_id"`

	Status   Status   `gorm:"not null;default:'draft';index" json:"status"`
	Priority Priority `gorm:"not null;default:'normal'" json:"priority"`

	// Financial information, in cents. TotalAmount is always derived.
	SubtotalAmount int64  `gorm:"not null;default:0" json:"subtotal_amount"`
	TaxAmount      int64  `gorm:"not null;default:0" json:"tax_amount"`
	ShippingAmount int64  `gorm:"not null;default:0" json:"shipping_amount"`
	DiscountAmount int64  `gorm:"not null;default:0" json:"discount_amount"`
	TotalAmount    int64  `gorm:"not null;default:0" json:"total_amount"`
	Currency       string `gorm:"size:3;default:'USD'" json:"currency"`

	// Approval workflow
	ApprovalThreshold int64  `gorm:"not null;default:0" json:"approval_threshold"`
	ApprovalNotes     string `gorm:"type:text" json:"approval_notes"`
	RejectionReason   string `gorm:"type:text" json:"rejection_reason"`

	// Dates
	PODate               time.Time  `gorm:"not null" json:"po_date"`
	RequiredDate         *time.Time `json:"required_date"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`
	ApprovedDate         *time.Time `json:"approved_date"`
	OrderedDate          *time.Time `json:"ordered_date"`
	ActualDeliveryDate   *time.Time `json:"actual_delivery_date"`

	// Shipping and references
	ShippingMethod     string `gorm:"size:100" json:"shipping_method"`
	ShippingAddress    string `gorm:"type:text" json:"shipping_address"`
	TrackingNumber     string `gorm:"size:100" json:"tracking_number"`
	RequisitionNumber  string `gorm:"size:100" json:"requisition_number"`
	ProjectReference   string `gorm:"size:100" json:"project_reference"`
	WorkOrderReference string `gorm:"size:100" json:"work_order_reference"`

	PaymentTerms  string `gorm:"size:100" json:"payment_terms"`
	DeliveryTerms string `gorm:"size:100" json:"delivery_terms"`
	Notes         string `gorm:"type:text" json:"notes"`
	InternalNotes string `gorm:"type:text" json:"internal_notes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	LineItems       []POLineItem        `gorm:"foreignKey:PurchaseOrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"line_items"`
	ApprovalHistory []POApprovalHistory `gorm:"foreignKey:PurchaseOrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"approval_history,omitempty"`
}

// POLineItem represents one ordered material row within a purchase order
type POLineItem struct {
	ID              uint `gorm:"primaryKey" json:"id"`
	PurchaseOrderID uint `gorm:"not null;index" json:"purchase_order_id"`
	MaterialID      uint `gorm:"not null;index" json:"material_id"`
	LineNumber      int  `gorm:"not null" json:"line_number"`

	// Quantity tracking, numeric(14,4)
	QuantityOrdered  decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"quantity_ordered"`
	QuantityReceived decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0" json:"quantity_received"`
	QuantityAccepted decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0" json:"quantity_accepted"`
	QuantityRejected decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0" json:"quantity_rejected"`
	UnitOfMeasure    string          `gorm:"size:20;not null" json:"unit_of_measure"`

	// Pricing: unit price in cents, discount as percent
	UnitPrice       int64           `gorm:"not null" json:"unit_price"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discount_percent"`
	TotalPrice      int64           `gorm:"not null" json:"total_price"`

	MaterialStage MaterialStage `gorm:"not null;default:'on_order'" json:"material_stage"`

	RequiredDate  *time.Time `json:"required_date"`
	PromisedDate  *time.Time `json:"promised_date"`
	Specification string     `gorm:"size:200" json:"specification"`
	Revision      string     `gorm:"size:20" json:"revision"`
	Notes         string     `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// POApprovalHistory is an append-only audit record of one workflow action.
// Rows are never mutated or deleted.
type POApprovalHistory struct {
	ID              uint `gorm:"primaryKey" json:"id"`
	PurchaseOrderID uint `gorm:"not null;index" json:"purchase_order_id"`
	UserID          uint `gorm:"not null;index" json:"user_id"`

	Action     ApprovalAction `gorm:"not null" json:"action"`
	FromStatus Status         `gorm:"size:30" json:"from_status"`
	ToStatus   Status         `gorm:"not null;size:30" json:"to_status"`
	Comments   string         `gorm:"type:text" json:"comments"`

	// Snapshot of the PO at the time of the action
	POTotalAtAction    int64 `gorm:"not null" json:"po_total_at_action"`
	PORevisionAtAction int   `gorm:"not null" json:"po_revision_at_action"`

	IPAddress string    `gorm:"size:50" json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (PurchaseOrder) TableName() string     { return "purchase_orders" }
func (POLineItem) TableName() string        { return "po_line_items" }
func (POApprovalHistory) TableName() string { return "po_approval_history" }

// CalculateLineTotal computes a line total in cents from quantity, unit price
// and discount percent.
func CalculateLineTotal(quantity decimal.Decimal, unitPrice int64, discountPercent decimal.Decimal) int64 {
	gross := quantity.Mul(decimal.NewFromInt(unitPrice))
	discount := gross.Mul(discountPercent).Div(decimal.NewFromInt(100))
	return gross.Sub(discount).Round(0).IntPart()
}

// CalculateTotal recomputes the line's total price
func (li *POLineItem) CalculateTotal() {
	li.TotalPrice = CalculateLineTotal(li.QuantityOrdered, li.UnitPrice, li.DiscountPercent)
}

// IsFullyReceived reports whether the line has been received in full
func (li *POLineItem) IsFullyReceived() bool {
	return li.QuantityReceived.GreaterThanOrEqual(li.QuantityOrdered)
}

// OutstandingQuantity returns the quantity yet to be received
func (li *POLineItem) OutstandingQuantity() decimal.Decimal {
	outstanding := li.QuantityOrdered.Sub(li.QuantityReceived)
	if outstanding.IsNegative() {
		return decimal.Zero
	}
	return outstanding
}

// CalculateTotals recomputes subtotal and total from line items.
// total = subtotal + tax + shipping - discount, always.
func (po *PurchaseOrder) CalculateTotals() {
	var subtotal int64
	for i := range po.LineItems {
		subtotal += po.LineItems[i].TotalPrice
	}
	po.SubtotalAmount = subtotal
	po.TotalAmount = subtotal + po.TaxAmount + po.ShippingAmount - po.DiscountAmount
}

// RecordEdit bumps the revision and recomputes totals. Every successful
// mutation after creation carries a new revision number.
func (po *PurchaseOrder) RecordEdit() {
	po.RevisionNumber++
	po.CalculateTotals()
}

// IsEditable reports whether the PO can still be modified
func (po *PurchaseOrder) IsEditable() bool {
	return po.Status == StatusDraft
}

// CanBeCancelled reports whether the PO can still be cancelled
func (po *PurchaseOrder) CanBeCancelled() bool {
	return po.Status != StatusReceived && po.Status != StatusClosed && po.Status != StatusCancelled
}

// DeriveReceiptStatus returns the PO status implied by the line quantities:
// received when every line is fully received, otherwise partially_received.
func (po *PurchaseOrder) DeriveReceiptStatus() Status {
	for i := range po.LineItems {
		if !po.LineItems[i].IsFullyReceived() {
			return StatusPartiallyReceived
		}
	}
	return StatusReceived
}

// GeneratePONumber formats a PO number from a date and unique suffix
func GeneratePONumber(now time.Time, suffix string) string {
	return fmt.Sprintf("PO-%s-%s", now.Format("20060102"), suffix)
}
