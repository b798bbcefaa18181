// internal/domain/receiving/entity.go
package receiving

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Status represents the goods receipt note status
type Status string

const (
	StatusDraft             Status = "draft"
	StatusPendingInspection Status = "pending_inspection"
	StatusInspectionPassed  Status = "inspection_passed"
	StatusInspectionFailed  Status = "inspection_failed"
	StatusAccepted          Status = "accepted"
	StatusRejected          Status = "rejected"
	StatusPartial           Status = "partial" // accepted with some lines rejected
)

// InspectionResult values recorded per GRN line
const (
	InspectionPending = "pending"
	InspectionPassed  = "passed"
	InspectionFailed  = "failed"
)

// statusTransitions is the single source of truth for legal GRN moves.
// Inspection may run directly from draft.
var statusTransitions = map[Status][]Status{
	StatusDraft:             {StatusPendingInspection, StatusInspectionPassed, StatusInspectionFailed},
	StatusPendingInspection: {StatusInspectionPassed, StatusInspectionFailed},
	StatusInspectionPassed:  {StatusAccepted, StatusPartial},
	StatusInspectionFailed:  {StatusRejected},
}

// CanTransition reports whether a GRN status move is legal
func CanTransition(from, to Status) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidTransitions returns the statuses reachable from the given status
func ValidTransitions(from Status) []Status {
	return statusTransitions[from]
}

// GoodsReceiptNote records one delivery received against a purchase order
type GoodsReceiptNote struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	GRNNumber string `gorm:"uniqueIndex;not null;size:50" json:"grn_number"`

	PurchaseOrderID uint  `gorm:"not null;index" json:"purchase_order_id"`
	ReceivedByID    uint  `gorm:"not null;index" json:"received_by_id"`
	InspectedByID   *uint `gorm:"index" json:"inspected_by_id"`

	Status Status `gorm:"not null;default:'draft';index" json:"status"`

	ReceiptDate    time.Time  `gorm:"not null" json:"receipt_date"`
	InspectionDate *time.Time `json:"inspection_date"`

	// Shipping details
	DeliveryNoteNumber string `gorm:"size:100" json:"delivery_note_number"`
	InvoiceNumber      string `gorm:"size:100" json:"invoice_number"`
	Carrier            string `gorm:"size:100" json:"carrier"`
	TrackingNumber     string `gorm:"size:100" json:"tracking_number"`

	// Documentation received with the shipment
	PackingSlipReceived bool `gorm:"default:false" json:"packing_slip_received"`
	CocReceived         bool `gorm:"default:false" json:"coc_received"` // certificate of conformance
	MtrReceived         bool `gorm:"default:false" json:"mtr_received"` // mill test report

	StorageLocation string `gorm:"size:100" json:"storage_location"`
	Notes           string `gorm:"type:text" json:"notes"`
	InspectionNotes string `gorm:"type:text" json:"inspection_notes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	LineItems []GRNLineItem `gorm:"foreignKey:GoodsReceiptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"line_items"`
}

// GRNLineItem tracks received quantities for one PO line
type GRNLineItem struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	GoodsReceiptID uint `gorm:"not null;index" json:"goods_receipt_id"`
	POLineItemID   uint `gorm:"not null;index" json:"po_line_item_id"`

	QuantityReceived decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"quantity_received"`
	QuantityAccepted decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0" json:"quantity_accepted"`
	QuantityRejected decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0" json:"quantity_rejected"`
	UnitOfMeasure    string          `gorm:"size:20;not null" json:"unit_of_measure"`

	// Lot traceability
	LotNumber     string `gorm:"size:100" json:"lot_number"`
	BatchNumber   string `gorm:"size:100" json:"batch_number"`
	SerialNumbers string `gorm:"type:text" json:"serial_numbers"` // JSON array for serialized items
	HeatNumber    string `gorm:"size:100" json:"heat_number"`

	ManufactureDate *time.Time `json:"manufacture_date"`
	ExpiryDate      *time.Time `json:"expiry_date"`

	InspectionStatus string `gorm:"size:50;default:'pending'" json:"inspection_status"`
	InspectionNotes  string `gorm:"type:text" json:"inspection_notes"`

	RejectionReason string `gorm:"type:text" json:"rejection_reason"`
	NCRNumber       string `gorm:"size:50" json:"ncr_number"` // non-conformance report

	StorageLocation string `gorm:"size:100" json:"storage_location"`
	BinNumber       string `gorm:"size:50" json:"bin_number"`

	// Set after acceptance creates the material instance
	MaterialInstanceID *uint `gorm:"index" json:"material_instance_id"`

	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (GoodsReceiptNote) TableName() string { return "goods_receipt_notes" }
func (GRNLineItem) TableName() string      { return "grn_line_items" }
