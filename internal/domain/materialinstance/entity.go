// internal/domain/materialinstance/entity.go
package materialinstance

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LifecycleStatus tracks a material instance through its lifecycle
type LifecycleStatus string

const (
	StatusOrdered      LifecycleStatus = "ordered"       // on PO, awaiting delivery
	StatusReceived     LifecycleStatus = "received"      // physically received, pending inspection
	StatusInInspection LifecycleStatus = "in_inspection" // under QC inspection
	StatusInStorage    LifecycleStatus = "in_storage"    // passed inspection, in warehouse
	StatusReserved     LifecycleStatus = "reserved"      // reserved for a project/work order
	StatusIssued       LifecycleStatus = "issued"        // issued to production
	StatusInProduction LifecycleStatus = "in_production" // being used in manufacturing
	StatusCompleted    LifecycleStatus = "completed"     // incorporated into finished goods
	StatusRejected     LifecycleStatus = "rejected"      // failed inspection
	StatusScrapped     LifecycleStatus = "scrapped"      // written off
	StatusReturned     LifecycleStatus = "returned"      // returned to supplier
)

// Condition classifies the physical condition of the material
type Condition string

const (
	ConditionNew           Condition = "new"
	ConditionServiceable   Condition = "serviceable"
	ConditionUnserviceable Condition = "unserviceable"
	ConditionOverhauled    Condition = "overhauled"
	ConditionRepairable    Condition = "repairable"
	ConditionScrap         Condition = "scrap"
)

// MaterialInstance represents a physical lot of material with full
// traceability back to the PO line and GRN line it arrived on. The
// back-references are immutable after creation.
type MaterialInstance struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ItemNumber string `gorm:"uniqueIndex;not null;size:50" json:"item_number"`
	Title      string `gorm:"size:200;not null" json:"title"`

	MaterialID uint `gorm:"not null;index" json:"material_id"`

	// Source traceability
	PurchaseOrderID *uint `gorm:"index" json:"purchase_order_id"`
	POLineItemID    *uint `gorm:"index" json:"po_line_item_id"`
	GRNLineItemID   *uint `gorm:"index" json:"grn_line_item_id"`
	SupplierID      *uint `gorm:"index" json:"supplier_id"`

	Specification string `gorm:"size:200" json:"specification"`
	Revision      string `gorm:"size:20" json:"revision"`

	// Quantity tracking, numeric(14,4); reserved + issued never exceed quantity
	Quantity         decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"quantity"`
	ReservedQuantity decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0" json:"reserved_quantity"`
	IssuedQuantity   decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0" json:"issued_quantity"`
	UnitOfMeasure    string          `gorm:"size:20;not null" json:"unit_of_measure"`
	UnitCost         int64           `gorm:"default:0" json:"unit_cost"` // cents

	// Lot traceability
	LotNumber    string `gorm:"size:100;index" json:"lot_number"`
	BatchNumber  string `gorm:"size:100" json:"batch_number"`
	SerialNumber string `gorm:"size:100;index" json:"serial_number"`
	HeatNumber   string `gorm:"size:100;index" json:"heat_number"`

	LifecycleStatus LifecycleStatus `gorm:"not null;default:'ordered';index" json:"lifecycle_status"`
	Condition       Condition       `gorm:"not null;default:'new'" json:"condition"`

	// Dates
	OrderDate       *time.Time `json:"order_date"`
	ReceivedDate    *time.Time `json:"received_date"`
	InspectionDate  *time.Time `json:"inspection_date"`
	ManufactureDate *time.Time `json:"manufacture_date"`
	ExpiryDate      *time.Time `json:"expiry_date"`

	StorageLocation string `gorm:"size:100" json:"storage_location"`
	BinNumber       string `gorm:"size:50" json:"bin_number"`

	// Certification
	CertificateNumber   string `gorm:"size:100" json:"certificate_number"`
	CertificateReceived bool   `gorm:"default:false" json:"certificate_received"`
	InspectionPassed    *bool  `json:"inspection_passed"`
	InspectionNotes     string `gorm:"type:text" json:"inspection_notes"`

	// Quick-lookup references
	POReference        string `gorm:"size:50" json:"po_reference"`
	ProjectReference   string `gorm:"size:100" json:"project_reference"`
	WorkOrderReference string `gorm:"size:100" json:"work_order_reference"`

	ReceivedByID  *uint `gorm:"index" json:"received_by_id"`
	InspectedByID *uint `gorm:"index" json:"inspected_by_id"`

	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Allocations   []MaterialAllocation    `gorm:"foreignKey:MaterialInstanceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"allocations,omitempty"`
	StatusHistory []MaterialStatusHistory `gorm:"foreignKey:MaterialInstanceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// MaterialAllocation reserves part of an instance for a project or work order
type MaterialAllocation struct {
	ID                 uint `gorm:"primaryKey" json:"id"`
	MaterialInstanceID uint `gorm:"not null;index" json:"material_instance_id"`

	AllocationNumber   string `gorm:"uniqueIndex;not null;size:50" json:"allocation_number"`
	ProjectReference   string `gorm:"size:100" json:"project_reference"`
	WorkOrderReference string `gorm:"size:100" json:"work_order_reference"`

	QuantityAllocated decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"quantity_allocated"`
	QuantityIssued    decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0" json:"quantity_issued"`
	QuantityReturned  decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0" json:"quantity_returned"`
	UnitOfMeasure     string          `gorm:"size:20;not null" json:"unit_of_measure"`

	IsActive    bool `gorm:"default:true" json:"is_active"`
	IsFulfilled bool `gorm:"default:false" json:"is_fulfilled"`

	AllocationDate time.Time  `gorm:"not null" json:"allocation_date"`
	RequiredDate   *time.Time `json:"required_date"`
	IssuedDate     *time.Time `json:"issued_date"`

	AllocatedByID uint  `gorm:"not null;index" json:"allocated_by_id"`
	IssuedByID    *uint `gorm:"index" json:"issued_by_id"`

	Priority int    `gorm:"default:5" json:"priority"` // 1=highest, 10=lowest
	Notes    string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MaterialStatusHistory is the append-only lifecycle audit trail.
// Rows are never mutated or deleted.
type MaterialStatusHistory struct {
	ID                 uint `gorm:"primaryKey" json:"id"`
	MaterialInstanceID uint `gorm:"not null;index" json:"material_instance_id"`

	FromStatus LifecycleStatus `gorm:"size:30" json:"from_status"`
	ToStatus   LifecycleStatus `gorm:"not null;size:30" json:"to_status"`

	ChangedByID uint `gorm:"not null;index" json:"changed_by_id"`

	ReferenceType   string `gorm:"size:50" json:"reference_type"` // PO, GRN, ALLOC, ISSUE
	ReferenceNumber string `gorm:"size:100" json:"reference_number"`
	Reason          string `gorm:"type:text" json:"reason"`
	Notes           string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (MaterialInstance) TableName() string      { return "material_instances" }
func (MaterialAllocation) TableName() string    { return "material_allocations" }
func (MaterialStatusHistory) TableName() string { return "material_status_history" }

// AvailableQuantity returns quantity minus reservations and issues
func (mi *MaterialInstance) AvailableQuantity() decimal.Decimal {
	available := mi.Quantity.Sub(mi.ReservedQuantity).Sub(mi.IssuedQuantity)
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}

// IsAvailable reports whether the instance can be allocated from
func (mi *MaterialInstance) IsAvailable() bool {
	return mi.LifecycleStatus == StatusInStorage && mi.AvailableQuantity().IsPositive()
}

// IsExpired reports whether the material is past its expiry date
func (mi *MaterialInstance) IsExpired(now time.Time) bool {
	return mi.ExpiryDate != nil && now.After(*mi.ExpiryDate)
}

// OutstandingQuantity returns the allocated quantity yet to be issued
func (a *MaterialAllocation) OutstandingQuantity() decimal.Decimal {
	outstanding := a.QuantityAllocated.Sub(a.QuantityIssued)
	if outstanding.IsNegative() {
		return decimal.Zero
	}
	return outstanding
}

// ReturnableQuantity returns the issued quantity not yet returned
func (a *MaterialAllocation) ReturnableQuantity() decimal.Decimal {
	returnable := a.QuantityIssued.Sub(a.QuantityReturned)
	if returnable.IsNegative() {
		return decimal.Zero
	}
	return returnable
}
