// internal/domain/supplier/entity.go
package supplier

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Status represents the supplier status
type Status string

const (
	StatusActive          Status = "active"
	StatusInactive        Status = "inactive"
	StatusPendingApproval Status = "pending_approval"
	StatusSuspended       Status = "suspended"
	StatusBlacklisted     Status = "blacklisted"
)

// Tier classifies the supplier relationship
type Tier string

const (
	Tier1 Tier = "tier_1" // primary/direct suppliers
	Tier2 Tier = "tier_2" // secondary suppliers
	Tier3 Tier = "tier_3" // tertiary/backup suppliers
)

// Supplier represents a material source
type Supplier struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:200;not null;index" json:"name"`
	Code string `gorm:"uniqueIndex;not null;size:50" json:"code"`

	Status Status `gorm:"not null;default:'pending_approval'" json:"status"`
	Tier   Tier   `gorm:"not null;default:'tier_2'" json:"tier"`

	ContactName  string `gorm:"size:200" json:"contact_name"`
	ContactEmail string `gorm:"size:255" json:"contact_email"`
	ContactPhone string `gorm:"size:50" json:"contact_phone"`

	AddressLine1 string `gorm:"size:255" json:"address_line1"`
	AddressLine2 string `gorm:"size:255" json:"address_line2"`
	City         string `gorm:"size:100" json:"city"`
	State        string `gorm:"size:100" json:"state"`
	PostalCode   string `gorm:"size:20" json:"postal_code"`
	Country      string `gorm:"size:100;not null;default:'USA'" json:"country"`

	// Certifications and compliance
	IsAS9100Certified bool   `gorm:"default:false" json:"is_as9100_certified"`
	IsNadcapCertified bool   `gorm:"default:false" json:"is_nadcap_certified"`
	IsITARCompliant   bool   `gorm:"default:false" json:"is_itar_compliant"`
	CageCode          string `gorm:"size:20" json:"cage_code"`

	// Performance metrics, 0.00 to 5.00
	QualityRating  decimal.Decimal `gorm:"type:numeric(3,2);default:0" json:"quality_rating"`
	DeliveryRating decimal.Decimal `gorm:"type:numeric(3,2);default:0" json:"delivery_rating"`

	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Materials []SupplierMaterial `gorm:"foreignKey:SupplierID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"materials,omitempty"`
}

// SupplierMaterial links a supplier to a material it provides
type SupplierMaterial struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	SupplierID uint `gorm:"not null;index" json:"supplier_id"`
	MaterialID uint `gorm:"not null;index" json:"material_id"`

	SupplierPartNumber   string          `gorm:"size:100" json:"supplier_part_number"`
	UnitPrice            int64           `gorm:"not null;default:0" json:"unit_price"` // cents
	Currency             string          `gorm:"size:3;default:'USD'" json:"currency"`
	MinimumOrderQuantity decimal.Decimal `gorm:"type:numeric(14,4);default:0" json:"minimum_order_quantity"`
	LeadTimeDays         int             `gorm:"default:0" json:"lead_time_days"`
	IsPreferred          bool            `gorm:"default:false" json:"is_preferred"`
	Notes                string          `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Supplier) TableName() string         { return "suppliers" }
func (SupplierMaterial) TableName() string { return "supplier_materials" }

// CanReceiveOrders reports whether new POs may name this supplier
func (s *Supplier) CanReceiveOrders() bool {
	return s.Status == StatusActive
}
