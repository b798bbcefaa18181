// internal/domain/material/entity.go
package material

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Type represents the material type
type Type string

const (
	TypeRaw      Type = "raw"
	TypeWIP      Type = "wip"
	TypeFinished Type = "finished"
)

// Category classifies materials, optionally in a hierarchy
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Code        string `gorm:"uniqueIndex;not null;size:20" json:"code"`
	Description string `gorm:"type:text" json:"description"`
	ParentID    *uint  `gorm:"index" json:"parent_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Parent *Category `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
}

// Material is the catalog definition of a purchasable part or stock item.
// Physical lots received against POs are tracked separately as instances.
type Material struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ItemNumber    string `gorm:"uniqueIndex;not null;size:100" json:"item_number"`
	Title         string `gorm:"size:200;not null;index" json:"title"`
	Specification string `gorm:"size:200" json:"specification"`
	Description   string `gorm:"type:text" json:"description"`

	MaterialType  Type  `gorm:"not null;default:'raw'" json:"material_type"`
	CategoryID    *uint `gorm:"index" json:"category_id"`
	UnitOfMeasure string `gorm:"size:20;not null;default:'units'" json:"unit_of_measure"`

	MinStockLevel decimal.Decimal  `gorm:"type:numeric(14,4);not null;default:0" json:"min_stock_level"`
	MaxStockLevel *decimal.Decimal `gorm:"type:numeric(14,4)" json:"max_stock_level"`

	// Compliance and documentation
	MilSpec             string `gorm:"size:100" json:"mil_spec"`
	AmsSpec             string `gorm:"size:100" json:"ams_spec"`
	IsHazardous         bool   `gorm:"default:false" json:"is_hazardous"`
	ShelfLifeDays       int    `gorm:"default:0" json:"shelf_life_days"`
	StorageRequirements string `gorm:"type:text" json:"storage_requirements"`

	// Cost tracking, cents
	UnitCost             int64           `gorm:"default:0" json:"unit_cost"`
	MinimumOrderQuantity decimal.Decimal `gorm:"type:numeric(14,4);default:0" json:"minimum_order_quantity"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName overrides
func (Category) TableName() string { return "material_categories" }
func (Material) TableName() string { return "materials" }
