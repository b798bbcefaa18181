// internal/domain/material/service.go
package material

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles material catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new material service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateRequest represents material creation data
type CreateRequest struct {
	ItemNumber           string          `json:"item_number" binding:"required"`
	Title                string          `json:"title" binding:"required"`
	Specification        string          `json:"specification"`
	Description          string          `json:"description"`
	MaterialType         string          `json:"material_type"`
	CategoryID           *uint           `json:"category_id"`
	UnitOfMeasure        string          `json:"unit_of_measure"`
	MinStockLevel        decimal.Decimal `json:"min_stock_level"`
	MilSpec              string          `json:"mil_spec"`
	AmsSpec              string          `json:"ams_spec"`
	IsHazardous          bool            `json:"is_hazardous"`
	ShelfLifeDays        int             `json:"shelf_life_days"`
	StorageRequirements  string          `json:"storage_requirements"`
	UnitCost             int64           `json:"unit_cost"`
	MinimumOrderQuantity decimal.Decimal `json:"minimum_order_quantity"`
}

// UpdateRequest represents material update data
type UpdateRequest struct {
	Title                *string          `json:"title"`
	Specification        *string          `json:"specification"`
	Description          *string          `json:"description"`
	MaterialType         *string          `json:"material_type"`
	CategoryID           *uint            `json:"category_id"`
	UnitOfMeasure        *string          `json:"unit_of_measure"`
	MinStockLevel        *decimal.Decimal `json:"min_stock_level"`
	MaxStockLevel        *decimal.Decimal `json:"max_stock_level"`
	MilSpec              *string          `json:"mil_spec"`
	AmsSpec              *string          `json:"ams_spec"`
	IsHazardous          *bool            `json:"is_hazardous"`
	ShelfLifeDays        *int             `json:"shelf_life_days"`
	StorageRequirements  *string          `json:"storage_requirements"`
	UnitCost             *int64           `json:"unit_cost"`
	MinimumOrderQuantity *decimal.Decimal `json:"minimum_order_quantity"`
	IsActive             *bool            `json:"is_active"`
}

// Create adds a material to the catalog
func (s *Service) Create(req *CreateRequest) (*Material, error) {
	itemNumber := strings.ToUpper(strings.TrimSpace(req.ItemNumber))

	var existing Material
	if err := s.db.Where("item_number = ?", itemNumber).First(&existing).Error; err == nil {
		return nil, apperrors.Conflict("material with item number %s already exists", itemNumber)
	}

	if req.CategoryID != nil {
		var cat Category
		if err := s.db.First(&cat, *req.CategoryID).Error; err != nil {
			return nil, apperrors.Validation("material category %d not found", *req.CategoryID)
		}
	}

	mat := Material{
		ItemNumber:           itemNumber,
		Title:                req.Title,
		Specification:        req.Specification,
		Description:          req.Description,
		MaterialType:         TypeRaw,
		CategoryID:           req.CategoryID,
		UnitOfMeasure:        req.UnitOfMeasure,
		MinStockLevel:        req.MinStockLevel,
		MilSpec:              req.MilSpec,
		AmsSpec:              req.AmsSpec,
		IsHazardous:          req.IsHazardous,
		ShelfLifeDays:        req.ShelfLifeDays,
		StorageRequirements:  req.StorageRequirements,
		UnitCost:             req.UnitCost,
		MinimumOrderQuantity: req.MinimumOrderQuantity,
		IsActive:             true,
	}
	if req.MaterialType != "" {
		mat.MaterialType = Type(req.MaterialType)
	}
	if mat.UnitOfMeasure == "" {
		mat.UnitOfMeasure = "units"
	}

	if err := s.db.Create(&mat).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to create material")
	}
	return &mat, nil
}

// GetByID retrieves a material with its category
func (s *Service) GetByID(id uint) (*Material, error) {
	var mat Material
	if err := s.db.Preload("Category").First(&mat, id).Error; err != nil {
		return nil, apperrors.NotFound("material %d not found", id)
	}
	return &mat, nil
}

// GetByItemNumber retrieves a material by its catalog item number
func (s *Service) GetByItemNumber(itemNumber string) (*Material, error) {
	var mat Material
	if err := s.db.Where("item_number = ?", strings.ToUpper(itemNumber)).First(&mat).Error; err != nil {
		return nil, apperrors.NotFound("material %s not found", itemNumber)
	}
	return &mat, nil
}

// List returns catalog materials with optional filters
func (s *Service) List(materialType, search string, categoryID *uint, activeOnly bool, limit, offset int) ([]Material, int64, error) {
	query := s.db.Model(&Material{})
	if materialType != "" {
		query = query.Where("material_type = ?", materialType)
	}
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("item_number ILIKE ? OR title ILIKE ? OR specification ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindUnknown, err, "failed to count materials")
	}

	var materials []Material
	if err := query.Order("item_number").Limit(limit).Offset(offset).Find(&materials).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindUnknown, err, "failed to list materials")
	}
	return materials, total, nil
}

// Update modifies catalog data
func (s *Service) Update(id uint, req *UpdateRequest) (*Material, error) {
	var mat Material
	if err := s.db.First(&mat, id).Error; err != nil {
		return nil, apperrors.NotFound("material %d not found", id)
	}

	if req.Title != nil {
		mat.Title = *req.Title
	}
	if req.Specification != nil {
		mat.Specification = *req.Specification
	}
	if req.Description != nil {
		mat.Description = *req.Description
	}
	if req.MaterialType != nil {
		mat.MaterialType = Type(*req.MaterialType)
	}
	if req.CategoryID != nil {
		var cat Category
		if err := s.db.First(&cat, *req.CategoryID).Error; err != nil {
			return nil, apperrors.Validation("material category %d not found", *req.CategoryID)
		}
		mat.CategoryID = req.CategoryID
	}
	if req.UnitOfMeasure != nil {
		mat.UnitOfMeasure = *req.UnitOfMeasure
	}
	if req.MinStockLevel != nil {
		mat.MinStockLevel = *req.MinStockLevel
	}
	if req.MaxStockLevel != nil {
		mat.MaxStockLevel = req.MaxStockLevel
	}
	if req.MilSpec != nil {
		mat.MilSpec = *req.MilSpec
	}
	if req.AmsSpec != nil {
		mat.AmsSpec = *req.AmsSpec
	}
	if req.IsHazardous != nil {
		mat.IsHazardous = *req.IsHazardous
	}
	if req.ShelfLifeDays != nil {
		mat.ShelfLifeDays = *req.ShelfLifeDays
	}
	if req.StorageRequirements != nil {
		mat.StorageRequirements = *req.StorageRequirements
	}
	if req.UnitCost != nil {
		mat.UnitCost = *req.UnitCost
	}
	if req.MinimumOrderQuantity != nil {
		mat.MinimumOrderQuantity = *req.MinimumOrderQuantity
	}
	if req.IsActive != nil {
		mat.IsActive = *req.IsActive
	}

	if err := s.db.Save(&mat).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to update material")
	}
	return &mat, nil
}

// CreateCategory adds a material category
func (s *Service) CreateCategory(cat *Category) (*Category, error) {
	if cat.ParentID != nil {
		var parent Category
		if err := s.db.First(&parent, *cat.ParentID).Error; err != nil {
			return nil, apperrors.Validation("parent category %d not found", *cat.ParentID)
		}
	}

	var existing Category
	if err := s.db.Where("code = ?", cat.Code).First(&existing).Error; err == nil {
		return nil, apperrors.Conflict("category with code %s already exists", cat.Code)
	}

	if err := s.db.Create(cat).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to create category")
	}
	return cat, nil
}

// ListCategories returns all material categories
func (s *Service) ListCategories() ([]Category, error) {
	var categories []Category
	if err := s.db.Order("code").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to list categories")
	}
	return categories, nil
}
