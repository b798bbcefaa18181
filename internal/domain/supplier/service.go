// internal/domain/supplier/service.go
package supplier

import (
	"strings"

	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles supplier business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new supplier service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateRequest represents supplier creation data
type CreateRequest struct {
	Name         string `json:"name" binding:"required"`
	Code         string `json:"code" binding:"required"`
	Tier         string `json:"tier"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	CageCode     string `json:"cage_code"`
	Notes        string `json:"notes"`
}

// UpdateRequest represents supplier update data
type UpdateRequest struct {
	Name              *string `json:"name"`
	Tier              *string `json:"tier"`
	ContactName       *string `json:"contact_name"`
	ContactEmail      *string `json:"contact_email"`
	ContactPhone      *string `json:"contact_phone"`
	AddressLine1      *string `json:"address_line1"`
	AddressLine2      *string `json:"address_line2"`
	City              *string `json:"city"`
	State             *string `json:"state"`
	PostalCode        *string `json:"postal_code"`
	Country           *string `json:"country"`
	IsAS9100Certified *bool   `json:"is_as9100_certified"`
	IsNadcapCertified *bool   `json:"is_nadcap_certified"`
	IsITARCompliant   *bool   `json:"is_itar_compliant"`
	CageCode          *string `json:"cage_code"`
	Notes             *string `json:"notes"`
}

// Create registers a new supplier in pending approval status
func (s *Service) Create(req *CreateRequest) (*Supplier, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	var existing Supplier
	if err := s.db.Where("code = ?", code).First(&existing).Error; err == nil {
		return nil, apperrors.Conflict("supplier with code %s already exists", code)
	}

	sup := Supplier{
		Name:         req.Name,
		Code:         code,
		Status:       StatusPendingApproval,
		Tier:         Tier2,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		CageCode:     req.CageCode,
		Notes:        req.Notes,
	}
	if req.Tier != "" {
		sup.Tier = Tier(req.Tier)
	}
	if sup.Country == "" {
		sup.Country = "USA"
	}

	if err := s.db.Create(&sup).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to create supplier")
	}
	return &sup, nil
}

// GetByID retrieves a supplier with its material links
func (s *Service) GetByID(id uint) (*Supplier, error) {
	var sup Supplier
	if err := s.db.Preload("Materials").First(&sup, id).Error; err != nil {
		return nil, apperrors.NotFound("supplier %d not found", id)
	}
	return &sup, nil
}

// List returns suppliers filtered by status and tier
func (s *Service) List(status, tier, search string, limit, offset int) ([]Supplier, int64, error) {
	query := s.db.Model(&Supplier{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if tier != "" {
		query = query.Where("tier = ?", tier)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindUnknown, err, "failed to count suppliers")
	}

	var suppliers []Supplier
	if err := query.Order("name").Limit(limit).Offset(offset).Find(&suppliers).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindUnknown, err, "failed to list suppliers")
	}
	return suppliers, total, nil
}

// Update modifies supplier master data
func (s *Service) Update(id uint, req *UpdateRequest) (*Supplier, error) {
	var sup Supplier
	if err := s.db.First(&sup, id).Error; err != nil {
		return nil, apperrors.NotFound("supplier %d not found", id)
	}

	if req.Name != nil {
		sup.Name = *req.Name
	}
	if req.Tier != nil {
		sup.Tier = Tier(*req.Tier)
	}
	if req.ContactName != nil {
		sup.ContactName = *req.ContactName
	}
	if req.ContactEmail != nil {
		sup.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		sup.ContactPhone = *req.ContactPhone
	}
	if req.AddressLine1 != nil {
		sup.AddressLine1 = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		sup.AddressLine2 = *req.AddressLine2
	}
	if req.City != nil {
		sup.City = *req.City
	}
	if req.State != nil {
		sup.State = *req.State
	}
	if req.PostalCode != nil {
		sup.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		sup.Country = *req.Country
	}
	if req.IsAS9100Certified != nil {
		sup.IsAS9100Certified = *req.IsAS9100Certified
	}
	if req.IsNadcapCertified != nil {
		sup.IsNadcapCertified = *req.IsNadcapCertified
	}
	if req.IsITARCompliant != nil {
		sup.IsITARCompliant = *req.IsITARCompliant
	}
	if req.CageCode != nil {
		sup.CageCode = *req.CageCode
	}
	if req.Notes != nil {
		sup.Notes = *req.Notes
	}

	if err := s.db.Save(&sup).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to update supplier")
	}
	return &sup, nil
}

// SetStatus changes the supplier status
func (s *Service) SetStatus(id uint, status Status) (*Supplier, error) {
	switch status {
	case StatusActive, StatusInactive, StatusPendingApproval, StatusSuspended, StatusBlacklisted:
	default:
		return nil, apperrors.Validation("unknown supplier status %q", status)
	}

	var sup Supplier
	if err := s.db.First(&sup, id).Error; err != nil {
		return nil, apperrors.NotFound("supplier %d not found", id)
	}

	sup.Status = status
	if err := s.db.Model(&sup).Update("status", status).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to update supplier status")
	}
	return &sup, nil
}

// LinkMaterial associates a material this supplier can provide
func (s *Service) LinkMaterial(supplierID uint, link *SupplierMaterial) (*SupplierMaterial, error) {
	var sup Supplier
	if err := s.db.First(&sup, supplierID).Error; err != nil {
		return nil, apperrors.NotFound("supplier %d not found", supplierID)
	}

	var existing SupplierMaterial
	err := s.db.Where("supplier_id = ? AND material_id = ?", supplierID, link.MaterialID).
		First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("supplier %d already provides material %d", supplierID, link.MaterialID)
	}

	link.SupplierID = supplierID
	if err := s.db.Create(link).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to link material")
	}
	return link, nil
}
