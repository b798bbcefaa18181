// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"github.com/your-org/procurement-backend/internal/domain/material"
	"github.com/your-org/procurement-backend/internal/domain/materialinstance"
	"github.com/your-org/procurement-backend/internal/domain/purchaseorder"
	"github.com/your-org/procurement-backend/internal/domain/receiving"
	"github.com/your-org/procurement-backend/internal/domain/supplier"
	"github.com/your-org/procurement-backend/internal/domain/user"
	"github.com/your-org/procurement-backend/internal/pkg/authz"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Dependency order: masters first, then documents, then tracking
	models := []interface{}{
		&user.User{},

		&supplier.Supplier{},
		&material.Category{},
		&material.Material{},
		&supplier.SupplierMaterial{},

		&purchaseorder.PurchaseOrder{},
		&purchaseorder.POLineItem{},
		&purchaseorder.POApprovalHistory{},

		&receiving.GoodsReceiptNote{},
		&receiving.GRNLineItem{},

		&materialinstance.MaterialInstance{},
		&materialinstance.MaterialAllocation{},
		&materialinstance.MaterialStatusHistory{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates the composite indexes the hot queries need
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating database indexes...")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_purchase_orders_supplier_status ON purchase_orders(supplier_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_po_line_items_po_line ON po_line_items(purchase_order_id, line_number)",
		"CREATE INDEX IF NOT EXISTS idx_po_approval_history_po_created ON po_approval_history(purchase_order_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_grn_po_status ON goods_receipt_notes(purchase_order_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_grn_line_items_po_line ON grn_line_items(po_line_item_id)",
		"CREATE INDEX IF NOT EXISTS idx_material_instances_material_status ON material_instances(material_id, lifecycle_status)",
		"CREATE INDEX IF NOT EXISTS idx_material_instances_po ON material_instances(purchase_order_id)",
		"CREATE INDEX IF NOT EXISTS idx_material_allocations_instance_active ON material_allocations(material_instance_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_material_status_history_instance_created ON material_status_history(material_instance_id, created_at)",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Println("✅ Database indexes created successfully")
	return nil
}

// SeedInitialData seeds one user per role plus sample masters
func (m *Migration) SeedInitialData() error {
	log.Println("🔄 Seeding initial data...")

	if err := m.seedUsers(); err != nil {
		return err
	}
	if err := m.seedMasters(); err != nil {
		return err
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedUsers() error {
	seeds := []struct {
		email       string
		firstName   string
		lastName    string
		role        authz.Role
		isSuperuser bool
	}{
		{"admin@example.com", "System", "Admin", authz.RoleAdmin, true},
		{"manager@example.com", "Pat", "Manager", authz.RoleManager, false},
		{"engineer@example.com", "Sam", "Engineer", authz.RoleEngineer, false},
		{"store@example.com", "Jo", "Store", authz.RoleStore, false},
		{"qa@example.com", "Lee", "Inspector", authz.RoleQA, false},
	}

	for _, seed := range seeds {
		var count int64
		m.db.Model(&user.User{}).Where("email = ?", seed.email).Count(&count)
		if count > 0 {
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte("ChangeMe!2024"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}

		u := user.User{
			Email:       seed.email,
			Password:    string(hashed),
			FirstName:   seed.firstName,
			LastName:    seed.lastName,
			Role:        seed.role,
			IsActive:    true,
			IsSuperuser: seed.isSuperuser,
		}
		if err := m.db.Create(&u).Error; err != nil {
			return fmt.Errorf("failed to seed user %s: %w", seed.email, err)
		}
		log.Printf("Seeded user: %s (%s)", seed.email, seed.role)
	}
	return nil
}

func (m *Migration) seedMasters() error {
	var supplierCount int64
	m.db.Model(&supplier.Supplier{}).Count(&supplierCount)
	if supplierCount == 0 {
		sup := supplier.Supplier{
			Name:              "Apex Aerospace Metals",
			Code:              "APEX-01",
			Status:            supplier.StatusActive,
			Tier:              supplier.Tier1,
			ContactName:       "Dana Reyes",
			ContactEmail:      "sales@apexmetals.example.com",
			Country:           "USA",
			IsAS9100Certified: true,
			CageCode:          "1APEX",
		}
		if err := m.db.Create(&sup).Error; err != nil {
			return fmt.Errorf("failed to seed supplier: %w", err)
		}
		log.Printf("Seeded supplier: %s", sup.Code)
	}

	var materialCount int64
	m.db.Model(&material.Material{}).Count(&materialCount)
	if materialCount == 0 {
		mat := material.Material{
			ItemNumber:    "AL-6061-T6-BAR",
			Title:         "Aluminum 6061-T6 Round Bar",
			Specification: "AMS-QQ-A-225/8",
			MaterialType:  material.TypeRaw,
			UnitOfMeasure: "kg",
			MinStockLevel: decimal.NewFromInt(50),
			AmsSpec:       "AMS 4117",
			UnitCost:      1250,
			IsActive:      true,
		}
		if err := m.db.Create(&mat).Error; err != nil {
			return fmt.Errorf("failed to seed material: %w", err)
		}
		log.Printf("Seeded material: %s", mat.ItemNumber)
	}

	return nil
}

// DropAllTables drops every table; used by dev tooling only
func (m *Migration) DropAllTables() error {
	log.Println("⚠️  Dropping all tables...")

	tables := []string{
		"material_status_history",
		"material_allocations",
		"material_instances",
		"grn_line_items",
		"goods_receipt_notes",
		"po_approval_history",
		"po_line_items",
		"purchase_orders",
		"supplier_materials",
		"materials",
		"material_categories",
		"suppliers",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec("DROP TABLE IF EXISTS " + table + " CASCADE").Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	log.Println("✅ All tables dropped")
	return nil
}
