// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/interfaces/http/handlers"
	"github.com/your-org/procurement-backend/internal/interfaces/http/middleware"
	"github.com/your-org/procurement-backend/internal/pkg/authz"
	"github.com/your-org/procurement-backend/internal/pkg/events"
	"gorm.io/gorm"
)

// SetupRoutes wires every route group onto the API router
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	SetupAuthRoutes(rg, db, redisClient, cfg)
	SetupUserRoutes(rg, db, redisClient, cfg)
	SetupSupplierRoutes(rg, db, redisClient, cfg)
	SetupMaterialRoutes(rg, db, redisClient, cfg)
	SetupPurchaseOrderRoutes(rg, db, redisClient, cfg)
	SetupReceivingRoutes(rg, db, redisClient, cfg)
	SetupMaterialInstanceRoutes(rg, db, redisClient, cfg)
}

// newPublisher builds the domain event publisher shared by the workflow routes
func newPublisher(redisClient *redis.Client, cfg *config.Config) events.Publisher {
	if redisClient == nil {
		return events.NopPublisher{}
	}
	return events.NewRedisPublisher(redisClient, cfg.Redis.EventChannel, logrus.StandardLogger())
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)

	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/password", authHandler.ChangePassword)
		}
	}
}

// SetupUserRoutes sets up user administration routes
func SetupUserRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	userHandler := handlers.NewUserAdminHandler(db, cfg)

	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	users.Use(middleware.AdminMiddleware())
	{
		users.GET("", userHandler.ListUsers)
		users.PUT("/:id/role", userHandler.SetRole)
		users.PUT("/:id/active", userHandler.SetActive)
	}
}

// SetupSupplierRoutes sets up supplier master routes
func SetupSupplierRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	supplierHandler := handlers.NewSupplierHandler(db, cfg)

	suppliers := rg.Group("/suppliers")
	suppliers.Use(middleware.AuthMiddleware(cfg))
	{
		suppliers.GET("", supplierHandler.List)
		suppliers.GET("/:id", supplierHandler.Get)

		managed := suppliers.Group("")
		managed.Use(middleware.RequireCapability(authz.CapPurchase))
		{
			managed.POST("", supplierHandler.Create)
			managed.PUT("/:id", supplierHandler.Update)
			managed.PUT("/:id/status", supplierHandler.SetStatus)
			managed.POST("/:id/materials", supplierHandler.LinkMaterial)
		}
	}
}

// SetupMaterialRoutes sets up material catalog routes
func SetupMaterialRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	materialHandler := handlers.NewMaterialHandler(db, cfg)

	materials := rg.Group("/materials")
	materials.Use(middleware.AuthMiddleware(cfg))
	{
		materials.GET("", materialHandler.List)
		materials.GET("/categories", materialHandler.ListCategories)
		materials.GET("/:id", materialHandler.Get)

		managed := materials.Group("")
		managed.Use(middleware.RequireCapability(authz.CapPurchase))
		{
			managed.POST("", materialHandler.Create)
			managed.PUT("/:id", materialHandler.Update)
			managed.POST("/categories", materialHandler.CreateCategory)
		}
	}
}

// SetupPurchaseOrderRoutes sets up purchase order and receiving routes
func SetupPurchaseOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	publisher := newPublisher(redisClient, cfg)
	poHandler := handlers.NewPurchaseOrderHandler(db, cfg, publisher)
	receivingHandler := handlers.NewReceivingHandler(db, cfg, publisher)

	orders := rg.Group("/purchase-orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", poHandler.List)
		orders.GET("/:id", poHandler.Get)
		orders.GET("/number/:number", poHandler.GetByNumber)
		orders.GET("/:id/history", poHandler.GetApprovalHistory)
		orders.GET("/:id/receipts", receivingHandler.ListByPO)

		// Drafting and workflow need the purchasing capability; the service
		// enforces the finer grained rules per action.
		orders.POST("", poHandler.Create)
		orders.PUT("/:id", poHandler.Update)
		orders.DELETE("/:id", poHandler.Delete)
		orders.POST("/:id/line-items", poHandler.AddLineItem)
		orders.PUT("/:id/line-items/:line_id", poHandler.UpdateLineItem)
		orders.DELETE("/:id/line-items/:line_id", poHandler.RemoveLineItem)
		orders.PUT("/:id/line-items/:line_id/stage", poHandler.SetLineStage)

		orders.POST("/:id/submit", poHandler.Submit)
		orders.POST("/:id/approve", poHandler.Approve)
		orders.POST("/:id/reject", poHandler.Reject)
		orders.POST("/:id/return-to-draft", poHandler.ReturnToDraft)
		orders.POST("/:id/mark-ordered", poHandler.MarkOrdered)
		orders.POST("/:id/close", poHandler.Close)
		orders.POST("/:id/cancel", poHandler.Cancel)

		orders.POST("/:id/receive", receivingHandler.Receive)
	}
}

// SetupReceivingRoutes sets up goods receipt routes
func SetupReceivingRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	publisher := newPublisher(redisClient, cfg)
	receivingHandler := handlers.NewReceivingHandler(db, cfg, publisher)

	receipts := rg.Group("/goods-receipts")
	receipts.Use(middleware.AuthMiddleware(cfg))
	{
		receipts.GET("", receivingHandler.List)
		receipts.GET("/:id", receivingHandler.Get)

		receipts.POST("/:id/submit-inspection", receivingHandler.SubmitForInspection)
		receipts.POST("/:id/inspect", receivingHandler.Inspect)
		receipts.POST("/:id/accept", receivingHandler.Accept)
		receipts.POST("/:id/reject", receivingHandler.Reject)
	}
}

// SetupMaterialInstanceRoutes sets up material instance and allocation routes
func SetupMaterialInstanceRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	publisher := newPublisher(redisClient, cfg)
	instanceHandler := handlers.NewMaterialInstanceHandler(db, cfg, publisher)

	instances := rg.Group("/material-instances")
	instances.Use(middleware.AuthMiddleware(cfg))
	{
		instances.GET("", instanceHandler.List)
		instances.GET("/:id", instanceHandler.Get)
		instances.GET("/number/:number", instanceHandler.GetByItemNumber)
		instances.GET("/:id/history", instanceHandler.GetHistory)
		instances.GET("/:id/allocations", instanceHandler.ListAllocations)

		instances.POST("/:id/status", instanceHandler.ChangeStatus)
		instances.POST("/:id/inspect", instanceHandler.Inspect)
		instances.POST("/:id/allocations", instanceHandler.CreateAllocation)
	}

	allocations := rg.Group("/allocations")
	allocations.Use(middleware.AuthMiddleware(cfg))
	{
		allocations.POST("/:allocation_id/issue", instanceHandler.Issue)
		allocations.POST("/:allocation_id/return", instanceHandler.Return)
		allocations.POST("/:allocation_id/cancel", instanceHandler.CancelAllocation)
	}
}
