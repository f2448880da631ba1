package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-stockledger-ws/internal/handler"
	"go-stockledger-ws/internal/middleware"
	"go-stockledger-ws/internal/model"
	"go-stockledger-ws/internal/repository"
	"go-stockledger-ws/internal/service"
	"go-stockledger-ws/internal/ws"
	"go-stockledger-ws/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found, relying on system env")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (use a dedicated migration tool in production)
	db.AutoMigrate(
		&model.Item{}, &model.Movement{}, &model.StockLevel{},
		&model.Adjustment{}, &model.PurchaseRequest{}, &model.Supplier{},
		&model.User{}, &model.Privilege{}, &model.Role{},
	)

	// 3. Seed default privileges, roles, and admin user
	seedPrivilegesRolesAndAdmin(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	itemRepo := repository.NewItemRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	stockRepo := repository.NewStockRepo(db)
	adjRepo := repository.NewAdjustmentRepo(db)
	purchaseRepo := repository.NewPurchaseRequestRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	catalogService := service.NewCatalogService(itemRepo, db, wsHub)
	ledgerService := service.NewLedgerService(itemRepo, movementRepo, stockRepo, db, wsHub)
	workflowService := service.NewWorkflowService(itemRepo, movementRepo, stockRepo, adjRepo, purchaseRepo, supplierRepo, db, wsHub)
	analyzerService := service.NewAnalyzerService(itemRepo, stockRepo, movementRepo, adjRepo, purchaseRepo)
	supplierService := service.NewSupplierService(supplierRepo, purchaseRepo)
	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	itemHandler := handler.NewItemHandler(catalogService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	workflowHandler := handler.NewWorkflowHandler(workflowService)
	reportHandler := handler.NewReportHandler(analyzerService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Stock Ledger v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Item Catalog
	protected.Get("/items", itemHandler.GetItems)
	protected.Get("/items/:id", itemHandler.GetItem)
	protected.Post("/items", middleware.RequirePrivilege("item:create"), itemHandler.CreateItem)
	protected.Put("/items/:id", middleware.RequirePrivilege("item:update"), itemHandler.UpdateItem)

	// Stock & Movements
	protected.Get("/items/:id/stock", ledgerHandler.GetStock)
	protected.Get("/items/:id/movements", middleware.RequirePrivilege("movement:view"), ledgerHandler.GetItemMovements)
	protected.Get("/movements", middleware.RequirePrivilege("movement:view"), ledgerHandler.GetRecentMovements)
	protected.Post("/movements/inward", middleware.RequirePrivilege("movement:create"), ledgerHandler.SubmitInward)
	protected.Post("/movements/transfer", middleware.RequirePrivilege("movement:create"), ledgerHandler.SubmitTransfer)

	// Stock Adjustments (write-off approval flow)
	protected.Get("/adjustments", middleware.RequirePrivilege("adjustment:view"), workflowHandler.GetAdjustments)
	protected.Post("/adjustments", middleware.RequirePrivilege("adjustment:create"), workflowHandler.RequestAdjustment)
	protected.Post("/adjustments/:id/approve", middleware.RequirePrivilege("adjustment:approve"), workflowHandler.ApproveAdjustment)
	protected.Post("/adjustments/:id/reject", middleware.RequirePrivilege("adjustment:approve"), workflowHandler.RejectAdjustment)

	// Purchase Requests
	protected.Get("/purchase-requests", middleware.RequirePrivilege("purchase:view"), workflowHandler.GetPurchaseRequests)
	protected.Post("/purchase-requests", middleware.RequirePrivilege("purchase:create"), workflowHandler.RequestPurchase)
	protected.Post("/purchase-requests/:id/approve", middleware.RequirePrivilege("purchase:approve"), workflowHandler.ApprovePurchase)
	protected.Post("/purchase-requests/:id/reject", middleware.RequirePrivilege("purchase:approve"), workflowHandler.RejectPurchase)

	// Suppliers
	protected.Get("/suppliers", middleware.RequirePrivilege("supplier:view"), supplierHandler.GetSuppliers)
	protected.Post("/suppliers", middleware.RequirePrivilege("supplier:create"), supplierHandler.CreateSupplier)
	protected.Delete("/suppliers/:id", middleware.RequirePrivilege("supplier:delete"), supplierHandler.DeleteSupplier)

	// Reports & Dashboard
	protected.Get("/reports/valuation", middleware.RequirePrivilege("report:view"), reportHandler.GetValuationReport)
	protected.Get("/dashboard/stats", middleware.RequireAnyPrivilege("dashboard:view", "report:view"), reportHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", middleware.RequireAnyPrivilege("dashboard:view", "report:view"), reportHandler.GetStockFlow)

	// User Management
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Roles & Privileges
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", func(c *fiber.Ctx) error {
		privileges, err := privilegeRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
		}
		return c.JSON(privileges)
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			logrus.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	logrus.Info("Server exited")
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and admin user if they don't exist
func seedPrivilegesRolesAndAdmin(db *gorm.DB) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	if err := privilegeRepo.SeedDefaults(); err != nil {
		logrus.Warnf("Failed to seed privileges: %v", err)
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		logrus.Warnf("Failed to seed roles: %v", err)
	}

	allPrivileges, _ := privilegeRepo.FindAll()

	// MASTER_ADMIN gets ALL privileges
	masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin)
	if err == nil && len(masterRole.Privileges) == 0 {
		db.Model(&masterRole).Association("Privileges").Replace(allPrivileges)
		logrus.Info("MASTER_ADMIN role assigned all privileges")
	}

	// ADMIN approves requests but does not manage users
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err == nil && len(adminRole.Privileges) == 0 {
		adminPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			if p.Code != "user:create" && p.Code != "user:update" && p.Code != "user:delete" && p.Code != "user:update_privilege" {
				adminPrivileges = append(adminPrivileges, p)
			}
		}
		db.Model(&adminRole).Association("Privileges").Replace(adminPrivileges)
		logrus.Info("ADMIN role assigned limited privileges")
	}

	// STOCK_KEEPER records movements and raises requests, never approves
	keeperRole, err := roleRepo.FindByCode(model.RoleStockKeeper)
	if err == nil && len(keeperRole.Privileges) == 0 {
		keeperCodes := map[string]bool{
			"item:view": true, "movement:view": true, "movement:create": true,
			"adjustment:view": true, "adjustment:create": true,
			"purchase:view": true, "purchase:create": true,
			"supplier:view": true, "dashboard:view": true,
		}
		keeperPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			if keeperCodes[p.Code] {
				keeperPrivileges = append(keeperPrivileges, p)
			}
		}
		db.Model(&keeperRole).Association("Privileges").Replace(keeperPrivileges)
		logrus.Info("STOCK_KEEPER role assigned limited privileges")
	}

	// Default admin user with MASTER_ADMIN role
	_, err = userRepo.FindByEmail("admin@example.com")
	if err != nil {
		masterRole, _ := roleRepo.FindByCode(model.RoleMasterAdmin)

		admin := &model.User{
			Email:       "admin@example.com",
			FullName:    "Master Administrator",
			PhoneNumber: "",
			RoleID:      &masterRole.ID,
			IsActive:    true,
			Privileges:  masterRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			logrus.Warnf("Failed to hash admin password: %v", err)
			return
		}

		if err := userRepo.Create(admin); err != nil {
			logrus.Warnf("Failed to create admin user: %v", err)
		} else {
			logrus.Info("Admin user created: admin@example.com / admin123 (MASTER_ADMIN)")
		}
	}
}
