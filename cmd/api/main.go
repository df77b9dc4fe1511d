package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-vendas-api/internal/config"
	"go-vendas-api/internal/handler"
	"go-vendas-api/internal/ledger"
	"go-vendas-api/internal/middleware"
	"go-vendas-api/internal/model"
	"go-vendas-api/internal/repository"
	"go-vendas-api/internal/service"
	"go-vendas-api/internal/ws"
	"go-vendas-api/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()

	// 2. Setup Database
	db := database.ConnectDB(cfg.DatabaseURL)
	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&model.Category{}, &model.Product{}, &model.Customer{}, &model.Sale{}, &model.SaleItem{}); err != nil {
			log.Fatalf("❌ Auto migration failed: %v", err)
		}
		log.Println("✅ Database schema migrated")
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	saleRepo := repository.NewSaleRepo(db)
	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	customerRepo := repository.NewCustomerRepo(db)

	allocator := ledger.NewAllocator(cfg.SaleNumberAttempts, cfg.Location)

	saleService := service.NewSaleService(db, saleRepo, productRepo, customerRepo, allocator, wsHub)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, wsHub)
	customerService := service.NewCustomerService(customerRepo, saleRepo, wsHub)

	saleHandler := handler.NewSaleHandler(saleService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	customerHandler := handler.NewCustomerHandler(customerService)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Vendas API v1.0",
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			return c.Status(503).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": wsHub.ClientCount()})
	})

	// 6. Routes
	api := app.Group("/api/v1", middleware.RequireAuth([]byte(cfg.JWTSecret)))

	api.Get("/privileges", func(c *fiber.Ctx) error {
		return c.JSON(model.DefaultPrivileges)
	})

	// Sales
	api.Get("/sales", middleware.RequirePrivilege(model.PrivSaleView), saleHandler.GetSales)
	api.Get("/sales/:id", middleware.RequirePrivilege(model.PrivSaleView), saleHandler.GetSale)
	api.Post("/sales", middleware.RequirePrivilege(model.PrivSaleCreate), saleHandler.CreateSale)
	api.Put("/sales/:id", middleware.RequirePrivilege(model.PrivSaleUpdate), saleHandler.UpdateSale)
	api.Put("/sales/:id/items", middleware.RequirePrivilege(model.PrivSaleUpdate), saleHandler.ReplaceSaleItems)
	api.Delete("/sales/:id", middleware.RequirePrivilege(model.PrivSaleDelete), saleHandler.DeleteSale)

	// Categories
	api.Get("/categories", catalogHandler.GetCategories)
	api.Get("/categories/:id", catalogHandler.GetCategory)
	api.Post("/categories", middleware.RequirePrivilege(model.PrivCategoryManage), catalogHandler.CreateCategory)
	api.Put("/categories/:id", middleware.RequirePrivilege(model.PrivCategoryManage), catalogHandler.UpdateCategory)
	api.Delete("/categories/:id", middleware.RequirePrivilege(model.PrivCategoryManage), catalogHandler.DeleteCategory)

	// Products
	api.Get("/products", catalogHandler.GetProducts)
	api.Get("/products/:id", catalogHandler.GetProduct)
	api.Post("/products", middleware.RequirePrivilege(model.PrivProductCreate), catalogHandler.CreateProduct)
	api.Put("/products/:id", middleware.RequirePrivilege(model.PrivProductUpdate), catalogHandler.UpdateProduct)
	api.Delete("/products/:id", middleware.RequirePrivilege(model.PrivProductDelete), catalogHandler.DeleteProduct)

	// Customers
	api.Get("/customers", middleware.RequireAnyPrivilege(model.PrivSaleView, model.PrivCustomerCreate), customerHandler.GetCustomers)
	api.Get("/customers/:id", middleware.RequireAnyPrivilege(model.PrivSaleView, model.PrivCustomerCreate), customerHandler.GetCustomer)
	api.Post("/customers", middleware.RequirePrivilege(model.PrivCustomerCreate), customerHandler.CreateCustomer)
	api.Put("/customers/:id", middleware.RequirePrivilege(model.PrivCustomerUpdate), customerHandler.UpdateCustomer)
	api.Delete("/customers/:id", middleware.RequirePrivilege(model.PrivCustomerDelete), customerHandler.DeleteCustomer)

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

	// 7. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	wsHub.Stop()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("Server exited")
}
