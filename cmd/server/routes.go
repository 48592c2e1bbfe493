package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"distributor-system/config"
	"distributor-system/internal/database"
	"distributor-system/internal/database/models"
	"distributor-system/internal/documents"
	"distributor-system/internal/gateway/middleware"
	billinghandler "distributor-system/internal/services/billing/handler"
	cataloghandler "distributor-system/internal/services/catalog/handler"
	ledgerhandler "distributor-system/internal/services/ledger/handler"
	ordershandler "distributor-system/internal/services/orders/handler"
	userhandler "distributor-system/internal/services/user/handler"
)

func main() {
	cfg := config.LoadConfig()

	redisClient := config.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to db: %v", err)
	}

	if err := models.MigrateUserDB(db); err != nil {
		log.Fatalf("Failed to migrate user database: %v", err)
	}
	if err := models.MigrateBillingDB(db); err != nil {
		log.Fatalf("Failed to migrate billing database: %v", err)
	}

	renderer, err := documents.NewHTMLRenderer()
	if err != nil {
		log.Fatalf("Failed to build invoice renderer: %v", err)
	}
	emitter, err := documents.NewEmitter(renderer, cfg.Documents.Dir)
	if err != nil {
		log.Fatalf("Failed to prepare invoice directory: %v", err)
	}

	userHandler := userhandler.NewUserHandler(db)
	catalogHandler := cataloghandler.NewCatalogHandler(db, redisClient)
	ordersHandler := ordershandler.NewOrdersHandler(db)
	billingHandler := billinghandler.NewBillingHandler(db, redisClient, emitter, cfg.Billing.AllowNegativeStock)
	ledgerHandler := ledgerhandler.NewLedgerHandler(db, redisClient)

	r := gin.Default()

	r.Use(middleware.CORS())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit())

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth())
	{
		retailers := protected.Group("/retailers")
		{
			retailers.POST("", catalogHandler.CreateRetailer)
			retailers.GET("", catalogHandler.ListRetailers)
			retailers.GET("/:id", catalogHandler.GetRetailer)
		}

		items := protected.Group("/items")
		{
			items.POST("", catalogHandler.CreateItem)
			items.GET("", catalogHandler.ListItems)
			items.GET("/stock", catalogHandler.StockSummary)
			items.GET("/:id", catalogHandler.GetItem)
		}

		orders := protected.Group("/orders")
		{
			orders.POST("", ordersHandler.CreateOrder)
			orders.GET("", ordersHandler.ListOrders)
			orders.GET("/:id", ordersHandler.GetOrder)
			orders.POST("/:id/approve", billingHandler.ApproveOrder)
		}

		invoices := protected.Group("/invoices")
		{
			invoices.GET("", billingHandler.ListInvoices)
			invoices.GET("/:id", billingHandler.GetInvoice)
			invoices.GET("/:id/document", billingHandler.DownloadInvoiceDocument)
		}

		payments := protected.Group("/payments")
		{
			payments.POST("", ledgerHandler.RecordPayment)
			payments.GET("", ledgerHandler.ListPayments)
		}

		outstanding := protected.Group("/outstanding")
		{
			outstanding.GET("", ledgerHandler.OutstandingReport)
			outstanding.GET("/:retailerId", ledgerHandler.RetailerOutstanding)
		}
	}

	r.GET("/health", healthCheckHandler())

	port := ":" + cfg.Server.Port
	log.Printf("Starting server on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	}
}
