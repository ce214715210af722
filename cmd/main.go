package main

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/handler"
	mid "github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/middleware"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/quotation"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/sessionstore"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/config"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/database"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/jwtutil"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/logger"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/prometheus"
)

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting storefront service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Wire the quotation engine and session state
	db := database.GetDB()
	quotationSvc := quotation.NewService(
		quotation.NewGormQuotationRepo(db),
		quotation.NewGormProductRepo(db),
		log,
		appConfig.Quotation.ValidityDays,
	)
	sessions := sessionstore.NewMemoryStore()

	authHandler := handler.NewAuthHandler(&appConfig.Admin)
	quotationHandler := handler.NewQuotationHandler(quotationSvc)
	cartHandler := handler.NewCartHandler(sessions, quotationSvc, appConfig)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics and health endpoints
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", handler.HealthCheck)

	// Public storefront routes
	e.GET("/api/products", handler.ListProducts)
	e.GET("/api/products/:id", handler.GetProduct)
	e.GET("/api/categories", handler.ListCategories)
	e.GET("/api/categories/:id", handler.GetCategory)
	e.GET("/api/brands", handler.ListBrands)
	e.GET("/api/brands/:id", handler.GetBrand)

	// Session cart and quotation draft routes
	e.GET("/api/cart", cartHandler.GetCart)
	e.POST("/api/cart", cartHandler.AddToCart)
	e.DELETE("/api/cart", cartHandler.ClearCart)
	e.PUT("/api/cart/items/:id", cartHandler.UpdateCartItem)
	e.DELETE("/api/cart/items/:id", cartHandler.RemoveCartItem)
	e.POST("/api/cart/checkout", cartHandler.Checkout)
	e.GET("/api/quote", cartHandler.GetDraft)
	e.POST("/api/quote/submit", cartHandler.SubmitDraft)

	// Customer quotation submission
	e.POST("/api/quotations", quotationHandler.CreateQuotation)

	// Admin login
	e.POST("/api/auth/login", authHandler.Login)

	// Admin back-office routes
	admin := e.Group("/api", mid.AuthMiddleware)
	admin.POST("/products", handler.CreateProduct)
	admin.PUT("/products/:id", handler.UpdateProduct)
	admin.DELETE("/products/:id", handler.DeleteProduct)
	admin.POST("/categories", handler.CreateCategory)
	admin.PUT("/categories/:id", handler.UpdateCategory)
	admin.DELETE("/categories/:id", handler.DeleteCategory)
	admin.POST("/brands", handler.CreateBrand)
	admin.PUT("/brands/:id", handler.UpdateBrand)
	admin.DELETE("/brands/:id", handler.DeleteBrand)
	admin.GET("/quotations", quotationHandler.ListQuotations)
	admin.GET("/quotations/:id", quotationHandler.GetQuotation)
	admin.PUT("/quotations/:id", quotationHandler.UpdateQuotation)
	admin.DELETE("/quotations/:id", quotationHandler.DeleteQuotation)
	admin.PUT("/quotations/:id/status", quotationHandler.SetQuotationStatus)
	admin.GET("/settings", handler.GetSettings)
	admin.PUT("/settings", handler.UpdateSettings)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
