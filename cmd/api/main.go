package main

import (
	_ "carebill/api/swagger" // swagger docs
	"carebill/internal/database"
	"carebill/internal/handler"
	"carebill/internal/middleware"
	"carebill/internal/repository"
	"carebill/internal/service"
	"carebill/internal/websocket"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Carebill API
// @version         1.0
// @description     Billing and accounts-receivable API for home-care agencies: time tracking, rate resolution, invoice generation, payments, and A/R reporting.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	payerRepo := repository.NewPayerRepository(db)
	clientRepo := repository.NewClientRepository(db)
	rateRepo := repository.NewRateCardRepository(db)
	timeEntryRepo := repository.NewTimeEntryRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	authRepo := repository.NewAuthorizationRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	reportRepo := repository.NewReportRepository(db)

	userService := service.NewUserService(userRepo)
	payerService := service.NewPayerService(payerRepo)
	clientService := service.NewClientService(clientRepo, payerRepo)
	rateService := service.NewRateService(rateRepo, auditRepo)
	timeEntryService := service.NewTimeEntryService(timeEntryRepo, clientRepo, rateService, auditRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, timeEntryRepo, clientRepo, rateService, auditRepo, txManager, wsHub)
	ledgerService := service.NewLedgerService(invoiceRepo, timeEntryRepo, auditRepo, txManager, wsHub)
	agingService := service.NewAgingService(invoiceRepo)
	authService := service.NewAuthorizationService(authRepo, clientRepo, auditRepo)
	reportService := service.NewReportService(reportRepo)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	payerHandler := handler.NewPayerHandler(payerService)
	clientHandler := handler.NewClientHandler(clientService)
	rateHandler := handler.NewRateHandler(rateService)
	timeEntryHandler := handler.NewTimeEntryHandler(timeEntryService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, ledgerService)
	reportHandler := handler.NewReportHandler(agingService, reportService)
	authHandler := handler.NewAuthorizationHandler(authService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	payerHandler.RegisterRoutes(router.Group(""))
	clientHandler.RegisterRoutes(router.Group(""))
	rateHandler.RegisterRoutes(router.Group(""))
	timeEntryHandler.RegisterRoutes(router.Group(""))
	invoiceHandler.RegisterRoutes(router.Group(""))
	reportHandler.RegisterRoutes(router.Group(""))
	authHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
