package main

import (
	"os"
	"time"

	_ "estimatehub/api/swagger" // swagger docs
	"estimatehub/internal/database"
	"estimatehub/internal/extraction"
	"estimatehub/internal/handler"
	"estimatehub/internal/middleware"
	"estimatehub/internal/preview"
	"estimatehub/internal/repository"
	"estimatehub/internal/service"
	"estimatehub/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Estimate Review API
// @version         1.0
// @description     Batch review of extracted vendor estimates and field-definition schema governance.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load("configs/.env"); err != nil {
		logger.Info().Msg("No configs/.env file found or error loading it")
	}

	dbHost := getenv("DB_HOST", "localhost")
	dbPort := getenv("DB_PORT", "5432")
	dbUser := getenv("DB_USER", "postgres")
	dbPassword := getenv("DB_PASSWORD", "postgres")
	dbName := getenv("DB_NAME", "postgres")
	dbSslMode := getenv("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("Database connection failed")
	}
	logger.Info().Msg("Connected to PostgreSQL")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// External collaborators
	var extractor extraction.Client
	if url := os.Getenv("EXTRACTOR_URL"); url != "" {
		extractor = extraction.NewHTTPClient(url)
	} else {
		logger.Warn().Msg("EXTRACTOR_URL not set, using mock extraction client")
		extractor = &extraction.MockClient{}
	}

	var previews preview.Provider = preview.NewHTTPProvider(getenv("PREVIEW_SIGNER_URL", "http://localhost:9000"))
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
		previews = preview.NewCachedProvider(previews, rdb, 5*time.Minute)
		logger.Info().Str("addr", addr).Msg("Preview URL caching enabled")
	}

	// Set up dependencies (Repository -> Service -> Handler)
	estimateRepo := repository.NewEstimateRepository(db)
	itemRepo := repository.NewItemRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	fieldDefRepo := repository.NewFieldDefinitionRepository(db)
	txManager := repository.NewTransactionManager(db)

	reviewService := service.NewReviewService(estimateRepo, itemRepo, companyRepo, fieldDefRepo, txManager, wsHub)
	estimateService := service.NewEstimateService(estimateRepo, extractor, previews, wsHub)
	exportService := service.NewExportService(estimateRepo)
	fieldDefService := service.NewFieldDefinitionService(fieldDefRepo)
	companyService := service.NewCompanyService(companyRepo)

	reviewHandler := handler.NewReviewHandler(reviewService)
	estimateHandler := handler.NewEstimateHandler(estimateService, exportService)
	fieldDefHandler := handler.NewFieldDefinitionHandler(fieldDefService)
	companyHandler := handler.NewCompanyHandler(companyService)

	// Expire idle review sessions in the background
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 15m", reviewService.SweepExpired); err != nil {
		logger.Fatal().Err(err).Msg("Failed to schedule session sweep")
	}
	scheduler.Start()

	// Set up Gin Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"} // Frontend URL
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
	reviewHandler.RegisterRoutes(router.Group(""))
	estimateHandler.RegisterRoutes(router.Group(""))
	fieldDefHandler.RegisterRoutes(router.Group(""))
	companyHandler.RegisterRoutes(router.Group(""))

	port := getenv("PORT", "8080")
	logger.Info().Str("port", port).Msg("Server listening")
	if err := router.Run(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}
