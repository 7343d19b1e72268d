package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"bourse/internal/agents"
	"bourse/internal/config"
	"bourse/internal/database"
	"bourse/internal/handlers"
	"bourse/internal/logger"
	"bourse/internal/middleware"
	"bourse/internal/scheduler"
	"bourse/internal/services"
	"bourse/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	pricingService := services.NewPricingService(db, appConfig.SupplyDemandEnabled)
	tradingService := services.NewTradingService(db, pricingService)
	playerService := services.NewPlayerService(db, pricingService)
	marketService := services.NewMarketService(db, pricingService)
	gameService := services.NewGameService(db, tradingService, playerService)

	// AI roster and year scheduler. The roster seed varies per process so
	// consecutive games play out differently.
	env := agents.Env{Pricing: pricingService, Ledger: tradingService, Market: marketService}
	runner := agents.NewRunner(env, playerService, int64(os.Getpid()))
	sched := scheduler.New(gameService, pricingService, playerService, runner, appConfig.AIPlayersEnabled, nil)

	// Make sure the clock and AI players exist before the first request
	if _, err := gameService.Clock(); err != nil {
		return fmt.Errorf("failed to initialize game clock: %w", err)
	}
	if err := gameService.SeedAIPlayers(agents.PlayerNames()); err != nil {
		return fmt.Errorf("failed to seed AI players: %w", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(playerService)
	marketHandler := handlers.NewMarketHandler(marketService, gameService, pricingService)
	portfolioHandler := handlers.NewPortfolioHandler(tradingService, playerService, marketService, gameService, pricingService)
	gameHandler := handlers.NewGameHandler(gameService, playerService, sched)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		if err := dbManager.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	v1.POST("/auth/login", authHandler.Login)
	v1.GET("/game", gameHandler.GetGame)
	v1.GET("/players", gameHandler.GetPlayerTable)
	v1.GET("/leaderboard", gameHandler.GetLeaderboard)

	market := v1.Group("/market")
	market.GET("", marketHandler.GetSnapshot)
	market.GET("/categories", marketHandler.GetCategories)
	market.GET("/categories/:category", marketHandler.GetCategory)
	market.GET("/stocks/:id/price", marketHandler.GetStockPrice)
	market.GET("/stocks/:id/history", marketHandler.GetStockHistory)
	market.GET("/events", marketHandler.GetHistoricalEvents)

	// Player routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	portfolio := protected.Group("/portfolio")
	portfolio.GET("", portfolioHandler.GetPortfolio)
	portfolio.POST("/trade", portfolioHandler.Trade)
	portfolio.POST("/trade/batch", portfolioHandler.TradeBatch)
	portfolio.GET("/sales", portfolioHandler.GetSales)
	portfolio.GET("/watchlist", portfolioHandler.GetWatchList)
	portfolio.PUT("/watchlist", portfolioHandler.SetWatch)

	// Game-master console
	admin := v1.Group("/admin")
	admin.Use(middleware.AdminMiddleware())
	admin.POST("/game/start", gameHandler.StartGame)
	admin.POST("/game/stop", gameHandler.StopGame)
	admin.POST("/game/restart", gameHandler.RestartGame)
	admin.PUT("/game/year", gameHandler.SetYear)
	admin.POST("/game/tick", gameHandler.ForceTick)
	admin.POST("/market/events", marketHandler.CreateMarketEvent)
	admin.PUT("/market/demand", marketHandler.SetDemand)

	log.Infof("Starting bourse backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
