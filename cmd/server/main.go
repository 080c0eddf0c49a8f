package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assistant/internal/config"
	"assistant/internal/handler"
	"assistant/internal/repository"
	"assistant/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Cottage Booking Assistant")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	log.Println("✅ Connected to PostgreSQL database")

	// Initialize OpenAI client
	var aiClient service.CompletionClient
	if cfg.OpenAI.Enabled {
		client := service.NewOpenAIClient(&cfg.OpenAI)
		aiClient = client
		log.Printf("✅ OpenAI client initialized")
		log.Printf("   - API Base: %s", cfg.OpenAI.APIBase)
		log.Printf("   - Chat model: %s", cfg.OpenAI.ChatModel)
		log.Printf("   - Embedding model: %s", cfg.OpenAI.EmbeddingModel)
		log.Printf("   - Chat Temperature: %.2f", cfg.OpenAI.ChatTemperature)
		log.Printf("   - Chat MaxTokens: %d", cfg.OpenAI.ChatMaxTokens)
	} else {
		log.Println("⚠️  OpenAI is disabled - answers fall back to document snippets")
		log.Println("   Set OPENAI_API_KEY environment variable to enable AI features")
	}

	// Load the cottage rate table once at startup; pricing and
	// capacity answers are computed locally from it
	loadCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	rates, err := repo.GetCottageRates(loadCtx)
	cancel()
	if err != nil {
		log.Fatalf("Failed to load cottage rates: %v", err)
	}
	log.Printf("✅ Loaded rates for %d cottages", len(rates))

	// Initialize services
	intentRouter := service.NewIntentRouter(aiClient, cfg.Assistant.FallbackIntent)
	pricingHandler := service.NewPricingQueryHandler(rates, cfg.Assistant.BaseOccupancy)
	capacityHandler := service.NewCapacityHandler(rates, cfg.Assistant.BaseOccupancy)
	recommender := service.NewRecommendationEngine(cfg.Assistant.MaxSuggestions)
	relevanceFilter := service.NewDocumentRelevanceFilter(rates)
	cleaner := service.NewAnswerCleaner()

	sessions := service.NewSessionRegistry(func() (*service.SlotManager, *service.ContextTracker) {
		numbers := service.NewNumberExtractor(cfg.Assistant.MaxCottageNumber)
		dates := service.NewDateExtractor()
		return service.NewSlotManager(numbers, dates, aiClient), service.NewContextTracker()
	}, cfg.Assistant.MaxHistoryMessages)

	chatService := service.NewChatService(
		sessions,
		intentRouter,
		pricingHandler,
		capacityHandler,
		recommender,
		relevanceFilter,
		cleaner,
		repo,
		aiClient,
		cfg.Retrieval.TopK,
	)

	log.Println("✅ Services initialized")

	// Initialize handlers
	chatHandler := handler.NewChatHandler(chatService)
	sessionHandler := handler.NewSessionHandler(chatService)
	embeddingHandler := handler.NewEmbeddingHandler(chatService, cfg.OpenAI.EmbeddingDimensions)
	feedbackHandler := handler.NewFeedbackHandler(chatService)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "cottage-booking-assistant",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
			"sessions":   sessions.Count(),
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Chat endpoints
		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.POST("/chat/stream", chatHandler.ChatStream) // Streaming chat

		// Session endpoints
		apiV1.GET("/sessions/:id/suggestions", sessionHandler.Suggestions)
		apiV1.POST("/sessions/:id/clear", sessionHandler.Clear)
		apiV1.DELETE("/sessions/:id", sessionHandler.Delete)

		// Embedding endpoints
		apiV1.POST("/embeddings/batch", embeddingHandler.BatchUpdate)

		// Feedback endpoint
		apiV1.POST("/feedback", feedbackHandler.Submit)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API Documentation: http://localhost:%d/api/v1", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}
