/*
Copyright © 2025 docqa
*/
package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/docqa/docqa-be/config"
	"github.com/docqa/docqa-be/database"
	"github.com/docqa/docqa-be/handler"
	"github.com/docqa/docqa-be/middleware"
	"github.com/docqa/docqa-be/pkg/logger"
	"github.com/docqa/docqa-be/service"
	"github.com/docqa/docqa-be/types"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the document Q&A server",
	Long:  `Starts the HTTP server that handles PDF uploads and document questions`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		logger.Init(&logger.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
		})

		documents := buildDocumentService(cfg)

		askHandler := handler.NewAskHandler(documents)
		documentHandler := handler.NewDocumentHandler(documents, cfg.UploadDir)
		wsService := service.NewWebSocketService(documents)

		gin.SetMode(gin.ReleaseMode)
		router := gin.New()
		router.Use(middleware.RequestID())
		router.Use(middleware.Recovery())
		router.Use(middleware.RequestLogger())
		router.Use(corsMiddleware())

		router.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":    "ok",
				"timestamp": time.Now().Format(time.RFC3339),
			})
		})

		api := router.Group("/api")
		{
			api.POST("/documents", documentHandler.Upload)
			api.POST("/documents/base64", documentHandler.UploadBase64)
			api.GET("/documents", documentHandler.List)
			api.GET("/documents/:id", documentHandler.Get)
			api.GET("/documents/:id/analysis", documentHandler.Analysis)
			api.GET("/documents/:id/chunks", documentHandler.Chunks)
			api.POST("/documents/:id/restructure", documentHandler.Restructure)
			api.DELETE("/documents/:id", documentHandler.Delete)
			api.POST("/ask", askHandler.Ask)
		}
		router.GET("/ws/chat", gin.WrapF(wsService.HandleChat))

		srv := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 120 * time.Second,
		}

		go func() {
			slog.Info("server listening", "port", cfg.Port)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("server error", "error", err)
				os.Exit(1)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("forced shutdown", "error", err)
		}
	},
}

func buildDocumentService(cfg *config.Config) *service.DocumentService {
	extractionCfg := types.ExtractionConfig{
		MinTextChars:    cfg.Extraction.MinTextChars,
		OCRTriggerChars: cfg.Extraction.OCRTriggerChars,
		ChunkSize:       cfg.Extraction.ChunkSize,
		ChunkOverlap:    cfg.Extraction.ChunkOverlap,
	}

	var ocr service.OCRRunner
	tesseract, err := service.NewTesseractOCR(cfg.Extraction.OCRLanguages)
	if err != nil {
		slog.Warn("OCR disabled", "error", err)
	} else {
		ocr = tesseract
	}

	providers := buildProviders(cfg)
	if len(providers) == 0 {
		slog.Warn("no AI provider configured, question answering is disabled")
	}
	gateway := service.NewGateway(service.GatewayConfig{
		Timeout:      cfg.Gateway.Timeout(),
		ContextChars: cfg.Gateway.ContextChars,
	}, providers...)

	store := database.NewMemoryStore()
	var index database.ChunkIndex = store
	if cfg.Weaviate.Host != "" {
		weaviateStore, err := database.NewWeaviateStore(database.WeaviateStoreConfig{
			Host:     cfg.Weaviate.Host,
			APIKey:   cfg.Weaviate.APIKey,
			Text2Vec: cfg.Weaviate.Text2Vec,
		})
		if err != nil {
			slog.Warn("weaviate unavailable, using in-memory chunk retrieval", "error", err)
		} else {
			index = weaviateStore
		}
	}

	return service.NewDocumentService(
		service.NewPDFService(extractionCfg),
		service.NewRasterService(ocr, extractionCfg),
		gateway,
		store,
		index,
		extractionCfg,
	)
}

func buildProviders(cfg *config.Config) []service.AIService {
	var providers []service.AIService
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, service.NewOpenAIService(service.ProviderConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Endpoint:    cfg.OpenAI.Endpoint,
			Model:       cfg.OpenAI.Model,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Temperature: cfg.OpenAI.Temperature,
		}))
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := service.NewGeminiService(context.Background(), service.ProviderConfig{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.Gemini.Model,
			MaxTokens:   cfg.Gemini.MaxTokens,
			Temperature: cfg.Gemini.Temperature,
		})
		if err != nil {
			slog.Warn("failed to initialize gemini provider", "error", err)
		} else {
			providers = append(providers, gemini)
		}
	}
	return providers
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func init() {
	rootCmd.AddCommand(startCmd)
}
