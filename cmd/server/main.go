package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"editzen-backend/internal/config"
	"editzen-backend/internal/handlers"
	"editzen-backend/internal/logging"
	"editzen-backend/internal/router"
	"editzen-backend/internal/services"
	"editzen-backend/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	// ──── Step 2: Logger ────
	logger, syncLogs, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("✗ Logger initialization failed: %v", err)
	}
	defer syncLogs()

	logger.Info("starting EditZen AI backend", zap.String("env", cfg.Env), zap.String("model", cfg.GeminiModel))

	// ──── Step 3: Initialize Gemini Client ────
	fetcher := services.NewImageFetcher(cfg.ImageFetchTimeout, cfg.ImageMaxBytes)
	geminiService, err := services.NewGeminiService(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, fetcher, logger)
	if err != nil {
		logger.Fatal("Gemini client initialization failed", zap.Error(err))
	}
	defer geminiService.Close()

	// ──── Step 4: Handlers & WebSocket Hub ────
	wsHub := websocket.NewHub(cfg.FrontendURL, logger)
	aiHandler := handlers.NewAIHandler(geminiService, logger)
	chatStreamHandler := handlers.NewChatStreamHandler(geminiService, wsHub, logger)

	// ──── Step 5: Start HTTP Server ────
	r := router.New(aiHandler, chatStreamHandler, logger, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		wsHub.CloseAll()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("EditZen AI backend ready",
		zap.String("api", fmt.Sprintf("http://localhost:%s/api/ai", cfg.Port)),
		zap.String("ws", fmt.Sprintf("ws://localhost:%s/api/ai/chat/stream", cfg.Port)),
	)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
