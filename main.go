// Entry point for the AquaSentinel AI service
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/aquasentinel/aquasentinel-go/pkg/config"
	"github.com/aquasentinel/aquasentinel-go/pkg/store"
	"github.com/aquasentinel/aquasentinel-go/utils"
)

func main() {
	// A .env file is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		utils.GetLogger().Fatal("failed to load configuration", err)
	}

	utils.InitLogger(utils.LoggingConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger := utils.GetLogger()

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open history store", err, utils.String("db_path", cfg.DBPath))
	}
	defer st.Close()

	server, err := NewServer(cfg, st)
	if err != nil {
		logger.Fatal("failed to create server", err)
	}

	server.Initialize(context.Background())

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      c.Handler(server.Handler()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("starting AquaSentinel AI service",
			utils.String("addr", cfg.Addr()),
			utils.String("environment", cfg.Environment))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("forced server shutdown", err)
	}
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("background components did not stop cleanly", err)
	}

	logger.Info("server stopped")
}
