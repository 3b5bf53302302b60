package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gwi.com/chat-persistence/internal/api"
	"gwi.com/chat-persistence/internal/auth"
	"gwi.com/chat-persistence/internal/config"
	"gwi.com/chat-persistence/internal/core"
	"gwi.com/chat-persistence/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Pick the snapshot substrate
	var substrate store.Substrate
	switch config.AppConfig.StorageDriver {
	case "sqlite":
		sqliteSubstrate, err := store.NewSQLiteSubstrate(config.AppConfig.DatabaseURL, config.AppConfig.SnapshotSlot)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer sqliteSubstrate.Close()
		substrate = sqliteSubstrate
	case "file":
		fileSubstrate := store.NewFileSubstrate(config.AppConfig.SnapshotPath)
		fileSubstrate.MaxBytes = config.AppConfig.SnapshotMaxBytes
		substrate = fileSubstrate
	default:
		log.Fatalf("Unknown STORAGE_DRIVER %q (want file or sqlite)", config.AppConfig.StorageDriver)
	}

	dbStore := store.New(substrate)

	// Optional title generation
	titleService := core.NewTitleService(context.Background())
	defer titleService.Close()

	// Initialize services
	chatService := core.NewChatService(dbStore, titleService)
	authenticator := auth.NewAuthenticator(dbStore)
	oauthProvider := auth.NewOAuthProvider(
		config.AppConfig.WeChatAppID,
		config.AppConfig.WeChatAppSecret,
		config.AppConfig.BaseURL+"/api/auth/callback/wechat",
		dbStore,
	)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(chatService, authenticator, oauthProvider, dbStore)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // title generation calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
