package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"chatnotify/internal/db"
	"chatnotify/internal/dispatch"
	firebaseutil "chatnotify/internal/firebase"
	"chatnotify/internal/handlers"
	"chatnotify/internal/push"
	"chatnotify/internal/store"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	logger := newLogger()
	defer logger.Sync()
	sugar := logger.Sugar()

	// Initialize Firebase; this is the only fatal-at-startup condition
	ctx := context.Background()
	clients, err := firebaseutil.Init(ctx)
	if err != nil {
		sugar.Fatalf("Failed to initialize Firebase: %v", err)
	}
	defer clients.Firestore.Close()

	// Initialize optional Redis token cache
	redisClient, err := db.InitRedis()
	if err != nil {
		sugar.Fatalf("Failed to initialize Redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sugar.Infow("redis token cache enabled")
	}

	tokenStore := store.NewTokenStore(clients.Firestore, redisClient, sugar)
	historyStore := store.NewHistoryStore(clients.Firestore)
	sender := push.NewFCMSender(clients.Messaging)
	dispatcher := dispatch.NewDispatcher(tokenStore, historyStore, sender, sugar)

	router := handlers.NewRouter(sugar,
		handlers.NewNotificationsHandler(dispatcher, sugar),
		handlers.NewHistoryHandler(historyStore, sugar),
		handlers.NewHealthHandler(clients.Messaging != nil && clients.Firestore != nil),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		sugar.Infow("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugar.Infow("shutting down server")

	// Give a 5 second timeout for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Fatalf("Server forced to shutdown: %v", err)
	}

	sugar.Infow("server exited")
}

func newLogger() *zap.Logger {
	if os.Getenv("APP_ENV") == "development" {
		logger, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Failed to build logger: %v", err)
		}
		return logger
	}
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	return logger
}
