package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"gramly/config"
	"gramly/database"
	"gramly/handlers"
	"gramly/media"
	"gramly/routes"
)

func main() {
	log.Println("Starting gramly backend...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Config error: ", err)
	}

	log.Println("Connecting to MongoDB...")

	var db *database.Mongo
	var dbErr error
	for i := 1; i <= 3; i++ {
		db, dbErr = database.Connect(cfg)
		if dbErr != nil {
			log.Printf("MongoDB connection attempt %d failed: %v", i, dbErr)
			time.Sleep(2 * time.Second)
			continue
		}
		break
	}
	if dbErr != nil {
		log.Fatal("Failed to connect to MongoDB: ", dbErr)
	}
	defer db.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.EnsureIndexes(ctx); err != nil {
		cancel()
		log.Fatal("Failed to create indexes: ", err)
	}
	cancel()

	uploader, err := media.NewUploader(cfg.CloudinaryURL, "gramly/posts")
	if err != nil {
		log.Fatal("Cloudinary error: ", err)
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	h := handlers.New(db, uploader, cfg)
	router := routes.SetupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown: ", err)
	}

	log.Println("Server stopped gracefully")
}
