package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gator-gram/internal/config"
	"gator-gram/internal/database"
	"gator-gram/internal/engine"
	"gator-gram/internal/handlers"
	"gator-gram/internal/middleware"
	"gator-gram/internal/upload"
	"gator-gram/internal/utils"
	"gator-gram/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg.Debug)

	middleware.InitJWT(cfg.JWTSecret)

	// Connect to MongoDB
	db, err := database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		slog.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}

	// Configure the image upload collaborator
	uploader, err := upload.NewCloudinaryUploader(cfg.Cloudinary)
	if err != nil {
		slog.Error("failed to configure Cloudinary", "error", err)
		os.Exit(1)
	}

	metrics := utils.NewMetricsCollector()

	// Start the live feed hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize actor system and engine
	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, db, uploader, hub, metrics)

	server := handlers.NewServer(system, eng, metrics, uploader, hub, cfg.Debug)

	mux := http.NewServeMux()
	protect := middleware.ApplyJWTMiddleware

	// Unprotected routes
	mux.HandleFunc("GET /{$}", server.HandleRoot())
	mux.HandleFunc("GET /health", server.HandleHealth())
	mux.HandleFunc("POST /auth/register", server.HandleRegister())
	mux.HandleFunc("POST /auth/login", server.HandleLogin())

	// Post routes
	mux.HandleFunc("GET /posts", protect(server.HandleListPosts()))
	mux.HandleFunc("POST /posts", protect(server.HandleCreatePost()))
	mux.HandleFunc("DELETE /posts/{id}", protect(server.HandleDeletePost()))
	mux.HandleFunc("POST /posts/{id}/like", protect(server.HandleLike()))
	mux.HandleFunc("POST /posts/{id}/comment", protect(server.HandleComment()))
	mux.HandleFunc("POST /posts/{id}/react", protect(server.HandleReact()))

	// User routes
	mux.HandleFunc("GET /users/profile", protect(server.HandleGetProfile()))
	mux.HandleFunc("PUT /users/profile", protect(server.HandleUpdateProfile()))
	mux.HandleFunc("GET /users/ranking", protect(server.HandleRanking()))
	mux.HandleFunc("PUT /users/score", protect(server.HandleUpdateScore()))

	// Live feed events (token carried as a query parameter)
	mux.HandleFunc("GET /ws", server.HandleWebSocket())

	cors := middleware.CORSMiddleware(middleware.DefaultCORSConfig(cfg.AllowedOrigins))

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      cors(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("starting server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal, then drain
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if err := db.Close(ctx); err != nil {
		slog.Error("database disconnect failed", "error", err)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.StampMilli,
	})))
}
