package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/krishanu7/battleship-engine/config"
	"github.com/krishanu7/battleship-engine/db"
	"github.com/krishanu7/battleship-engine/internal/auth"
	"github.com/krishanu7/battleship-engine/internal/game"
	"github.com/krishanu7/battleship-engine/internal/leaderboard"
	"github.com/krishanu7/battleship-engine/internal/match"
	"github.com/krishanu7/battleship-engine/internal/ws"
	"github.com/krishanu7/battleship-engine/pkg/redis"
	wsPkg "github.com/krishanu7/battleship-engine/pkg/websocket"
)

func main() {
	cfg := config.LoadConfig()

	difficulty, err := game.ParseDifficulty(cfg.Difficulty)
	if err != nil {
		log.Fatalf("Invalid DIFFICULTY: %v", err)
	}

	conn, err := db.Connect(cfg.DBUrl)
	if err != nil {
		log.Fatal("Failed to connect database:", err)
	}
	defer conn.Close()

	if err := db.Migrate(conn, cfg.MigrationsDir); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	rdb, err := redis.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatal("Failed to connect redis:", err)
	}
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	authService := auth.NewService(conn, cfg)
	authHandler := auth.NewAuthHandler(authService)

	leaderboardService := leaderboard.NewService(conn)
	leaderboardHandler := leaderboard.NewHandler(leaderboardService)

	publisher := redis.NewPublisher(rdb, redis.EventsChannel)
	matchService := match.NewService(rand.New(rand.NewSource(cfg.Seed)), publisher, leaderboardService)
	matchHandler := match.NewHandler(matchService, authService, difficulty)

	hub := wsPkg.NewHub()
	playHandler := ws.NewHandler(matchService, authService, difficulty)
	watchHandler := ws.NewWatchHandler(hub, matchService)

	worker := ws.NewNotificationWorker(rdb, hub, publisher.Channel())
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Notification worker stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	mux.HandleFunc("POST /api/v1/matches", matchHandler.Create)
	mux.HandleFunc("GET /api/v1/matches/{id}", matchHandler.Get)
	mux.HandleFunc("POST /api/v1/matches/{id}/moves", matchHandler.Move)
	mux.HandleFunc("DELETE /api/v1/matches/{id}", matchHandler.Forfeit)

	mux.HandleFunc("GET /api/v1/leaderboard", leaderboardHandler.GetLeaderboard)

	mux.HandleFunc("/ws/play", playHandler.ServePlay)
	mux.HandleFunc("/ws/watch", watchHandler.ServeWatch)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown failed: %v", err)
		}
	}()

	log.Printf("Server started at %s (difficulty %s)", srv.Addr, difficulty)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Printf("Server stopped with %d matches still active", matchService.Active())
}
