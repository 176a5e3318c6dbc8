// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/nyonnyola/nyonnyola/internal/cache"
	"github.com/nyonnyola/nyonnyola/internal/database"
	"github.com/nyonnyola/nyonnyola/internal/handlers"
	"github.com/nyonnyola/nyonnyola/internal/middleware"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	// Both stores are optional: the game itself is in-memory only.
	if os.Getenv("DATABASE_URL") != "" {
		if err := database.Connect(context.Background()); err != nil {
			logger.Fatalf("database: %v", err)
		}
		logger.Info("Result persistence enabled")
	}
	if os.Getenv("REDIS_ADDR") != "" {
		if err := cache.ConnectRedis(); err != nil {
			logger.Warnf("Redis unavailable, round publishing disabled: %v", err)
		} else {
			logger.Info("Round publishing enabled")
		}
	}

	srv := handlers.NewServer()

	mux := http.NewServeMux()

	// session endpoints
	mux.Handle("/session/create", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.CreateSessionHandler(srv),
	)))
	mux.Handle("/session/list", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.ListSessionsHandler(srv),
	)))
	mux.Handle("/session/state", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.SessionStateHandler(srv),
	)))
	mux.Handle("/session/action", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.ActionHandler(srv),
	)))
	mux.Handle("/session/end", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.EndSessionHandler(srv),
	)))

	// session websocket
	mux.Handle("/session/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.SessionWSHandler(logger, srv),
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
