package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the ping probe and the read-only lobby routes.
func NewRouter(logger *slog.Logger, directory roomDirectory) http.Handler {
	ping := NewPingHandler()
	rooms := NewRoomsHandler(logger, directory)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ping", ping.PingHandler)
	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", rooms.ListRooms)
		r.Get("/{name}", rooms.GetRoom)
	})

	return r
}

// Start - starts HTTP server and stops it when ctx is done.
func Start(ctx context.Context, logger *slog.Logger, port string, directory roomDirectory) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      NewRouter(logger, directory),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
