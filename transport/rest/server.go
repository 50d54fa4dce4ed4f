package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Start - starts the HTTP server and blocks until it fails or the context
// is canceled.
func Start(ctx context.Context, logger *slog.Logger, port string, handlers Handlers) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", handlers.PingHandler)
	mux.HandleFunc("POST /api/games", handlers.StartGame)
	mux.HandleFunc("GET /api/games", handlers.ListGames)
	mux.HandleFunc("GET /api/games/{id}/events", handlers.StreamEvents)
	mux.HandleFunc("POST /api/games/render-complete", handlers.RenderComplete)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     RateLimit(mux),
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: the event stream endpoint holds its response open
		// for the lifetime of a game.
		IdleTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down server", "error", err)
		}

		return nil
	}
}
