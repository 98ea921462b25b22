package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Start - starts the HTTP server for the local game modes.
func Start(ctx context.Context, logger *slog.Logger, port string, handlers Handlers) error {
	router := mux.NewRouter()
	router.HandleFunc("/ping", handlers.Ping).Methods(http.MethodGet)
	router.HandleFunc("/api/new_game", handlers.NewGame).Methods(http.MethodPost)
	router.HandleFunc("/api/move", handlers.Move).Methods(http.MethodPost)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
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
