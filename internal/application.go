package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kyivgames/tictactoe-backend/internal/bot"
	"github.com/kyivgames/tictactoe-backend/internal/config"
	"github.com/kyivgames/tictactoe-backend/internal/game"
	"github.com/kyivgames/tictactoe-backend/internal/registry"
	"github.com/kyivgames/tictactoe-backend/internal/repository"
	"github.com/kyivgames/tictactoe-backend/internal/repository/storage"
	"github.com/kyivgames/tictactoe-backend/internal/usecase"
	"github.com/kyivgames/tictactoe-backend/transport/rest"
	"github.com/kyivgames/tictactoe-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	playerRepo := repository.NewPlayerRepository(redisStorage.Connection)
	statsRepo := repository.NewStatsRepository(redisStorage.Connection)

	rooms := registry.New()
	roomManager := usecase.NewRoomManager(logger, rooms, playerRepo, statsRepo, conf.Room.MaxAge)

	botService := bot.NewService()
	localEngine := game.NewEngine(botService)
	localGames := game.NewStore()
	restHandlers := rest.NewHandlers(logger, localEngine, localGames)

	// run HTTP server for the local modes
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, logger, conf.HTTPPort, restHandlers); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run WebSocket server for the online mode
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, roomManager)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
