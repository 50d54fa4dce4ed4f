package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/llmarena/chessmatch-backend/internal/config"
	"github.com/llmarena/chessmatch-backend/internal/eventbus"
	"github.com/llmarena/chessmatch-backend/internal/registry"
	"github.com/llmarena/chessmatch-backend/internal/rendersync"
	"github.com/llmarena/chessmatch-backend/internal/repository"
	"github.com/llmarena/chessmatch-backend/internal/repository/storage"
	"github.com/llmarena/chessmatch-backend/internal/service"
	"github.com/llmarena/chessmatch-backend/internal/usecase"
	"github.com/llmarena/chessmatch-backend/transport/rest"
)

var (
	ErrAddrNotFound = errors.New("redis address string is empty")
	ErrNoPlayers    = errors.New("two player endpoints must be configured")
)

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

	if len(conf.Players) != 2 {
		return fmt.Errorf("%w: got %d", ErrNoPlayers, len(conf.Players))
	}

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

	gameRepo := repository.NewGameRepository(redisStorage.Connection)
	gameRegistry := registry.New()
	bus := eventbus.New(logger)
	gate := rendersync.New(logger)
	llm := service.NewLLMService(logger, conf.Game.RequestTimeout.Std())

	orchestrator := usecase.NewOrchestrator(logger, gameRegistry, bus, gate, llm, gameRepo, conf.Players, conf.Game)
	handlers := rest.NewHandlers(ctx, logger, orchestrator, bus, gameRegistry, gate)

	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, logger, conf.HTTPPort, handlers); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
