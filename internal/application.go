package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/advisory"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/config"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/service"
	"github.com/rocketscienceinc/tictactoe-rooms/transport/rest"
	"github.com/rocketscienceinc/tictactoe-rooms/transport/websocket"
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

	directory := repository.NewMemoryRoomDirectory()
	if conf.Redis.Enabled() {
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		directory = repository.NewRedisRoomDirectory(redisStorage.Connection)
		log.Info("Room directory backed by redis", "addr", conf.Redis.GetRedisAddr())
	}

	// rooms live only in this process, so snapshots from an earlier run are stale
	if err := directory.Reset(ctx); err != nil {
		return fmt.Errorf("could not reset room directory: %w", err)
	}

	var completer service.Completer = advisory.Unavailable{}
	if conf.Advisor.Enabled() {
		completer = advisory.NewClient(logger, conf.Advisor)
		log.Info("Advisory collaborator configured", "model", conf.Advisor.Model)
	}

	hub := websocket.NewHub(logger)
	rooms := service.NewRoomService(
		logger,
		repository.NewRoomRegistry(),
		directory,
		hub,
		service.NewAdvisoryOrchestrator(logger, completer, conf.Advisor.Timeout),
		service.NewRandomDice(),
		service.NewTimeScheduler(),
		service.Options{
			LockTurns:    conf.Game.LockTurns,
			ClearDelay:   conf.Game.ClearDelay,
			WinningScore: conf.Game.WinningScore,
		},
	)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, logger, conf.HTTPPort, directory); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, rooms, hub)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err := <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err := <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
