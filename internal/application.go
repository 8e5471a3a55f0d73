package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/config"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/repository"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/repository/storage"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/service"
	redisTransport "github.com/rocketscienceinc/fourpiece-tictactoe/internal/transport/redis"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/fourpiece-tictactoe/pkg/server"
	"github.com/rocketscienceinc/fourpiece-tictactoe/transport/rest"
	"github.com/rocketscienceinc/fourpiece-tictactoe/transport/websocket"
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

	var redisClient *redis.Client
	if conf.UsesRedis() {
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		client, err := storage.New(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = client.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		redisClient = client
	}

	gameRepo := repository.NewMemoryGameRepository()
	if conf.Storage == config.StorageRedis {
		gameRepo = repository.NewGameRepository(redisClient, conf.Game.TTL)
	}

	gameManager := usecase.NewGameManager(
		logger,
		gameRepo,
		service.NewRandomStrategy(nil),
		service.NewTextInterpreter(),
		usecase.Settings{
			GameOptions: conf.GameOptions(),
			AutoReply:   conf.Bot.AutoReply,
		},
	)

	if redisClient != nil {
		gameManager.AddPublisher(redisTransport.NewPublisher(redisClient))
	}

	hub := websocket.NewHub(logger)
	gameManager.AddPublisher(hub)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort, "storage", conf.Storage)
		if httpErr := server.Run(ctx, conf.HTTPPort, rest.NewRouter(logger, gameManager)); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameManager, hub)
		if wsErr := server.Run(ctx, conf.SocketPort, wsServer.Handler(ctx)); wsErr != nil {
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
