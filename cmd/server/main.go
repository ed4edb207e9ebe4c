package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/Tyrowin/roomchat/internal/logging"
	"github.com/Tyrowin/roomchat/internal/roomstore"
	"github.com/Tyrowin/roomchat/internal/server"
)

func main() {
	root := &cli.Command{
		Name:  "roomchat",
		Usage: "Run a multi-user, room-based chat server",
		Flags: rootFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, logging.Init(cmd.String("log"))
		},
		Action: run,
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		logging.L().Fatal("server failed", zap.Error(err))
	}
}

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "addr",
			Usage: "TCP listen address for the chat protocol",
		},
		&cli.StringFlag{
			Name:  "http-addr",
			Usage: "Listen address for the WebSocket gateway (set empty to disable)",
		},
		&cli.StringFlag{
			Name:  "banner",
			Usage: "Banner to show to clients when they connect",
		},
		&cli.StringFlag{
			Name:  "rooms-file",
			Usage: "Path of the YAML room store",
		},
		&cli.StringFlag{
			Name:  "redis-url",
			Usage: "Redis URL for the room store (overrides --rooms-file)",
		},
		&cli.StringFlag{
			Name:  "log",
			Usage: "Log level: debug, info, warn, error",
			Value: "info",
		},
	}
}

// overrideFromFlags applies explicitly set flags on top of the env-derived
// configuration. http-addr honors an explicit empty value, which disables
// the gateway.
func overrideFromFlags(cfg *server.Config, cmd *cli.Command) {
	if v := cmd.String("addr"); v != "" {
		cfg.ChatAddr = v
	}
	if cmd.IsSet("http-addr") {
		cfg.HTTPAddr = cmd.String("http-addr")
	}
	if v := cmd.String("banner"); v != "" {
		cfg.Banner = v
	}
	if v := cmd.String("rooms-file"); v != "" {
		cfg.RoomsFile = v
	}
	if v := cmd.String("redis-url"); v != "" {
		cfg.RedisURL = v
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := server.NewConfigFromEnv()
	overrideFromFlags(cfg, cmd)
	server.SetConfig(cfg)

	log := logging.L()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	hub, err := server.NewHub(store, cfg.Banner)
	if err != nil {
		return err
	}
	go hub.Run()

	acceptor, err := server.NewAcceptor(cfg.ChatAddr, hub)
	if err != nil {
		return err
	}
	go func() {
		if err := acceptor.Run(); err != nil {
			log.Error("acceptor stopped", zap.Error(err))
		}
	}()

	httpServer := startGateway(hub, cfg)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	log.Info("shutting down")
	if err := acceptor.Close(); err != nil {
		log.Warn("error closing acceptor", zap.Error(err))
	}
	if httpServer != nil {
		_ = server.ShutdownServer(httpServer, cfg.ShutdownTimeout)
	}
	return hub.Shutdown(cfg.ShutdownTimeout)
}

func openStore(ctx context.Context, cfg *server.Config) (roomstore.Store, error) {
	if cfg.RedisURL != "" {
		return roomstore.NewRedisStore(ctx, cfg.RedisURL)
	}
	return roomstore.NewFileStore(cfg.RoomsFile)
}

func startGateway(hub *server.Hub, cfg *server.Config) *http.Server {
	if cfg.HTTPAddr == "" {
		return nil
	}

	gateway := server.NewGateway(hub)
	httpServer := server.CreateServer(cfg.HTTPAddr, gateway.Routes())
	go func() {
		if err := server.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.L().Warn("gateway stopped", zap.Error(err))
		}
	}()
	return httpServer
}
