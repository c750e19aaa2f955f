package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lox/trucoforbots/internal/server"
)

// ServeCmd runs the decision server
type ServeCmd struct {
	Addr           string `short:"a" env:"TRUCOFORBOTS_ADDR" help:"Server address to bind to (overrides config)"`
	DefaultProfile string `short:"p" help:"Profile used when a request names none (overrides config)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}

	if c.DefaultProfile != "" {
		cfg.Server.DefaultProfile = c.DefaultProfile
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	addr := cfg.Address()
	if c.Addr != "" {
		addr = c.Addr
	}

	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	srv := server.NewServer(registry, logger,
		server.WithDefaultProfile(cfg.Server.DefaultProfile),
		server.WithSendBuffer(cfg.Server.SendBuffer),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Loaded profiles", "profiles", registry.Names(), "config", g.Config)
	return srv.Run(ctx, addr)
}
