package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"noiressence/internal/assistant"
	"noiressence/internal/checkout"
	"noiressence/internal/config"
	"noiressence/internal/events"
	"noiressence/internal/http/handlers"
	applog "noiressence/internal/log"
	"noiressence/internal/repos"
)

func main() {
	if err := run(); err != nil {
		applog.L().Fatal("server.exit", zap.Error(err))
	}
}

func run() error {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			applog.L().Warn("log.file.open", zap.String("path", cfg.LogFile), zap.Error(err))
		} else {
			defer f.Close()
			applog.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}
	log := applog.L()
	log.Info("config.loaded", zap.Any("fields", cfg.Fields()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	var gen assistant.Generator = assistant.Unavailable{}
	if g, err := assistant.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel); err != nil {
		log.Warn("assistant.disabled", zap.Error(err))
	} else {
		gen = g
	}

	sink := checkout.Acknowledge
	if cfg.AMQPURL != "" {
		conn, err := events.Dial(cfg.AMQPURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		pub, err := events.NewOrderPublisher(conn)
		if err != nil {
			return err
		}
		defer pub.Close()
		sink = pub
		log.Info("orders.publisher.ready", zap.String("exchange", events.EventsExchange))
	}

	deps := handlers.NewDeps(db, cfg, gen, sink)
	app := handlers.NewApp(deps, handlers.Options{
		TemplateDir: cfg.TemplateDir,
		StaticDir:   cfg.StaticDir,
		Reload:      true,
		AccessLog:   true,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server.listen", zap.String("port", cfg.Port))
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("server.shutdown")
		return app.ShutdownWithTimeout(10 * time.Second)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
