package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talkincode/toughpos/config"
	"github.com/talkincode/toughpos/internal/app"
)

var (
	h        = flag.Bool("h", false, "help usage")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
)

func main() {
	flag.Parse()
	if *h {
		fmt.Fprintln(os.Stderr, "Usage: toughpos [-c toughpos.yml] [-initdb]")
		flag.PrintDefaults()
		return
	}

	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.NewApplication(cfg)
	if err := application.Init(ctx); err != nil {
		log.Fatalf("init application: %v", err)
	}
	defer application.Release()

	if *initdb {
		if err := application.InitDb(ctx); err != nil {
			zap.S().Errorf("init database: %v", err)
			return
		}
		zap.S().Info("database initialized")
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	server := application.NewWebServer()
	g.Go(func() error {
		return server.Start(gctx)
	})
	g.Go(func() error {
		return application.StartBackgroundJobs(gctx)
	})
	if err := g.Wait(); err != nil {
		zap.S().Errorf("toughpos stopped: %v", err)
	}
}
