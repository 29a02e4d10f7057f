package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-retail-pos.git/internal/config"
	kafkax "github.com/ariefcatur/go-retail-pos.git/internal/kafka"
	"github.com/ariefcatur/go-retail-pos.git/internal/orders"
	"github.com/ariefcatur/go-retail-pos.git/internal/postgres"
	"github.com/ariefcatur/go-retail-pos.git/internal/redisx"
	"github.com/ariefcatur/go-retail-pos.git/internal/reports"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	rollup := &reports.Rollup{DB: db, Redis: rdb}

	// Dua consumer, satu per topic, handler sama (dibedakan via event_type).
	group := getenv("REPORTING_GROUP", "reporting-svc")
	workers := mustAtoi(os.Getenv("REPORTING_WORKERS"), "4")
	cCreated := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderCreated, workers)
	cReversed := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderReversed, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return cCreated.Start(gctx, rollup.HandleOrderEvent) })
	g.Go(func() error { return cReversed.Start(gctx, rollup.HandleOrderEvent) })
	log.Printf("reporting consumers started: group=%s workers=%d", group, workers)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Println("shutting down consumers...")
		cancel()
	case <-gctx.Done():
	}
	if err := g.Wait(); err != nil {
		log.Printf("consumer exit: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
}
