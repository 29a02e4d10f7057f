package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-retail-pos.git/internal/auth"
	"github.com/ariefcatur/go-retail-pos.git/internal/catalog"
	"github.com/ariefcatur/go-retail-pos.git/internal/config"
	"github.com/ariefcatur/go-retail-pos.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-retail-pos.git/internal/kafka"
	"github.com/ariefcatur/go-retail-pos.git/internal/orders"
	"github.com/ariefcatur/go-retail-pos.git/internal/postgres"
	"github.com/ariefcatur/go-retail-pos.git/internal/redisx"
	"github.com/ariefcatur/go-retail-pos.git/internal/reports"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB: migrate dulu, baru buka pool
	if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers (satu per topic)
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	pCreated.Start(ctx)
	pReversed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderReversed, 1024)
	pReversed.Start(ctx)

	// Services
	orderRepo := &orders.Repo{DB: db}
	orderSvc := &orders.Service{
		Variants: &catalog.SaleStore{DB: db},
		Orders:   orderRepo,
		Invoices: orderRepo,
	}
	authSvc := &auth.Service{
		Staff:      &auth.Repo{DB: db},
		Tokens:     &auth.TokenMaker{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL},
		BcryptCost: cfg.BcryptCost,
	}
	reportSvc := &reports.Service{DB: db, Redis: rdb, CacheTTL: cfg.ReportCacheTTL}

	// Handlers & router
	router := httpx.NewRouter()
	ah := &httpx.AuthHandler{Service: authSvc}
	oh := &httpx.OrdersHandler{
		Service:          orderSvc,
		CreatedProducer:  pCreated,
		ReversedProducer: pReversed,
		Redis:            rdb,
		ServiceName:      cfg.ServiceName,
	}
	ch := &httpx.CatalogHandler{Repo: &catalog.Repo{DB: db}}
	rh := &httpx.ReportsHandler{Service: reportSvc}

	ah.Register(router)
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(authSvc.Tokens))
		oh.Register(r)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAdmin))
			ch.Register(r)
			rh.Register(r)
			ah.RegisterAdmin(r)
		})
	})

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pCreated.Close() // tutup inbox -> flush & close writer
	pReversed.Close()
	cancel() // stop producer loop
	pCreated.WaitClosed()
	pReversed.WaitClosed()
}
