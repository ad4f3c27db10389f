// README: Entry point; loads config, wires services, starts the HTTP
// server and the outbox worker.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pronto/internal/config"
	"pronto/internal/content"
	httptransport "pronto/internal/http"
	"pronto/internal/infra"
	"pronto/internal/maps"
	"pronto/internal/modules/cart"
	"pronto/internal/modules/checkout"
	"pronto/internal/modules/order"
	"pronto/internal/modules/pricing"
	"pronto/internal/modules/tracking"
	"pronto/internal/outbox"
	"pronto/migrations"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("firebase init: %v", err)
	}

	if err := infra.Migrate(cfg.DB.DSN, migrations.FS, "."); err != nil {
		log.Fatalf("migrations: %v", err)
	}
	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	rabbit, err := infra.NewRabbit(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
	if err != nil {
		log.Fatalf("rabbitmq init: %v", err)
	}
	defer rabbit.Close()

	contentClient := content.NewClient(content.Config{
		ProjectID:  cfg.Content.ProjectID,
		Dataset:    cfg.Content.Dataset,
		Token:      cfg.Content.Token,
		APIVersion: cfg.Content.APIVersion,
	})

	var routes *maps.RouteService
	var places *maps.PlacesService
	if cfg.Maps.APIKey != "" {
		routes, err = maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		places, err = maps.NewPlacesService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
	} else {
		slog.Warn("no maps key configured, using great-circle distances")
	}

	cartSvc := cart.NewService(cart.NewRedisStore(redisClient))

	pricingSvc := pricing.NewService(pricing.NewStore(dbPool), pricing.DefaultPolicy())

	orderStore := order.NewStore(contentClient)

	outboxStore := outbox.NewStore(dbPool)
	recorder := outbox.NewRecorder(outboxStore, cfg.Rabbit.Exchange)
	worker := outbox.NewWorker(outboxStore, rabbit, outbox.WorkerConfig{
		PollInterval: time.Duration(cfg.Outbox.PollSeconds) * time.Second,
		BatchSize:    cfg.Outbox.BatchSize,
	})

	checkoutDeps := checkout.Deps{
		Store:     checkout.NewRedisStore(redisClient),
		Carts:     cartSvc,
		Quoter:    pricingSvc,
		Merchants: orderStore,
		Creator:   orderStore,
		Events:    recorder,
	}
	if routes != nil {
		checkoutDeps.Estimator = routes
	}
	checkoutSvc := checkout.NewService(checkoutDeps)

	watcher := tracking.NewWatcher(orderStore)

	handler := httptransport.NewRouter(httptransport.ServerDeps{
		Carts:    cartSvc,
		Checkout: checkoutSvc,
		Orders:   orderStore,
		Pricing:  pricingSvc,
		Tracking: watcher,
		Content:  contentClient,
		Places:   places,
		Verifier: verifier,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go worker.Start(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown", "error", err)
		}
	}()

	slog.Info("listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
