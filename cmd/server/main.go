package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/api"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/app"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/config"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/scheduler"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/service"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/version"
)

const (
	shutdownTimeout = 30 * time.Second

	// passDrainTimeout bounds the wait for an in-flight pass at shutdown. It covers a
	// fetch pass over 25 tickers at the minimum fetch delay.
	passDrainTimeout = 5 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
	log.Println("[INFO] server exited")
}

func run(cfg *config.Config) error {
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(context.Background())
	if err := a.Schedule(sched, cfg.Jobs); err != nil {
		return err
	}

	router := api.NewRouter(api.Services{
		System: service.NewSystemService(a.DB, sched),
		Report: a.Reports,
		Stock:  a.Stocks,
	}, cfg)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("[INFO] starting server %s on %s (provider %s)", version.Version, cfg.Server.Addr, a.Quotes.ProviderName())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	sched.Start()

	g.Go(func() error {
		<-gctx.Done()
		log.Println("[INFO] shutting down...")

		schedDone := make(chan error, 1)
		go func() {
			drainCtx, cancel := context.WithTimeout(context.Background(), passDrainTimeout)
			defer cancel()
			schedDone <- sched.Stop(drainCtx)
		}()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		serverErr := server.Shutdown(shutdownCtx)
		return errors.Join(serverErr, <-schedDone)
	})

	return g.Wait()
}
