package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "fastingapi/internal/adapter/http"
	"fastingapi/internal/adapter/memory"
	"fastingapi/internal/adapter/postgres"
	"fastingapi/internal/adapter/sqlite"
	"fastingapi/internal/app"
	"fastingapi/internal/config"
	"fastingapi/internal/domain"

	"github.com/gin-gonic/gin"
)

// store is what the services need from a backend.
type store interface {
	domain.UserRepository
	domain.FastRepository
	domain.WeightRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	db, closer, ping, err := openStore(cfg)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = closer.Close() }()

	bmi := app.BMIPolicy{Height: cfg.BMI.HeightM, UseProfileHeight: cfg.BMI.UseProfileHeight}
	userSvc := app.NewUserService(db, db, db)
	fastSvc := app.NewFastService(db, db)
	weightSvc := app.NewWeightService(db, db, bmi)
	chartsSvc := app.NewChartsService(db, db)

	h := adapthttp.New(userSvc, fastSvc, weightSvc, chartsSvc, adapthttp.Options{
		CORSOrigins: cfg.CORSOrigins,
		Ping:        ping,
	}).Handler()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on %s (store=%s)", cfg.Addr, cfg.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Print("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openStore(cfg *config.Config) (store, io.Closer, func(context.Context) error, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return db, db, db.Ping, nil
	case config.DriverMemory:
		return memory.New(), nopCloser{}, nil, nil
	default:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return db, db, db.Ping, nil
	}
}
