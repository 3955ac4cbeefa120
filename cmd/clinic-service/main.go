package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicore/clinic-backend/internal/auth"
	"github.com/clinicore/clinic-backend/internal/clinic"
	"github.com/clinicore/clinic-backend/internal/directory"
	"github.com/clinicore/clinic-backend/internal/prescription"
	"github.com/clinicore/clinic-backend/internal/scheduling"
	"github.com/clinicore/clinic-backend/pkg/config"
	"github.com/clinicore/clinic-backend/pkg/database"
	"github.com/clinicore/clinic-backend/pkg/logger"
	"github.com/clinicore/clinic-backend/pkg/monitoring"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.New(cfg.LogLevel)

	db, err := database.NewConnection(&cfg.Database, logg)
	if err != nil {
		logg.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.CreateSchema(ctx); err != nil {
		cancel()
		logg.Fatalf("Failed to create database schema: %v", err)
	}
	cancel()

	mongoDB, err := database.NewMongoDatabase(&cfg.Mongo, logg)
	if err != nil {
		logg.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	metrics := monitoring.NewMetricsCollector("clinic-backend")

	directoryStore := directory.NewRepository(db, logg)
	appointmentStore := scheduling.NewRepository(db, logg)

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 10*time.Second)
	prescriptionStore, err := prescription.NewStore(indexCtx, mongoDB, logg)
	indexCancel()
	if err != nil {
		logg.Fatalf("Failed to initialize prescription store: %v", err)
	}

	authority := auth.NewAuthority(&cfg.JWT, directoryStore, logg)
	gate := auth.NewGate(authority, logg)

	availability := scheduling.NewAvailabilityResolver(directoryStore, appointmentStore, logg)
	validator := scheduling.NewValidator(directoryStore, availability, logg)
	ledger := scheduling.NewLedger(validator, gate, directoryStore, appointmentStore,
		cfg.Scheduling.RevalidateOnReschedule, logg)

	directorySvc := directory.NewService(directoryStore, appointmentStore, authority, logg)
	prescriptionSvc := prescription.NewService(prescriptionStore, ledger, logg)

	service := clinic.NewService(cfg, logg, metrics, db, gate, directorySvc, availability, ledger, prescriptionSvc)

	go func() {
		if err := service.Start(); err != nil && err != http.ErrServerClosed {
			logg.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("Shutting down clinic service...")

	if err := service.Stop(); err != nil {
		logg.Errorf("Failed to shutdown server gracefully: %v", err)
		os.Exit(1)
	}

	logg.Info("Clinic service stopped")
}
