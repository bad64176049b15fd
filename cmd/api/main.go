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
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/devcoelho/gobank/internal/bank"
	"github.com/devcoelho/gobank/internal/config"
	"github.com/devcoelho/gobank/internal/handler"
	"github.com/devcoelho/gobank/internal/model"
	"github.com/devcoelho/gobank/internal/processor"
	"github.com/devcoelho/gobank/internal/store"
	"github.com/devcoelho/gobank/internal/viacep"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	baseRate, err := decimal.NewFromString(cfg.BaseRate)
	if err != nil || baseRate.IsNegative() {
		log.Printf("Invalid BASE_RATE %q, using %s", cfg.BaseRate, model.DefaultBaseRate)
		baseRate = model.DefaultBaseRate
	}

	// Build the in-memory bank and restore the last snapshot. A failed load
	// degrades to an empty registry rather than refusing to start.
	b := bank.New(cfg.BankName, cfg.BankCode,
		bank.WithAgency(cfg.Agency),
		bank.WithDefaultRate(baseRate),
	)
	snapshots := store.New(cfg.DataDir)
	if err := snapshots.Load(b); err != nil {
		log.Printf("Failed to load snapshot, starting empty: %v", err)
	} else {
		log.Printf("Loaded %d clients and %d accounts from %s", len(b.Clients()), len(b.Accounts()), cfg.DataDir)
	}

	// Initialize the caller layer
	cepClient := viacep.New(cfg.ViaCEPAddress)
	periodProcessor := processor.NewPeriodProcessor(b)

	monthlyFee, err := decimal.NewFromString(cfg.MonthlyFee)
	if err != nil || monthlyFee.IsNegative() {
		log.Printf("Invalid MONTHLY_FEE %q, defaulting to zero", cfg.MonthlyFee)
		monthlyFee = decimal.Zero
	}

	clientHandler := handler.NewClientHandler(b, cepClient)
	accountHandler := handler.NewAccountHandler(b)
	transferHandler := handler.NewTransferHandler(b)
	simulationHandler := handler.NewSimulationHandler(periodProcessor, monthlyFee)

	// Set up router
	r := chi.NewRouter()
	r.Use(middleware.Logger)    // Logs each request
	r.Use(middleware.Recoverer) // Recovers from panics gracefully

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/v1", func(r chi.Router) {
		clientHandler.RegisterRoutes(r)
		accountHandler.RegisterRoutes(r)
		transferHandler.RegisterRoutes(r)
		simulationHandler.RegisterRoutes(r)
	})

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	// Graceful shutdown setup
	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Persist the final state. A failed save is logged, not fatal: the
	// process still exits cleanly with its last-known-good files on disk.
	if err := snapshots.Save(b); err != nil {
		log.Printf("Failed to save snapshot: %v", err)
	} else {
		log.Printf("Saved snapshot to %s", cfg.DataDir)
	}

	log.Println("Server stopped")
}
