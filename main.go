package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"retail-ledger/api"
	"retail-ledger/cli"
	"retail-ledger/config"
	"retail-ledger/logging"
	"retail-ledger/seed"
	"retail-ledger/service"
	"retail-ledger/snapshot"

	"github.com/gin-gonic/gin"
)

const saveTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	mode := flag.String("mode", cfg.Mode, "run mode: serve or cli")
	flag.Parse()
	if *mode != config.ModeServe && *mode != config.ModeCLI {
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(2)
	}

	// The CLI owns stdout, so its logs go to stderr.
	var logOut io.Writer = os.Stdout
	if *mode == config.ModeCLI {
		logOut = os.Stderr
	}
	logger := logging.New(logOut, cfg.Logging)

	if err := run(logger, cfg, *mode); err != nil {
		logger.Error("ledger stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg config.Config, mode string) error {
	ctx := context.Background()

	store, closeStore, err := buildSnapshotStore(ctx, cfg.Snapshot)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := service.New(logger)
	svc.SetDailyTransferLimit(cfg.Ledger.DailyTransferLimit)
	svc.SetMonthlyWithdrawalLimit(cfg.Ledger.MonthlyWithdrawalLimit)

	if err := loadLedger(ctx, logger, store, svc, cfg.Ledger.SeedDemoData); err != nil {
		return err
	}

	persist := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		return store.Save(ctx, svc.Snapshot())
	}

	if mode == config.ModeCLI {
		err = cli.New(svc, os.Stdin, os.Stdout, logger, persist).Run()
	} else {
		err = serve(logger, cfg.HTTP, svc, persist)
	}

	if saveErr := persist(); saveErr != nil {
		logger.Error("saving ledger on exit failed", "error", saveErr)
		err = errors.Join(err, saveErr)
	} else {
		logger.Info("ledger saved", "customers", len(svc.AllCustomers()))
	}
	return err
}

func buildSnapshotStore(ctx context.Context, cfg config.SnapshotConfig) (snapshot.Store, func(), error) {
	if cfg.Backend == config.BackendFile {
		return snapshot.NewFileStore(cfg.Path), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.MongoTimeout)
	defer cancel()
	store, err := snapshot.ConnectMongo(connectCtx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, cfg.MongoTimeout)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
		defer cancel()
		_ = store.Close(ctx)
	}
	return store, closeStore, nil
}

// loadLedger restores the last snapshot. Without one the ledger starts empty,
// or with the demo customers when seeding is on. A corrupt snapshot is fatal.
func loadLedger(ctx context.Context, logger *slog.Logger, store snapshot.Store, svc *service.BankingService, seedDemo bool) error {
	snap, err := store.Load(ctx)
	switch {
	case err == nil:
		svc.Restore(snap)
		return nil
	case errors.Is(err, snapshot.ErrNotFound):
		logger.Info("no snapshot found, starting with an empty ledger")
	default:
		return fmt.Errorf("load snapshot: %w", err)
	}

	if !seedDemo {
		return nil
	}
	if err := seed.Populate(svc); err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}
	logger.Info("seeded demo customers", "ids", seed.CustomerIDs())
	return nil
}

func serve(logger *slog.Logger, cfg config.HTTPConfig, svc *service.BankingService, persist func() error) error {
	gin.SetMode(cfg.GinMode)
	router := api.NewRouter(logger, api.NewHandlers(logger, svc, persist), cfg.AllowedOrigins())
	srv := api.NewServer(logger, cfg, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case serveErr = <-errCh:
		if serveErr != nil {
			logger.Error("server stopped unexpectedly", "error", serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	return serveErr
}
