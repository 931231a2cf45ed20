package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/SoarinFerret/DayTracker/internal/config"
	"github.com/SoarinFerret/DayTracker/internal/engine"
	"github.com/SoarinFerret/DayTracker/internal/ipc"
	"github.com/SoarinFerret/DayTracker/internal/logging"
	"github.com/SoarinFerret/DayTracker/internal/loginctl"
	"github.com/SoarinFerret/DayTracker/internal/metrics"
	"github.com/SoarinFerret/DayTracker/internal/state"
	"github.com/SoarinFerret/DayTracker/internal/tracker"
)

func main() {
	// check for argument to determine config location
	argPath := config.DefaultConfigPath()
	if len(os.Args) > 1 {
		argPath = os.Args[1]
	}
	cfg, err := config.LoadConfigFromFile(argPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log)
	logger.Info("using config file", "path", argPath, "data_dir", cfg.DataDir)

	if err := run(cfg, logger); err != nil {
		logger.Error("daytrackerd failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	clock := clockwork.NewRealClock()

	// initialize the state manager
	blobs, err := state.NewFileBlobStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open data dir: %w", err)
	}
	stateMgr := state.NewManager(blobs, state.Options{
		HistoryLimit:   cfg.HistoryLimit,
		KeepCategories: *cfg.KeepCategories,
		Location:       loc,
		Logger:         logger,
	})
	day, err := stateMgr.LoadDay(clock.Now())
	if err != nil {
		// keep running in memory; the next successful write catches up
		logger.Error("failed to persist current day", "error", err)
	}

	conn, err := engine.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	m := metrics.New()
	signals := &engine.Signals{
		Notifier: engine.NewDBusNotifier(conn, cfg.Notify.Expire.Std(), logger),
		Alerter:  engine.NewCommandAlerter(logger),
		Sound:    cfg.Notify.Sound,
		Enabled:  *cfg.Notify.Enabled,
		Record:   m.RecordSignal,
		Log:      logger,
	}

	tr := tracker.New(day, stateMgr, signals, tracker.Options{
		Clock:        clock,
		Location:     loc,
		NotifyBefore: cfg.NotifyBefore(),
		Observer:     m,
		Logger:       logger,
	})
	eng := engine.NewEngine(tr, engine.NewScheduler(clock), cfg.TickInterval.Std(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	var wg sync.WaitGroup

	// Start the tracker engine (periodic ticks)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := eng.Run(ctx); err != nil {
			logger.Error("engine error", "error", err)
		}
	}()

	// Start the D-Bus service on the session bus
	wg.Add(1)
	go func() {
		defer wg.Done()
		svc := &ipc.TrackerService{Tracker: tr, Clock: clock, Log: logger}
		if err := ipc.Serve(ctx, conn, svc); err != nil {
			logger.Error("daytracker service error", "error", err)
			cancel()
		}
	}()

	// Start the loginctl listener (system D-Bus)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := loginctl.Watch(ctx, eng, logger); err != nil {
			// suspend detection is optional; the scheduled ticks still catch up
			logger.Warn("logind watcher error", "error", err)
		}
	}()

	if cfg.Metrics.Listen != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Serve(ctx, cfg.Metrics.Listen, logger); err != nil {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	wg.Wait()
	logger.Info("shutdown complete")
	return nil
}
