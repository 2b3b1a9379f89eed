package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TradeDesk/internal/config"
	"TradeDesk/internal/dashboard"
	"TradeDesk/internal/engine"
	"TradeDesk/internal/feed"
	"TradeDesk/internal/journal"
	"TradeDesk/internal/market"
	"TradeDesk/internal/notify"
	"TradeDesk/internal/registry"
	"TradeDesk/internal/scheduler"
	"TradeDesk/internal/server"
	"TradeDesk/internal/sim"
	"TradeDesk/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] TradeDesk starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Open the store and seed defaults
	st, err := store.Open(cfg.Database.StorePath)
	if err != nil {
		log.Fatalf("[FATAL] open store: %v", err)
	}
	defer st.Close()

	book := registry.NewBook(st)
	schedule := market.NewSchedule(st)
	if err := schedule.Seed(); err != nil {
		log.Fatalf("[FATAL] seed market hours: %v", err)
	}

	// Init journal
	var jnl journal.Journal
	if cfg.Database.JournalPath != "" {
		sj, err := journal.NewSQLiteJournal(cfg.Database.JournalPath)
		if err != nil {
			log.Printf("[WARN] init sqlite journal failed, using noop: %v", err)
			jnl = journal.NewNoopJournal()
		} else {
			jnl = sj
			defer sj.Close()
		}
	} else {
		jnl = journal.NewNoopJournal()
	}

	// Init webhook notifier
	var notifier notify.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Proxy)
		log.Println("[INFO] webhook notifications enabled")
	}

	// Init engine
	eng := engine.New(st, book, schedule, jnl, notifier)

	// Init feed source
	var source feed.Source
	if cfg.Feed.APIKey != "" {
		source = feed.NewPolygonSource(cfg.Feed.BaseURL, cfg.Feed.APIKey, cfg.Proxy)
	} else {
		source = &feed.MockSource{Price: 100}
	}
	log.Printf("[INFO] market data source: %s", source.Name())

	// Init chart refresher
	refresher := dashboard.NewRefresher(source, cfg.Chart.Width, cfg.Chart.Height)

	// Init price simulator
	var simulator *sim.Simulator
	if cfg.Sim.Enabled {
		simulator = sim.New(book, eng, cfg.Sim.MaxStep, time.Now().UnixNano())
		log.Println("[INFO] price simulator enabled")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, eng, simulator, refresher, cfg.Chart.Ticker, cfg.Chart.Days)
	if err := sched.RegisterAll(cfg.Schedule.SimCron, cfg.Schedule.ChartCron, cfg.Schedule.SweepCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Warm the dashboard chart
	go sched.RunChartNow()

	// Start HTTP API
	srv := server.New(book, schedule, eng, refresher, source, cfg.Chart.Width, cfg.Chart.Height)
	go func() {
		if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	log.Println("[INFO] TradeDesk is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] TradeDesk stopped")
}
