package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"monthcal/internal/calendar"
	"monthcal/internal/capture"
	"monthcal/internal/config"
	"monthcal/internal/dates"
	"monthcal/internal/ics"
	appLog "monthcal/internal/log"
	"monthcal/internal/store"
	"monthcal/internal/web"
)

const version = "0.1.0"

// flagConfig holds CLI flag values; non-empty values override the config file.
type flagConfig struct {
	configPath string
	listen     string
	debug      bool
	snapshot   string
	print      bool
	month      string
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		os.Exit(runHashPassword(os.Args[2:]))
	}
	os.Exit(run(parseFlags()))
}

// run executes one invocation and returns the process exit code. Deferred
// cleanup such as closing the storage backend runs before main exits.
func run(flags flagConfig) int {
	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		return 1
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	appLog.Info("monthcal starting", "version", version)
	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"storage_driver", conf.Storage.Driver,
		"storage_path", conf.Storage.Path,
		"export_path", conf.Export.Path,
		"basic_auth", conf.BasicAuth != nil,
	)

	loc, err := conf.Location()
	if err != nil {
		appLog.Warn("invalid timezone; using local time", "timezone", conf.Timezone, "err", err)
	}

	backend, closeBackend, err := openBackend(conf.Storage)
	if err != nil {
		appLog.Error("failed to open storage", err, "driver", conf.Storage.Driver)
		return 1
	}
	defer func() {
		if err := closeBackend(); err != nil {
			appLog.Error("failed to close storage", err)
		}
	}()

	events := store.New(backend, store.WithKey(conf.Storage.Key))
	ctrl := calendar.New(events,
		calendar.WithLocation(loc),
		calendar.WithWeekStart(conf.WeekStartDay()),
	)
	if flags.month != "" {
		m, err := dates.ParseMonth(flags.month)
		if err != nil {
			appLog.Error("invalid -month", err)
			return 2
		}
		ctrl.JumpMonth(m)
	}

	if flags.print {
		printMonth(os.Stdout, ctrl)
		return 0
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.snapshot != "" {
		if err := runSnapshot(ctx, conf, ctrl, flags.snapshot); err != nil {
			appLog.Error("snapshot failed", err, "output", flags.snapshot)
			return 1
		}
		appLog.Info("snapshot written", "output", flags.snapshot)
		return 0
	}

	if conf.Export.Path != "" {
		pub := ics.NewPublisher(events, conf.Export.Path, loc, "MonthCal")
		go func() {
			if err := pub.Run(ctx, conf.Export.Cron); err != nil {
				appLog.Error("ics publisher stopped", err)
			}
		}()
	}

	srv := web.NewServer(conf, ctrl, flags.debug)
	if err := srv.ListenAndServe(ctx, conf.Listen); err != nil {
		appLog.Error("http server failed", err)
		return 1
	}
	appLog.Info("monthcal exiting")
	return 0
}

// runSnapshot serves the month view on a private loopback listener without
// basic auth and captures it with headless Chromium.
func runSnapshot(ctx context.Context, conf *config.Config, ctrl *calendar.Controller, out string) error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("snapshot listener: %w", err)
	}

	private := *conf
	private.BasicAuth = nil
	srv := web.NewServer(&private, ctrl, false)

	srvCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(srvCtx, ln) }()

	url := fmt.Sprintf("http://%s/?month=%s", ln.Addr().String(), dates.FormatMonth(ctrl.Current))
	capErr := capture.SnapshotPNG(ctx, capture.Options{URL: url, OutputPath: out})

	stop()
	if err := <-done; err != nil && capErr == nil {
		return err
	}
	return capErr
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./monthcal.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")
	flag.StringVar(&cfg.snapshot, "snapshot", "", "Write a PNG of the month view to this path and exit")
	flag.BoolVar(&cfg.print, "print", false, "Print the month grid to stdout and exit")
	flag.StringVar(&cfg.month, "month", "", "Month to show (YYYY-MM); defaults to the current month")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: monthcal [OPTIONS]\n       monthcal hash-password [OPTIONS]\n\nOptions:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	return cfg
}
