// Command server serves the job listings over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"techjobs/internal/api"
	"techjobs/internal/config"
	"techjobs/internal/engine"
	"techjobs/internal/logging"
)

var (
	app        = kingpin.New("server", "Serve job listings over HTTP.")
	configPath = app.Flag("config", "YAML configuration file.").Short('c').Envar("TECHJOBS_CONFIG").String()
	dataFile   = app.Flag("data-file", "CSV file holding the job listings.").String()
	httpAddr   = app.Flag("http", "Address to listen on.").String()
	logLevel   = app.Flag("log-level", "Log level (debug, info, warn, error).").String()
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dataFile != "" {
		cfg.DataFile = *dataFile
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.Setup(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The API is live immediately; queries load the data on first use and
	// answer 503 until a load succeeds.
	store := engine.NewStore(engine.NewCSVSource(cfg.DataFile))
	e := api.NewServer(api.NewHandler(store))

	// Warm the store in the background.
	go func() {
		t0 := time.Now()
		if err := store.Load(ctx); err != nil {
			slog.WarnContext(ctx, "background load failed, will retry on first query", "path", cfg.DataFile, "err", err)
			return
		}
		slog.InfoContext(ctx, "job data ready", "path", cfg.DataFile, "dur", time.Since(t0))
	}()

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "listening", "addr", cfg.HTTPAddr)
		errCh <- e.Start(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
