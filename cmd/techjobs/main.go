// Command techjobs browses the job listings from an interactive menu.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"techjobs/internal/config"
	"techjobs/internal/console"
	"techjobs/internal/engine"
	"techjobs/internal/logging"
)

var (
	app         = kingpin.New("techjobs", "Browse job listings.")
	configPath  = app.Flag("config", "YAML configuration file.").Short('c').Envar("TECHJOBS_CONFIG").String()
	dataFile    = app.Flag("data-file", "CSV file holding the job listings.").String()
	logLevel    = app.Flag("log-level", "Log level (debug, info, warn, error).").String()
	sortField   = app.Flag("sort", "Column job lists are sorted by.").String()
	rowTemplate = app.Flag("template", "Print one line per job, e.g. '{name} at {employer}'.").String()
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "techjobs: %v\n", err)
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
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *sortField != "" {
		cfg.SortField = *sortField
	}
	if *rowTemplate != "" {
		cfg.RowTemplate = *rowTemplate
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.Setup(level)

	c, err := console.New(engine.NewStore(engine.NewCSVSource(cfg.DataFile)), os.Stdin, os.Stdout, console.Options{
		SortField:   cfg.SortField,
		RowTemplate: cfg.RowTemplate,
	})
	if err != nil {
		return err
	}
	return c.Run(context.Background())
}
