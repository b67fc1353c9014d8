package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"newscards/pkg/aggregator"
	"newscards/pkg/config"
	"newscards/pkg/content"
	"newscards/pkg/feed"
	"newscards/pkg/scheduler"
	"newscards/pkg/snapshot"
	"newscards/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"f" long:"config" env:"CONFIG" default:"config.yml" description:"config file"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`
	Once   bool   `long:"once" description:"build and publish one snapshot, then exit"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)

	log.Printf("[INFO] starting newscards version %s", revision)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Printf("[ERROR] can't load config: %v", err)
		os.Exit(1)
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	agg := buildAggregator(cfg)

	if opts.Once {
		// one-shot mode: a failed publish must be loud
		if err := agg.Refresh(ctx); err != nil {
			log.Printf("[ERROR] snapshot publish failed: %v", err)
			os.Exit(1)
		}
		cancel()
		return
	}

	sched := scheduler.New(agg, cfg.Schedule.UpdateInterval)
	sched.Start(ctx)

	srv := server.New(cfg, snapshot.NewWriter(cfg.Snapshot.Path), sched, cfg.Server.StaticDir, revision, opts.Debug)
	err = srv.Run(ctx)
	cancel()
	sched.Stop()

	if err != nil {
		log.Printf("[ERROR] server failed: %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

// buildAggregator wires the pipeline from configuration
func buildAggregator(cfg *config.Config) *aggregator.Aggregator {
	feedParser := feed.NewParser(cfg.Fetch.Timeout, cfg.Fetch.UserAgent)

	var extractor aggregator.Extractor
	if cfg.Enrich.Enabled {
		extractor = content.NewPreviewExtractor(cfg.Enrich.Timeout, cfg.Fetch.UserAgent)
	}

	return aggregator.New(feedParser, extractor, snapshot.NewWriter(cfg.Snapshot.Path), aggregator.Config{
		Feeds:             cfg.Feeds,
		TopicsMax:         cfg.Topics.Max,
		EnrichEnabled:     cfg.Enrich.Enabled,
		EnrichMaxArticles: cfg.Enrich.MaxArticles,
		EnrichConcurrency: cfg.Enrich.Concurrency,
	})
}

func setupLog(dbg, noColor bool) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}

	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
