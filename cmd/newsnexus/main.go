package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/prayag001/NewsNexus/pkg/cache"
	"github.com/prayag001/NewsNexus/pkg/config"
	"github.com/prayag001/NewsNexus/pkg/domain"
	"github.com/prayag001/NewsNexus/pkg/fetchsource"
	"github.com/prayag001/NewsNexus/pkg/metrics"
	"github.com/prayag001/NewsNexus/pkg/qualitygate"
	"github.com/prayag001/NewsNexus/pkg/ratelimit"
	"github.com/prayag001/NewsNexus/pkg/tools"
	"github.com/prayag001/NewsNexus/server"
)

// Opts with all CLI options.
type Opts struct {
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

	cfg, warnings := config.Load()
	for _, w := range warnings {
		lgr.Printf("[WARN] config: %s", w)
	}

	sites, err := config.LoadSites(cfg.ConfigPath)
	if err != nil {
		log.Fatalf("[ERROR] load site config: %v", err)
	}
	lgr.Printf("[INFO] loaded %d sites from %s", len(sites), cfg.ConfigPath)

	svc := buildService(cfg, sites)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Printf("[INFO] termination signal received")
		cancel()
	}()

	lgr.Printf("[INFO] starting newsnexus version %s", revision)
	srv := server.New(svc, os.Stdin, os.Stdout)
	err = srv.Run(ctx)
	cancel()

	if err != nil && ctx.Err() == nil {
		log.Printf("[ERROR] server failed: %v", err)
		os.Exit(1)
	}

	lgr.Printf("[INFO] shutdown complete")
}

// buildService wires the aggregation engine's collaborators from cfg and
// sites: an HTTP client shared by the fetcher and the quality gate, the
// bounded cache, the per-domain rate limiter, and the process-wide metrics
// collector.
func buildService(cfg *config.Config, sites []domain.Site) *tools.Service {
	client := &http.Client{Timeout: 30 * time.Second}

	fetcher := fetchsource.New(client, cfg.DeepWorkers, cfg.DeepScrapeMax, cfg.SummaryLength)
	gate := qualitygate.New(client)
	c := cache.New(cfg.CacheTTL, cfg.CacheCapacity)
	limiter := ratelimit.New(cfg.RateLimit, cfg.RateWindow)
	m := metrics.New(time.Now())

	return tools.New(cfg, sites, c, limiter, m, fetcher, gate)
}

func setupLog(dbg, noColor bool) {
	// logs go to stderr, never stdout: stdout carries the JSON-RPC protocol
	// stream once the server loop starts.
	logOpts := []lgr.Option{lgr.Out(os.Stderr), lgr.Err(os.Stderr)}
	if dbg {
		logOpts = append(logOpts, lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError)
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	if !noColor {
		logOpts = append(logOpts, lgr.Map(colorizer))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
