// Command derivbench times whole-input matching of a pattern with the
// derivative engine, the step combinators and the standard library.
//
// Settings come from an optional config file, DERIVBENCH_* environment
// variables and flags, in increasing priority. With no settings it runs the
// decimal number benchmark.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/coregx/deriv/internal/bench"
	"github.com/coregx/deriv/internal/config"
	"github.com/coregx/deriv/internal/logger"
	"github.com/coregx/deriv/meta"
)

type cli struct {
	Config        string   `help:"Config file (YAML, JSON or TOML)" type:"path" env:"DERIVBENCH_CONFIG"`
	Pattern       string   `help:"Pattern to benchmark" short:"p"`
	Input         []string `help:"Input to match; repeat for several" short:"i" sep:"none"`
	Iterations    int      `help:"Rounds over all inputs" short:"n"`
	Engine        []string `help:"Engines to run: derivative, step, stdlib" short:"e"`
	NoPrefilter   bool     `help:"Disable literal prefilters in the derivative engine"`
	LogLevel      string   `help:"Log level: debug, info, warn, error"`
	MetricsListen string   `help:"Serve Prometheus metrics on this address and wait for a signal after the run"`
}

func main() {
	var params cli
	kong.Parse(&params, kong.Description("Benchmark the derivative regular expression engine."))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, params, os.Stdout); err != nil {
		slog.Error("derivbench failed", "error", err)
		os.Exit(1)
	}
}

// load merges the flags over the file and environment configuration.
func (c cli) load() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}

	if c.Pattern != "" {
		cfg.Bench.Pattern = c.Pattern
	}
	if len(c.Input) > 0 {
		cfg.Bench.Inputs = c.Input
	}
	if c.Iterations != 0 {
		cfg.Bench.Iterations = c.Iterations
	}
	if len(c.Engine) > 0 {
		cfg.Bench.Engines = c.Engine
	}
	if c.NoPrefilter {
		cfg.Engine.Prefilter = false
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.MetricsListen != "" {
		cfg.Metrics.Listen = c.MetricsListen
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, params cli, out io.Writer) error {
	cfg, err := params.load()
	if err != nil {
		return err
	}

	log, err := logger.Setup(cfg.Log)
	if err != nil {
		return err
	}

	engine := meta.DefaultConfig()
	engine.EnablePrefilter = cfg.Engine.Prefilter
	engine.CacheSize = cfg.Engine.CacheSize
	engine.MaxTerms = cfg.Engine.MaxTerms
	engine.Logger = log

	metrics := bench.NewMetrics()
	var srv *http.Server
	if cfg.Metrics.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv = &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped", "error", err)
			}
		}()
		log.Info("serving metrics", "addr", cfg.Metrics.Listen)
	}

	report, err := bench.Run(ctx, bench.Options{
		Pattern:    cfg.Bench.Pattern,
		Inputs:     cfg.Bench.Inputs,
		Iterations: cfg.Bench.Iterations,
		Engines:    cfg.Bench.Engines,
		Engine:     engine,
		Logger:     log,
		Metrics:    metrics,
	})
	if err != nil {
		return fmt.Errorf("running benchmark: %w", err)
	}

	if err := report.Print(out); err != nil {
		return err
	}
	if !report.Agree() {
		log.Warn("engines disagree", "pattern", cfg.Bench.Pattern)
	}

	if srv == nil {
		return nil
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
