// Package dice parses dice command flags and runs the interactive roller.
package dice

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/louisbranch/dmassist/internal/core/flavor"
	entrypoint "github.com/louisbranch/dmassist/internal/platform/cmd"
	"github.com/louisbranch/dmassist/internal/platform/logging"
	"github.com/louisbranch/dmassist/internal/platform/timeouts"
	"github.com/louisbranch/dmassist/internal/random"
	"github.com/louisbranch/dmassist/internal/services/dice/app"
)

// Config holds dice command configuration.
type Config struct {
	PoolCapacity     int    `env:"POOL_CAPACITY"      envDefault:"4096"`
	PoolLowWatermark int    `env:"POOL_LOW_WATERMARK" envDefault:"1024"`
	LinesFile        string `env:"LINES_FILE"`
	Locale           string `env:"LOCALE"             envDefault:"en-US"`
	MetricsAddr      string `env:"METRICS_ADDR"`
	Seed             int64  `env:"SEED"`

	Log logging.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.PoolCapacity, "pool-capacity", cfg.PoolCapacity, "Random words fetched per pool refill")
	fs.IntVar(&cfg.PoolLowWatermark, "pool-low-watermark", cfg.PoolLowWatermark, "Remaining words that trigger a background refill")
	fs.StringVar(&cfg.LinesFile, "lines", cfg.LinesFile, "Flavor lines file (yaml, json or toml); empty uses the built-in lines")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale for error messages")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve Prometheus metrics on this address")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Replay rolls from a fixed seed instead of the entropy pool")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "Log format (console or json)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.PoolCapacity < 1 {
		return Config{}, fmt.Errorf("pool capacity must be positive, got %d", cfg.PoolCapacity)
	}
	if cfg.PoolLowWatermark < 0 || cfg.PoolLowWatermark > cfg.PoolCapacity {
		return Config{}, fmt.Errorf("pool low watermark must be between 0 and %d, got %d", cfg.PoolCapacity, cfg.PoolLowWatermark)
	}
	return cfg, nil
}

// Run reads commands from in and writes replies to out until in is
// exhausted, a quit command arrives or ctx ends.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceDice, func(ctx context.Context) error {
		lines, err := loadLines(cfg.LinesFile)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		source, err := newSource(ctx, cfg, reg, logger)
		if err != nil {
			return err
		}
		metrics := newCommandMetrics()
		if err := reg.Register(metrics.commands); err != nil {
			return fmt.Errorf("register command metrics: %w", err)
		}

		if cfg.MetricsAddr != "" {
			stop := serveMetrics(cfg.MetricsAddr, reg, logger)
			defer stop()
		}

		svc := app.New(source, lines, app.WithLogger(logger))
		sess, err := newSession(svc, cfg.Locale, metrics)
		if err != nil {
			return err
		}
		return sess.serve(ctx, in, out)
	})
}

func loadLines(path string) (flavor.Lines, error) {
	if path == "" {
		return flavor.Default(), nil
	}
	return flavor.Load(path)
}

// newSource builds the entropy pool, or a seeded source when a seed is set.
func newSource(ctx context.Context, cfg Config, reg prometheus.Registerer, logger *zap.Logger) (app.Source, error) {
	if cfg.Seed != 0 {
		seeded, err := random.NewSeeded(cfg.Seed)
		if err != nil {
			return nil, err
		}
		logger.Info("rolling from a fixed seed", zap.Int64("seed", seeded.Seed()))
		return seededSource{seeded}, nil
	}

	pool := random.NewPool(
		random.WithCapacity(cfg.PoolCapacity),
		random.WithLowWatermark(cfg.PoolLowWatermark),
		random.WithLogger(logger),
	)
	if err := pool.Register(reg); err != nil {
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}

	fillCtx, cancel := context.WithTimeout(ctx, timeouts.PoolFill)
	defer cancel()
	if err := pool.Fill(fillCtx); err != nil {
		logger.Warn("initial pool fill failed, rolling from the fallback generator", zap.Error(err))
	}
	return pool, nil
}

// seededSource never runs low, so refills are no-ops.
type seededSource struct {
	*random.Seeded
}

func (seededSource) IsLow() bool { return false }

func (seededSource) RefillAsync() {}

func serveMetrics(addr string, gatherer prometheus.Gatherer, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("metrics server shutdown", zap.Error(err))
		}
	}
}
