package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MarketMovers/internal/collector"
	"MarketMovers/internal/config"
	"MarketMovers/internal/metrics"
	"MarketMovers/internal/recorder"
	"MarketMovers/internal/report"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "movers",
	Short:         "Market cap movers report",
	Long:          `Fetches daily prices for a set of tickers, derives market capitalization and its daily change, and ranks the top gainers and losers.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultPath, "configuration file path")
	rootCmd.AddCommand(reportCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app holds the components shared by every command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	pipeline *report.Pipeline
	recorder recorder.Recorder
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	logger, err := newLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	provider := newProvider(cfg, logger)
	logger.Info("data source selected", zap.String("provider", provider.Name()))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	p := report.NewPipeline(provider, collector.NewSharesResolver(provider, logger), m, logger)

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		} else {
			rec = sr
		}
	}

	return &app{cfg: cfg, logger: logger, registry: reg, pipeline: p, recorder: rec}, nil
}

func (a *app) close() {
	if err := a.recorder.Close(); err != nil {
		a.logger.Warn("close recorder", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func newProvider(cfg *config.Config, logger *zap.Logger) collector.Provider {
	ds := cfg.DataSource
	switch ds.Provider {
	case "eodhd":
		return collector.NewEODHDFetcher(ds.BaseURL, ds.APIKey, ds.Exchange, cfg.Proxy, ds.RateLimit, logger)
	case "mock":
		return &collector.MockFetcher{Synthetic: true}
	default:
		return collector.NewYahooFetcher(cfg.Proxy, ds.RateLimit, logger)
	}
}

func newLogger(level string, development bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if development {
		zc = zap.NewDevelopmentConfig()
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc.Level = lvl
	return zc.Build()
}
