package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/mallseg-cli/internal/config"
	"github.com/KaramelBytes/mallseg-cli/internal/metrics"
	"github.com/KaramelBytes/mallseg-cli/internal/pipeline"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	flagData  string
	flagModel string

	// Loaded configuration
	cfg *cfgpkg.Global
	// logger writes diagnostics to stderr; results go to stdout.
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "mallseg",
	Short: "Mall customer segmentation with k-means",
	Long: `mallseg loads the mall customer dataset, standardizes age, annual income and
spending score, groups customers into six segments with k-means and shows the
result as terminal views, an HTML dashboard or a PNG scatter. Fitted models are
cached on disk and reused while the data and settings stay the same.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.mallseg/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagData, "data", "", "customer CSV path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "model cache path (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("data") && flagData != "" {
		cfg.DataPath = flagData
	}
	if f.Changed("model") && flagModel != "" {
		cfg.ModelPath = flagModel
	}

	level := cfg.Level()
	if debug {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

// requireConfig returns the loaded configuration or the reason it is missing.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newPipeline builds a pipeline from the effective configuration. m may be nil.
func newPipeline(m *metrics.Metrics) (*pipeline.Pipeline, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("data", c.DataPath).
		Str("model", c.ModelPath).
		Int("clusters", c.Clusters).
		Int64("seed", c.Seed).
		Msg("pipeline configured")
	return pipeline.New(pipeline.Options{
		DataPath:  c.DataPath,
		CachePath: c.ModelPath,
		Cluster:   c.Cluster(),
		Logger:    logger,
		Metrics:   m,
	}), nil
}
