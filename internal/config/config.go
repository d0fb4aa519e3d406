package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/mallseg-cli/internal/cluster"
	"github.com/KaramelBytes/mallseg-cli/internal/utils"
)

const (
	// EnvPrefix prefixes every environment override, e.g. MALLSEG_DATA_PATH.
	EnvPrefix = "MALLSEG"
	dirName   = ".mallseg"

	DefaultDataPath   = "Mall_Customers.csv"
	DefaultModelPath  = "kmeans_model.gob"
	DefaultListenAddr = "127.0.0.1:8501"
	DefaultLogLevel   = "info"
)

// Global configuration structure.
type Global struct {
	DataPath  string  `mapstructure:"data_path" yaml:"data_path"`
	ModelPath string  `mapstructure:"model_path" yaml:"model_path"`
	Clusters  int     `mapstructure:"clusters" yaml:"clusters"`
	Seed      int64   `mapstructure:"seed" yaml:"seed"`
	MaxIter   int     `mapstructure:"max_iter" yaml:"max_iter"`
	Runs      int     `mapstructure:"runs" yaml:"runs"`
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance"`

	// Dashboard
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"data_path", "model_path", "clusters", "seed", "max_iter", "runs",
	"tolerance", "listen_addr", "log_level",
}

// Cluster returns the k-means settings.
func (c *Global) Cluster() cluster.Config {
	return cluster.Config{K: c.Clusters, MaxIter: c.MaxIter, Tol: c.Tolerance, Seed: c.Seed, Runs: c.Runs}
}

// Level parses LogLevel, falling back to info.
func (c *Global) Level() zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// Validate rejects settings the pipeline cannot run with.
func (c *Global) Validate() error {
	switch {
	case c.DataPath == "":
		return fmt.Errorf("data_path must not be empty")
	case c.ModelPath == "":
		return fmt.Errorf("model_path must not be empty")
	case c.Clusters < 1:
		return fmt.Errorf("clusters must be at least 1, got %d", c.Clusters)
	case c.Runs < 1:
		return fmt.Errorf("runs must be at least 1, got %d", c.Runs)
	case c.MaxIter < 1:
		return fmt.Errorf("max_iter must be at least 1, got %d", c.MaxIter)
	case c.Tolerance < 0:
		return fmt.Errorf("tolerance must not be negative, got %g", c.Tolerance)
	}
	return nil
}

// Path returns cfgFile, or ~/.mallseg/config.yaml when it is empty.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.mallseg/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(path); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	def := cluster.DefaultConfig()
	v.SetDefault("data_path", DefaultDataPath)
	v.SetDefault("model_path", DefaultModelPath)
	v.SetDefault("clusters", def.K)
	v.SetDefault("seed", def.Seed)
	v.SetDefault("max_iter", def.MaxIter)
	v.SetDefault("runs", def.Runs)
	v.SetDefault("tolerance", def.Tol)
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("log_level", DefaultLogLevel)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		path, err := Path("")
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// a missing file is fine; a broken one is not
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
