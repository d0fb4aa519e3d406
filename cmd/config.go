package cmd

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/mallseg-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set mallseg configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "data_path: %s\n", cfg.DataPath)
		fmt.Fprintf(out, "model_path: %s\n", cfg.ModelPath)
		fmt.Fprintf(out, "clusters: %d\n", cfg.Clusters)
		fmt.Fprintf(out, "seed: %d\n", cfg.Seed)
		fmt.Fprintf(out, "max_iter: %d\n", cfg.MaxIter)
		fmt.Fprintf(out, "runs: %d\n", cfg.Runs)
		fmt.Fprintf(out, "tolerance: %g\n", cfg.Tolerance)
		fmt.Fprintf(out, "listen_addr: %s\n", cfg.ListenAddr)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Start from the file and env only, so --data/--model are not persisted.
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		switch key {
		case "data_path":
			c.DataPath = val
		case "model_path":
			c.ModelPath = val
		case "clusters":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for clusters: %v", val)
			}
			c.Clusters = i
		case "seed":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for seed: %w", err)
			}
			c.Seed = i
		case "max_iter":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for max_iter: %v", val)
			}
			c.MaxIter = i
		case "runs":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for runs: %v", val)
			}
			c.Runs = i
		case "tolerance":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid float for tolerance: %v", val)
			}
			c.Tolerance = f
		case "listen_addr":
			c.ListenAddr = val
		case "log_level":
			if _, err := zerolog.ParseLevel(val); err != nil {
				return fmt.Errorf("invalid log_level: %s", val)
			}
			c.LogLevel = val
		default:
			return fmt.Errorf("unknown key: %s (valid: %v)", key, cfgpkg.Keys)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
