package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/mallseg-cli/internal/modelcache"
	"github.com/KaramelBytes/mallseg-cli/internal/utils"
)

var cacheJSON bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the cached k-means model",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show what the cached model was fitted on",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		a, err := modelcache.Load(c.ModelPath)
		if errors.Is(err, modelcache.ErrCacheMiss) {
			fmt.Fprintf(out, "No cached model at %s\n", c.ModelPath)
			return nil
		}
		if err != nil {
			return err
		}
		if cacheJSON {
			b, err := utils.PrettyJSON(a.Meta)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		m := a.Meta
		fmt.Fprintf(out, "path: %s\n", c.ModelPath)
		fmt.Fprintf(out, "model_id: %s\n", a.Model.ID)
		fmt.Fprintf(out, "format_version: %d\n", m.FormatVersion)
		fmt.Fprintf(out, "clusters: %d\n", m.K)
		fmt.Fprintf(out, "features: %v\n", m.Features)
		fmt.Fprintf(out, "rows: %d\n", m.Rows)
		fmt.Fprintf(out, "seed: %d\n", m.Seed)
		fmt.Fprintf(out, "inertia: %.4f\n", a.Model.Inertia)
		fmt.Fprintf(out, "created_at: %s\n", m.CreatedAt.Format("2006-01-02 15:04:05 MST"))
		if m.K != c.Clusters || m.Seed != c.Seed {
			fmt.Fprintf(out, "⚠ configured clusters=%d seed=%d differ; the next run will refit\n", c.Clusters, c.Seed)
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cached model so the next run refits",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if err := modelcache.Remove(c.ModelPath); err != nil {
			return err
		}
		logger.Info().Str("path", c.ModelPath).Msg("model cache cleared")
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %s\n", c.ModelPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheShowCmd.Flags().BoolVar(&cacheJSON, "json", false, "print the artifact metadata as JSON")
}
