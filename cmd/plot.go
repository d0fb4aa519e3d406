package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/mallseg-cli/internal/dashboard"
	"github.com/KaramelBytes/mallseg-cli/internal/utils"
)

var plotOutputPath string

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Write the cluster scatter (Age vs Spending Score) as a PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(nil)
		if err != nil {
			return err
		}
		res, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}
		if note := res.Notice(); note != "" {
			fmt.Fprintln(cmd.OutOrStdout(), "⚠", note)
		}
		var buf bytes.Buffer
		if err := dashboard.WriteScatterPNG(&buf, res); err != nil {
			return fmt.Errorf("render plot: %w", err)
		}
		if err := utils.EnsureDir(plotOutputPath); err != nil {
			return fmt.Errorf("ensure dir: %w", err)
		}
		if err := utils.SafeWriteFile(plotOutputPath, buf.Bytes()); err != nil {
			return fmt.Errorf("write plot: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote plot to %s\n", plotOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVarP(&plotOutputPath, "output", "o", "clusters.png", "PNG file to write")
}
