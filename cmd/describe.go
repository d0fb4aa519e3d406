package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/mallseg-cli/internal/analysis"
	"github.com/KaramelBytes/mallseg-cli/internal/utils"
)

var (
	descOutputPath string
	descSampleRows int
	descOutlierThr float64
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Profile the customer dataset and produce a concise summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := analysis.DefaultOptions()
		if descSampleRows >= 0 {
			opt.SampleRows = descSampleRows
		}
		if descOutlierThr >= 0 {
			opt.OutlierThreshold = descOutlierThr
		}
		p, err := newPipeline(nil)
		if err != nil {
			return err
		}
		ds, err := p.Load(cmd.Context())
		if err != nil {
			return err
		}
		md := analysis.Profile(ds.Table, opt).Markdown()

		// Decide where to write: --output path or stdout
		if descOutputPath != "" {
			if err := utils.EnsureDir(descOutputPath); err != nil {
				return fmt.Errorf("ensure dir: %w", err)
			}
			if err := utils.SafeWriteFile(descOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", descOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	describeCmd.Flags().IntVar(&descSampleRows, "sample-rows", 5, "number of sample rows to include")
	describeCmd.Flags().Float64Var(&descOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based, 0 disables)")
}
