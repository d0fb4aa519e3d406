package cmd

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/mallseg-cli/internal/cluster"
	"github.com/KaramelBytes/mallseg-cli/internal/dataset"
	"github.com/KaramelBytes/mallseg-cli/internal/modelcache"
	"github.com/KaramelBytes/mallseg-cli/internal/utils"
)

var clusterLabelsPath string

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Load or fit the k-means model and report cluster sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(nil)
		if err != nil {
			return err
		}
		res, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if note := res.Notice(); note != "" {
			fmt.Fprintln(out, "⚠", note)
		} else {
			fmt.Fprintf(out, "✓ Loaded model from %s\n", cfg.ModelPath)
		}
		if res.Cache.Outcome == modelcache.OutcomeStale {
			fmt.Fprintf(out, "  previous model was stale: %s\n", res.Cache.Reason)
		}
		m := res.Model
		fmt.Fprintf(out, "Model %s: k=%d seed=%d inertia=%.4f iterations=%d fitted %s\n",
			m.ID, m.K, m.Seed, m.Inertia, m.Iterations, m.FittedAt.Format("2006-01-02 15:04:05"))

		t := tablewriter.NewWriter(out)
		t.SetAutoFormatHeaders(false)
		t.SetHeader([]string{"Cluster", "Customers"})
		for k, n := range cluster.Sizes(res.Labels, m.K) {
			t.Append([]string{strconv.Itoa(k), strconv.Itoa(n)})
		}
		t.Render()

		if clusterLabelsPath != "" {
			if err := writeLabels(clusterLabelsPath, res.Table.Records, res.Labels); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote labels to %s\n", clusterLabelsPath)
		}
		return nil
	},
}

// writeLabels stores one "id,cluster" row per customer.
func writeLabels(path string, records []dataset.Record, labels []int) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "cluster"}); err != nil {
		return fmt.Errorf("encode labels: %w", err)
	}
	for i, r := range records {
		if err := w.Write([]string{strconv.Itoa(r.ID), strconv.Itoa(labels[i])}); err != nil {
			return fmt.Errorf("encode label of customer %d: %w", r.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode labels: %w", err)
	}
	if err := utils.EnsureDir(path); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write labels: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(clusterCmd)
	clusterCmd.Flags().StringVar(&clusterLabelsPath, "labels", "", "also write per-customer cluster labels to this CSV")
}
