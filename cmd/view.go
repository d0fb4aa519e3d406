package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/mallseg-cli/internal/dashboard"
)

var viewColumn string

var viewCmd = &cobra.Command{
	Use:   "view <name>",
	Short: "Render one dashboard view in the terminal",
	Long: "Render one of the menu views: " + viewKeys() + `.
Only the stages a view needs are run: informational views read nothing,
dataset and visualize load the CSV, clusters loads or fits the model.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := dashboard.ParseView(args[0])
		if err != nil {
			return err
		}
		p, err := newPipeline(nil)
		if err != nil {
			return err
		}
		if v == dashboard.ViewClusters {
			logger.Info().Msg("running segmentation pipeline")
		}
		c, err := dashboard.Build(cmd.Context(), p, v, viewColumn)
		if err != nil {
			return fmt.Errorf("%s view: %w", v, err)
		}
		return dashboard.RenderText(cmd.OutOrStdout(), c)
	},
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "List the available views",
	RunE: func(cmd *cobra.Command, args []string) error {
		dashboard.RenderMenu(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), "\nShow one with: mallseg view <key>")
		return nil
	},
}

func viewKeys() string {
	var keys []string
	for _, v := range dashboard.Views() {
		keys = append(keys, string(v))
	}
	return strings.Join(keys, ", ")
}

func init() {
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(menuCmd)
	viewCmd.Flags().StringVar(&viewColumn, "column", "", "column for the visualize view (default Gender)")
}
