package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvdash/internal/chart"
	"github.com/KaramelBytes/csvdash/internal/utils"
)

var (
	chKind   string
	chX      string
	chY      string
	chOutput string
	chFormat string
)

var chartCmd = &cobra.Command{
	Use:   "chart <file>",
	Short: "Render a bar chart, pie chart or correlation heatmap to an image",
	Example: `  csvdash chart sales.csv --kind bar --x region --y revenue -o revenue.png
  csvdash chart sales.csv --kind pie --x region -o share.svg
  csvdash chart sales.csv --kind heatmap -o corr.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if chOutput == "" {
			return fmt.Errorf("--output is required")
		}
		kind, err := chart.ParseKind(chKind)
		if err != nil {
			return err
		}
		format := strings.ToLower(chFormat)
		if format == "" {
			format = "png"
			if strings.EqualFold(filepath.Ext(chOutput), ".svg") {
				format = "svg"
			}
		}
		t, err := openTable(args[0])
		if err != nil {
			return err
		}
		req := chart.Request{Kind: kind, X: chX, Y: chY, Format: format}
		if err := req.Validate(t); err != nil {
			return err
		}
		if err := utils.WriteFileWith(chOutput, func(w io.Writer) error { return chart.Render(w, t, req) }); err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s to %s\n", kind.Label(), chOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVar(&chKind, "kind", "bar", "chart kind: bar|pie|heatmap")
	chartCmd.Flags().StringVar(&chX, "x", "", "x-axis (bar) or category (pie) column")
	chartCmd.Flags().StringVar(&chY, "y", "", "numeric y-axis column (bar only)")
	chartCmd.Flags().StringVarP(&chOutput, "output", "o", "", "output image path")
	chartCmd.Flags().StringVar(&chFormat, "format", "", "png|svg (default from output extension)")
}
