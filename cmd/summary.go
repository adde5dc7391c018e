package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvdash/internal/analysis"
	"github.com/KaramelBytes/csvdash/internal/table"
)

var (
	sumMarkdown bool
	sumRows     int
)

var summaryCmd = &cobra.Command{
	Use:   "summary <file>",
	Short: "Print a preview, shape, columns and statistics of a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := openTable(args[0])
		if err != nil {
			return err
		}
		rows := sumRows
		if rows <= 0 {
			rows = 5
			if c, err := requireConfig(); err == nil && c.PreviewRows > 0 {
				rows = c.PreviewRows
			}
		}
		opt := analysis.DefaultOptions()
		opt.SampleRows = rows
		rep := analysis.Describe(t, opt)
		out := cmd.OutOrStdout()
		if sumMarkdown {
			fmt.Fprint(out, rep.Markdown())
			return nil
		}

		nrows, ncols := t.Shape()
		fmt.Fprintf(out, "File: %s\n", t.Name)
		fmt.Fprintf(out, "Shape: (%d, %d)\n", nrows, ncols)
		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = fmt.Sprintf("%s (%s)", c.Name, c.Kind)
		}
		fmt.Fprintf(out, "Columns: %s\n\n", strings.Join(cols, ", "))

		fmt.Fprintf(out, "Preview (first %d rows):\n", rows)
		writeGrid(out, t.Header(), rep.Samples)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Statistics:")
		stats := make([][]string, len(analysis.StatLabels))
		for i, row := range rep.StatGrid() {
			stats[i] = append([]string{analysis.StatLabels[i]}, row...)
		}
		writeGrid(out, append([]string{""}, t.Header()...), stats)
		return nil
	},
}

// writeGrid renders rows as an aligned text table.
func writeGrid(w io.Writer, header []string, rows [][]string) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(header)
	tw.SetAutoWrapText(false)
	tw.SetAutoFormatHeaders(false)
	tw.AppendBulk(rows)
	tw.Render()
}

func printTable(w io.Writer, t *table.Table) {
	writeGrid(w, t.Header(), t.Records())
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().BoolVar(&sumMarkdown, "markdown", false, "emit the summary as Markdown")
	summaryCmd.Flags().IntVar(&sumRows, "rows", 0, "number of preview rows (default from config)")
}
