package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvdash/internal/table"
	"github.com/KaramelBytes/csvdash/internal/utils"
)

var (
	fltColumn  string
	fltKeyword string
	fltOutput  string
)

var filterCmd = &cobra.Command{
	Use:   "filter <file>",
	Short: "Keep rows whose column contains a keyword (case-insensitive)",
	Example: `  csvdash filter sales.csv --column region --keyword north
  csvdash filter sales.csv -c region -k north -o north.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if fltColumn == "" {
			return fmt.Errorf("--column is required")
		}
		t, err := openTable(args[0])
		if err != nil {
			return err
		}
		res, err := table.Filter(t, fltColumn, fltKeyword)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if fltOutput != "" {
			if err := utils.WriteFileWith(fltOutput, func(w io.Writer) error { return table.Export(w, res) }); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote %d rows to %s\n", res.Len(), fltOutput)
			return nil
		}
		if fltKeyword != "" {
			fmt.Fprintf(out, "Showing results for '%s' in '%s' (%d rows)\n", fltKeyword, fltColumn, res.Len())
		}
		printTable(out, res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.Flags().StringVarP(&fltColumn, "column", "c", "", "column to search")
	filterCmd.Flags().StringVarP(&fltKeyword, "keyword", "k", "", "keyword to search for; empty keeps every row")
	filterCmd.Flags().StringVarP(&fltOutput, "output", "o", "", "write matching rows as CSV instead of printing")
}
