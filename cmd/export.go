package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvdash/internal/dashboard"
	"github.com/KaramelBytes/csvdash/internal/table"
	"github.com/KaramelBytes/csvdash/internal/utils"
)

var expOutput string

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the parsed table back out as normalized CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := openTable(args[0])
		if err != nil {
			return err
		}
		if err := utils.WriteFileWith(expOutput, func(w io.Writer) error { return table.Export(w, t) }); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", expOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&expOutput, "output", "o", dashboard.DownloadName, "output CSV path")
}
