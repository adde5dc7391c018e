package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/csvdash/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set csvdash configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		key := cfgpkg.Mask(c.APIKey)
		if key == "" {
			key = "(not set)"
		}
		fmt.Fprintf(out, "api_key: %s (from %s)\n", key, cfgpkg.APIKeyEnv)
		fmt.Fprintf(out, "addr: %s\n", c.Addr)
		fmt.Fprintf(out, "http_timeout_sec: %d\n", c.HTTPTimeoutSec)
		fmt.Fprintf(out, "preview_rows: %d\n", c.PreviewRows)
		fmt.Fprintf(out, "sample_rows: %d\n", c.SampleRows)
		fmt.Fprintf(out, "session_ttl_min: %d\n", c.SessionTTLMin)
		fmt.Fprintf(out, "max_upload_mb: %d\n", c.MaxUploadMB)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if key == "addr" {
			c.Addr = val
		} else {
			target := map[string]*int{
				"http_timeout_sec": &c.HTTPTimeoutSec,
				"preview_rows":     &c.PreviewRows,
				"sample_rows":      &c.SampleRows,
				"session_ttl_min":  &c.SessionTTLMin,
				"max_upload_mb":    &c.MaxUploadMB,
			}[key]
			switch {
			case key == "api_key":
				return fmt.Errorf("api_key is read from %s only; set it in the environment or a .env file", cfgpkg.APIKeyEnv)
			case target == nil:
				return fmt.Errorf("unknown key: %s", key)
			}
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid positive int for %s: %v", key, val)
			}
			*target = i
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
