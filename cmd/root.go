package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvdash/internal/ai"
	cfgpkg "github.com/KaramelBytes/csvdash/internal/config"
	"github.com/KaramelBytes/csvdash/internal/dashboard"
	"github.com/KaramelBytes/csvdash/internal/table"
)

var (
	cfgFile            string
	debug              bool
	flagHTTPTimeoutSec int

	// Loaded configuration
	cfg *cfgpkg.Global

	// newAdvisor builds the AI backend; tests substitute a stub.
	newAdvisor = func(c *cfgpkg.Global) dashboard.Advisor {
		return ai.NewAssistant(ai.Config{
			APIKey:      c.APIKey,
			HTTPTimeout: time.Duration(c.HTTPTimeoutSec) * time.Second,
			SampleRows:  c.SampleRows,
		})
	}
)

var rootCmd = &cobra.Command{
	Use:   "csvdash",
	Short: "CSV analysis dashboard with AI insights",
	Long: `csvdash loads a CSV file, summarizes it, filters and charts it, and asks a hosted
language model for insights. Run "csvdash serve" for the browser dashboard.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.csvdash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config call requireConfig
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c
	if rootCmd.PersistentFlags().Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
}

func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

// openTable loads the CSV file at path.
func openTable(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	t, err := table.Load(f)
	if err != nil {
		return nil, fmt.Errorf("error reading CSV %s: %w", path, err)
	}
	t.Name = filepath.Base(path)
	return t, nil
}
