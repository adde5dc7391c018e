package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/csvdash/internal/utils"
)

// APIKeyEnv is the only environment variable the program reads.
const APIKeyEnv = "GROQ_API_KEY"

// ErrMissingAPIKey is the fatal configuration error raised before any UI starts.
var ErrMissingAPIKey = errors.New(APIKeyEnv + " not found in environment or .env file. Please set it before running")

// Global configuration structure.
type Global struct {
	// APIKey comes from the environment only and is never written to disk.
	APIKey         string `mapstructure:"api_key" yaml:"-"`
	Addr           string `mapstructure:"addr" yaml:"addr"`
	HTTPTimeoutSec int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	PreviewRows    int    `mapstructure:"preview_rows" yaml:"preview_rows"`
	SampleRows     int    `mapstructure:"sample_rows" yaml:"sample_rows"`
	SessionTTLMin  int    `mapstructure:"session_ttl_min" yaml:"session_ttl_min"`
	MaxUploadMB    int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

// RequireAPIKey returns ErrMissingAPIKey when no secret is configured.
func (c *Global) RequireAPIKey() error {
	if c == nil || c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// DefaultPath returns ~/.csvdash/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".csvdash", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.csvdash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from defaults, an optional config file and the
// environment. A .env file in the working directory is read first; it never
// overrides variables already set in the process.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	if err := v.BindEnv("api_key", APIKeyEnv); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	v.SetDefault("addr", ":8501")
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("preview_rows", 5)
	v.SetDefault("sample_rows", 50)
	v.SetDefault("session_ttl_min", 30)
	v.SetDefault("max_upload_mb", 32)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Mask hides all but the edges of a secret for display.
func Mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
