package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"roweditor/pkg/sheets"
)

// Config is the server configuration, read from the environment.
type Config struct {
	ListenAddress string

	// ExportURL is the CSV export endpoint of the shared sheet.
	ExportURL string

	SupabaseURL     string
	SupabaseAnonKey string

	// ScriptAllowedHosts limits which hosts the proxy will forward to.
	ScriptAllowedHosts []string
	ScriptToken        string
	// DownstreamTimeout bounds each downstream call; zero means no timeout.
	DownstreamTimeout time.Duration
}

// ScriptConfig is the configuration of the downstream script server.
type ScriptConfig struct {
	ListenAddress   string
	CredentialsFile string
	SpreadsheetID   string
	SheetName       string
	Token           string
}

// Load reads the proxy server configuration and checks required values.
func Load() (*Config, error) {
	exportURL := os.Getenv("SHEET_EXPORT_URL")
	if exportURL == "" {
		id := os.Getenv("SPREADSHEET_ID")
		if id == "" {
			return nil, fmt.Errorf("SPREADSHEET_ID or SHEET_EXPORT_URL is required")
		}
		exportURL = sheets.ExportURL(id, getEnvOrDefault("SHEET_GID", "0"))
	}

	supabaseURL := os.Getenv("SUPABASE_URL")
	if supabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}

	timeout, err := getEnvDurationOrDefault("DOWNSTREAM_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}

	return &Config{
		ListenAddress:      getEnvOrDefault("LISTEN_ADDRESS", ":8080"),
		ExportURL:          exportURL,
		SupabaseURL:        supabaseURL,
		SupabaseAnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
		ScriptAllowedHosts: splitList(os.Getenv("SCRIPT_ALLOWED_HOSTS")),
		ScriptToken:        os.Getenv("SCRIPT_TOKEN"),
		DownstreamTimeout:  timeout,
	}, nil
}

// LoadScript reads the script server configuration.
func LoadScript() (*ScriptConfig, error) {
	c := &ScriptConfig{
		ListenAddress:   getEnvOrDefault("SCRIPT_LISTEN_ADDRESS", ":8081"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),
		SheetName:       getEnvOrDefault("SHEET_NAME", "Sheet1"),
		Token:           os.Getenv("SCRIPT_TOKEN"),
	}
	if c.SpreadsheetID == "" {
		return nil, fmt.Errorf("SPREADSHEET_ID is required")
	}
	return c, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
