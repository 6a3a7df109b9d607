package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Opener kinds accepted by TABLINK_OPENER and --via.
const (
	OpenerSystem = "system"
	OpenerCDP    = "cdp"
	OpenerLive   = "live"
)

// Config holds runtime settings read from the environment.
type Config struct {
	// Link generation
	BaseURL string

	// Tab opening
	Opener     string
	CDPURL     string
	BridgePort int

	// HTTP API
	ListenAddr string

	LogDir  string
	Profile string
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		BaseURL:    getEnvOrDefault("TABLINK_BASE_URL", "https://tablink.local/"),
		Opener:     strings.ToLower(getEnvOrDefault("TABLINK_OPENER", OpenerSystem)),
		CDPURL:     getEnvOrDefault("TABLINK_CDP_URL", "http://127.0.0.1:9222"),
		BridgePort: getEnvIntOrDefault("TABLINK_BRIDGE_PORT", 19191),
		ListenAddr: getEnvOrDefault("TABLINK_LISTEN_ADDR", "127.0.0.1:19192"),
		LogDir:     getEnvOrDefault("TABLINK_LOG_DIR", defaultLogDir()),
		Profile:    os.Getenv("TABLINK_PROFILE"),
	}
	return cfg, nil
}

// ValidateOpener reports whether kind names a known tab opener. Load does
// not call it; only commands that open tabs care.
func ValidateOpener(kind string) error {
	switch kind {
	case OpenerSystem, OpenerCDP, OpenerLive:
		return nil
	}
	return fmt.Errorf("unknown opener %q (want %s, %s or %s)", kind, OpenerSystem, OpenerCDP, OpenerLive)
}

func defaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "tablink")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
