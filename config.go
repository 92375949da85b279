package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds process settings
type Config struct {
	Addr       string
	ClientDir  string
	PublicURL  string
	MaxLobbies int
	LogLevel   string
	LogFormat  string
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// LoadConfig reads an optional .env file, then the environment, then flags.
// Flags win over the environment.
func LoadConfig(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	maxLobbies, err := strconv.Atoi(getEnvDefault("MAX_LOBBIES", strconv.Itoa(MaxActiveLobbies)))
	if err != nil {
		return Config{}, fmt.Errorf("MAX_LOBBIES: %w", err)
	}

	cfg := Config{}
	fset := flag.NewFlagSet("crumble-server", flag.ContinueOnError)
	fset.StringVar(&cfg.Addr, "addr", getEnvDefault("ADDR", ":8000"), "HTTP listen address")
	fset.StringVar(&cfg.ClientDir, "client", getEnvDefault("CLIENT_DIR", ""), "Path to static client build (empty disables)")
	fset.StringVar(&cfg.PublicURL, "public-url", getEnvDefault("PUBLIC_URL", "http://localhost:8000"), "Base URL encoded into lobby invite codes")
	fset.IntVar(&cfg.MaxLobbies, "max-lobbies", maxLobbies, "Maximum concurrently open lobbies")
	fset.StringVar(&cfg.LogLevel, "log-level", getEnvDefault("LOG_LEVEL", "info"), "Log level")
	fset.StringVar(&cfg.LogFormat, "log-format", getEnvDefault("LOG_FORMAT", "text"), "Log format (text|json)")
	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.MaxLobbies <= 0 {
		return Config{}, fmt.Errorf("max lobbies must be positive, got %d", cfg.MaxLobbies)
	}
	return cfg, nil
}
