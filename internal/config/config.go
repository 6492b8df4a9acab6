package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/twitchwatch/internal/player"
	"github.com/five82/twitchwatch/internal/twitch"
)

// Config holds the settings read from config.toml.
type Config struct {
	APIBase       string
	Limit         int
	PlayerPath    string
	PlayerQuality string
	LogLevel      string
	LogFile       string
}

// Credentials authenticate API requests. They only come from the environment.
type Credentials struct {
	Token    string
	ClientID string
}

const (
	defaultConfigPath = "~/.config/twitchwatch/config.toml"
	defaultLimit      = 10
	defaultLogLevel   = "warn"

	// Environment variables read by Credentials and PlayerFromEnv.
	EnvToken    = "TWITCH_ACCESS_TOKEN"
	EnvClientID = "TWITCH_CLIENT_ID"
	EnvPlayer   = "TWITCHWATCH_PLAYER"
)

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		APIBase:       twitch.DefaultBaseURL,
		Limit:         defaultLimit,
		PlayerPath:    player.DefaultPath,
		PlayerQuality: player.DefaultQuality,
		LogLevel:      defaultLogLevel,
	}
}

// Load locates and parses the config file, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase string `toml:"api_base"`
		Limit   int    `toml:"limit"`
		Player  struct {
			Path    string `toml:"path"`
			Quality string `toml:"quality"`
		} `toml:"player"`
		Log struct {
			Level string `toml:"level"`
			File  string `toml:"file"`
		} `toml:"log"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = v
	}
	if raw.Limit > 0 {
		cfg.Limit = raw.Limit
	}
	if v := strings.TrimSpace(raw.Player.Path); v != "" {
		if cfg.PlayerPath, err = binaryPath(v); err != nil {
			return Config{}, fmt.Errorf("player.path: %w", err)
		}
	}
	if v := strings.TrimSpace(raw.Player.Quality); v != "" {
		cfg.PlayerQuality = v
	}
	if v := strings.TrimSpace(raw.Log.Level); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.Log.File); v != "" {
		if cfg.LogFile, err = expandPath(v); err != nil {
			return Config{}, fmt.Errorf("log.file: %w", err)
		}
	}

	return cfg, nil
}

// ResolvePlayer applies the player path precedence: flag, then
// TWITCHWATCH_PLAYER, then the config file.
func (c Config) ResolvePlayer(flagValue string) (string, error) {
	if v := strings.TrimSpace(flagValue); v != "" {
		return binaryPath(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPlayer)); v != "" {
		return binaryPath(v)
	}
	if c.PlayerPath != "" {
		return c.PlayerPath, nil
	}
	return player.DefaultPath, nil
}

// LoadCredentials reads the access token and client id from the environment.
func LoadCredentials() (Credentials, error) {
	creds := Credentials{
		Token:    strings.TrimSpace(os.Getenv(EnvToken)),
		ClientID: strings.TrimSpace(os.Getenv(EnvClientID)),
	}
	var missing []string
	if creds.Token == "" {
		missing = append(missing, EnvToken)
	}
	if creds.ClientID == "" {
		missing = append(missing, EnvClientID)
	}
	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("%w: set %s", twitch.ErrMissingCredentials, strings.Join(missing, " and "))
	}
	return creds, nil
}

// binaryPath expands a leading tilde. Bare names are left for PATH lookup.
func binaryPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		return expandPath(path)
	}
	return path, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
