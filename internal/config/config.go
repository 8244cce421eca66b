// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/asobiba/minigames/internal/engine"
)

const (
	appConfigDirName = "minigames"
	dbFileName       = "minigames.db"

	DefaultAPIPort   = 17890
	DefaultSnakeTick = 150 * time.Millisecond
)

// Config holds the settings shared by the desktop app and the headless server.
type Config struct {
	DataDir        string
	DBPath         string
	APIHost        string
	APIPort        int
	SnakeTick      time.Duration
	ServerSeed     string
	OthelloScript  string // optional JS strategy file for the computer side
	ScriptTimeout  time.Duration
	seedConfigured bool
}

// Load reads MINIGAMES_* variables, falling back to defaults.
func Load() Config {
	dataDir := appDataDir()
	cfg := Config{
		DataDir:       dataDir,
		DBPath:        envString("MINIGAMES_DB_PATH", filepath.Join(dataDir, dbFileName)),
		APIHost:       envString("MINIGAMES_API_HOST", "127.0.0.1"),
		APIPort:       envInt("MINIGAMES_API_PORT", DefaultAPIPort),
		SnakeTick:     time.Duration(envInt("MINIGAMES_SNAKE_TICK_MS", int(DefaultSnakeTick/time.Millisecond))) * time.Millisecond,
		ServerSeed:    os.Getenv("MINIGAMES_SERVER_SEED"),
		OthelloScript: os.Getenv("MINIGAMES_OTHELLO_SCRIPT"),
		ScriptTimeout: time.Duration(envInt("MINIGAMES_SCRIPT_TIMEOUT_MS", 200)) * time.Millisecond,
	}
	if cfg.SnakeTick <= 0 {
		cfg.SnakeTick = DefaultSnakeTick
	}
	cfg.seedConfigured = cfg.ServerSeed != ""
	if !cfg.seedConfigured {
		cfg.ServerSeed = engine.RandomSeed()
	}
	return cfg
}

// SeedConfigured reports whether the server seed came from the environment.
func (c Config) SeedConfigured() bool {
	return c.seedConfigured
}

// APIAddr is the listen address for the HTTP API.
func (c Config) APIAddr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

// EnsureDataDir creates the directory holding the database. On failure the
// database moves to the working directory.
func (c *Config) EnsureDataDir() {
	dir := filepath.Dir(c.DBPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("data dir mkdir failed: %v; using fallback", err)
		c.DBPath = filepath.Join(".", dbFileName)
	}
}

// appDataDir returns an OS-appropriate writable directory.
func appDataDir() string {
	if d, err := os.UserConfigDir(); err == nil && d != "" {
		return filepath.Join(d, appConfigDirName)
	}
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return filepath.Join(h, "."+appConfigDirName)
	}
	return "."
}

func envInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		var v int
		if _, err := fmt.Sscanf(s, "%d", &v); err == nil {
			return v
		}
	}
	return def
}

func envString(k, def string) string {
	if s := os.Getenv(k); s != "" {
		return s
	}
	return def
}
