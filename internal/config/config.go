package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultCacheTTL    = 30 * time.Second
	defaultSearchLimit = 20
	defaultMaxLogFiles = 20
)

// Duration decodes TOML strings such as "45s" or "2m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config is read from ~/.config/aish/config.toml. An empty root disables
// that source.
type Config struct {
	CopilotRoot string   `toml:"copilot_root"`
	VSCodeRoot  string   `toml:"vscode_root"`
	ClaudeRoot  string   `toml:"claude_root"`
	CacheTTL    Duration `toml:"cache_ttl"`
	SearchLimit int      `toml:"search_limit"`
	Debug       bool     `toml:"debug"`
	LogFile     string   `toml:"log_file"`
	MaxLogFiles int      `toml:"max_log_files"`
}

// Load reads the config file named by AISH_CONFIG, or the default one,
// then applies environment overrides.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	cfgPath := os.Getenv("AISH_CONFIG")
	if cfgPath == "" {
		cfgPath = Path(home)
	}
	return LoadFile(cfgPath, home)
}

// Path returns the default config file location.
func Path(home string) string {
	return filepath.Join(home, ".config", "aish", "config.toml")
}

// LoadFile decodes cfgPath over the defaults; a missing file is not an
// error.
func LoadFile(cfgPath, home string) (*Config, error) {
	cfg := Defaults(home)

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// expand ~ in paths
	cfg.CopilotRoot = expandHome(cfg.CopilotRoot, home)
	cfg.VSCodeRoot = expandHome(cfg.VSCodeRoot, home)
	cfg.ClaudeRoot = expandHome(cfg.ClaudeRoot, home)
	cfg.LogFile = expandHome(cfg.LogFile, home)

	if cfg.CacheTTL.Duration <= 0 {
		cfg.CacheTTL.Duration = defaultCacheTTL
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = defaultSearchLimit
	}
	return cfg, nil
}

// Defaults returns the configuration used when no file is present.
func Defaults(home string) *Config {
	return &Config{
		CopilotRoot: filepath.Join(home, ".copilot", "session-state"),
		VSCodeRoot:  defaultVSCodeRoot(home),
		ClaudeRoot:  filepath.Join(home, ".claude", "projects"),
		CacheTTL:    Duration{defaultCacheTTL},
		SearchLimit: defaultSearchLimit,
		MaxLogFiles: defaultMaxLogFiles,
	}
}

func defaultVSCodeRoot(home string) string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Code", "User", "workspaceStorage")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "Code", "User", "workspaceStorage")
	default:
		return filepath.Join(home, ".config", "Code", "User", "workspaceStorage")
	}
}

// applyEnv lets AISH_* variables override the file. A set but empty root
// variable disables that source.
func (c *Config) applyEnv() error {
	for env, field := range map[string]*string{
		"AISH_COPILOT_ROOT": &c.CopilotRoot,
		"AISH_VSCODE_ROOT":  &c.VSCodeRoot,
		"AISH_CLAUDE_ROOT":  &c.ClaudeRoot,
	} {
		if v, ok := os.LookupEnv(env); ok {
			*field = v
		}
	}
	if v := os.Getenv("AISH_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("AISH_CACHE_TTL: %w", err)
		}
		c.CacheTTL.Duration = d
	}
	return nil
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
