package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/Zuo-Peng/ai-session-hub/internal/config"
	"github.com/Zuo-Peng/ai-session-hub/internal/hub"
	"github.com/Zuo-Peng/ai-session-hub/internal/logging"
	"github.com/Zuo-Peng/ai-session-hub/internal/source"
	"github.com/Zuo-Peng/ai-session-hub/internal/source/claudecode"
	"github.com/Zuo-Peng/ai-session-hub/internal/source/copilotcli"
	"github.com/Zuo-Peng/ai-session-hub/internal/source/vscode"
)

// setup loads the config, starts logging and builds the hub over every
// configured source.
func setup(debug bool) (*config.Config, *hub.Hub, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if _, err := logging.Initialize(logging.Options{
		Debug:    debug || cfg.Debug,
		File:     cfg.LogFile,
		MaxFiles: cfg.MaxLogFiles,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	logging.Logger.Debug("Config loaded",
		"copilot_root", cfg.CopilotRoot,
		"vscode_root", cfg.VSCodeRoot,
		"claude_root", cfg.ClaudeRoot,
		"cache_ttl", cfg.CacheTTL.String())

	return cfg, hub.New(adapters(cfg), hub.WithTTL(cfg.CacheTTL.Duration)), nil
}

func adapters(cfg *config.Config) []source.Adapter {
	var out []source.Adapter
	if cfg.CopilotRoot != "" {
		out = append(out, copilotcli.New(cfg.CopilotRoot))
	}
	if cfg.VSCodeRoot != "" {
		out = append(out, vscode.New(cfg.VSCodeRoot))
	}
	if cfg.ClaudeRoot != "" {
		out = append(out, claudecode.New(cfg.ClaudeRoot))
	}
	return out
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// terminalWidth returns the stdout width, or 0 when not a terminal.
func terminalWidth() int {
	if !isTerminal() {
		return 0
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// tsvField flattens a value so it stays a single TSV column.
func tsvField(s string) string {
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
