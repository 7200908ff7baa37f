// Package logging holds the process-wide structured logger. Nothing is
// written unless debug output is enabled; adapters log every skipped file
// at Debug so a run can be diagnosed after the fact.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Logger discards everything until Initialize enables debug output.
var Logger = discard()

// Options mirror the logging keys of the config file.
type Options struct {
	Debug    bool
	File     string // fixed log file; disables rotation
	MaxFiles int    // per-run files kept in Dir; <= 0 keeps all
}

// FromEnv overlays AISH_DEBUG, AISH_DEBUG_FILE and AISH_MAX_LOG_FILES so a
// nested invocation inherits the parent's settings.
func (o Options) FromEnv() Options {
	if v := os.Getenv("AISH_DEBUG"); v == "1" || strings.EqualFold(v, "true") {
		o.Debug = true
	}
	if f := os.Getenv("AISH_DEBUG_FILE"); f != "" && o.File == "" {
		o.File = f
	}
	if n, err := strconv.Atoi(os.Getenv("AISH_MAX_LOG_FILES")); err == nil {
		o.MaxFiles = n
	}
	return o
}

func (o Options) enabled() bool { return o.Debug || o.File != "" }

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// Initialize points Logger at a JSON log file and returns its path, or ""
// when debug output is off. Without a fixed file each run gets its own
// file in Dir, named by a run id that is also attached to every record.
func Initialize(opts Options) (string, error) {
	opts = opts.FromEnv()
	if !opts.enabled() {
		Logger = discard()
		return "", nil
	}

	runID := uuid.NewString()
	path := opts.File
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return "", fmt.Errorf("log directory: %w", err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create log directory: %w", err)
		}
		if opts.MaxFiles > 0 {
			// make room for this run's file
			if err := prune(dir, opts.MaxFiles-1); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: log rotation failed: %v\n", err)
			}
		}
		path = filepath.Join(dir, runID+".log")
	} else if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("open log file: %w", err)
	}

	Logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With("run", runID)
	Logger.Info("Debug logging initialized", "log_file", path, "args", os.Args[1:])
	return path, nil
}

// prune deletes the oldest *.log files in dir until at most keep remain.
func prune(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read log directory: %w", err)
	}

	var logs []os.FileInfo
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".log" {
			continue
		}
		if info, err := e.Info(); err == nil {
			logs = append(logs, info)
		}
	}
	if len(logs) <= keep {
		return nil
	}

	// newest first; everything past keep goes
	sort.Slice(logs, func(i, j int) bool { return logs[i].ModTime().After(logs[j].ModTime()) })
	for _, info := range logs[max(keep, 0):] {
		p := filepath.Join(dir, info.Name())
		if err := os.Remove(p); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to delete old log file %s: %v\n", p, err)
		}
	}
	return nil
}

// Dir is the per-OS directory that holds rotated run logs.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Logs", "aish"), nil
	case "windows":
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Local")
		}
		return filepath.Join(base, "aish", "logs"), nil
	default:
		base := os.Getenv("XDG_STATE_HOME")
		if base == "" {
			base = filepath.Join(home, ".local", "state")
		}
		return filepath.Join(base, "aish"), nil
	}
}
