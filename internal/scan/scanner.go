package scan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
)

// Well-known file names inside the session roots.
const (
	CopilotWorkspaceFile = "workspace.yaml"
	CopilotEventsFile    = "events.jsonl"
	VSCodeStateDB        = "state.vscdb"
	VSCodeWorkspaceFile  = "workspace.json"
	VSCodeSessionsDir    = "chatSessions"
)

type FileInfo struct {
	Path   string // session file (or directory for Copilot CLI)
	ID     string
	Source model.Source
	Mtime  int64
	Size   int64
}

// Roots names the storage root of each source; empty disables a source.
type Roots struct {
	Copilot string
	VSCode  string
	Claude  string
}

// ScanRoots discovers session files across every configured root. Missing
// roots contribute nothing.
func ScanRoots(roots Roots) []FileInfo {
	var files []FileInfo
	if roots.Copilot != "" {
		files = append(files, ScanCopilot(roots.Copilot)...)
	}
	if roots.VSCode != "" {
		for _, ws := range ScanVSCode(roots.VSCode) {
			files = append(files, ScanVSCodeSessions(ws)...)
		}
	}
	if roots.Claude != "" {
		files = append(files, ScanClaude(roots.Claude)...)
	}
	return files
}

// ScanCopilot returns one entry per <root>/<id>/ directory holding a
// workspace.yaml.
func ScanCopilot(root string) []FileInfo {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil // skip unreadable or missing roots
	}

	var files []FileInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		info, err := os.Stat(filepath.Join(dir, CopilotWorkspaceFile))
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:   dir,
			ID:     e.Name(),
			Source: model.SourceCLI,
			Mtime:  info.ModTime().Unix(),
			Size:   info.Size(),
		})
	}
	return files
}

// ScanVSCode returns the workspace storage directories that carry a
// state.vscdb or a chatSessions directory.
func ScanVSCode(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if _, err := os.Stat(filepath.Join(dir, VSCodeStateDB)); err == nil {
			dirs = append(dirs, dir)
			continue
		}
		if info, err := os.Stat(filepath.Join(dir, VSCodeSessionsDir)); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// ScanVSCodeSessions lists the per-session JSON documents of one workspace.
func ScanVSCodeSessions(workspaceDir string) []FileInfo {
	dir := filepath.Join(workspaceDir, VSCodeSessionsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:   filepath.Join(dir, e.Name()),
			ID:     strings.TrimSuffix(e.Name(), ".json"),
			Source: model.SourceVSCode,
			Mtime:  info.ModTime().Unix(),
			Size:   info.Size(),
		})
	}
	return files
}

// ScanClaude returns the top-level transcripts under <root>/<project>/.
// Nested directories such as subagents/ hold side-channel transcripts and
// are not sessions.
func ScanClaude(root string) []FileInfo {
	projects, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var files []FileInfo
	for _, p := range projects {
		if !p.IsDir() {
			continue
		}
		projDir := filepath.Join(root, p.Name())
		entries, err := os.ReadDir(projDir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || filepath.Ext(name) != ".jsonl" {
				continue
			}
			if strings.Contains(name, "sessions-index") {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			files = append(files, FileInfo{
				Path:   filepath.Join(projDir, name),
				ID:     strings.TrimSuffix(name, ".jsonl"),
				Source: model.SourceClaudeCode,
				Mtime:  info.ModTime().Unix(),
				Size:   info.Size(),
			})
		}
	}
	return files
}

// SafeID reports whether id can be joined into a path or glob without
// escaping its directory.
func SafeID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\*?[]`)
}
