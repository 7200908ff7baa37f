package parse

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
)

const (
	// MaxFileSize is the largest per-session payload that is parsed at all.
	MaxFileSize = 200 * 1024 * 1024
	maxLineSize = 16 * 1024 * 1024
)

// StatWithinLimit stats path and rejects files above MaxFileSize with
// model.ErrOversize. A missing file yields model.ErrSessionNotFound.
func StatWithinLimit(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, model.ErrSessionNotFound)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, model.ErrSessionNotFound)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s (%d bytes): %w", path, info.Size(), model.ErrOversize)
	}
	return info, nil
}

// ScanLines calls fn with each non-empty line of path. Lines are handed
// over independently so a malformed one can be skipped by the caller;
// lines longer than maxLineSize are dropped without ending the scan.
// Returning false from fn stops early. The slice passed to fn is only
// valid until fn returns.
func ScanLines(path string, fn func(lineNum int, line []byte) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 64*1024)
	var line []byte
	oversized := false
	lineNum := 0
	for {
		chunk, err := r.ReadSlice('\n')
		if !oversized {
			line = append(line, chunk...)
			if len(line) > maxLineSize {
				oversized = true
				line = line[:0]
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil && err != io.EOF {
			return err
		}

		if err == nil || len(line) > 0 || oversized {
			lineNum++
			trimmed := bytes.TrimSpace(line)
			if !oversized && len(trimmed) > 0 && !fn(lineNum, trimmed) {
				return nil
			}
		}
		line = line[:0]
		oversized = false
		if err == io.EOF {
			return nil
		}
	}
}

// TailLines returns up to n trailing lines from the last maxBytes of path.
// The first line is dropped when the window starts inside it.
func TailLines(path string, maxBytes int64, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	offset := info.Size() - maxBytes
	if offset < 0 {
		offset = 0
	}
	// Read one byte before the window to tell whether it starts mid-line.
	start := max(offset-1, 0)
	buf := make([]byte, info.Size()-start)
	if _, err := f.ReadAt(buf, start); err != nil && err != io.EOF {
		return nil, err
	}
	partial := false
	if offset > 0 {
		partial = buf[0] != '\n'
		buf = buf[1:]
	}

	lines := strings.Split(strings.TrimRight(string(buf), "\n"), "\n")
	if partial && len(lines) > 0 {
		lines = lines[1:]
	}
	var out []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}
