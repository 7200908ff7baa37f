package open

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/Zuo-Peng/ai-session-hub/internal/parse"
	"github.com/Zuo-Peng/ai-session-hub/internal/search"
)

// Session opens the primary file of a session in $EDITOR (less when
// unset), positioned on the first line matching query.
func Session(meta model.SessionMeta, query string) error {
	filePath := meta.FilePath
	if filePath == "" {
		return fmt.Errorf("%s: no file on disk", meta.Key())
	}
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s", filePath)
	}

	lineNum := MatchLine(filePath, query)

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	cmd := editorCommand(editor, filePath, lineNum)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// MatchLine returns the 1-based number of the first line containing every
// token of query, or 1.
func MatchLine(path, query string) int {
	tokens := search.Tokenize(query)
	if len(tokens) == 0 {
		return 1
	}
	found := 1
	_ = parse.ScanLines(path, func(lineNum int, line []byte) bool {
		lower := bytes.Map(unicode.ToLower, line)
		for _, tok := range tokens {
			if !bytes.Contains(lower, []byte(tok)) {
				return true
			}
		}
		found = lineNum
		return false
	})
	return found
}

func editorCommand(editor, filePath string, lineNum int) *exec.Cmd {
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		return exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		return exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		return exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		return exec.Command(editor, filePath)
	}
}
