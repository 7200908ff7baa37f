package parse

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "héll"+TruncatedMarker, TruncateText("héllo wörld", 4))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "fix the login bug", Title("  fix the\n login   bug "))
	assert.Equal(t, "/test run tests", Title("<command-name>/test</command-name> run tests"))

	long := strings.Repeat("word ", 40)
	got := Title(long)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), TitleMaxRunes)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestNormalizeToolName(t *testing.T) {
	cases := map[string]string{
		"Edit":                   ToolEdit,
		"str_replace_editor":     ToolEdit,
		"replace_string_in_file": ToolEdit,
		"view":                   ToolRead,
		"copilot_readFile":       ToolRead,
		"Bash":                   ToolBash,
		"run_in_terminal":        ToolBash,
		"WebSearch":              ToolWebSearch,
		"github::search_issues":  "github.search_issues",
		"mcp__playwright__click": "playwright.click",
		"some_custom_tool":       "some_custom_tool",
		"":                       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeToolName(in), in)
	}
}
