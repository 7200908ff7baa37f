package parse

import "strings"

// Canonical tool names.
const (
	ToolEdit      = "edit"
	ToolWrite     = "write"
	ToolRead      = "read"
	ToolBash      = "bash"
	ToolSearch    = "search"
	ToolWebSearch = "web_search"
	ToolWebFetch  = "web_fetch"
	ToolTask      = "task"
	ToolTodo      = "todo"
)

// toolAliases is keyed by lowercased source-specific identifiers.
var toolAliases = map[string]string{
	"edit":                         ToolEdit,
	"multiedit":                    ToolEdit,
	"notebookedit":                 ToolEdit,
	"str_replace":                  ToolEdit,
	"str_replace_editor":           ToolEdit,
	"str_replace_based_edit_tool":  ToolEdit,
	"edit_file":                    ToolEdit,
	"apply_patch":                  ToolEdit,
	"replace_string_in_file":       ToolEdit,
	"multi_replace_string_in_file": ToolEdit,
	"insert_edit_into_file":        ToolEdit,
	"copilot_replacestring":        ToolEdit,
	"copilot_multireplacestring":   ToolEdit,
	"copilot_editfile":             ToolEdit,
	"copilot_applypatch":           ToolEdit,
	"copilot_insertedit":           ToolEdit,
	"vscode_editfile_internal":     ToolEdit,

	"write":              ToolWrite,
	"create":             ToolWrite,
	"create_file":        ToolWrite,
	"write_file":         ToolWrite,
	"copilot_createfile": ToolWrite,

	"read":             ToolRead,
	"view":             ToolRead,
	"read_file":        ToolRead,
	"notebookread":     ToolRead,
	"copilot_readfile": ToolRead,

	"bash":                  ToolBash,
	"shell":                 ToolBash,
	"powershell":            ToolBash,
	"run_command":           ToolBash,
	"run_in_terminal":       ToolBash,
	"copilot_runinterminal": ToolBash,

	"grep":                    ToolSearch,
	"glob":                    ToolSearch,
	"ls":                      ToolSearch,
	"list_dir":                ToolSearch,
	"file_search":             ToolSearch,
	"grep_search":             ToolSearch,
	"semantic_search":         ToolSearch,
	"copilot_findfiles":       ToolSearch,
	"copilot_findtextinfiles": ToolSearch,
	"copilot_searchcodebase":  ToolSearch,
	"copilot_listdirectory":   ToolSearch,

	"websearch":  ToolWebSearch,
	"web_search": ToolWebSearch,

	"webfetch":             ToolWebFetch,
	"web_fetch":            ToolWebFetch,
	"fetch_webpage":        ToolWebFetch,
	"copilot_fetchwebpage": ToolWebFetch,

	"task":         ToolTask,
	"agent":        ToolTask,
	"runsubagent":  ToolTask,
	"run_subagent": ToolTask,

	"todowrite":        ToolTodo,
	"manage_todo_list": ToolTodo,
	"update_todo":      ToolTodo,
}

// NormalizeToolName maps a source-specific tool identifier onto the
// canonical vocabulary. "server::tool" and "mcp__server__tool" become
// "server.tool"; unknown names pass through unchanged.
func NormalizeToolName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	if server, tool, ok := strings.Cut(name, "::"); ok && server != "" && tool != "" {
		return server + "." + tool
	}
	if rest, ok := strings.CutPrefix(name, "mcp__"); ok {
		if server, tool, ok := strings.Cut(rest, "__"); ok && server != "" && tool != "" {
			return server + "." + tool
		}
	}
	if canonical, ok := toolAliases[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}
