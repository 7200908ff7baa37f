package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/Zuo-Peng/ai-session-hub/internal/search"
	"github.com/Zuo-Peng/ai-session-hub/internal/tui"
)

func listCmd(debug *bool) *cobra.Command {
	var src string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions from every source, newest first",
		Long: `Lists sessions from every configured source sorted by creation time (newest first).
Opens a TUI panel when stdout is a terminal; otherwise prints TSV:
  ref, createdAt, status, source, workingDirectory, title`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateSource(src); err != nil {
				return err
			}
			_, h, err := setup(*debug)
			if err != nil {
				return err
			}

			if !asJSON && isTerminal() {
				return tui.RunList(h, search.Options{Source: src})
			}

			sessions, err := h.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			sessions = filterSource(sessions, src)

			if asJSON {
				if sessions == nil {
					sessions = []model.SessionMeta{}
				}
				return printJSON(sessions)
			}

			for _, s := range sessions {
				fmt.Printf("%s\t%s\t%s\t%s\t%s\t%s\n",
					s.Key(),
					tsvField(s.CreatedAt),
					s.Status,
					s.Source,
					tsvField(s.WorkingDirectory),
					tsvField(s.DisplayTitle()),
				)
			}
			if len(sessions) == 0 {
				fmt.Fprintln(os.Stderr, "No sessions found.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&src, "source", "", "Filter by source (cli/vscode/claude-code)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print sessions as JSON")

	return cmd
}

func validateSource(src string) error {
	if src == "" || src == search.SourceAll || model.ValidSource(src) {
		return nil
	}
	return fmt.Errorf("unknown source %q (want cli, vscode, claude-code or all)", src)
}

func filterSource(sessions []model.SessionMeta, src string) []model.SessionMeta {
	if src == "" || src == search.SourceAll {
		return sessions
	}
	var out []model.SessionMeta
	for _, s := range sessions {
		if string(s.Source) == src {
			out = append(out, s)
		}
	}
	return out
}
