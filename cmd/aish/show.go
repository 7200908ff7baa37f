package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/ai-session-hub/internal/render"
)

func showCmd(debug *bool) *cobra.Command {
	var query string
	var context int
	var tools, asJSON bool

	cmd := &cobra.Command{
		Use:   "show <ref>",
		Short: "Show a session transcript",
		Long: `Shows one session. <ref> is either "source:id" or a bare id, which is
resolved against cli, vscode and claude-code in that order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, h, err := setup(*debug)
			if err != nil {
				return err
			}

			d, err := h.GetSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(d)
			}

			out, _ := render.Conversation(d, render.Options{
				Context: context,
				Width:   terminalWidth(),
				Query:   query,
				Tools:   tools,
			})
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Highlight keywords and center on the first matching message")
	cmd.Flags().IntVar(&context, "context", -1, "Messages before/after the match to show (-1 = all)")
	cmd.Flags().BoolVar(&tools, "tools", false, "Include tool calls")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full session detail as JSON")

	return cmd
}
