package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/ai-session-hub/internal/open"
)

func openCmd(debug *bool) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "open <ref>",
		Short: "Open the session's file in $EDITOR at the first matching line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, h, err := setup(*debug)
			if err != nil {
				return err
			}

			d, err := h.GetSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return open.Session(d.SessionMeta, query)
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Jump to the first line containing every keyword")

	return cmd
}
