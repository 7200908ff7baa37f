package main

import (
	"github.com/spf13/cobra"
)

func analyticsCmd(debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Print aggregate usage statistics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, h, err := setup(*debug)
			if err != nil {
				return err
			}

			report, err := h.Analytics(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}
}
