package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var debug bool

	rootCmd := &cobra.Command{
		Use:           "aish",
		Short:         "AI Session Hub - browse and search Copilot CLI, VS Code and Claude Code sessions",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write debug logs to a file")

	rootCmd.AddCommand(listCmd(&debug))
	rootCmd.AddCommand(showCmd(&debug))
	rootCmd.AddCommand(searchCmd(&debug))
	rootCmd.AddCommand(analyticsCmd(&debug))
	rootCmd.AddCommand(openCmd(&debug))
	rootCmd.AddCommand(doctorCmd(&debug))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
