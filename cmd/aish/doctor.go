package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/ai-session-hub/internal/logging"
	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/Zuo-Peng/ai-session-hub/internal/scan"
	"github.com/Zuo-Peng/ai-session-hub/internal/source"
)

func doctorCmd(debug *bool) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify roots and show session counts and skipped files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, h, err := setup(*debug)
			if err != nil {
				return err
			}

			fmt.Println("=== Roots ===")
			checkDir("Copilot CLI", cfg.CopilotRoot)
			checkDir("VS Code", cfg.VSCodeRoot)
			checkDir("Claude Code", cfg.ClaudeRoot)

			if dir, err := logging.Dir(); err == nil {
				fmt.Printf("  Debug logs: %s\n", dir)
			}

			fmt.Println("\n=== File Scan ===")
			files := scan.ScanRoots(scan.Roots{
				Copilot: cfg.CopilotRoot,
				VSCode:  cfg.VSCodeRoot,
				Claude:  cfg.ClaudeRoot,
			})
			fileCounts := map[model.Source]int{}
			for _, f := range files {
				fileCounts[f.Source]++
			}
			for _, s := range model.Sources {
				fmt.Printf("  %-12s %d\n", s, fileCounts[s])
			}

			sessions, err := h.ListSessions(cmd.Context())
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			fmt.Println("\n=== Sessions ===")
			counts := map[model.Source]int{}
			for _, s := range sessions {
				counts[s.Source]++
			}
			for _, s := range model.Sources {
				fmt.Printf("  %-12s %d\n", s, counts[s])
			}

			skipped, err := h.Skipped(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("\n=== Skipped: %d ===\n", len(skipped))
			reasons := map[string]int{}
			for _, sk := range skipped {
				reasons[fmt.Sprintf("%s: %v", sk.Source, source.Reason(sk.Err))]++
			}
			keys := make([]string, 0, len(reasons))
			for k := range reasons {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("  %s (%d)\n", k, reasons[k])
			}
			if verbose {
				for _, sk := range skipped {
					fmt.Printf("    %s\n", sk.Error())
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every skipped file")

	return cmd
}

func checkDir(name, path string) {
	if path == "" {
		fmt.Printf("  %s: (disabled)\n", name)
		return
	}
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}
