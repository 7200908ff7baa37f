package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/Zuo-Peng/ai-session-hub/internal/search"
	"github.com/Zuo-Peng/ai-session-hub/internal/tui"
)

const (
	sColorReset = "\033[0m"
	sColorBlue  = "\033[1;34m"
	sColorGreen = "\033[1;32m"
	sColorMag   = "\033[1;35m"
	sColorDim   = "\033[2m"
)

func colorizeSource(s model.Source) string {
	switch s {
	case model.SourceCLI:
		return sColorGreen + string(s) + sColorReset
	case model.SourceVSCode:
		return sColorBlue + string(s) + sColorReset
	case model.SourceClaudeCode:
		return sColorMag + string(s) + sColorReset
	default:
		return string(s)
	}
}

func searchCmd(debug *bool) *cobra.Command {
	var src string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Keyword search across every session",
		Long: `Ranks sessions by keyword matches in their transcripts, titles and
working directories. Opens a TUI when stdout is a terminal; otherwise prints TSV
for fzf integration:
  ref, score, date, source, workingDirectory, title, highlight

Example:
  aish search "auth middleware" | fzf --ansi --delimiter='\t' --with-nth=3.. \
    --preview 'aish show {1} --query {q}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateSource(src); err != nil {
				return err
			}
			cfg, h, err := setup(*debug)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			if !cmd.Flags().Changed("limit") {
				limit = cfg.SearchLimit
			}
			opts := search.Options{Source: src, Limit: limit}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if !asJSON && isTerminal() {
				return tui.Run(h, query, opts)
			}

			results, err := h.Search(cmd.Context(), query, opts)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(results)
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				highlight := "-"
				if len(r.Highlights) > 0 {
					highlight = tsvField(r.Highlights[0])
				}
				// first field stays plain for fzf {1}
				fmt.Printf("%s\t%.3f\t%s%s%s\t%s\t%s\t%s\t%s\n",
					r.Entry.Key(),
					r.Score,
					sColorDim, tsvField(r.Entry.Date), sColorReset,
					colorizeSource(r.Entry.Source),
					tsvField(r.Entry.WorkingDirectory),
					tsvField(r.Entry.Title),
					highlight,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&src, "source", "", "Filter by source (cli/vscode/claude-code/all)")
	cmd.Flags().IntVar(&limit, "limit", search.DefaultLimit, "Max results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	return cmd
}
