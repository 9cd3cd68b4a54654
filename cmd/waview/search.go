package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/waview/internal/config"
	"github.com/Zuo-Peng/waview/internal/render"
	"github.com/Zuo-Peng/waview/internal/search"
	"github.com/Zuo-Peng/waview/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorDim     = "\033[2m"
)

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func tsvField(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func searchCmd() *cobra.Command {
	var opts search.Options

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across indexed chats",
		Long: `Search indexed messages using FTS5. Output is TSV for fzf integration:
  chatKey, messageId, time, sender, chat title, snippet

Recommended shell function (add to .zshrc):
  waf() {
    waview search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'waview preview {1} --hit {2} --context 5 --query {q}' \
      --preview-window=right:60%:wrap \
      --bind 'enter:execute(waview open {1} --hit {2})'
  }`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := openIndex(cfg, true)
			if err != nil {
				return err
			}
			defer db.Close()

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, args[0], opts)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				// first two fields (chatKey, messageID) stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s%s%s\t%s\t%s\t%s\n",
					r.ChatKey,
					r.MessageID,
					sColorDim, r.Ts, sColorReset,
					render.SenderStyle(r.Sender).Render(tsvField(r.Sender)),
					tsvField(r.Title),
					colorizeSnippet(tsvField(r.Snippet)),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Chat, "chat", "", "Restrict to one chat key")
	cmd.Flags().StringVar(&opts.Sender, "sender", "", "Filter by sender name")
	cmd.Flags().StringVar(&opts.Type, "type", "", "Filter by message type (text/image/audio/video/system)")
	cmd.Flags().StringVar(&opts.Since, "since", "", "Messages on or after date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Until, "until", "", "Messages on or before date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.PerChat, "per-chat", false, "Show only the best hit of each chat")
	cmd.Flags().IntVar(&opts.Limit, "limit", 100, "Max results")

	return cmd
}
