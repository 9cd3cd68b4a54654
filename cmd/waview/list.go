package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/waview/internal/config"
	"github.com/Zuo-Peng/waview/internal/search"
	"github.com/Zuo-Peng/waview/internal/tui"
)

func listCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list [filter]",
		Short: "Browse all chats sorted by last activity",
		Long:  `Opens a TUI panel showing all indexed chats, newest activity first. Type to search message content.`,
		Args:  cobra.MaximumNArgs(1),
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

			if term.IsTerminal(int(os.Stdout.Fd())) && len(args) == 0 {
				return tui.RunList(db, search.Options{Limit: limit})
			}

			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}
			chats, err := search.ListChats(db, filter, limit)
			if err != nil {
				return err
			}
			for _, c := range chats {
				fmt.Printf("%s\t%s\t%s\t%s\n", c.ChatKey, c.Ts, tsvField(c.Title), c.Snippet)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = no limit)")

	return cmd
}
