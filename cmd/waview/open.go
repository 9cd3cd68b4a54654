package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/waview/internal/config"
	"github.com/Zuo-Peng/waview/internal/index"
	"github.com/Zuo-Peng/waview/internal/open"
)

func openCmd() *cobra.Command {
	var hitID int

	cmd := &cobra.Command{
		Use:   "open <chatKey>",
		Short: "Open the chat transcript in $EDITOR at the hit line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			return open.OpenChat(db, args[0], hitID)
		},
	}

	cmd.Flags().IntVar(&hitID, "hit", -1, "Message ID to jump to")

	return cmd
}
