package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/waview/internal/archive"
	"github.com/Zuo-Peng/waview/internal/config"
	"github.com/Zuo-Peng/waview/internal/index"
	"github.com/Zuo-Peng/waview/internal/render"
)

func previewCmd() *cobra.Command {
	var opts render.Options
	var checkMedia bool

	cmd := &cobra.Command{
		Use:   "preview <chatKey>",
		Short: "Preview a chat with context around a hit",
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

			if checkMedia {
				c, err := db.GetChatByKey(args[0])
				if err != nil {
					return err
				}
				if c != nil {
					exp, err := archive.Load(c.FilePath)
					if err != nil {
						fmt.Fprintf(os.Stderr, "WARN: media: %v\n", err)
					} else {
						defer exp.Close()
						if exp.Archive != nil {
							opts.Archive = exp.Archive
						}
					}
				}
			}

			out, _, err := render.RenderConversation(db, args[0], opts)
			if err != nil {
				return err
			}

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.HitID, "hit", -1, "Message ID to highlight")
	cmd.Flags().IntVar(&opts.Context, "context", 10, "Messages before/after hit to show")
	cmd.Flags().StringVar(&opts.Query, "query", "", "Search query for keyword highlighting")
	cmd.Flags().IntVar(&opts.Width, "width", 0, "Wrap width (0 = no wrap)")
	cmd.Flags().BoolVar(&checkMedia, "media", false, "Mark attachments missing from the export")

	return cmd
}
