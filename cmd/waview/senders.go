package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/waview/internal/chat"
	"github.com/Zuo-Peng/waview/internal/config"
	"github.com/Zuo-Peng/waview/internal/index"
	"github.com/Zuo-Peng/waview/internal/render"
	"github.com/Zuo-Peng/waview/internal/transcript"
)

func sendersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "senders <export|chatKey>",
		Short: "List everyone who wrote in an export, to pick the self identity",
		Long: `List everyone who wrote in an export, to pick the self identity.

The argument is an export path, or a chat key ("chat:...") from the index.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if strings.HasPrefix(args[0], "chat:") {
				return indexedSenders(cfg, args[0])
			}
			p, err := cfg.Parser()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			data, exp, err := chat.LoadFile(args[0], p, cfg.Self)
			if err != nil {
				return err
			}
			defer exp.Close()

			st := data.Stats()
			for _, name := range data.AllSenders {
				c := transcript.SenderColor(name)
				mark := ""
				if name == cfg.Self {
					mark = " (self)"
				}
				fmt.Printf("%s\t%d\t%s %s%s\n",
					render.SenderStyle(name).Render(name),
					st.BySender[name],
					c.Name, c.Hex,
					mark,
				)
			}
			fmt.Printf("\n%d senders, %d messages, %s .. %s\n",
				len(data.AllSenders), st.Messages,
				st.First.Format("2006-01-02"), st.Last.Format("2006-01-02"))
			return nil
		},
	}
}

// indexedSenders lists the authors of an indexed chat without reparsing it.
func indexedSenders(cfg *config.Config, key string) error {
	db, err := index.OpenDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.Senders(key)
	if err != nil {
		return fmt.Errorf("senders: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("chat not found or empty: %s", key)
	}
	for _, r := range rows {
		c := transcript.SenderColor(r.Sender)
		mark := ""
		if r.IsMe {
			mark = " (self)"
		}
		fmt.Printf("%s\t%d\t%s %s\tlast %s%s\n",
			render.SenderStyle(r.Sender).Render(r.Sender),
			r.Messages,
			c.Name, c.Hex,
			r.LastAt,
			mark,
		)
	}
	return nil
}
