package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/waview/internal/chat"
	"github.com/Zuo-Peng/waview/internal/config"
)

func parseCmd() *cobra.Command {
	var self string
	var compact bool

	cmd := &cobra.Command{
		Use:   "parse <export>",
		Short: "Parse one export (.txt, .zip or folder) and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			p, err := cfg.Parser()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if !cmd.Flags().Changed("self") {
				self = cfg.Self
			}

			data, exp, err := chat.LoadFile(args[0], p, self)
			if err != nil {
				return err
			}
			defer exp.Close()

			enc := json.NewEncoder(os.Stdout)
			if !compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(data)
		},
	}

	cmd.Flags().StringVar(&self, "self", "", "Sender name to treat as yourself (default from config)")
	cmd.Flags().BoolVar(&compact, "compact", false, "Print JSON on one line")

	return cmd
}
