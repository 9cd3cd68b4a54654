package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/waview/internal/archive"
)

func mediaCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "media <export> <attachment>",
		Short: "Extract an attachment from a .zip or folder export",
		Long:  `Copies the named attachment to --out, or to stdout when --out is not given.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := archive.Load(args[0])
			if err != nil {
				return err
			}
			defer exp.Close()
			if exp.Archive == nil {
				return fmt.Errorf("%s: %w", args[0], archive.ErrMediaUnavailable)
			}

			err = archive.WithAttachment(exp.Archive, args[1], func(r io.Reader) error {
				if out == "" {
					_, err := io.Copy(os.Stdout, r)
					return err
				}
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				n, err := io.Copy(f, r)
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err == nil {
					fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes)\n", out, n)
				}
				return err
			})
			if errors.Is(err, archive.ErrMediaUnavailable) {
				return fmt.Errorf("%s is not part of the export", args[1])
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file")

	return cmd
}
