package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/waview/internal/config"
	"github.com/Zuo-Peng/waview/internal/index"
)

// openIndex opens the configured database, refreshing it from the export
// root first when refresh is set.
func openIndex(cfg *config.Config, refresh bool) (*index.DB, error) {
	db, err := index.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if !refresh {
		return db, nil
	}
	ix, err := newIndexer(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	// a stale index is still searchable
	if _, err := ix.IndexAll(); err != nil {
		fmt.Fprintf(os.Stderr, "WARN: index: %v\n", err)
	}
	return db, nil
}

func newIndexer(cfg *config.Config, db *index.DB) (*index.Indexer, error) {
	p, err := cfg.Parser()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &index.Indexer{
		DB:     db,
		Root:   cfg.ExportRoot,
		Parser: p,
		Self:   cfg.Self,
		Log:    os.Stderr,
	}, nil
}

func runIndex(ix *index.Indexer) error {
	stats, err := ix.IndexAll()
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
	return nil
}

// watch re-indexes on a cron schedule until interrupted. A run that is still
// going when the next one is due makes that one skip.
func watch(ix *index.Indexer, schedule string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() {
		if err := runIndex(ix); err != nil {
			fmt.Fprintf(os.Stderr, "WARN: %v\n", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", schedule, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.Start()
	fmt.Fprintf(os.Stderr, "Re-indexing on %q, Ctrl-C to stop\n", schedule)
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func indexCmd() *cobra.Command {
	var every string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Scan and index chat exports under the export root",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			db, err := openIndex(cfg, false)
			if err != nil {
				return err
			}
			defer db.Close()

			ix, err := newIndexer(cfg, db)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Scanning %s...\n", cfg.ExportRoot)
			if cfg.Self != "" {
				fmt.Fprintf(os.Stderr, "  Self: %s\n", cfg.Self)
			}

			if err := runIndex(ix); err != nil {
				return err
			}
			if every != "" {
				return watch(ix, every)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&every, "every", "", `Keep running and re-index on a cron schedule, e.g. "@every 10m"`)

	return cmd
}
