package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/JustJay7/case-lookup/internal/api"
	"github.com/JustJay7/case-lookup/internal/database"
	"github.com/JustJay7/case-lookup/internal/form"
	"github.com/JustJay7/case-lookup/internal/scraper"
	"github.com/JustJay7/case-lookup/internal/server"
	"github.com/JustJay7/case-lookup/internal/session"
	"github.com/JustJay7/case-lookup/internal/ui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.RunE = runServe
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := newApp(context.Background(), cfg, log)
	if err != nil {
		return err
	}

	builder := form.NewBuilder(nil)
	sessions := session.NewManager(session.Config{
		Client:       a.client,
		Backend:      a.store,
		Builder:      builder,
		HistoryLimit: cfg.HistoryLimit,
		TTL:          cfg.SessionTTL,
		Journal: func(id string) ui.Journal {
			return database.NewJournal(a.repo, id)
		},
		Logger:        log,
		SearchTimeout: cfg.ScraperTimeout,
	})

	srv, err := server.New(cfg, api.Deps{
		Sessions:   sessions,
		Client:     a.client,
		Builder:    builder,
		Repo:       a.repo,
		Cache:      a.cache,
		Captcha:    a.captcha,
		Downloader: scraper.NewDownloader(cfg.DownloadTimeout, cfg.UserAgent, log),
		Version:    version,
	}, log, a.closers...)
	if err != nil {
		a.close(log)
		return err
	}

	log.Info("Starting Court Data Fetcher",
		"host", cfg.Host,
		"port", cfg.Port,
		"court", cfg.CourtName,
		"lookup_mode", cfg.LookupMode,
		"storage", cfg.StorageBackend,
	)

	return srv.Run()
}
