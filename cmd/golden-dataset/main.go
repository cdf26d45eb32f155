package main

import (
	"context"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"songbird_evals/internal/app"
	"songbird_evals/internal/chathistory"
	"songbird_evals/internal/config"
	"songbird_evals/internal/phoenix"
)

func main() {
	var (
		table        = flag.String("table", "", "chat history table (overrides CHAT_HISTORY_TABLE)")
		target       = flag.Int("target", 0, "target example count (overrides TARGET_COUNT)")
		snapshotPath = flag.String("snapshot", "", "sqlite file for the local run archive (overrides SNAPSHOT_PATH)")
		dryRun       = flag.Bool("dry-run", false, "filter and preview without uploading")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Load()
	if *table != "" {
		cfg.ChatHistoryTable = *table
	}
	if *target > 0 {
		cfg.TargetCount = *target
	}
	if *snapshotPath != "" {
		cfg.SnapshotPath = *snapshotPath
	}

	ctx := context.Background()
	scanner, err := chathistory.NewScannerFromEnv(ctx, cfg.AWSRegion, cfg.ChatHistoryTable)
	if err != nil {
		logrus.WithError(err).Fatal("aws init")
	}
	publisher := &phoenix.Publisher{
		Client:        phoenix.NewClient(cfg.PhoenixURL),
		Name:          cfg.DatasetName,
		Description:   cfg.DatasetDescription,
		VerifyTimeout: cfg.VerifyTimeout,
	}

	os.Exit(app.Run(ctx, cfg, app.Options{
		Fetcher:   scanner,
		Publisher: publisher,
		DryRun:    *dryRun,
	}))
}
