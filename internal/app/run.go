package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"songbird_evals/internal/chathistory"
	"songbird_evals/internal/config"
	"songbird_evals/internal/golden"
	"songbird_evals/internal/phoenix"
	"songbird_evals/internal/snapshot"
)

// Fetcher produces the full candidate pool.
type Fetcher interface {
	ScanComplete(ctx context.Context) ([]chathistory.Record, error)
}

// Options carry per-run wiring so tests can substitute fakes.
type Options struct {
	Fetcher   Fetcher
	Publisher *phoenix.Publisher
	DryRun    bool
}

const previewLimit = 3

// Run executes one fetch-filter-publish pass and returns the process exit
// code: 0 on success (including verified success), 1 otherwise.
func Run(ctx context.Context, cfg config.Config, opts Options) int {
	fmt.Printf("Scanning DynamoDB table '%s'...\n", cfg.ChatHistoryTable)
	records, err := opts.Fetcher.ScanComplete(ctx)
	if err != nil {
		logrus.WithError(err).Error("chat history scan failed")
		return 1
	}
	fmt.Printf("Found %d successful queries with SQL and insights\n", len(records))
	if len(records) == 0 {
		fmt.Println("No queries found. Use the analytics chat in the dashboard first.")
		return 1
	}

	examples, stats := golden.Select(records, cfg.TargetCount)
	fmt.Printf("Filtered to %d golden examples\n", len(examples))
	logrus.WithFields(logrus.Fields{
		"duplicates": stats.Duplicates,
		"too_short":  stats.TooShort,
		"error_like": stats.ErrorLike,
	}).Debug("filter rejections")
	if len(examples) == 0 {
		fmt.Println("No examples passed quality filters.")
		return 1
	}

	printSamples(examples)

	if cfg.SnapshotPath != "" {
		if err := archive(ctx, cfg.SnapshotPath, examples); err != nil {
			// The archive is best-effort; publishing is the job.
			logrus.WithError(err).Warn("snapshot archive failed")
		}
	}

	if opts.DryRun {
		fmt.Println("\nDry run: skipping Phoenix upload.")
		return 0
	}

	fmt.Printf("\nConnecting to Phoenix at %s...\n", cfg.PhoenixURL)
	fmt.Printf("Creating dataset '%s' with %d examples...\n", cfg.DatasetName, len(examples))
	result := opts.Publisher.Publish(ctx, examples)
	switch result.Status {
	case phoenix.StatusUploaded:
		fmt.Println("\nDataset created successfully!")
	case phoenix.StatusVerified:
		fmt.Printf("\nDataset created successfully! (%d examples)\n", result.ExampleCount)
	case phoenix.StatusFailed:
		fmt.Printf("\nWarning: Upload may have failed - %v\n", result.UploadErr)
		return 1
	}

	fmt.Printf("View in Phoenix UI: %s\n", cfg.PhoenixURL)
	fmt.Printf("Navigate to: Datasets > %s\n", cfg.DatasetName)
	return 0
}

func printSamples(examples []chathistory.Record) {
	fmt.Println("\nSample examples:")
	n := len(examples)
	if n > previewLimit {
		n = previewLimit
	}
	for i := 0; i < n; i++ {
		fmt.Printf("\n  [%d] Question: %s\n", i+1, truncate(examples[i].Question, 100))
		fmt.Printf("      SQL: %s...\n", truncate(examples[i].SQL, 100))
		fmt.Printf("      Insights: %s...\n", truncate(examples[i].Insights, 100))
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func archive(ctx context.Context, path string, examples []chathistory.Record) error {
	st, err := snapshot.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.Archive(ctx, examples, time.Now().UTC())
}
