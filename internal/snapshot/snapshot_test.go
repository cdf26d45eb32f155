package snapshot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"songbird_evals/internal/chathistory"
)

func TestArchiveAppendsAcrossRuns(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	ctx := context.Background()
	examples := []chathistory.Record{
		{Question: "how many devices are online", SQL: "SELECT 1", Insights: "one", Timestamp: 1},
		{Question: "what was peak temperature", SQL: "SELECT 2", Insights: "two", Timestamp: 2},
	}
	if err := st.Archive(ctx, examples, time.Now()); err != nil {
		t.Fatalf("archive run 1: %v", err)
	}
	if err := st.Archive(ctx, examples[:1], time.Now()); err != nil {
		t.Fatalf("archive run 2: %v", err)
	}
	n, err := st.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3 archived rows, got %d", n)
	}
}
