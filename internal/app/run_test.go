package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"songbird_evals/internal/chathistory"
	"songbird_evals/internal/config"
	"songbird_evals/internal/phoenix"
	"songbird_evals/internal/snapshot"
)

type fakeFetcher struct {
	records []chathistory.Record
	err     error
}

func (f *fakeFetcher) ScanComplete(ctx context.Context) ([]chathistory.Record, error) {
	return f.records, f.err
}

func testConfig() config.Config {
	return config.Config{
		PhoenixURL:       "http://unused",
		ChatHistoryTable: "songbird-chat-history",
		DatasetName:      "analytics-golden-queries",
		TargetCount:      50,
		VerifyTimeout:    time.Second,
	}
}

func candidates() []chathistory.Record {
	return []chathistory.Record{
		{Question: "how many devices are online right now", SQL: "SELECT 1", Insights: "one", Timestamp: 2},
		{Question: "what was the peak temperature yesterday", SQL: "SELECT 2", Insights: "two", Timestamp: 1},
	}
}

func publisherFor(srv *httptest.Server, cfg config.Config) *phoenix.Publisher {
	return &phoenix.Publisher{
		Client:        phoenix.NewClient(srv.URL),
		Name:          cfg.DatasetName,
		Description:   cfg.DatasetDescription,
		VerifyTimeout: cfg.VerifyTimeout,
	}
}

func TestRunExitsWhenStoreIsEmpty(t *testing.T) {
	code := Run(context.Background(), testConfig(), Options{Fetcher: &fakeFetcher{}})
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
}

func TestRunExitsOnScanError(t *testing.T) {
	code := Run(context.Background(), testConfig(), Options{Fetcher: &fakeFetcher{err: errors.New("access denied")}})
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
}

func TestRunExitsWhenNothingPassesFilters(t *testing.T) {
	records := []chathistory.Record{
		{Question: "too short", SQL: "SELECT 1", Insights: "x", Timestamp: 1},
	}
	code := Run(context.Background(), testConfig(), Options{Fetcher: &fakeFetcher{records: records}})
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
}

func TestRunSucceedsEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"dataset_id":"RGF0YXNldDox"}}`))
	}))
	defer srv.Close()

	cfg := testConfig()
	code := Run(context.Background(), cfg, Options{
		Fetcher:   &fakeFetcher{records: candidates()},
		Publisher: publisherFor(srv, cfg),
	})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
}

func TestRunSucceedsViaVerification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/datasets/upload":
			w.Write([]byte("null"))
		case "/graphql":
			w.Write([]byte(`{"data":{"datasets":{"edges":[{"node":{"name":"analytics-golden-queries","exampleCount":42}}]}}}`))
		}
	}))
	defer srv.Close()

	cfg := testConfig()
	code := Run(context.Background(), cfg, Options{
		Fetcher:   &fakeFetcher{records: candidates()},
		Publisher: publisherFor(srv, cfg),
	})
	if code != 0 {
		t.Fatalf("expected exit 0 on verified success, got %d", code)
	}
}

func TestRunFailsWhenUploadAndVerificationFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig()
	code := Run(context.Background(), cfg, Options{
		Fetcher:   &fakeFetcher{records: candidates()},
		Publisher: publisherFor(srv, cfg),
	})
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
}

func TestRunDryRunSkipsUploadAndWritesSnapshot(t *testing.T) {
	cfg := testConfig()
	cfg.SnapshotPath = filepath.Join(t.TempDir(), "runs.db")
	code := Run(context.Background(), cfg, Options{
		Fetcher: &fakeFetcher{records: candidates()},
		DryRun:  true,
	})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	st, err := snapshot.Open(cfg.SnapshotPath)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	n, err := st.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 archived examples, got %d", n)
	}
}
