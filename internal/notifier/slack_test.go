package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/amishk599/jobsignal/internal/model"
)

func sampleSummary() model.BatchSummary {
	return model.BatchSummary{
		RunID:             "run-1",
		Source:            "adzuna",
		IngestTS:          "2026-02-13T10:00:00.000Z",
		Fetched:           50,
		Enriched:          50,
		New:               12,
		AISignals:         4,
		OffshoringSignals: 2,
		Locations:         []string{"gs://bucket/enriched/adzuna/ingest_ts=2026-02-13T10/batch.json"},
	}
}

func TestSlackNotifier_Summary(t *testing.T) {
	var body []byte
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), zap.NewNop())
	if err := n.Notify(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q", contentType)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	if len(payload.Blocks) != 6 {
		t.Fatalf("expected 6 blocks, got %d", len(payload.Blocks))
	}
	if got := payload.Blocks[0].Text.Text; got != "📥 adzuna: 50 postings enriched" {
		t.Errorf("header text = %q", got)
	}
	if got := payload.Blocks[1].Fields[1].Text; got != "*New:*\n12" {
		t.Errorf("new field = %q", got)
	}
	if got := payload.Blocks[2].Fields[0].Text; got != "*AI signals:*\n4" {
		t.Errorf("ai field = %q", got)
	}
	if !strings.Contains(payload.Blocks[3].Text.Text, "gs://bucket/enriched/adzuna") {
		t.Errorf("locations block = %q", payload.Blocks[3].Text.Text)
	}
	if payload.Blocks[4].Type != "context" || !strings.Contains(payload.Blocks[4].Elements[0].Text, "run-1") {
		t.Errorf("context block = %+v", payload.Blocks[4])
	}
	if payload.Blocks[5].Type != "divider" {
		t.Errorf("last block type = %q, want divider", payload.Blocks[5].Type)
	}
}

func TestSlackNotifier_NoLocations(t *testing.T) {
	s := sampleSummary()
	s.Locations = nil
	payload := buildPayload(s)
	if len(payload.Blocks) != 5 {
		t.Errorf("expected 5 blocks without locations, got %d", len(payload.Blocks))
	}
}

func TestSlackNotifier_SlackReturnsError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), zap.NewNop())
	err := n.Notify(context.Background(), sampleSummary())
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry the status, got %v", err)
	}
	if c := calls.Load(); c != 1 {
		t.Errorf("expected exactly 1 call (no retry), got %d", c)
	}
}

func TestSendTestMessage(t *testing.T) {
	var got model.BatchSummary
	rec := notifierFunc(func(_ context.Context, s model.BatchSummary) error {
		got = s
		return nil
	})
	if err := SendTestMessage(context.Background(), rec); err != nil {
		t.Fatalf("SendTestMessage: %v", err)
	}
	if got.Source != "test" || got.IngestTS == "" {
		t.Errorf("test summary = %+v", got)
	}
}

type notifierFunc func(context.Context, model.BatchSummary) error

func (f notifierFunc) Notify(ctx context.Context, s model.BatchSummary) error { return f(ctx, s) }
