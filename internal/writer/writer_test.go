package writer

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobsignal/internal/model"
)

const testIngestTS = "2026-02-13T10:04:05.123Z"

func sampleBatch() model.Batch {
	return model.Batch{
		IngestTS: testIngestTS,
		Source:   "adzuna",
		Results: []model.EnrichedPosting{
			{
				IngestTS: testIngestTS,
				JobUID:   "550e40599af02a205ff71f4576b825a90168d1e23b0a57aa34e7fac1c3aa4266",
				NormalizedPosting: model.NormalizedPosting{
					Source:      "adzuna",
					SourceJobID: model.StringPtr("123"),
					SourceURL:   model.StringPtr("https://example.com/jobs?id=123&ref=a"),
					Title:       model.StringPtr("R&D <Engineer>"),
					Country:     "US",
				},
				DescriptionClean: "llm and rpa",
				KeywordSignals: model.KeywordSignalReport{
					AIKeywordCount:          2,
					AIKeywordsFound:         []string{"llm", "rpa"},
					OffshoringKeywordsFound: []string{},
					AIScore:                 2,
					AISignalLevel:           model.SignalMedium,
					OffshoringSignalLevel:   model.SignalNone,
				},
			},
		},
	}
}

func TestPartitionPath(t *testing.T) {
	tests := []struct {
		source, ts, want string
	}{
		{"usajobs", "2026-02-13T10:04:05.123Z", "enriched/usajobs/ingest_ts=2026-02-13T10/batch.json"},
		{"adzuna", "2026-12-31T23:59:59.999Z", "enriched/adzuna/ingest_ts=2026-12-31T23/batch.json"},
		{"adzuna", "2026-02-13", "enriched/adzuna/ingest_ts=2026-02-13/batch.json"},
	}
	for _, tc := range tests {
		if got := PartitionPath(tc.source, tc.ts); got != tc.want {
			t.Errorf("PartitionPath(%q, %q) = %q, want %q", tc.source, tc.ts, got, tc.want)
		}
	}
}

func TestEncodeBatch_Format(t *testing.T) {
	data, err := EncodeBatch(sampleBatch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(data)

	if !strings.HasPrefix(out, "{\n  \"ingest_ts\": ") {
		t.Errorf("expected two-space indent with ingest_ts first, got:\n%s", out[:40])
	}
	if strings.HasSuffix(out, "\n") {
		t.Error("output should not end with a newline")
	}
	if !strings.Contains(out, `"title": "R&D <Engineer>"`) {
		t.Error("HTML characters should not be escaped")
	}
	if !strings.Contains(out, `"location_raw": null`) {
		t.Error("nil fields should encode as null")
	}
	if !strings.Contains(out, `"offshoring_keywords_found": []`) {
		t.Error("empty found list should encode as []")
	}

	order := []string{`"ingest_ts"`, `"job_uid"`, `"source"`, `"source_job_id"`, `"title"`,
		`"country"`, `"date_expires"`, `"description_clean"`, `"keyword_signals"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(out[strings.Index(out, `"results"`):], key)
		if idx < last {
			t.Errorf("%s out of order", key)
		}
		last = idx
	}
}

func TestEncodeBatch_EmptyResults(t *testing.T) {
	data, err := EncodeBatch(model.Batch{IngestTS: testIngestTS, Source: "usajobs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"results": []`) {
		t.Errorf("nil results should encode as [], got %s", data)
	}
}

func TestWriteBatch_DirStore(t *testing.T) {
	dir := t.TempDir()
	store := NewDirStore(dir)
	batch := sampleBatch()

	key, err := WriteBatch(context.Background(), store, batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "enriched/adzuna/ingest_ts=2026-02-13T10/batch.json" {
		t.Errorf("key = %q", key)
	}

	data, err := os.ReadFile(filepath.Join(dir, "enriched", "adzuna", "ingest_ts=2026-02-13T10", "batch.json"))
	if err != nil {
		t.Fatalf("reading written batch: %v", err)
	}
	var got model.Batch
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decoding written batch: %v", err)
	}
	if got.Source != "adzuna" || len(got.Results) != 1 {
		t.Errorf("round trip = %+v", got)
	}
	if *got.Results[0].Title != "R&D <Engineer>" {
		t.Errorf("title = %q", *got.Results[0].Title)
	}
}

func TestWriteBatch_SameHourOverwrites(t *testing.T) {
	dir := t.TempDir()
	store := NewDirStore(dir)

	first := sampleBatch()
	if _, err := WriteBatch(context.Background(), store, first); err != nil {
		t.Fatalf("first write: %v", err)
	}
	second := sampleBatch()
	second.IngestTS = "2026-02-13T10:30:00.000Z"
	second.Results = nil
	key, err := WriteBatch(context.Background(), store, second)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, err := os.ReadFile(store.Locate(key))
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	if !strings.Contains(string(data), "10:30:00.000Z") {
		t.Error("second write in the same hour should replace the first")
	}
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, []byte, string) error {
	return errors.New("bucket gone")
}

func TestWriteBatch_StoreError(t *testing.T) {
	_, err := WriteBatch(context.Background(), failingStore{}, sampleBatch())
	if err == nil || !strings.Contains(err.Error(), "bucket gone") {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

type memStore struct {
	objects map[string][]byte
	types   map[string]string
}

func (m *memStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	if m.objects == nil {
		m.objects = map[string][]byte{}
		m.types = map[string]string{}
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func TestObjectSink(t *testing.T) {
	mem := &memStore{}
	sink := NewObjectSink("memory", mem)
	if sink.Name() != "memory" {
		t.Errorf("Name = %q", sink.Name())
	}

	loc, err := sink.WriteBatch(context.Background(), sampleBatch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc != "enriched/adzuna/ingest_ts=2026-02-13T10/batch.json" {
		t.Errorf("location = %q", loc)
	}
	if mem.types[loc] != "application/json" {
		t.Errorf("content type = %q", mem.types[loc])
	}
}

func TestObjectSink_LocatesDirStore(t *testing.T) {
	dir := t.TempDir()
	sink := NewObjectSink("local", NewDirStore(dir))

	loc, err := sink.WriteBatch(context.Background(), sampleBatch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(loc, dir) {
		t.Errorf("location %q should be under %q", loc, dir)
	}
	if _, err := os.Stat(loc); err != nil {
		t.Errorf("located file missing: %v", err)
	}
}

func TestGCSStoreLocate(t *testing.T) {
	g := NewGCSStore(nil, "ingest-bucket")
	if got := g.Locate("enriched/a/b.json"); got != "gs://ingest-bucket/enriched/a/b.json" {
		t.Errorf("Locate = %q", got)
	}
}

func TestParseIngestTS(t *testing.T) {
	ts, err := parseIngestTS(testIngestTS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 2, 13, 10, 4, 5, 123_000_000, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("ts = %v, want %v", ts, want)
	}
	if _, err := parseIngestTS("yesterday"); err == nil {
		t.Error("expected parse error")
	}
}

func TestSinkRows(t *testing.T) {
	rec := sampleBatch().Results[0]
	rec.KeywordSignals.OffshoringKeywordsFound = nil
	ts := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)

	for name, row := range map[string][]any{
		"clickhouse": clickhouseRow(rec, ts),
		"postgres":   postgresArgs(rec, ts),
	} {
		if len(row) != 18 {
			t.Errorf("%s: %d columns, want 18", name, len(row))
			continue
		}
		if row[0] != rec.JobUID {
			t.Errorf("%s: first column = %v", name, row[0])
		}
		if loc, ok := row[7].(*string); !ok || loc != nil {
			t.Errorf("%s: location_raw = %v, want nil *string", name, row[7])
		}
		if found, ok := row[13].([]string); !ok || found == nil {
			t.Errorf("%s: offshoring_keywords_found should be a non-nil slice", name)
		}
	}
}
