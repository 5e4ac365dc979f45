// Package writer persists enriched provider batches to object storage and
// optional analytical sinks.
package writer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/amishk599/jobsignal/internal/model"
)

const (
	batchContentType = "application/json"
	hourPrefixLen    = 13 // "2006-01-02T15"
)

// ObjectStore is a flat key/value blob store.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// PartitionPath returns the object key for a provider batch:
// enriched/<source>/ingest_ts=<YYYY-MM-DDTHH>/batch.json. Timestamps shorter
// than an hour prefix are used whole.
func PartitionPath(source, ingestTS string) string {
	hour := ingestTS
	if len(hour) > hourPrefixLen {
		hour = hour[:hourPrefixLen]
	}
	return fmt.Sprintf("enriched/%s/ingest_ts=%s/batch.json", source, hour)
}

// EncodeBatch renders a batch as two-space indented JSON without HTML
// escaping.
func EncodeBatch(batch model.Batch) ([]byte, error) {
	if batch.Results == nil {
		batch.Results = []model.EnrichedPosting{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(batch); err != nil {
		return nil, fmt.Errorf("encoding %s batch: %w", batch.Source, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteBatch encodes batch and stores it at its partition path, returning
// the key written. A second write for the same source and hour overwrites
// the first.
func WriteBatch(ctx context.Context, store ObjectStore, batch model.Batch) (string, error) {
	data, err := EncodeBatch(batch)
	if err != nil {
		return "", err
	}
	key := PartitionPath(batch.Source, batch.IngestTS)
	if err := store.Put(ctx, key, data, batchContentType); err != nil {
		return "", fmt.Errorf("writing %s: %w", key, err)
	}
	return key, nil
}
