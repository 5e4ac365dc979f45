package writer

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

// GCSStore writes objects into one Cloud Storage bucket. The client is
// owned by the caller.
type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

func (g *GCSStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("uploading gs://%s/%s: %w", g.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("uploading gs://%s/%s: %w", g.bucket, key, err)
	}
	return nil
}

// Locate returns the gs:// address of key.
func (g *GCSStore) Locate(key string) string {
	return fmt.Sprintf("gs://%s/%s", g.bucket, key)
}
