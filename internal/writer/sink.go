package writer

import (
	"context"

	"github.com/amishk599/jobsignal/internal/model"
)

// locator is implemented by stores that can render a human-readable
// address for a key.
type locator interface {
	Locate(key string) string
}

// ObjectSink adapts an ObjectStore to model.BatchWriter.
type ObjectSink struct {
	name  string
	store ObjectStore
}

func NewObjectSink(name string, store ObjectStore) *ObjectSink {
	return &ObjectSink{name: name, store: store}
}

func (s *ObjectSink) Name() string { return s.name }

func (s *ObjectSink) WriteBatch(ctx context.Context, batch model.Batch) (string, error) {
	key, err := WriteBatch(ctx, s.store, batch)
	if err != nil {
		return "", err
	}
	if l, ok := s.store.(locator); ok {
		return l.Locate(key), nil
	}
	return key, nil
}
