package store

import (
	"context"
	"time"
)

// NopStore never remembers anything, so every posting counts as new. Used
// by dry runs and when the ledger is disabled.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) HasSeen(context.Context, string) (bool, error)  { return false, nil }
func (s *NopStore) MarkSeen(context.Context, string, string) error { return nil }
func (s *NopStore) Cleanup(context.Context, time.Duration) error   { return nil }
func (s *NopStore) Close() error                                   { return nil }
