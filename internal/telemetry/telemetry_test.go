package telemetry

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestInitTracer_NoCollector(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "test", "", zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	shutdown()

	_, span := Tracer("test").Start(context.Background(), "noop")
	defer span.End()
	if span.SpanContext().IsSampled() {
		t.Error("spans should not be sampled without a collector")
	}
}

func TestAttributes(t *testing.T) {
	if kv := String("source", "adzuna"); string(kv.Key) != "source" || kv.Value.AsString() != "adzuna" {
		t.Errorf("String = %v", kv)
	}
	if kv := Int("fetched", 3); kv.Value.AsInt64() != 3 {
		t.Errorf("Int = %v", kv)
	}
}
