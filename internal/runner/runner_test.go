package runner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/amishk599/jobsignal/internal/model"
)

// --- Mock implementations ---

type StubPipeline struct {
	name string
	err  error

	calls    atomic.Int32
	runID    string
	ingestTS string
}

func (p *StubPipeline) Name() string { return p.name }

func (p *StubPipeline) Run(_ context.Context, runID, ingestTS string) (model.BatchSummary, error) {
	p.calls.Add(1)
	p.runID = runID
	p.ingestTS = ingestTS
	if p.err != nil {
		return model.BatchSummary{}, p.err
	}
	return model.BatchSummary{RunID: runID, Source: p.name, IngestTS: ingestTS, Enriched: 5}, nil
}

// BlockingPipeline waits until all peers have started, proving concurrency.
type BlockingPipeline struct {
	name    string
	started *sync.WaitGroup
}

func (p *BlockingPipeline) Name() string { return p.name }

func (p *BlockingPipeline) Run(_ context.Context, runID, ingestTS string) (model.BatchSummary, error) {
	p.started.Done()
	p.started.Wait()
	return model.BatchSummary{RunID: runID, Source: p.name, IngestTS: ingestTS}, nil
}

var fixedNow = time.Date(2026, 2, 13, 10, 4, 5, 123_456_789, time.FixedZone("PST", -8*3600))

func newTestRunner(policy Policy, pipelines ...Pipeline) *Runner {
	r := New(pipelines, policy, zap.NewNop())
	r.now = func() time.Time { return fixedNow }
	r.newID = func() string { return "run-fixed" }
	return r
}

// --- Tests ---

func TestIngestTS(t *testing.T) {
	got := IngestTS(fixedNow)
	if got != "2026-02-13T18:04:05.123Z" {
		t.Errorf("IngestTS = %q, want UTC millisecond timestamp with Z", got)
	}
	if IngestTS(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) != "2026-01-01T00:00:00.000Z" {
		t.Error("zero milliseconds should still render three digits")
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyFail, false},
		{"fail", PolicyFail, false},
		{" Tolerate ", PolicyTolerate, false},
		{"ignore", "", true},
	}
	for _, tc := range tests {
		got, err := ParsePolicy(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRun_SharedStamp(t *testing.T) {
	a := &StubPipeline{name: "usajobs"}
	b := &StubPipeline{name: "adzuna"}
	r := newTestRunner(PolicyFail, a, b)

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RunID != "run-fixed" || report.IngestTS != "2026-02-13T18:04:05.123Z" {
		t.Errorf("report stamp = %s / %s", report.RunID, report.IngestTS)
	}
	for _, p := range []*StubPipeline{a, b} {
		if p.calls.Load() != 1 {
			t.Errorf("%s ran %d times", p.name, p.calls.Load())
		}
		if p.runID != report.RunID || p.ingestTS != report.IngestTS {
			t.Errorf("%s got %s/%s, want the shared stamp", p.name, p.runID, p.ingestTS)
		}
	}
	if len(report.Summaries) != 2 || report.Summaries[0].Source != "usajobs" || report.Summaries[1].Source != "adzuna" {
		t.Errorf("summaries should follow pipeline order: %+v", report.Summaries)
	}
}

func TestRun_PipelinesRunConcurrently(t *testing.T) {
	var started sync.WaitGroup
	started.Add(2)
	r := newTestRunner(PolicyFail,
		&BlockingPipeline{name: "a", started: &started},
		&BlockingPipeline{name: "b", started: &started},
	)

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background())
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pipelines did not run concurrently")
	}
}

func TestRun_PolicyFail_PartialFailure(t *testing.T) {
	ok := &StubPipeline{name: "usajobs"}
	bad := &StubPipeline{name: "adzuna", err: model.NewConfigError("ADZUNA_APP_ID")}
	r := newTestRunner(PolicyFail, ok, bad)

	report, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("fail policy should error when any provider fails")
	}

	var runErr *RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected *RunError, got %T", err)
	}
	if runErr.Total != 2 || len(runErr.Failed) != 1 || runErr.Failed[0] != "adzuna" {
		t.Errorf("RunError = %+v", runErr)
	}
	var cfgErr *model.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Name != "ADZUNA_APP_ID" {
		t.Errorf("typed cause should be reachable, got %v", err)
	}

	// The successful provider still ran and is reported.
	if ok.calls.Load() != 1 {
		t.Error("healthy provider should run regardless of the other's failure")
	}
	if len(report.Summaries) != 1 || report.Summaries[0].Source != "usajobs" {
		t.Errorf("summaries = %+v", report.Summaries)
	}
	if len(report.Failures) != 1 || report.Failures[0].Source != "adzuna" {
		t.Errorf("failures = %+v", report.Failures)
	}
}

func TestRun_PolicyTolerate_PartialFailure(t *testing.T) {
	r := newTestRunner(PolicyTolerate,
		&StubPipeline{name: "usajobs"},
		&StubPipeline{name: "adzuna", err: errors.New("upstream error: adzuna status 500")},
	)

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("tolerate policy should succeed with one healthy provider, got %v", err)
	}
	if len(report.Summaries) != 1 || len(report.Failures) != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestRun_PolicyTolerate_AllFail(t *testing.T) {
	r := newTestRunner(PolicyTolerate,
		&StubPipeline{name: "usajobs", err: errors.New("boom")},
		&StubPipeline{name: "adzuna", err: errors.New("bang")},
	)

	_, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("tolerate policy should error when every provider fails")
	}
	msg := err.Error()
	if !strings.Contains(msg, "2 of 2 providers failed") || !strings.Contains(msg, "boom") || !strings.Contains(msg, "bang") {
		t.Errorf("error = %q", msg)
	}
}

func TestRun_NoPipelines(t *testing.T) {
	report, err := newTestRunner(PolicyFail).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Summaries) != 0 || len(report.Failures) != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestNew_DefaultRunID(t *testing.T) {
	r := New(nil, PolicyFail, zap.NewNop())
	a, b := r.newID(), r.newID()
	if len(a) != 36 || a == b {
		t.Errorf("run ids should be distinct UUIDs, got %q and %q", a, b)
	}
}
