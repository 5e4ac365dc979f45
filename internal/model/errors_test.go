package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestConfigError_MessageAndStack(t *testing.T) {
	err := NewConfigError("ADZUNA_APP_KEY")
	if !strings.Contains(err.Error(), "ADZUNA_APP_KEY") {
		t.Errorf("Error() = %q, want missing variable name", err.Error())
	}
	if len(err.StackTrace()) == 0 {
		t.Error("expected captured stack trace")
	}
}

func TestUpstreamError_UnwrapsThroughFmt(t *testing.T) {
	wrapped := fmt.Errorf("running usajobs: %w", NewUpstreamError("usajobs", 401, "bad key"))

	var up *UpstreamError
	if !errors.As(wrapped, &up) {
		t.Fatalf("errors.As failed for %v", wrapped)
	}
	if up.Status != 401 || up.Body != "bad key" {
		t.Errorf("got status=%d body=%q", up.Status, up.Body)
	}
	if !strings.Contains(wrapped.Error(), "401") || !strings.Contains(wrapped.Error(), "bad key") {
		t.Errorf("message %q should carry status and body", wrapped.Error())
	}
}

func TestSignalLevel_Rank(t *testing.T) {
	levels := []SignalLevel{SignalNone, SignalLow, SignalMedium, SignalHigh}
	for i := 1; i < len(levels); i++ {
		if levels[i].Rank() <= levels[i-1].Rank() {
			t.Errorf("%s should rank above %s", levels[i], levels[i-1])
		}
	}
}
