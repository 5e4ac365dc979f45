package identity

import (
	"regexp"
	"testing"
)

var hex64 = regexp.MustCompile(`^[0-9a-f]{64}$`)

func ptr(s string) *string { return &s }

func TestJobUID_Deterministic(t *testing.T) {
	a := JobUID("adzuna", ptr("123"))
	b := JobUID("adzuna", ptr("123"))
	if a != b {
		t.Fatalf("JobUID not deterministic: %s vs %s", a, b)
	}
	if !hex64.MatchString(a) {
		t.Errorf("JobUID = %q, want 64 lower-case hex chars", a)
	}
}

func TestJobUID_KnownVectors(t *testing.T) {
	tests := []struct {
		source string
		id     *string
		want   string
	}{
		{"adzuna", ptr("123"), "550e40599af02a205ff71f4576b825a90168d1e23b0a57aa34e7fac1c3aa4266"},
		{"adzuna", ptr("124"), "d186b8cee4209c3b0dfd7a1111328366985fdf1c537b49388b837a1af0a21ac5"},
		{"usajobs", nil, "b851415325c156fb863e6d3a5740e2869dd09a0122222ee6febafe68242ba40f"},
	}
	for _, tc := range tests {
		if got := JobUID(tc.source, tc.id); got != tc.want {
			t.Errorf("JobUID(%q, %v) = %s, want %s", tc.source, tc.id, got, tc.want)
		}
	}
}

func TestJobUID_DistinctInputs(t *testing.T) {
	tests := []struct {
		name   string
		source string
		id     *string
	}{
		{"adzuna 123", "adzuna", ptr("123")},
		{"adzuna 124", "adzuna", ptr("124")},
		{"usajobs 123", "usajobs", ptr("123")},
		{"adzuna nil", "adzuna", nil},
		{"adzuna empty", "adzuna", ptr("")},
	}
	seen := make(map[string]string)
	for _, tc := range tests {
		uid := JobUID(tc.source, tc.id)
		if !hex64.MatchString(uid) {
			t.Errorf("%s: %q is not 64 lower-case hex", tc.name, uid)
		}
		if prev, ok := seen[uid]; ok {
			t.Errorf("%s collides with %s", tc.name, prev)
		}
		seen[uid] = tc.name
	}
}

func TestJobUID_NilRendersAsNullLiteral(t *testing.T) {
	if JobUID("usajobs", nil) != JobUID("usajobs", ptr("null")) {
		t.Error("nil id should hash the same as the literal \"null\"")
	}
}
