package adapter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amishk599/jobsignal/internal/model"
)

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// testClient sends every request to srv regardless of the requested host.
func testClient(srv *httptest.Server) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
}

// mustItems walks the object keys in path and returns the array found there.
func mustItems(t *testing.T, payload string, path ...string) []model.RawItem {
	t.Helper()
	cur := json.RawMessage(payload)
	for _, key := range path {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil {
			t.Fatalf("decoding %q: %v", key, err)
		}
		cur = obj[key]
	}
	var items []json.RawMessage
	if err := json.Unmarshal(cur, &items); err != nil {
		t.Fatalf("decoding items: %v", err)
	}
	out := make([]model.RawItem, len(items))
	for i, it := range items {
		out[i] = model.RawItem(it)
	}
	return out
}
