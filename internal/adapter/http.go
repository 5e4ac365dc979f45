package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/amishk599/jobsignal/internal/model"
)

// maxErrorBody caps how much of a failed response is kept in UpstreamError.
const maxErrorBody = 64 << 10

// getJSON issues an authenticated GET and decodes a JSON body into out.
// Non-2xx responses become *model.UpstreamError carrying the body text.
func getJSON(ctx context.Context, client *http.Client, provider, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s fetch: %w", provider, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s fetch: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return model.NewUpstreamError(provider, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s fetch: decoding response: %w", provider, err)
	}
	return nil
}
