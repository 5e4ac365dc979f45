package adapter

import (
	"encoding/json"
	"fmt"

	"github.com/amishk599/jobsignal/internal/model"
)

// DecodeResponse extracts raw items from a saved search response body, so a
// captured provider page can be enriched again without network access.
func DecodeResponse(source string, body []byte) ([]model.RawItem, error) {
	switch source {
	case usajobsSource:
		var resp usajobsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%s replay: decoding response: %w", source, err)
		}
		return rawItems(resp.SearchResult.SearchResultItems), nil
	case adzunaSource:
		var resp adzunaResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%s replay: decoding response: %w", source, err)
		}
		return rawItems(resp.Results), nil
	}
	return nil, fmt.Errorf("unknown provider %q", source)
}

func rawItems(in []json.RawMessage) []model.RawItem {
	items := make([]model.RawItem, 0, len(in))
	for _, it := range in {
		items = append(items, model.RawItem(it))
	}
	return items
}
