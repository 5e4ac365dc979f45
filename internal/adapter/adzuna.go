package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/amishk599/jobsignal/internal/model"
)

const (
	adzunaBaseURL        = "https://api.adzuna.com/v1/api/jobs"
	adzunaSource         = "adzuna"
	adzunaDefaultCountry = "us"

	EnvAdzunaAppID  = "ADZUNA_APP_ID"
	EnvAdzunaAppKey = "ADZUNA_APP_KEY"
)

type adzunaResponse struct {
	Results []json.RawMessage `json:"results"`
}

type adzunaItem struct {
	ID          *looseString   `json:"id"`
	RedirectURL *string        `json:"redirect_url"`
	Title       *string        `json:"title"`
	Company     *adzunaDisplay `json:"company"`
	Location    *adzunaDisplay `json:"location"`
	Country     *string        `json:"country"`
	Created     *string        `json:"created"`
	Description *string        `json:"description"`
}

type adzunaDisplay struct {
	DisplayName *string `json:"display_name"`
}

func (d *adzunaDisplay) name() *string {
	if d == nil {
		return nil
	}
	return d.DisplayName
}

// AdzunaCredentials authenticate against the Adzuna search API.
type AdzunaCredentials struct {
	AppID  string
	AppKey string
}

// AdzunaAdapter fetches postings from the Adzuna aggregator. The search
// country selects the regional index and is the fallback for items that do
// not carry their own country.
type AdzunaAdapter struct {
	creds   AdzunaCredentials
	country string
	client  *http.Client
}

func NewAdzunaAdapter(creds AdzunaCredentials, country string, client *http.Client) *AdzunaAdapter {
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		country = adzunaDefaultCountry
	}
	return &AdzunaAdapter{creds: creds, country: country, client: client}
}

func (a *AdzunaAdapter) Name() string { return adzunaSource }

// Fetch runs one search page. Query.Country, when set, overrides the
// adapter's search country for this call.
func (a *AdzunaAdapter) Fetch(ctx context.Context, q model.Query) ([]model.RawItem, error) {
	if a.creds.AppID == "" {
		return nil, model.NewConfigError(EnvAdzunaAppID)
	}
	if a.creds.AppKey == "" {
		return nil, model.NewConfigError(EnvAdzunaAppKey)
	}

	country := a.country
	if q.Country != "" {
		country = strings.ToLower(q.Country)
	}

	params := url.Values{}
	params.Set("app_id", a.creds.AppID)
	params.Set("app_key", a.creds.AppKey)
	params.Set("results_per_page", strconv.Itoa(q.ResultsPerPage))
	params.Set("what", q.Keyword)
	params.Set("where", q.Location)
	params.Set("content_type", "application/json")

	u := fmt.Sprintf("%s/%s/search/%d?%s", adzunaBaseURL, url.PathEscape(country), max(q.Page, 1), params.Encode())

	var resp adzunaResponse
	if err := getJSON(ctx, a.client, adzunaSource, u, nil, &resp); err != nil {
		return nil, err
	}

	return rawItems(resp.Results), nil
}

func decodeAdzuna(item model.RawItem) adzunaItem {
	var it adzunaItem
	_ = json.Unmarshal(item, &it)
	return it
}

func (a *AdzunaAdapter) ExtractDescription(item model.RawItem) string {
	return deref(decodeAdzuna(item).Description)
}

// Normalize maps an Adzuna item. Field resolution:
//
//	source_job_id  id (string or number)     nil if absent
//	source_url     redirect_url              nil if absent
//	title          title                     nil if absent
//	company        company.display_name      nil if absent
//	location_raw   location.display_name     nil if absent
//	country        country, else the search country; upper-cased
//	date_posted    created                   nil if absent
//	date_expires   always nil
func (a *AdzunaAdapter) Normalize(item model.RawItem) model.NormalizedPosting {
	it := decodeAdzuna(item)
	country := a.country
	if it.Country != nil && *it.Country != "" {
		country = *it.Country
	}
	return model.NormalizedPosting{
		Source:      adzunaSource,
		SourceJobID: it.ID.ptr(),
		SourceURL:   it.RedirectURL,
		Title:       it.Title,
		Company:     it.Company.name(),
		LocationRaw: it.Location.name(),
		Country:     strings.ToUpper(country),
		DatePosted:  it.Created,
	}
}
