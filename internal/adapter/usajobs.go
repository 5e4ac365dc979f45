package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/amishk599/jobsignal/internal/model"
)

const (
	usajobsBaseURL = "https://data.usajobs.gov/api/search"
	usajobsSource  = "usajobs"
	usajobsCountry = "US"

	// Credential names as they appear in the environment.
	EnvUSAJobsEmail  = "USAJOBS_USER_AGENT_EMAIL"
	EnvUSAJobsAPIKey = "USAJOBS_API_KEY"
)

// usajobsResponse is the top-level USAJOBS search API response.
type usajobsResponse struct {
	SearchResult struct {
		SearchResultItems []json.RawMessage `json:"SearchResultItems"`
	} `json:"SearchResult"`
}

type usajobsItem struct {
	MatchedObjectID         *looseString       `json:"MatchedObjectId"`
	MatchedObjectDescriptor *usajobsDescriptor `json:"MatchedObjectDescriptor"`
}

type usajobsDescriptor struct {
	PositionURI             *string          `json:"PositionURI"`
	PositionTitle           *string          `json:"PositionTitle"`
	OrganizationName        *string          `json:"OrganizationName"`
	PositionLocationDisplay *string          `json:"PositionLocationDisplay"`
	PublicationStartDate    *string          `json:"PublicationStartDate"`
	ApplicationCloseDate    *string          `json:"ApplicationCloseDate"`
	UserArea                *usajobsUserArea `json:"UserArea"`
}

type usajobsUserArea struct {
	Details *usajobsDetails `json:"Details"`
}

type usajobsDetails struct {
	JobSummary      textField `json:"JobSummary"`
	MajorDuties     textField `json:"MajorDuties"`
	KeyRequirements textField `json:"KeyRequirements"`
	Qualifications  textField `json:"Qualifications"`
}

// USAJobsCredentials authenticate against the USAJOBS search API.
type USAJobsCredentials struct {
	Email  string
	APIKey string
}

// USAJobsAdapter fetches postings from the USAJOBS federal jobs registry.
// The registry is US-only, so every posting gets country "US".
type USAJobsAdapter struct {
	creds  USAJobsCredentials
	client *http.Client
}

// NewUSAJobsAdapter creates an adapter; credentials are checked on Fetch.
func NewUSAJobsAdapter(creds USAJobsCredentials, client *http.Client) *USAJobsAdapter {
	return &USAJobsAdapter{creds: creds, client: client}
}

func (a *USAJobsAdapter) Name() string { return usajobsSource }

// Fetch runs one search page. Missing credentials fail before any request.
func (a *USAJobsAdapter) Fetch(ctx context.Context, q model.Query) ([]model.RawItem, error) {
	if a.creds.Email == "" {
		return nil, model.NewConfigError(EnvUSAJobsEmail)
	}
	if a.creds.APIKey == "" {
		return nil, model.NewConfigError(EnvUSAJobsAPIKey)
	}

	params := url.Values{}
	params.Set("Keyword", q.Keyword)
	params.Set("LocationName", q.Location)
	params.Set("ResultsPerPage", strconv.Itoa(q.ResultsPerPage))
	params.Set("Page", strconv.Itoa(max(q.Page, 1)))

	header := http.Header{}
	header.Set("User-Agent", a.creds.Email)
	header.Set("Authorization-Key", a.creds.APIKey)

	var resp usajobsResponse
	if err := getJSON(ctx, a.client, usajobsSource, usajobsBaseURL+"?"+params.Encode(), header, &resp); err != nil {
		return nil, err
	}

	return rawItems(resp.SearchResult.SearchResultItems), nil
}

// decodeUSAJobs never fails: type mismatches leave the affected fields nil
// and unparseable items decode to the zero value.
func decodeUSAJobs(item model.RawItem) usajobsItem {
	var it usajobsItem
	_ = json.Unmarshal(item, &it)
	return it
}

// ExtractDescription joins summary, duties, requirements and qualifications
// with blank lines, skipping empty sections.
func (a *USAJobsAdapter) ExtractDescription(item model.RawItem) string {
	it := decodeUSAJobs(item)
	d := it.MatchedObjectDescriptor
	if d == nil || d.UserArea == nil || d.UserArea.Details == nil {
		return ""
	}
	det := d.UserArea.Details
	return joinSections(
		string(det.JobSummary),
		string(det.MajorDuties),
		string(det.KeyRequirements),
		string(det.Qualifications),
	)
}

// Normalize maps a USAJOBS item. Field resolution:
//
//	source_job_id  MatchedObjectId                          nil if absent
//	source_url     MatchedObjectDescriptor.PositionURI       nil if absent
//	title          MatchedObjectDescriptor.PositionTitle     nil if absent
//	company        MatchedObjectDescriptor.OrganizationName  nil if absent
//	location_raw   MatchedObjectDescriptor.PositionLocationDisplay  nil if absent
//	country        always "US"
//	date_posted    MatchedObjectDescriptor.PublicationStartDate     nil if absent
//	date_expires   MatchedObjectDescriptor.ApplicationCloseDate     nil if absent
func (a *USAJobsAdapter) Normalize(item model.RawItem) model.NormalizedPosting {
	it := decodeUSAJobs(item)
	p := model.NormalizedPosting{
		Source:      usajobsSource,
		SourceJobID: it.MatchedObjectID.ptr(),
		Country:     usajobsCountry,
	}
	if d := it.MatchedObjectDescriptor; d != nil {
		p.SourceURL = d.PositionURI
		p.Title = d.PositionTitle
		p.Company = d.OrganizationName
		p.LocationRaw = d.PositionLocationDisplay
		p.DatePosted = d.PublicationStartDate
		p.DateExpires = d.ApplicationCloseDate
	}
	return p
}
