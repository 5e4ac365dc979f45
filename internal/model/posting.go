package model

import "encoding/json"

// RawItem is a single provider-native job record, kept opaque until an
// adapter maps it.
type RawItem = json.RawMessage

// SignalLevel is an ordinal bucket summarizing a keyword score.
type SignalLevel string

const (
	SignalNone   SignalLevel = "none"
	SignalLow    SignalLevel = "low"
	SignalMedium SignalLevel = "medium"
	SignalHigh   SignalLevel = "high"
)

// Rank orders levels so callers can compare them (none < low < medium < high).
func (l SignalLevel) Rank() int {
	switch l {
	case SignalLow:
		return 1
	case SignalMedium:
		return 2
	case SignalHigh:
		return 3
	default:
		return 0
	}
}

// NormalizedPosting is the provider-agnostic shape of a job posting.
// Nil pointers encode as JSON null.
type NormalizedPosting struct {
	Source      string  `json:"source"`
	SourceJobID *string `json:"source_job_id"`
	SourceURL   *string `json:"source_url"`
	Title       *string `json:"title"`
	Company     *string `json:"company"`
	LocationRaw *string `json:"location_raw"`
	Country     string  `json:"country"`
	DatePosted  *string `json:"date_posted"`
	DateExpires *string `json:"date_expires"`
}

// KeywordSignalReport holds the result of scanning one description against
// both lexicons. Count, score and len(found) are always equal per lexicon.
type KeywordSignalReport struct {
	AIKeywordCount          int         `json:"ai_keyword_count"`
	OffshoringKeywordCount  int         `json:"offshoring_keyword_count"`
	AIKeywordsFound         []string    `json:"ai_keywords_found"`
	OffshoringKeywordsFound []string    `json:"offshoring_keywords_found"`
	AIScore                 int         `json:"ai_score"`
	OffshoringScore         int         `json:"offshoring_score"`
	AISignalLevel           SignalLevel `json:"ai_signal_level"`
	OffshoringSignalLevel   SignalLevel `json:"offshoring_signal_level"`
}

// EnrichedPosting is a normalized posting plus identity, cleaned text and
// keyword signals. Field order matches the persisted batch format.
type EnrichedPosting struct {
	IngestTS string `json:"ingest_ts"`
	JobUID   string `json:"job_uid"`
	NormalizedPosting
	DescriptionClean string              `json:"description_clean"`
	KeywordSignals   KeywordSignalReport `json:"keyword_signals"`
}

// Flagged reports whether either signal reached at least the given level.
func (p EnrichedPosting) Flagged(min SignalLevel) bool {
	return p.KeywordSignals.AISignalLevel.Rank() >= min.Rank() ||
		p.KeywordSignals.OffshoringSignalLevel.Rank() >= min.Rank()
}

// IngestTSLayout formats a UTC run timestamp with millisecond precision and
// a trailing "Z".
const IngestTSLayout = "2006-01-02T15:04:05.000Z07:00"

// Batch is the artifact handed to batch writers: all enriched records one
// provider produced in one run.
type Batch struct {
	IngestTS string            `json:"ingest_ts"`
	Source   string            `json:"source"`
	Results  []EnrichedPosting `json:"results"`
}

// Query parameterizes a provider search request.
type Query struct {
	Keyword        string
	Location       string
	Country        string
	Page           int
	ResultsPerPage int
}

// BatchSummary describes what one provider contributed to a run.
type BatchSummary struct {
	RunID             string   `json:"run_id"`
	Source            string   `json:"source"`
	IngestTS          string   `json:"ingest_ts"`
	Fetched           int      `json:"fetched"`
	Enriched          int      `json:"enriched"`
	New               int      `json:"new"`
	AISignals         int      `json:"ai_signals"`
	OffshoringSignals int      `json:"offshoring_signals"`
	Locations         []string `json:"locations,omitempty"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }
