package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/amishk599/jobsignal/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier posts one batch summary per provider to a Slack Incoming
// Webhook.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *zap.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends the summary as a single Block Kit message. A rate-limited or
// failed post is reported, not retried.
func (s *SlackNotifier) Notify(ctx context.Context, summary model.BatchSummary) error {
	body, err := json.Marshal(buildPayload(summary))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	s.logger.Info("slack summary sent", zap.String("source", summary.Source), zap.String("run_id", summary.RunID))
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Fields   []slackText `json:"fields,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTestMessage sends a sample summary to verify the integration works.
func SendTestMessage(ctx context.Context, n model.Notifier) error {
	return n.Notify(ctx, model.BatchSummary{
		RunID:             "test-run",
		Source:            "test",
		IngestTS:          time.Now().UTC().Format(model.IngestTSLayout),
		Fetched:           3,
		Enriched:          3,
		New:               2,
		AISignals:         1,
		OffshoringSignals: 1,
		Locations:         []string{"enriched/test/ingest_ts=0000-00-00T00/batch.json"},
	})
}

func buildPayload(s model.BatchSummary) slackPayload {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: fmt.Sprintf("📥 %s: %d postings enriched", s.Source, s.Enriched)},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Fetched:*\n%d", s.Fetched)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*New:*\n%d", s.New)},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*AI signals:*\n%d", s.AISignals)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Offshoring signals:*\n%d", s.OffshoringSignals)},
			},
		},
	}

	if len(s.Locations) > 0 {
		lines := make([]string, len(s.Locations))
		for i, loc := range s.Locations {
			lines[i] = "• `" + loc + "`"
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "*Written to:*\n" + strings.Join(lines, "\n")},
		})
	}

	blocks = append(blocks,
		slackBlock{
			Type: "context",
			Elements: []slackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("run `%s` · ingest_ts %s", s.RunID, s.IngestTS)},
			},
		},
		slackBlock{Type: "divider"},
	)

	return slackPayload{Blocks: blocks}
}
