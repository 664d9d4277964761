package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Request is the payload sent to the moderation pipeline. ContentID and
// Workflow let the pipeline apply thresholds specific to the content type;
// the profile workflow tag must be preserved when this client is reused
// for other content types.
type Request struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
	ContentID string `json:"contentId"`
	Workflow  string `json:"workflow"`
}

// TierStep is one entry in the audit trail of pipeline stages that fired.
type TierStep struct {
	Tier   string `json:"tier"`
	Action string `json:"action"`
}

// Tier1Result carries exact/pattern policy match information.
type Tier1Result struct {
	Matches []string `json:"matches"`
}

// Tier2Result carries link and content risk heuristics.
type Tier2Result struct {
	Issues []string `json:"issues"`
}

// Verdict is the pipeline's per-request result.
type Verdict struct {
	Allowed     bool         `json:"allowed"`
	Action      string       `json:"action"`
	NeedsReview bool         `json:"needsReview"`
	TierFlow    []TierStep   `json:"tierFlow"`
	Tier1       *Tier1Result `json:"tier1Result,omitempty"`
	Tier2       *Tier2Result `json:"tier2Result,omitempty"`
}

// Pipeline invokes the multi-tier content-moderation service.
type Pipeline interface {
	Moderate(ctx context.Context, req Request) (*Verdict, error)
}

// HTTPPipeline calls a moderation endpoint over JSON/HTTP.
type HTTPPipeline struct {
	endpoint string
	client   *http.Client
}

// NewHTTPPipeline builds a pipeline client with a per-call timeout.
func NewHTTPPipeline(endpoint string, timeout time.Duration) *HTTPPipeline {
	return &HTTPPipeline{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Moderate posts the request and decodes the verdict.
func (p *HTTPPipeline) Moderate(ctx context.Context, req Request) (*Verdict, error) {
	if p.endpoint == "" {
		return nil, errors.New("moderation endpoint not configured")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("moderation pipeline returned %d: %s", resp.StatusCode, body)
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, err
	}
	return &verdict, nil
}
