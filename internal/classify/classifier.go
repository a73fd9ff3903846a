package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"jobradar/internal/model"
)

// Ensure ZeroShot implements model.Classifier.
var _ model.Classifier = (*ZeroShot)(nil)

// ZeroShot labels text against a fixed closed label set via a hosted
// zero-shot classification endpoint. The gateway never fails: too-short
// inputs and backend errors both resolve to the default label.
type ZeroShot struct {
	endpoint     string
	apiKey       string
	labels       []string
	positive     map[string]bool
	defaultLabel string
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewZeroShot builds the gateway. positive is the relevance subset of
// labels; defaultLabel is returned whenever classification cannot run.
func NewZeroShot(endpoint, apiKey string, labels, positive []string, defaultLabel string, httpClient *http.Client, logger *slog.Logger) *ZeroShot {
	positiveSet := make(map[string]bool, len(positive))
	for _, l := range positive {
		positiveSet[l] = true
	}
	return &ZeroShot{
		endpoint:     endpoint,
		apiKey:       apiKey,
		labels:       labels,
		positive:     positiveSet,
		defaultLabel: defaultLabel,
		httpClient:   httpClient,
		logger:       logger,
	}
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	CandidateLabels    []string `json:"candidate_labels"`
	HypothesisTemplate string   `json:"hypothesis_template"`
}

type inferenceResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Classify returns the best-scoring label for text. Inputs shorter than
// two characters short-circuit to the default label without a call; any
// backend failure also degrades to the default label.
func (c *ZeroShot) Classify(ctx context.Context, text string) string {
	if len([]rune(text)) < 2 {
		return c.defaultLabel
	}

	label, err := c.classify(ctx, text)
	if err != nil {
		c.logger.Warn("classification degraded to default label", "error", err)
		return c.defaultLabel
	}
	return label
}

// Relevant reports whether text classifies into the positive label subset.
func (c *ZeroShot) Relevant(ctx context.Context, text string) bool {
	return c.positive[c.Classify(ctx, text)]
}

func (c *ZeroShot) classify(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(inferenceRequest{
		Inputs: text,
		Parameters: inferenceParameters{
			CandidateLabels:    c.labels,
			HypothesisTemplate: "This job is about {}.",
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("classify request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read classify response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &model.HTTPError{StatusCode: resp.StatusCode}
	}

	var infResp inferenceResponse
	if err := json.Unmarshal(respBytes, &infResp); err != nil {
		return "", fmt.Errorf("parse classify response: %w", err)
	}
	if len(infResp.Labels) == 0 {
		return "", fmt.Errorf("classifier returned no labels")
	}
	return infResp.Labels[0], nil
}
