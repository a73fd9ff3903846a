package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"jobradar/internal/model"
	"jobradar/internal/retry"
)

// contentLimit is the per-message character budget, with safety margin
// under the platform's 2000-character hard limit.
const contentLimit = 1900

// maxSendAttempts bounds retries for one batch.
const maxSendAttempts = 3

// Ensure Discord implements model.Notifier.
var _ model.Notifier = (*Discord)(nil)

// Discord delivers postings to a webhook as plain-content messages. Blocks
// are packed greedily into batches under the character budget; a posting's
// block is never split across batches.
type Discord struct {
	webhookURL string
	httpClient *http.Client
	interDelay time.Duration // pause between batches (platform rate limit)
	retryBase  time.Duration // base of the attempt-scaled send backoff
	logger     *slog.Logger
}

// NewDiscord returns a webhook notifier. interDelay is the mandatory pause
// after each batch's send sequence.
func NewDiscord(webhookURL string, httpClient *http.Client, interDelay time.Duration, logger *slog.Logger) *Discord {
	return &Discord{
		webhookURL: webhookURL,
		httpClient: httpClient,
		interDelay: interDelay,
		retryBase:  2 * time.Second,
		logger:     logger,
	}
}

type webhookPayload struct {
	Content string `json:"content"`
}

// Notify renders and delivers all postings. A batch that fails with a
// non-retryable status is logged and abandoned; the run continues. An
// error is returned only when every batch failed.
func (d *Discord) Notify(ctx context.Context, postings []model.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	blocks := make([]string, 0, len(postings))
	for _, p := range postings {
		blocks = append(blocks, renderBlock(p))
	}
	batches := packBatches(blocks, contentLimit)

	failures := 0
	for i, batch := range batches {
		if err := d.sendBatch(ctx, batch); err != nil {
			d.logger.Error("webhook batch abandoned",
				"batch", i+1,
				"batches", len(batches),
				"error", err,
			)
			failures++
		}

		// Mandatory inter-batch delay, part of the delivery contract.
		if i < len(batches)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.interDelay):
			}
		}
	}

	if failures == len(batches) {
		return fmt.Errorf("all %d webhook batches failed", failures)
	}
	d.logger.Info("delivery complete",
		"postings", len(postings),
		"batches", len(batches),
		"failed_batches", failures,
	)
	return nil
}

func (d *Discord) sendBatch(ctx context.Context, content string) error {
	return retry.Do(ctx, retry.Policy{
		MaxAttempts: maxSendAttempts,
		Retryable:   retry.Transient,
		Delay:       retry.Scaled(d.retryBase),
	}, d.logger, "webhook send", func() error {
		return d.post(ctx, content)
	})
}

func (d *Discord) post(ctx context.Context, content string) error {
	body, err := json.Marshal(webhookPayload{Content: content})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &model.HTTPError{StatusCode: resp.StatusCode}
}

// renderBlock formats one posting. Links are wrapped in angle brackets so
// the receiving platform does not expand previews for every posting.
func renderBlock(p model.Posting) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**[%s] %s**\n", p.Company, p.Title)
	if p.CategoryLabel != "" {
		fmt.Fprintf(&b, "📂 %s\n", p.CategoryLabel)
	}
	if p.Summary != "" {
		fmt.Fprintf(&b, "%s\n", p.Summary)
	}
	fmt.Fprintf(&b, "📄 공고: <%s>", p.DetailURL)
	if p.ApplyURL != "" && p.ApplyURL != p.DetailURL {
		fmt.Fprintf(&b, "\n🚀 지원: <%s>", p.ApplyURL)
	}
	return b.String()
}

// blockSeparator joins blocks inside one batch.
const blockSeparator = "\n\n"

// packBatches groups rendered blocks greedily under limit. A new batch
// starts whenever adding the next block (plus separator) would exceed the
// budget; a block is never truncated, so a single oversized block gets a
// batch of its own.
func packBatches(blocks []string, limit int) []string {
	var batches []string
	var current strings.Builder
	currentRunes := 0
	sepRunes := len([]rune(blockSeparator))

	for _, block := range blocks {
		blockRunes := len([]rune(block))

		if currentRunes > 0 && currentRunes+sepRunes+blockRunes > limit {
			batches = append(batches, current.String())
			current.Reset()
			currentRunes = 0
		}

		if currentRunes > 0 {
			current.WriteString(blockSeparator)
			currentRunes += sepRunes
		}
		current.WriteString(block)
		currentRunes += blockRunes
	}

	if currentRunes > 0 {
		batches = append(batches, current.String())
	}
	return batches
}
