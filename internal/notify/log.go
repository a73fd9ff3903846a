package notify

import (
	"context"
	"log/slog"

	"jobradar/internal/model"
)

// Ensure Log implements model.Notifier.
var _ model.Notifier = (*Log)(nil)

// Log surfaces postings through the logger instead of delivering them.
// Simulation runs use it so the queue is visible without any outbound send.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a notifier that writes each posting to the logger.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

// Notify logs every posting with its key fields. It never fails.
func (n *Log) Notify(_ context.Context, postings []model.Posting) error {
	for _, p := range postings {
		n.logger.Info("posting",
			"id", p.ID,
			"company", p.Company,
			"title", p.Title,
			"category", p.CategoryLabel,
			"url", p.DetailURL,
			"apply_url", p.ApplyURL,
			"summary", p.Summary,
		)
	}
	return nil
}
