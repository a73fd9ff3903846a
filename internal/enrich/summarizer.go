package enrich

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"jobradar/internal/model"
	"jobradar/internal/retry"
)

// FailureSummary is the sentinel returned when summarization cannot be
// completed. It is delivered as-is so degraded postings stay visible
// instead of being silently dropped.
const FailureSummary = "요약 생성 중 오류가 발생했습니다."

// MissingKeySummary is returned when no API credential is configured.
const MissingKeySummary = "⚠️ API 키 설정 오류"

// maxInputRunes bounds the text sent upstream (payload limit).
const maxInputRunes = 15000

// answerAnchor marks the start of the structured summary in the model
// output. Anything before it is preamble chatter and gets stripped.
const answerAnchor = "🎯"

// maxAttempts bounds the retry loop for one summarize call.
const maxAttempts = 3

// Ensure Gemini implements model.Summarizer.
var _ model.Summarizer = (*Gemini)(nil)

// Gemini produces posting summaries through a generateContent-style API.
// Summarize never fails: every error path degrades to a sentinel string.
type Gemini struct {
	baseURL      string
	apiKey       string
	model        string
	cooldown     time.Duration // post-call delay and 429 cooldown (RPM ceiling)
	overloadBase time.Duration // attempt-scaled backoff for overloaded upstream
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewGemini builds the gateway. cooldown is the mandatory delay after each
// successful call; it also serves as the 429 cooldown.
func NewGemini(baseURL, apiKey, modelName string, cooldown time.Duration, httpClient *http.Client, logger *slog.Logger) *Gemini {
	return &Gemini{
		baseURL:      baseURL,
		apiKey:       apiKey,
		model:        modelName,
		cooldown:     cooldown,
		overloadBase: 5 * time.Second,
		httpClient:   httpClient,
		logger:       logger,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Summarize generates a structured summary for one posting. Rate-limit
// responses wait the cooldown and retry; overload responses back off
// scaled by attempt; anything else aborts immediately. Exhausted retries
// and hard errors return FailureSummary rather than an error.
func (g *Gemini) Summarize(ctx context.Context, req model.SummarizeRequest) string {
	if g.apiKey == "" {
		g.logger.Warn("summarizer has no API key, degrading")
		return MissingKeySummary
	}

	parts := []part{{Text: buildPrompt(req)}}
	if req.ImageURL != "" {
		if img := g.fetchImage(ctx, req.ImageURL); img != nil {
			parts = append(parts, part{InlineData: img})
		}
	}

	var summary string
	err := retry.Do(ctx, retry.Policy{
		MaxAttempts: maxAttempts,
		Retryable:   retryableUpstream,
		Delay:       g.backoff,
	}, g.logger, "summarize", func() error {
		text, err := g.generate(ctx, parts)
		if err != nil {
			return err
		}
		summary = text
		return nil
	})
	if err != nil {
		g.logger.Error("summarization degraded to sentinel",
			"company", req.Company,
			"title", req.Title,
			"error", err,
		)
		return FailureSummary
	}

	// Part of the contract: space out calls to stay under the backend's
	// requests-per-minute ceiling.
	g.wait(ctx, g.cooldown)

	return stripPreamble(summary)
}

// retryableUpstream retries only rate limits and transient overload.
func retryableUpstream(err error) bool {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests ||
			httpErr.StatusCode == http.StatusServiceUnavailable
	}
	return false
}

func (g *Gemini) backoff(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests {
		return g.cooldown
	}
	return g.overloadBase * time.Duration(attempt)
}

func (g *Gemini) generate(ctx context.Context, parts []part) (string, error) {
	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: parts}}})
	if err != nil {
		return "", fmt.Errorf("marshal summarize request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create summarize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("summarize request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read summarize response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &model.HTTPError{StatusCode: resp.StatusCode}
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBytes, &genResp); err != nil {
		return "", fmt.Errorf("parse summarize response: %w", err)
	}
	if genResp.Error != nil {
		return "", fmt.Errorf("summarize backend error %d: %s", genResp.Error.Code, genResp.Error.Message)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("summarize backend returned no candidates")
	}
	return strings.TrimSpace(genResp.Candidates[0].Content.Parts[0].Text), nil
}

// fetchImage downloads and base64-encodes the posting image. Any failure
// degrades to text-only submission.
func (g *Gemini) fetchImage(ctx context.Context, imageURL string) *inlineData {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Info("image fetch failed, summarizing text only", "url", imageURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Info("image fetch failed, summarizing text only", "url", imageURL, "status", resp.StatusCode)
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil || len(data) == 0 {
		return nil
	}

	mime := "image/jpeg"
	if strings.Contains(imageURL, "png") {
		mime = "image/png"
	}
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "image/") {
		mime = ct
	}

	return &inlineData{
		MimeType: mime,
		Data:     base64.StdEncoding.EncodeToString(data),
	}
}

func (g *Gemini) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// buildPrompt renders the recruiter prompt with the text capped to the
// upstream payload limit.
func buildPrompt(req model.SummarizeRequest) string {
	text := req.Text
	if runes := []rune(text); len(runes) > maxInputRunes {
		text = string(runes[:maxInputRunes])
	}

	return fmt.Sprintf(`You are an expert IT Tech Recruiter.
Analyze the provided job posting content (and image if available) to extract key information.
Respond strictly in Korean.

**Company**: %s
**Job Title**: %s

**Output Format:**
🎯 **핵심 요약**: (One sentence summary)
🔑 **주요 업무**: (Bullet points)
✅ **자격 요건**: (Bullet points, hard skills focus)
🛠 **기술 스택**: (Tools, Languages, Frameworks. If none, write '정보 없음')

---
[Text Content]
%s
`, req.Company, req.Title, text)
}

// stripPreamble discards anything before the structured-answer anchor,
// dropping model chatter like "Sure, here is the requested summary".
func stripPreamble(s string) string {
	if idx := strings.Index(s, answerAnchor); idx > 0 {
		return s[idx:]
	}
	return s
}
