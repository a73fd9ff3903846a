package enrich

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"jobradar/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestGemini builds a gateway against a local server with zero cooldown
// so tests do not sleep.
func newTestGemini(t *testing.T, handler http.HandlerFunc) *Gemini {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	g := NewGemini(srv.URL, "test-key", "test-model", 0, srv.Client(), discardLogger())
	g.overloadBase = 0
	return g
}

func textResponse(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func request() model.SummarizeRequest {
	return model.SummarizeRequest{Text: "채용 공고 본문", Company: "Acme", Title: "ML Engineer"}
}

func TestSummarize_Success(t *testing.T) {
	g := newTestGemini(t, textResponse("🎯 **핵심 요약**: 한 줄 요약"))
	got := g.Summarize(context.Background(), request())
	assert.Equal(t, "🎯 **핵심 요약**: 한 줄 요약", got)
}

func TestSummarize_StripsPreamble(t *testing.T) {
	g := newTestGemini(t, textResponse("Sure! Here is the summary:\n🎯 **핵심 요약**: 요약"))
	got := g.Summarize(context.Background(), request())
	assert.Equal(t, "🎯 **핵심 요약**: 요약", got)
}

func TestSummarize_NoAnchorReturnsRaw(t *testing.T) {
	g := newTestGemini(t, textResponse("plain answer without anchor"))
	got := g.Summarize(context.Background(), request())
	assert.Equal(t, "plain answer without anchor", got)
}

func TestSummarize_PermanentRateLimitDegrades(t *testing.T) {
	calls := 0
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	got := g.Summarize(context.Background(), request())

	assert.Equal(t, FailureSummary, got, "exhausted retries must return the sentinel")
	assert.Equal(t, maxAttempts, calls)
}

func TestSummarize_OverloadRetriesThenSucceeds(t *testing.T) {
	calls := 0
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		textResponse("🎯 recovered")(w, r)
	})

	got := g.Summarize(context.Background(), request())
	assert.Equal(t, "🎯 recovered", got)
	assert.Equal(t, 3, calls)
}

func TestSummarize_HardErrorAbortsImmediately(t *testing.T) {
	calls := 0
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})

	got := g.Summarize(context.Background(), request())
	assert.Equal(t, FailureSummary, got)
	assert.Equal(t, 1, calls, "4xx other than 429 must not be retried")
}

func TestSummarize_MissingKeyDegradesWithoutCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(srv.Close)

	g := NewGemini(srv.URL, "", "test-model", 0, srv.Client(), discardLogger())
	got := g.Summarize(context.Background(), request())

	assert.Equal(t, MissingKeySummary, got)
	assert.False(t, called)
}

func TestSummarize_TruncatesLongInput(t *testing.T) {
	var gotBody generateRequest
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		textResponse("ok")(w, r)
	})

	req := request()
	req.Text = strings.Repeat("가", maxInputRunes+500)
	g.Summarize(context.Background(), req)

	prompt := gotBody.Contents[0].Parts[0].Text
	sent := strings.Count(prompt, "가")
	assert.Equal(t, maxInputRunes, sent, "text must be capped at the payload limit")
}

func TestSummarize_ImageFetchFailureDegradesToTextOnly(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "broken.jpg") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body generateRequest
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Contents[0].Parts) != 1 {
			t.Errorf("got %d parts, want text-only submission", len(body.Contents[0].Parts))
		}
		textResponse("ok")(w, r)
	})

	req := request()
	req.ImageURL = g.baseURL + "/broken.jpg"
	got := g.Summarize(context.Background(), req)
	assert.Equal(t, "ok", got)
}

func TestSummarize_AttachesImage(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "logo.png") {
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte{0x89, 'P', 'N', 'G'})
			return
		}
		var body generateRequest
		json.NewDecoder(r.Body).Decode(&body)
		parts := body.Contents[0].Parts
		if len(parts) != 2 || parts[1].InlineData == nil {
			t.Errorf("image part missing: %+v", parts)
		} else if parts[1].InlineData.MimeType != "image/png" {
			t.Errorf("mime = %q", parts[1].InlineData.MimeType)
		}
		textResponse("ok")(w, r)
	})

	req := request()
	req.ImageURL = g.baseURL + "/logo.png"
	got := g.Summarize(context.Background(), req)
	assert.Equal(t, "ok", got)
}
