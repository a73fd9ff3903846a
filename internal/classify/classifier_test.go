package classify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	testLabels   = []string{"AI", "Data", "Research", "Web", "Other"}
	testPositive = []string{"AI", "Data", "Research"}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClassifier(t *testing.T, handler http.HandlerFunc) *ZeroShot {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewZeroShot(srv.URL, "test-key", testLabels, testPositive, "Other", srv.Client(), discardLogger())
}

func labelResponse(labels ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(inferenceResponse{Labels: labels})
	}
}

func TestClassify_ReturnsTopLabel(t *testing.T) {
	c := newTestClassifier(t, labelResponse("AI", "Data", "Other"))
	assert.Equal(t, "AI", c.Classify(context.Background(), "머신러닝 엔지니어 채용"))
}

func TestClassify_ShortInputShortCircuits(t *testing.T) {
	called := false
	c := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	assert.Equal(t, "Other", c.Classify(context.Background(), "x"))
	assert.False(t, called, "backend must not be invoked for short input")
}

func TestClassify_BackendFailureDegrades(t *testing.T) {
	c := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	assert.Equal(t, "Other", c.Classify(context.Background(), "백엔드 엔지니어"))
}

func TestClassify_GarbageResponseDegrades(t *testing.T) {
	c := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})
	assert.Equal(t, "Other", c.Classify(context.Background(), "데이터 분석가"))
}

func TestRelevant(t *testing.T) {
	c := newTestClassifier(t, labelResponse("Data"))
	assert.True(t, c.Relevant(context.Background(), "데이터 엔지니어 신입"))

	c = newTestClassifier(t, labelResponse("Web"))
	assert.False(t, c.Relevant(context.Background(), "프론트엔드 개발자"))
}

func TestClassify_SendsCandidateLabels(t *testing.T) {
	var got inferenceRequest
	c := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(inferenceResponse{Labels: []string{"AI"}})
	})
	c.Classify(context.Background(), "some job text")
	assert.Equal(t, testLabels, got.Parameters.CandidateLabels)
	assert.Equal(t, "some job text", got.Inputs)
}
