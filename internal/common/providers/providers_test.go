package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"taxdoc-workers/internal/common/config"
	"taxdoc-workers/internal/common/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestDocumentAIClient_ProcessDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/projects/proj/locations/us/processors/proc:process", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		raw := body["rawDocument"].(map[string]interface{})
		assert.Equal(t, "application/pdf", raw["mimeType"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"document": map[string]interface{}{
				"text": "Form W-2 Wage and Tax Statement",
				"entities": []map[string]interface{}{
					{"type": "employee_name", "mentionText": "Jane Doe", "confidence": 0.97},
					{"type": "wages", "mentionText": "52000.00", "confidence": 0.94},
				},
			},
		})
	}))
	defer server.Close()

	client := NewDocumentAIClient(config.DocumentAIConfig{
		Endpoint:    server.URL,
		ProjectID:   "proj",
		Location:    "us",
		ProcessorID: "proc",
		AccessToken: "token",
		Timeout:     5000,
	}, fastPolicy())

	result, err := client.ProcessDocument(context.Background(), ProcessRequest{
		Content:  []byte("%PDF-fake"),
		MimeType: "application/pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, "Form W-2 Wage and Tax Statement", result.Text)
	require.Len(t, result.Entities, 2)
	assert.Equal(t, "employee_name", result.Entities[0].Type)
	assert.Equal(t, "Jane Doe", result.Entities[0].MentionText)
	assert.InDelta(t, 0.97, result.Entities[0].Confidence, 0.001)
}

func TestDocumentAIClient_RetriesTransientFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"document": map[string]interface{}{"text": "ok"},
		})
	}))
	defer server.Close()

	client := NewDocumentAIClient(config.DocumentAIConfig{
		Endpoint: server.URL, ProjectID: "p", Location: "us", ProcessorID: "x", Timeout: 5000,
	}, fastPolicy())

	result, err := client.ProcessDocument(context.Background(), ProcessRequest{Content: []byte("x"), MimeType: "image/png"})

	require.NoError(t, err)
	assert.Equal(t, "ok", result.Text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDocumentAIClient_ExhaustedAttempts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewDocumentAIClient(config.DocumentAIConfig{
		Endpoint: server.URL, ProjectID: "p", Location: "us", ProcessorID: "x", Timeout: 5000,
	}, fastPolicy())

	_, err := client.ProcessDocument(context.Background(), ProcessRequest{Content: []byte("x"), MimeType: "image/png"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXTRACTION_FAILED")
}

func TestGenAIClient_ExtractFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "extract-v1", body["model"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{
					"content": "```json\n{\"employeeName\": \"John Smith\", \"wagesAmount\": \"41000\"}\n```",
				}},
			},
		})
	}))
	defer server.Close()

	client := NewGenAIClient(config.GenAIConfig{
		BaseURL:   server.URL,
		APIKey:    "key",
		Model:     "extract-v1",
		MaxTokens: 500,
		Timeout:   5000,
	}, fastPolicy())

	result, err := client.ExtractFields(context.Background(), ProcessRequest{Content: []byte("x"), MimeType: "image/png"})

	require.NoError(t, err)
	require.Len(t, result.Entities, 2)

	byType := map[string]Entity{}
	for _, e := range result.Entities {
		byType[e.Type] = e
	}
	assert.Equal(t, "John Smith", byType["employeeName"].MentionText)
	assert.Equal(t, "41000", byType["wagesAmount"].MentionText)
	assert.InDelta(t, 0.5, byType["employeeName"].Confidence, 0.001)
}

func TestGenAIClient_BadCompletionJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"content": "sorry, I cannot do that"}},
			},
		})
	}))
	defer server.Close()

	client := NewGenAIClient(config.GenAIConfig{
		BaseURL: server.URL, APIKey: "key", Model: "m", Timeout: 5000,
	}, fastPolicy())

	_, err := client.ExtractFields(context.Background(), ProcessRequest{Content: []byte("x"), MimeType: "image/png"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXTRACTION_FAILED")
}

func TestParseCompletionJSON_PlainObject(t *testing.T) {
	fields, err := parseCompletionJSON(`{"a": 1}`)
	require.NoError(t, err)
	assert.Equal(t, float64(1), fields["a"])
}
