package searchdocuments

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taxdoc-workers/internal/common/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, fn http.HandlerFunc) (*Handler, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(fn)
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	h := NewHandler(&Config{Timeout: 5 * time.Second, IndexName: "tax-documents"}, es, logger.NewNoOpLogger())
	return h, srv
}

func searchResponse() string {
	return `{
		"took": 4,
		"hits": {
			"total": {"value": 2},
			"max_score": 1.8,
			"hits": [
				{"_score": 1.8, "_source": {"documentId": "doc-1", "fileName": "w2.pdf", "documentType": "W-2"}},
				{"_score": 1.1, "_source": {"documentId": "doc-2", "fileName": "1099.pdf", "documentType": "1099-NEC"}}
			]
		}
	}`
}

func TestExecute_Search(t *testing.T) {
	var requestBody map[string]interface{}

	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &requestBody)
		w.Write([]byte(searchResponse()))
	})

	output, err := h.Execute(context.Background(), &Input{
		UserID: "user-1",
		Query:  "Jane Doe",
		Filters: map[string]interface{}{
			"documentType": "W-2",
			"taxYear":      float64(2025),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), output.TotalHits)
	assert.Equal(t, 1.8, output.MaxScore)
	assert.Equal(t, int64(4), output.Took)
	require.Len(t, output.Data, 2)
	assert.Equal(t, "doc-1", output.Data[0]["documentId"])
	assert.Equal(t, 1.8, output.Data[0]["score"])

	// The request carries the full-text clause and the user/type/year filters.
	boolQuery := requestBody["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	multiMatch := must[0].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "Jane Doe", multiMatch["query"])

	filters := boolQuery["filter"].([]interface{})
	assert.Len(t, filters, 3)
}

func TestExecute_NoQueryFallsBackToMatchAll(t *testing.T) {
	var requestBody map[string]interface{}

	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &requestBody)
		w.Write([]byte(searchResponse()))
	})

	_, err := h.Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)

	boolQuery := requestBody["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	_, hasMatchAll := must[0].(map[string]interface{})["match_all"]
	assert.True(t, hasMatchAll)
}

func TestExecute_MissingUser(t *testing.T) {
	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := h.Execute(context.Background(), &Input{Query: "Jane"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSearchQueryFailed)
}

func TestExecute_IndexNotFound(t *testing.T) {
	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"type":"index_not_found_exception"}}`))
	})

	_, err := h.Execute(context.Background(), &Input{UserID: "user-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestExecute_ServerError(t *testing.T) {
	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	})

	_, err := h.Execute(context.Background(), &Input{UserID: "user-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSearchQueryFailed)
}

func TestBuildSearchRequest_PaginationClamped(t *testing.T) {
	req, err := buildSearchRequest("tax-documents", &Input{
		UserID:     "user-1",
		Pagination: Pagination{From: 10, Size: 500},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, *req.From)
	assert.Equal(t, 100, *req.Size)

	req, err = buildSearchRequest("tax-documents", &Input{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, 20, *req.Size)
}
