// internal/workers/data-access/search-documents/query.go
package searchdocuments

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ErrMissingUser = errors.New("userId is required")

// buildSearchRequest builds a bool query: full-text match over the OCR text
// and extracted names, hard-filtered to the requesting user plus any
// documentType/status/taxYear filters.
func buildSearchRequest(index string, input *Input) (*esapi.SearchRequest, error) {
	if input.UserID == "" {
		return nil, ErrMissingUser
	}

	mustClauses := []interface{}{}
	filterClauses := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"userId": input.UserID},
		},
	}

	if input.Query != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  input.Query,
				"fields": []string{"names^3", "fileName^2", "extractedText"},
				"type":   "best_fields",
			},
		})
	}

	if docType, ok := input.Filters["documentType"].(string); ok && docType != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"documentType": docType},
		})
	}
	if status, ok := input.Filters["status"].(string); ok && status != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"status": status},
		})
	}
	if taxYear, ok := input.Filters["taxYear"].(float64); ok && taxYear > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"taxYear": int(taxYear)},
		})
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   mustClauses,
				"filter": filterClauses,
			},
		},
	}

	from := input.Pagination.From
	size := input.Pagination.Size
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  strings.NewReader(string(body)),
		From:  &from,
		Size:  &size,
	}
	return &req, nil
}
