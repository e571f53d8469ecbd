// Package providers contains the REST clients for the two external
// entity-extraction services. Document AI is the primary OCR processor,
// GenAI the model-based fallback.
package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"taxdoc-workers/internal/common/config"
	commonerrors "taxdoc-workers/internal/common/errors"
	commonhttp "taxdoc-workers/internal/common/http"
	"taxdoc-workers/internal/common/retry"
)

const DocumentAIProviderName = "document-ai"

// Entity is a single extracted field mention.
type Entity struct {
	Type        string  `json:"type"`
	MentionText string  `json:"mentionText"`
	Confidence  float64 `json:"confidence"`
}

// ProcessRequest carries the raw document bytes to a processor.
type ProcessRequest struct {
	Content  []byte
	MimeType string
}

// ProcessResult is the normalized extraction output of a provider call.
type ProcessResult struct {
	Text     string
	Entities []Entity
}

// DocumentAIClient calls a Document AI style processor endpoint.
type DocumentAIClient struct {
	cfg    config.DocumentAIConfig
	client *commonhttp.Client
	policy retry.Policy
}

func NewDocumentAIClient(cfg config.DocumentAIConfig, policy retry.Policy) *DocumentAIClient {
	return &DocumentAIClient{
		cfg:    cfg,
		client: commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
		policy: policy,
	}
}

type documentAIRequest struct {
	RawDocument struct {
		Content  string `json:"content"`
		MimeType string `json:"mimeType"`
	} `json:"rawDocument"`
}

type documentAIResponse struct {
	Document struct {
		Text     string `json:"text"`
		Entities []struct {
			Type        string  `json:"type"`
			MentionText string  `json:"mentionText"`
			Confidence  float64 `json:"confidence"`
		} `json:"entities"`
	} `json:"document"`
}

func (c *DocumentAIClient) processURL() string {
	return fmt.Sprintf("%s/v1/projects/%s/locations/%s/processors/%s:process",
		c.cfg.Endpoint, c.cfg.ProjectID, c.cfg.Location, c.cfg.ProcessorID)
}

// ProcessDocument sends the document for OCR and entity extraction. Transient
// failures are retried per the injected policy.
func (c *DocumentAIClient) ProcessDocument(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	var payload documentAIRequest
	payload.RawDocument.Content = base64.StdEncoding.EncodeToString(req.Content)
	payload.RawDocument.MimeType = req.MimeType

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, commonerrors.NewExtractionFailedError(DocumentAIProviderName, err)
	}

	var result *ProcessResult
	err = c.policy.Do(ctx, "documentai.process", func(ctx context.Context) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.processURL(), bytes.NewReader(body))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if c.cfg.AccessToken != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
		}

		resp, err := c.client.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
		}

		var parsed documentAIResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}

		out := &ProcessResult{Text: parsed.Document.Text}
		for _, e := range parsed.Document.Entities {
			out.Entities = append(out.Entities, Entity{
				Type:        e.Type,
				MentionText: e.MentionText,
				Confidence:  e.Confidence,
			})
		}
		result = out
		return nil
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, commonerrors.NewExtractionTimeoutError(DocumentAIProviderName)
		}
		return nil, commonerrors.NewExtractionFailedError(DocumentAIProviderName, err)
	}

	return result, nil
}
