// internal/common/providers/genai.go
package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"taxdoc-workers/internal/common/config"
	commonerrors "taxdoc-workers/internal/common/errors"
	commonhttp "taxdoc-workers/internal/common/http"
	"taxdoc-workers/internal/common/retry"
)

const GenAIProviderName = "genai"

const extractionPrompt = `You are a tax document extraction engine. Extract every labeled field ` +
	`from the attached document and return a single JSON object. Use camelCase keys ` +
	`(employeeName, employerName, recipientName, wagesAmount, federalTaxWithheld, ein, ssn). ` +
	`Return only JSON, no prose.`

// GenAIClient calls a chat-completion endpoint as the fallback extractor.
type GenAIClient struct {
	cfg    config.GenAIConfig
	client *commonhttp.Client
	policy retry.Policy
}

func NewGenAIClient(cfg config.GenAIConfig, policy retry.Policy) *GenAIClient {
	return &GenAIClient{
		cfg:    cfg,
		client: commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
		policy: policy,
	}
}

type genAIRequest struct {
	Model       string         `json:"model"`
	Messages    []genAIMessage `json:"messages"`
	MaxTokens   int            `json:"max_tokens"`
	Temperature float64        `json:"temperature"`
}

type genAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type genAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractFields asks the model to pull labeled fields out of the document.
// The document travels inline as base64 so the fallback works without any
// text from the primary provider.
func (c *GenAIClient) ExtractFields(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	payload := genAIRequest{
		Model: c.cfg.Model,
		Messages: []genAIMessage{
			{Role: "system", Content: extractionPrompt},
			{Role: "user", Content: fmt.Sprintf("mimeType: %s\ndata: %s",
				req.MimeType, base64.StdEncoding.EncodeToString(req.Content))},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, commonerrors.NewExtractionFailedError(GenAIProviderName, err)
	}

	var result *ProcessResult
	err = c.policy.Do(ctx, "genai.extract", func(ctx context.Context) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, err := c.client.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
		}

		var parsed genAIResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if len(parsed.Choices) == 0 {
			return fmt.Errorf("empty completion")
		}

		fields, err := parseCompletionJSON(parsed.Choices[0].Message.Content)
		if err != nil {
			return err
		}

		out := &ProcessResult{}
		for key, value := range fields {
			text := fmt.Sprintf("%v", value)
			if text == "" {
				continue
			}
			out.Entities = append(out.Entities, Entity{
				Type:        key,
				MentionText: text,
				Confidence:  0.5, // model output carries no per-field confidence
			})
		}
		result = out
		return nil
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, commonerrors.NewExtractionTimeoutError(GenAIProviderName)
		}
		return nil, commonerrors.NewExtractionFailedError(GenAIProviderName, err)
	}

	return result, nil
}

// parseCompletionJSON tolerates markdown fences around the JSON object.
func parseCompletionJSON(content string) (map[string]interface{}, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, fmt.Errorf("completion is not valid JSON: %w", err)
	}
	return fields, nil
}
