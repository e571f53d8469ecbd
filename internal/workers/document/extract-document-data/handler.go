// internal/workers/document/extract-document-data/handler.go
package extractdocumentdata

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"taxdoc-workers/internal/common/errors"
	"taxdoc-workers/internal/common/logger"
	"taxdoc-workers/internal/common/metrics"
	"taxdoc-workers/internal/common/providers"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "extract-document-data"
)

// PrimaryExtractor is the Document AI style OCR processor.
type PrimaryExtractor interface {
	ProcessDocument(ctx context.Context, req providers.ProcessRequest) (*providers.ProcessResult, error)
}

// FallbackExtractor is the model-based extraction service used when the
// primary provider is exhausted.
type FallbackExtractor interface {
	ExtractFields(ctx context.Context, req providers.ProcessRequest) (*providers.ProcessResult, error)
}

type Handler struct {
	config   *Config
	primary  PrimaryExtractor
	fallback FallbackExtractor
	db       *sql.DB
	redis    *redis.Client
	logger   logger.Logger
}

func NewHandler(config *Config, primary PrimaryExtractor, fallback FallbackExtractor, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		primary:  primary,
		fallback: fallback,
		db:       db,
		redis:    redis,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		code := "EXTRACTION_FAILED"
		if stdErr, ok := err.(*errors.StandardError); ok {
			code = string(stdErr.Code)
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
		h.failJob(client, job, code, err.Error())
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if !supportedMimeTypes[input.MimeType] {
		return nil, errors.NewUnsupportedDocumentError(input.MimeType)
	}

	content, err := base64.StdEncoding.DecodeString(input.Content)
	if err != nil {
		return nil, errors.NewDocumentValidationFailedError(fmt.Sprintf("content is not valid base64: %v", err))
	}
	if len(content) == 0 {
		return nil, errors.NewDocumentValidationFailedError("document content is empty")
	}

	req := providers.ProcessRequest{Content: content, MimeType: input.MimeType}

	result, provider, err := h.extract(ctx, req)
	if err != nil {
		return nil, err
	}

	fields, confidence := canonicalFields(result.Entities)

	output := &Output{
		DocumentID:    input.DocumentID,
		ExtractedData: fields,
		ExtractedText: result.Text,
		Provider:      provider,
		Confidence:    confidence,
	}

	if err := h.persist(ctx, input.DocumentID, output); err != nil {
		h.logger.Warn("failed to persist extraction result", map[string]interface{}{
			"documentId": input.DocumentID,
			"error":      err,
		})
	}
	h.cache(ctx, input.DocumentID, output)

	h.logger.Info("document extracted", map[string]interface{}{
		"documentId": input.DocumentID,
		"provider":   provider,
		"fieldCount": len(fields),
		"confidence": confidence,
	})

	return output, nil
}

// extract tries the primary processor first and falls back to the model
// extractor when the primary's retry budget is spent.
func (h *Handler) extract(ctx context.Context, req providers.ProcessRequest) (*providers.ProcessResult, string, error) {
	result, err := h.primary.ProcessDocument(ctx, req)
	if err == nil {
		metrics.ExtractionProviderCalls.WithLabelValues(providers.DocumentAIProviderName, "success").Inc()
		return result, providers.DocumentAIProviderName, nil
	}
	metrics.ExtractionProviderCalls.WithLabelValues(providers.DocumentAIProviderName, "failure").Inc()

	h.logger.Warn("primary extraction provider failed, trying fallback", map[string]interface{}{
		"error": err,
	})

	result, err = h.fallback.ExtractFields(ctx, req)
	if err == nil {
		metrics.ExtractionProviderCalls.WithLabelValues(providers.GenAIProviderName, "success").Inc()
		return result, providers.GenAIProviderName, nil
	}
	metrics.ExtractionProviderCalls.WithLabelValues(providers.GenAIProviderName, "failure").Inc()

	return nil, "", errors.NewProviderUnavailableError(err.Error())
}

func (h *Handler) persist(ctx context.Context, documentID string, output *Output) error {
	data, err := json.Marshal(output.ExtractedData)
	if err != nil {
		return err
	}

	_, err = h.db.ExecContext(ctx, `
		UPDATE documents
		SET extracted_data = $1, extracted_text = $2, provider = $3, confidence = $4,
		    status = 'extracted', updated_at = NOW()
		WHERE id = $5`,
		data, output.ExtractedText, output.Provider, output.Confidence, documentID)
	return err
}

func (h *Handler) cache(ctx context.Context, documentID string, output *Output) {
	data, err := json.Marshal(output)
	if err != nil {
		return
	}
	if err := h.redis.Set(ctx, "doc:extracted:"+documentID, data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("failed to cache extraction result", map[string]interface{}{
			"documentId": documentID,
			"error":      err,
		})
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
