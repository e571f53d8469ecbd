// internal/workers/document/classify-document/handler.go
package classifydocument

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"taxdoc-workers/internal/common/logger"
	"taxdoc-workers/internal/common/metrics"
	"taxdoc-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "classify-document"
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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

	output := h.execute(ctx, &input)

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.completeJob(client, job, output)
}

// execute classifies and never errors: an unrecognizable document comes
// back as unknown with needsReview set.
func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	docType, confidence := classify(input)

	output := &Output{
		DocumentID:   input.DocumentID,
		DocumentType: string(docType),
		Confidence:   confidence,
		NeedsReview:  docType == models.DocTypeUnknown || confidence < h.config.MinConfidence,
	}

	if input.DocumentID != "" {
		status := models.StatusExtracted
		if output.NeedsReview {
			status = models.StatusNeedsReview
		}
		if err := h.persist(ctx, input.DocumentID, docType, status); err != nil {
			h.logger.Warn("failed to persist classification", map[string]interface{}{
				"documentId": input.DocumentID,
				"error":      err,
			})
		}
	}

	h.logger.Info("document classified", map[string]interface{}{
		"documentId":   input.DocumentID,
		"documentType": output.DocumentType,
		"confidence":   output.Confidence,
		"needsReview":  output.NeedsReview,
	})

	return output
}

func (h *Handler) persist(ctx context.Context, documentID string, docType models.DocumentType, status models.DocumentStatus) error {
	_, err := h.db.ExecContext(ctx, `
		UPDATE documents
		SET document_type = $1, status = $2, updated_at = NOW()
		WHERE id = $3`,
		string(docType), string(status), documentID)
	return err
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

func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	return h.execute(ctx, input)
}
