// internal/workers/document/create-document-record/handler.go
package createdocumentrecord

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"taxdoc-workers/internal/common/errors"
	"taxdoc-workers/internal/common/logger"
	"taxdoc-workers/internal/common/metrics"
	"taxdoc-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

const (
	TaskType = "create-document-record"
)

type Handler struct {
	config     *Config
	db         *sql.DB
	es         *elasticsearch.Client
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, es *elasticsearch.Client, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		es:         es,
		logger:     scoped,
		errHandler: errors.NewErrorHandler(scoped),
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
		code := string(errors.ErrCodeDatabaseInsertFailed)
		if stdErr, ok := err.(*errors.StandardError); ok {
			code = string(stdErr.Code)
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.UserID) == "" || strings.TrimSpace(input.FileName) == "" {
		return nil, errors.NewDocumentValidationFailedError("userId and fileName are required")
	}

	// Same file uploaded twice by the same user is rejected up front.
	if input.Checksum != "" {
		var existingID string
		err := h.db.QueryRowContext(ctx, `
			SELECT id FROM documents
			WHERE user_id = $1 AND checksum = $2`,
			input.UserID, input.Checksum).Scan(&existingID)
		if err != nil && err != sql.ErrNoRows {
			return nil, errors.NewDatabaseInsertFailedError(fmt.Errorf("duplicate check failed: %w", err))
		}
		if err == nil {
			return nil, errors.NewDuplicateDocumentError(existingID)
		}
	}

	docID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO documents (
			id, user_id, file_name, mime_type, checksum,
			document_type, tax_year, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		docID,
		input.UserID,
		input.FileName,
		input.MimeType,
		input.Checksum,
		string(models.DocTypeUnknown),
		input.TaxYear,
		string(models.StatusUploaded),
		createdAt,
	)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(fmt.Errorf("insert failed: %w", err))
	}

	// Search projection is non-critical, log and continue on failure.
	if err := h.index(ctx, docID, input); err != nil {
		h.logger.Warn("failed to index document", map[string]interface{}{
			"documentId": docID,
			"error":      err,
		})
	}

	h.logger.Info("document record created", map[string]interface{}{
		"documentId": docID,
		"userId":     input.UserID,
		"fileName":   input.FileName,
	})

	return &Output{
		DocumentID:     docID,
		DocumentStatus: string(models.StatusUploaded),
		CreatedAt:      createdAt,
	}, nil
}

func (h *Handler) index(ctx context.Context, docID string, input *Input) error {
	if h.es == nil {
		return nil
	}

	hit := models.DocumentSearchHit{
		DocumentID:   docID,
		UserID:       input.UserID,
		FileName:     input.FileName,
		DocumentType: string(models.DocTypeUnknown),
		TaxYear:      input.TaxYear,
		Status:       string(models.StatusUploaded),
	}

	body, err := json.Marshal(hit)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      h.config.IndexName,
		DocumentID: docID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, h.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index request failed: %s", res.Status())
	}
	return nil
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
