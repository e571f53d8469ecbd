// internal/workers/document/validate-names/handler.go
package validatenames

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"taxdoc-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "validate-names"
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
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

	// execute never errors: malformed input degrades to a zero-confidence
	// result the workflow branches on.
	output := h.execute(ctx, &input)

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	documentNames := extractNames(input.ExtractedData)

	profile := input.TaxProfile
	if profile == nil && input.UserID != "" {
		var err error
		profile, err = h.getTaxProfile(ctx, input.UserID)
		if err != nil {
			h.logger.Warn("failed to fetch tax profile", map[string]interface{}{
				"userId": input.UserID,
				"error":  err,
			})
		}
	}

	output := validateNames(profile, documentNames)

	h.logger.Info("names validated", map[string]interface{}{
		"documentId":   input.DocumentID,
		"userId":       input.UserID,
		"score":        output.Score,
		"isValid":      output.IsValid,
		"reason":       output.Reason,
		"primaryMatch": output.PrimaryMatch,
		"spouseMatch":  output.SpouseMatch,
	})

	return output
}

func (h *Handler) getTaxProfile(ctx context.Context, userID string) (*Profile, error) {
	cacheKey := "tax:profile:" + userID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var profile Profile
		if err := json.Unmarshal([]byte(val), &profile); err == nil {
			return &profile, nil
		}
	}

	row := h.db.QueryRowContext(ctx, `
		SELECT first_name, last_name, COALESCE(spouse_first_name, ''), COALESCE(spouse_last_name, '')
		FROM tax_profiles WHERE user_id = $1`, userID)

	var profile Profile
	err := row.Scan(&profile.FirstName, &profile.LastName, &profile.SpouseFirstName, &profile.SpouseLastName)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(profile)
	h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)

	return &profile, nil
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
