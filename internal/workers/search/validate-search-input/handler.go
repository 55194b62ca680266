// internal/workers/search/validate-search-input/handler.go
package validatesearchinput

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "people-search/internal/common/errors"
	"people-search/internal/common/logger"
	"people-search/internal/common/validation"
	"people-search/internal/search/validator"
)

const (
	TaskType = "validate-search-input"
)

type Handler struct {
	config          *Config
	schemaValidator *validation.SchemaValidator
	errorHandler    *apperrors.ErrorHandler
	logger          logger.Logger
}

func NewHandler(config *Config, schemaValidator *validation.SchemaValidator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:          config,
		schemaValidator: schemaValidator,
		errorHandler:    apperrors.NewErrorHandler(log),
		logger:          log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parse(job.Variables)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	return h.completeJob(ctx, client, job, output)
}

// parse checks the raw variables against the registry schema before
// decoding them.
func (h *Handler) parse(variables string) (*Input, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &doc); err != nil {
		return nil, apperrors.NewSchemaValidationFailedError("variables are not a JSON object: " + err.Error())
	}
	if h.schemaValidator != nil {
		if err := h.schemaValidator.Check(TaskType, doc); err != nil {
			return nil, err
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewSchemaValidationFailedError(err.Error())
	}
	return &input, nil
}

// execute never fails on an invalid query; the result says so instead.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	q := input.Query()
	result := validator.Validate(q)

	h.logger.Info("validation completed", map[string]interface{}{
		"searchType":   input.SearchType,
		"isValid":      result.IsValid,
		"errorCount":   len(result.Errors),
		"warningCount": len(result.Warnings),
	})

	return &Output{
		Validation: result,
		Report:     validator.RenderReport(q.Type, result),
		IsValid:    result.IsValid,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err,
		})
		return err
	}
	return nil
}

// Execute runs the validation without a job client.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
