// internal/workers/search/perform-people-search/handler.go
package performpeoplesearch

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "people-search/internal/common/errors"
	"people-search/internal/common/logger"
	"people-search/internal/common/validation"
	"people-search/internal/models"
)

const (
	TaskType = "perform-people-search"
)

// Searcher runs one search. *orchestrator.Orchestrator satisfies it.
type Searcher interface {
	PerformSearch(ctx context.Context, searchID string, q models.Query) (*models.EnhancedResult, error)
}

type Handler struct {
	config          *Config
	searcher        Searcher
	schemaValidator *validation.SchemaValidator
	errorHandler    *apperrors.ErrorHandler
	logger          logger.Logger
}

func NewHandler(config *Config, searcher Searcher, schemaValidator *validation.SchemaValidator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:          config,
		searcher:        searcher,
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
		// Invalid queries throw a BPMN error at once. Exhausted searches are
		// retried while the job has retries left.
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.searcher.PerformSearch(ctx, input.SearchID, input.Query())
	if err != nil {
		h.logger.Warn("search failed", map[string]interface{}{
			"searchType": input.SearchType,
			"error":      err.Error(),
		})
		return nil, err
	}

	h.logger.Info("search completed", map[string]interface{}{
		"searchId":     result.SearchID,
		"strategy":     result.Strategy,
		"fallback":     result.Fallback,
		"totalResults": result.Result.Metadata.TotalResults,
	})

	return &Output{
		SearchID:     result.SearchID,
		SearchResult: result,
	}, nil
}

// Execute runs the search without a job client.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
