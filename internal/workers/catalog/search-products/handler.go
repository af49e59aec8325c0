// internal/workers/catalog/search-products/handler.go
package searchproducts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"petfood-workers/internal/common/logger"
	"petfood-workers/internal/common/metrics"
	"petfood-workers/internal/workers/catalog/search-products/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
)

const (
	TaskType = "search-products"
)

var (
	ErrElasticsearchConnectionFailed = errors.New("ELASTICSEARCH_CONNECTION_FAILED")
	ErrSearchQueryFailed             = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout                 = errors.New("SEARCH_TIMEOUT")
	ErrIndexNotFound                 = errors.New("INDEX_NOT_FOUND")
	ErrInvalidFilterFormat           = errors.New("INVALID_FILTER_FORMAT")
)

type Handler struct {
	config *Config
	es     *elasticsearch.Client
	logger logger.Logger
}

func NewHandler(config *Config, esClient *elasticsearch.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		es:     esClient,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "PARSE_ERROR").Inc()
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode, retries := mapErrorToCode(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	eq := queries.ProductQuery{
		Index:       input.IndexName,
		QueryType:   input.QueryType,
		Filters:     input.Filters,
		MaxPageSize: h.config.MaxPageSize,
	}
	if eq.Index == "" {
		eq.Index = h.config.IndexName
	}
	if eq.QueryType == "" {
		eq.QueryType = queries.TypeProductSearch
	}
	if input.ProductDetailID > 0 {
		eq.ProductDetailID = strconv.FormatInt(input.ProductDetailID, 10)
	}
	eq.Pagination.From = input.Pagination.From
	eq.Pagination.Size = input.Pagination.Size

	result, err := queries.Execute(ctx, h.es, eq)
	if err != nil {
		switch {
		case ctx.Err() == context.DeadlineExceeded:
			return nil, ErrSearchTimeout
		case errors.Is(err, queries.ErrMissingIndex):
			return nil, fmt.Errorf("%w: %v", ErrIndexNotFound, err)
		case errors.Is(err, queries.ErrInvalidFilter):
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilterFormat, err)
		case errors.Is(err, queries.ErrUnknownQueryType):
			return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
		}
	}

	h.logger.Info("search completed", map[string]interface{}{
		"queryType": eq.QueryType,
		"totalHits": result.TotalHits,
		"took":      result.Took,
	})

	return &Output{
		Data:      result.Data,
		TotalHits: result.TotalHits,
		MaxScore:  result.MaxScore,
		Took:      result.Took,
	}, nil
}

func mapErrorToCode(err error) (string, int32) {
	switch {
	case errors.Is(err, ErrIndexNotFound):
		return "INDEX_NOT_FOUND", 0
	case errors.Is(err, ErrInvalidFilterFormat):
		return "INVALID_FILTER_FORMAT", 0
	case errors.Is(err, ErrSearchTimeout):
		return "SEARCH_TIMEOUT", 2
	case errors.Is(err, ErrElasticsearchConnectionFailed):
		return "ELASTICSEARCH_CONNECTION_FAILED", 3
	case errors.Is(err, ErrSearchQueryFailed):
		return "SEARCH_QUERY_FAILED", 3
	default:
		return "SEARCH_QUERY_FAILED", 0
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
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
