// internal/workers/classification/detect-brand/handler.go
package detectbrand

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"petfood-workers/internal/classifier"
	"petfood-workers/internal/common/logger"
	"petfood-workers/internal/common/metrics"
	"petfood-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "detect-brand"
)

var (
	ErrProductNotFound      = errors.New("PRODUCT_NOT_FOUND")
	ErrDetectionFailed      = errors.New("DETECTION_FAILED")
	ErrQueryExecutionFailed = errors.New("QUERY_EXECUTION_FAILED")
	ErrQueryTimeout         = errors.New("QUERY_TIMEOUT")
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
)

type Handler struct {
	config   *Config
	db       *sql.DB
	pipeline *classifier.Pipeline
	logger   logger.Logger
}

func NewHandler(config *Config, db *sql.DB, pipeline *classifier.Pipeline, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		db:       db,
		pipeline: pipeline,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
	if input == nil || input.ProductDetailID <= 0 {
		return nil, fmt.Errorf("%w: productDetailId is required", ErrDetectionFailed)
	}

	text, err := h.resolveText(ctx, input)
	if err != nil {
		return nil, err
	}

	detection := h.pipeline.Brand.Detect(text)

	if err := h.persist(ctx, input.ProductDetailID, detection); err != nil {
		return nil, err
	}

	h.logger.Info("brand detected", map[string]interface{}{
		"productDetailId": input.ProductDetailID,
		"brand":           detection.Brand,
		"method":          detection.Method,
		"confidence":      detection.Confidence,
	})

	return &Output{
		ProductDetailID:  input.ProductDetailID,
		Detection:        detection,
		ProcessorVersion: h.pipeline.Version(),
	}, nil
}

func (h *Handler) resolveText(ctx context.Context, input *Input) (models.ProductText, error) {
	if input.Product != nil {
		return *input.Product, nil
	}

	var text models.ProductText
	var name, details, moreDetails, specs, ingredients sql.NullString
	err := h.db.QueryRowContext(ctx, `
		SELECT product_name, details, more_details, specifications, ingredients
		FROM product_details
		WHERE id = $1`, input.ProductDetailID).
		Scan(&name, &details, &moreDetails, &specs, &ingredients)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return text, fmt.Errorf("%w: product detail %d", ErrProductNotFound, input.ProductDetailID)
		}
		if ctx.Err() == context.DeadlineExceeded {
			return text, ErrQueryTimeout
		}
		return text, fmt.Errorf("%w: load product text: %v", ErrQueryExecutionFailed, err)
	}

	text.Name = name.String
	text.Details = details.String
	text.MoreDetails = moreDetails.String
	text.Specifications = specs.String
	text.Ingredients = ingredients.String
	return text, nil
}

func (h *Handler) persist(ctx context.Context, productDetailID int64, detection models.BrandDetection) error {
	var brand interface{}
	if detection.Brand != "" {
		brand = detection.Brand
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO processed_products (
			product_detail_id, brand, brand_confidence, brand_method,
			processed_at, processor_version
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (product_detail_id) DO UPDATE SET
			brand = EXCLUDED.brand,
			brand_confidence = EXCLUDED.brand_confidence,
			brand_method = EXCLUDED.brand_method,
			processed_at = EXCLUDED.processed_at,
			processor_version = EXCLUDED.processor_version`,
		productDetailID, brand, detection.Confidence, detection.Method,
		time.Now().UTC(), h.pipeline.Version(),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrQueryTimeout
		}
		return fmt.Errorf("%w: upsert brand detection: %v", ErrDatabaseInsertFailed, err)
	}
	return nil
}

func mapErrorToCode(err error) (string, int32) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		return "PRODUCT_NOT_FOUND", 0
	case errors.Is(err, ErrQueryTimeout):
		return "QUERY_TIMEOUT", 2
	case errors.Is(err, ErrDatabaseInsertFailed):
		return "DATABASE_INSERT_FAILED", 3
	case errors.Is(err, ErrQueryExecutionFailed):
		return "QUERY_EXECUTION_FAILED", 3
	default:
		return "DETECTION_FAILED", 0
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
