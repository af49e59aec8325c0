// internal/workers/classification/classify-attributes/handler.go
package classifyattributes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"petfood-workers/internal/common/logger"
	"petfood-workers/internal/common/metrics"
	"petfood-workers/internal/classifier"
	"petfood-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "classify-attributes"
)

var (
	ErrProductNotFound      = errors.New("PRODUCT_NOT_FOUND")
	ErrClassificationFailed = errors.New("CLASSIFICATION_FAILED")
	ErrQueryExecutionFailed = errors.New("QUERY_EXECUTION_FAILED")
	ErrQueryTimeout         = errors.New("QUERY_TIMEOUT")
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
)

type Handler struct {
	config      *Config
	db          *sql.DB
	redisClient *redis.Client
	pipeline    *classifier.Pipeline
	logger      logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client, pipeline *classifier.Pipeline, log logger.Logger) *Handler {
	return &Handler{
		config:      config,
		db:          db,
		redisClient: redisClient,
		pipeline:    pipeline,
		logger:      log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
	metrics.ProductsClassified.WithLabelValues(output.FoodCategory.Category).Inc()
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.ProductDetailID <= 0 {
		return nil, fmt.Errorf("%w: productDetailId is required", ErrClassificationFailed)
	}

	text, err := h.resolveText(ctx, input)
	if err != nil {
		return nil, err
	}

	category := h.pipeline.Category.Classify(text)
	sourcing := h.pipeline.Sourcing.Classify(text)
	processing := h.pipeline.Processing.Classify(text)
	adequacy := h.pipeline.Adequacy.Classify(text)

	if err := h.persist(ctx, input.ProductDetailID, category, sourcing, processing, adequacy); err != nil {
		return nil, err
	}
	h.invalidateCache(ctx, input.ProductDetailID)

	h.logger.Info("product classified", map[string]interface{}{
		"productDetailId":  input.ProductDetailID,
		"foodCategory":     category.Category,
		"sourcing":         sourcing.Category,
		"processingMethod": processing.Category,
		"adequacy":         adequacy.Category,
	})

	return &Output{
		ProductDetailID: input.ProductDetailID,
		FoodCategory: AttributeResult{
			Category:   category.Category,
			Confidence: category.Confidence,
			Reason:     category.Reason,
		},
		SourcingIntegrity: AttributeResult{
			Category:   sourcing.Category,
			Confidence: sourcing.Confidence,
			Reason:     sourcing.Reason,
		},
		ProcessingMethod: ProcessingResult{
			Primary:    processing.Category,
			Secondary:  processing.Secondary,
			Confidence: processing.Confidence,
			Reason:     processing.Reason,
		},
		NutritionallyAdequate: AttributeResult{
			Category:   adequacy.Category,
			Confidence: adequacy.Confidence,
			Reason:     adequacy.Reason,
		},
		ProcessorVersion: h.pipeline.Version(),
	}, nil
}

// resolveText uses inline text when the job carries it, otherwise loads
// the product_details row.
func (h *Handler) resolveText(ctx context.Context, input *Input) (models.ProductText, error) {
	if input.Product != nil {
		return *input.Product, nil
	}
	return h.loadProductText(ctx, input.ProductDetailID)
}

func (h *Handler) loadProductText(ctx context.Context, productDetailID int64) (models.ProductText, error) {
	var text models.ProductText
	var name, category, details, moreDetails, specs sql.NullString
	var ingredients, caloric, analysis, feeding, transition sql.NullString

	err := h.db.QueryRowContext(ctx, `
		SELECT product_name, product_category, details, more_details, specifications,
		       ingredients, caloric_content, guaranteed_analysis, feeding_instructions,
		       transition_instructions
		FROM product_details
		WHERE id = $1`, productDetailID).
		Scan(&name, &category, &details, &moreDetails, &specs,
			&ingredients, &caloric, &analysis, &feeding, &transition)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return text, fmt.Errorf("%w: product detail %d", ErrProductNotFound, productDetailID)
		}
		if ctx.Err() == context.DeadlineExceeded {
			return text, ErrQueryTimeout
		}
		return text, fmt.Errorf("%w: load product text: %v", ErrQueryExecutionFailed, err)
	}

	text.Name = name.String
	text.Category = category.String
	text.Details = details.String
	text.MoreDetails = moreDetails.String
	text.Specifications = specs.String
	text.Ingredients = ingredients.String
	text.CaloricContent = caloric.String
	text.GuaranteedAnalysis = analysis.String
	text.FeedingInstructions = feeding.String
	text.TransitionInstructions = transition.String
	return text, nil
}

// persist upserts only this worker's column family so concurrent
// workers never clobber each other's results.
func (h *Handler) persist(ctx context.Context, productDetailID int64, category, sourcing, processing, adequacy models.ClassificationResult) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO processed_products (
			product_detail_id,
			food_category, food_category_reason,
			sourcing_integrity, sourcing_integrity_reason,
			processing_method_1, processing_method_2, processing_method_reason,
			nutritionally_adequate, nutritionally_adequate_reason,
			processed_at, processor_version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (product_detail_id) DO UPDATE SET
			food_category = EXCLUDED.food_category,
			food_category_reason = EXCLUDED.food_category_reason,
			sourcing_integrity = EXCLUDED.sourcing_integrity,
			sourcing_integrity_reason = EXCLUDED.sourcing_integrity_reason,
			processing_method_1 = EXCLUDED.processing_method_1,
			processing_method_2 = EXCLUDED.processing_method_2,
			processing_method_reason = EXCLUDED.processing_method_reason,
			nutritionally_adequate = EXCLUDED.nutritionally_adequate,
			nutritionally_adequate_reason = EXCLUDED.nutritionally_adequate_reason,
			processed_at = EXCLUDED.processed_at,
			processor_version = EXCLUDED.processor_version`,
		productDetailID,
		category.Category, category.Reason,
		sourcing.Category, sourcing.Reason,
		processing.Category, processing.Secondary, processing.Reason,
		adequacy.Category, adequacy.Reason,
		time.Now().UTC(), h.pipeline.Version(),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrQueryTimeout
		}
		return fmt.Errorf("%w: upsert classifications: %v", ErrDatabaseInsertFailed, err)
	}
	return nil
}

// invalidateCache drops the cached attribute snapshot. A failed delete
// is logged, not fatal: the cache entry expires on its own TTL.
func (h *Handler) invalidateCache(ctx context.Context, productDetailID int64) {
	if h.redisClient == nil {
		return
	}
	key := attrsCacheKey(productDetailID)
	if err := h.redisClient.Del(ctx, key).Err(); err != nil {
		h.logger.Warn("attribute cache invalidation failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
}

func attrsCacheKey(productDetailID int64) string {
	return fmt.Sprintf("product:attrs:%d", productDetailID)
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
		return "CLASSIFICATION_FAILED", 0
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
