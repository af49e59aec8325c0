// internal/workers/scoring/calculate-final-score/handler.go
package calculatefinalscore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"petfood-workers/internal/common/logger"
	"petfood-workers/internal/common/metrics"
	"petfood-workers/internal/models"
	"petfood-workers/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "calculate-final-score"
)

var (
	ErrProductNotProcessed  = errors.New("PRODUCT_NOT_PROCESSED")
	ErrScoreNotAvailable    = errors.New("SCORE_NOT_AVAILABLE")
	ErrScoringFailed        = errors.New("SCORING_FAILED")
	ErrQueryExecutionFailed = errors.New("QUERY_EXECUTION_FAILED")
	ErrQueryTimeout         = errors.New("QUERY_TIMEOUT")
)

// Handler serves the request-scoped half of the score. It only ever
// reads: the base score is written once elsewhere, and the dynamic
// adjustment exists solely in the job's response.
type Handler struct {
	config      *Config
	db          *sql.DB
	redisClient *redis.Client
	logger      logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config:      config,
		db:          db,
		redisClient: redisClient,
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
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.ProductDetailID <= 0 {
		return nil, fmt.Errorf("%w: productDetailId is required", ErrScoringFailed)
	}

	attrs, err := h.loadAttributes(ctx, input.ProductDetailID)
	if err != nil {
		return nil, err
	}
	if attrs.BaseScore == nil {
		return nil, fmt.Errorf("%w: product detail %d has no persisted base score", ErrScoreNotAvailable, input.ProductDetailID)
	}

	// The deduction detail is not persisted; recompute it from the
	// attributes for the micro-score payload. The persisted base score
	// stays authoritative for the final number.
	base := scoring.ComputeBaseScore(attrs)
	breakdown := scoring.ComputeDynamicScore(*attrs.BaseScore, attrs.FoodCategory, attrs.ProcessingMethod, input.Handling)
	micro := scoring.BuildMicroScore(base, &breakdown)

	h.logger.Info("final score computed", map[string]interface{}{
		"productDetailId": input.ProductDetailID,
		"baseScore":       breakdown.BaseScore,
		"finalScore":      breakdown.FinalScore,
		"classification":  string(breakdown.Classification),
	})

	return &Output{
		ProductDetailID: input.ProductDetailID,
		Breakdown:       breakdown,
		Grade:           scoring.Grade(breakdown.FinalScore),
		MicroScore:      micro,
	}, nil
}

// loadAttributes reads the classified attribute snapshot through the
// Redis cache, falling back to Postgres and repopulating on a miss.
// This worker sits on the request path, so the cache hit is the case
// that matters.
func (h *Handler) loadAttributes(ctx context.Context, productDetailID int64) (*models.ProcessedAttributes, error) {
	key := attrsCacheKey(productDetailID)
	if h.redisClient != nil {
		cached, err := h.redisClient.Get(ctx, key).Result()
		if err == nil {
			var attrs models.ProcessedAttributes
			if jsonErr := json.Unmarshal([]byte(cached), &attrs); jsonErr == nil {
				return &attrs, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			h.logger.Warn("attribute cache read failed", map[string]interface{}{
				"key":   key,
				"error": err,
			})
		}
	}

	attrs, err := h.loadAttributesFromDB(ctx, productDetailID)
	if err != nil {
		return nil, err
	}
	h.cacheAttributes(ctx, key, attrs)
	return attrs, nil
}

func (h *Handler) loadAttributesFromDB(ctx context.Context, productDetailID int64) (*models.ProcessedAttributes, error) {
	var (
		category, sourcing, method, secondary, adequate sql.NullString
		starchy, baseScore                              sql.NullFloat64
		pHigh, pGood, pMod, pLow                        sql.NullInt64
		fHigh, fGood, fLow                              sql.NullInt64
		cHigh, cGood, cMod, cLow                        sql.NullInt64
		fbHigh, fbGood, fbMod, fbLow                    sql.NullInt64
		dirtyCount, synthCount, longCount               sql.NullInt64
		version                                         sql.NullString
	)

	err := h.db.QueryRowContext(ctx, `
		SELECT food_category, sourcing_integrity, processing_method_1, processing_method_2,
		       nutritionally_adequate, starchy_carb_pct,
		       protein_ingredients_high, protein_ingredients_good, protein_ingredients_moderate, protein_ingredients_low,
		       fat_ingredients_high, fat_ingredients_good, fat_ingredients_low,
		       carb_ingredients_high, carb_ingredients_good, carb_ingredients_moderate, carb_ingredients_low,
		       fiber_ingredients_high, fiber_ingredients_good, fiber_ingredients_moderate, fiber_ingredients_low,
		       dirty_dozen_ingredients_count, synthetic_nutrition_addition_count, longevity_additives_count,
		       base_score, processor_version
		FROM processed_products
		WHERE product_detail_id = $1`, productDetailID).
		Scan(&category, &sourcing, &method, &secondary, &adequate, &starchy,
			&pHigh, &pGood, &pMod, &pLow,
			&fHigh, &fGood, &fLow,
			&cHigh, &cGood, &cMod, &cLow,
			&fbHigh, &fbGood, &fbMod, &fbLow,
			&dirtyCount, &synthCount, &longCount,
			&baseScore, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: product detail %d has no classification row", ErrProductNotProcessed, productDetailID)
		}
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrQueryTimeout
		}
		return nil, fmt.Errorf("%w: load processed attributes: %v", ErrQueryExecutionFailed, err)
	}

	attrs := &models.ProcessedAttributes{
		ProductDetailID:           productDetailID,
		FoodCategory:              models.FoodCategory(category.String),
		SourcingIntegrity:         models.SourcingIntegrity(sourcing.String),
		ProcessingMethod:          models.ProcessingMethod(method.String),
		SecondaryProcessingMethod: models.ProcessingMethod(secondary.String),
		NutritionallyAdequate:     models.NutritionallyAdequate(adequate.String),
		ProcessorVersion:          version.String,
	}
	if starchy.Valid {
		attrs.Nutrients.StarchyCarbPct = &starchy.Float64
	}
	if baseScore.Valid {
		attrs.BaseScore = &baseScore.Float64
	}
	attrs.Ingredients = models.IngredientAnalysis{
		Protein:    rollupFromCounts(models.MacroProtein, pHigh, pGood, pMod, pLow),
		Fat:        rollupFromCounts(models.MacroFat, fHigh, fGood, sql.NullInt64{}, fLow),
		Carb:       rollupFromCounts(models.MacroCarb, cHigh, cGood, cMod, cLow),
		Fiber:      rollupFromCounts(models.MacroFiber, fbHigh, fbGood, fbMod, fbLow),
		DirtyDozen: models.AdditiveDetection{Count: int(dirtyCount.Int64)},
		Synthetic:  models.AdditiveDetection{Count: int(synthCount.Int64)},
		Longevity:  models.AdditiveDetection{Count: int(longCount.Int64)},
	}
	return attrs, nil
}

func rollupFromCounts(group models.MacroGroup, high, good, moderate, low sql.NullInt64) models.CategoryRollup {
	return models.CategoryRollup{
		Group:    group,
		High:     make([]string, high.Int64),
		Good:     make([]string, good.Int64),
		Moderate: make([]string, moderate.Int64),
		Low:      make([]string, low.Int64),
	}
}

func (h *Handler) cacheAttributes(ctx context.Context, key string, attrs *models.ProcessedAttributes) {
	if h.redisClient == nil {
		return
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return
	}
	if err := h.redisClient.Set(ctx, key, data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("attribute cache write failed", map[string]interface{}{
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
	case errors.Is(err, ErrProductNotProcessed):
		return "PRODUCT_NOT_PROCESSED", 0
	case errors.Is(err, ErrScoreNotAvailable):
		return "SCORE_NOT_AVAILABLE", 0
	case errors.Is(err, ErrQueryTimeout):
		return "QUERY_TIMEOUT", 2
	case errors.Is(err, ErrQueryExecutionFailed):
		return "QUERY_EXECUTION_FAILED", 3
	default:
		return "SCORING_FAILED", 0
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
