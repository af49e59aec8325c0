// internal/workers/classification/reprocess-products/handler.go
package reprocessproducts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"petfood-workers/internal/classifier"
	"petfood-workers/internal/common/logger"
	"petfood-workers/internal/common/metrics"
	"petfood-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "reprocess-products"
)

var (
	ErrBatchFailed          = errors.New("BATCH_FAILED")
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
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input is required", ErrBatchFailed)
	}

	mode := input.Mode
	if len(input.ProductDetailIDs) > 0 {
		mode = ModeExplicit
	} else if mode == "" {
		mode = ModeUnprocessed
	}
	if mode != ModeAll && mode != ModeUnprocessed && mode != ModeExplicit {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrBatchFailed, input.Mode)
	}

	startTime := time.Now()
	records, err := h.selectRecords(ctx, mode, input.ProductDetailIDs)
	if err != nil {
		return nil, err
	}

	batchID := uuid.New().String()
	h.initProgress(ctx, batchID, len(records))

	concurrency := input.Concurrency
	if concurrency <= 0 {
		concurrency = h.config.Concurrency
	}

	items := h.pipeline.RunBatch(records, concurrency)

	// Persist serially: each record is isolated, a failed upsert is
	// counted and the batch moves on.
	var failedIDs []int64
	succeeded := 0
	for i := range items {
		if ctx.Err() != nil {
			// Deadline hit. Everything not yet persisted failed.
			for _, rest := range items[i:] {
				failedIDs = append(failedIDs, rest.Record.ID)
			}
			break
		}

		item := &items[i]
		if item.Err != nil {
			h.logger.Warn("batch item classification failed", map[string]interface{}{
				"batchId":         batchID,
				"productDetailId": item.Record.ID,
				"error":           item.Err,
			})
			failedIDs = append(failedIDs, item.Record.ID)
			h.trackProgress(ctx, batchID, "failed")
			continue
		}
		if err := h.persist(ctx, item.Attributes, item.Record.Ingredients); err != nil {
			h.logger.Warn("batch item persist failed", map[string]interface{}{
				"batchId":         batchID,
				"productDetailId": item.Record.ID,
				"error":           err,
			})
			failedIDs = append(failedIDs, item.Record.ID)
			h.trackProgress(ctx, batchID, "failed")
			continue
		}
		h.invalidateCache(ctx, item.Record.ID)
		metrics.ProductsClassified.WithLabelValues(string(item.Attributes.FoodCategory)).Inc()
		succeeded++
		h.trackProgress(ctx, batchID, "processed")
	}

	h.finishProgress(batchID, len(records), succeeded, len(failedIDs))

	h.logger.Info("batch reprocessing finished", map[string]interface{}{
		"batchId":   batchID,
		"mode":      mode,
		"total":     len(records),
		"succeeded": succeeded,
		"failed":    len(failedIDs),
	})

	return &Output{
		BatchReport: models.BatchReport{
			BatchID:    batchID,
			Total:      len(records),
			Succeeded:  succeeded,
			Failed:     len(failedIDs),
			FailedIDs:  failedIDs,
			DurationMs: time.Since(startTime).Milliseconds(),
		},
		Mode: mode,
	}, nil
}

const recordColumns = `id, product_id, product_name, product_category, details, more_details,
		       specifications, ingredients, caloric_content, guaranteed_analysis,
		       feeding_instructions, transition_instructions`

func (h *Handler) selectRecords(ctx context.Context, mode string, ids []int64) ([]models.ProductDetail, error) {
	var rows *sql.Rows
	var err error

	switch mode {
	case ModeExplicit:
		rows, err = h.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM product_details
		WHERE id = ANY($1)
		ORDER BY id`, pq.Array(ids))
	case ModeAll:
		rows, err = h.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM product_details
		ORDER BY id`)
	default:
		// Unprocessed: product_details rows with no processed twin yet.
		rows, err = h.db.QueryContext(ctx, `
		SELECT d.id, d.product_id, d.product_name, d.product_category, d.details, d.more_details,
		       d.specifications, d.ingredients, d.caloric_content, d.guaranteed_analysis,
		       d.feeding_instructions, d.transition_instructions
		FROM product_details d
		LEFT JOIN processed_products p ON p.product_detail_id = d.id
		WHERE p.product_detail_id IS NULL
		ORDER BY d.id`)
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrQueryTimeout
		}
		return nil, fmt.Errorf("%w: select batch records: %v", ErrQueryExecutionFailed, err)
	}
	defer rows.Close()

	var records []models.ProductDetail
	for rows.Next() {
		var r models.ProductDetail
		var category, details, moreDetails, specs sql.NullString
		var ingredients, caloric, analysis, feeding, transition sql.NullString
		if err := rows.Scan(&r.ID, &r.ProductID, &r.ProductName, &category, &details, &moreDetails,
			&specs, &ingredients, &caloric, &analysis, &feeding, &transition); err != nil {
			return nil, fmt.Errorf("%w: scan batch record: %v", ErrQueryExecutionFailed, err)
		}
		r.ProductCategory = category.String
		r.Details = details.String
		r.MoreDetails = moreDetails.String
		r.Specifications = specs.String
		r.Ingredients = ingredients.String
		r.CaloricContent = caloric.String
		r.GuaranteedAnalysis = analysis.String
		r.FeedingInstructions = feeding.String
		r.TransitionInstructions = transition.String
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate batch records: %v", ErrQueryExecutionFailed, err)
	}
	return records, nil
}

// persist upserts every attribute family in one statement. The base
// score and review columns are deliberately untouched: reprocessing
// refreshes attributes, scoring stays a separate phase.
func (h *Handler) persist(ctx context.Context, attrs *models.ProcessedAttributes, rawIngredients string) error {
	proteinHigh, proteinGood, proteinModerate, proteinLow := attrs.Ingredients.Protein.Counts()
	fatHigh, fatGood, _, fatLow := attrs.Ingredients.Fat.Counts()
	carbHigh, carbGood, carbModerate, carbLow := attrs.Ingredients.Carb.Counts()
	fiberHigh, fiberGood, fiberModerate, fiberLow := attrs.Ingredients.Fiber.Counts()

	var brand interface{}
	if attrs.Brand.Brand != "" {
		brand = attrs.Brand.Brand
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO processed_products (
			product_detail_id,
			food_category, food_category_reason,
			sourcing_integrity, sourcing_integrity_reason,
			processing_method_1, processing_method_2, processing_method_reason,
			nutritionally_adequate, nutritionally_adequate_reason,
			ingredients_all,
			protein_ingredients_all, protein_ingredients_high, protein_ingredients_good,
			protein_ingredients_moderate, protein_ingredients_low, protein_quality_class,
			fat_ingredients_all, fat_ingredients_high, fat_ingredients_good,
			fat_ingredients_low, fat_quality_class,
			carb_ingredients_all, carb_ingredients_high, carb_ingredients_good,
			carb_ingredients_moderate, carb_ingredients_low, carb_quality_class,
			fiber_ingredients_all, fiber_ingredients_high, fiber_ingredients_good,
			fiber_ingredients_moderate, fiber_ingredients_low, fiber_quality_class,
			dirty_dozen_ingredients, dirty_dozen_ingredients_count,
			synthetic_nutrition_addition, synthetic_nutrition_addition_count,
			longevity_additives, longevity_additives_count,
			guaranteed_analysis_crude_protein_pct,
			guaranteed_analysis_crude_fat_pct,
			guaranteed_analysis_crude_fiber_pct,
			guaranteed_analysis_crude_moisture_pct,
			guaranteed_analysis_crude_ash_pct,
			starchy_carb_pct,
			brand, brand_confidence, brand_method,
			processed_at, processor_version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		          $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
		          $31, $32, $33, $34, $35, $36, $37, $38, $39, $40, $41, $42, $43, $44,
		          $45, $46, $47, $48, $49, $50, $51)
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
			ingredients_all = EXCLUDED.ingredients_all,
			protein_ingredients_all = EXCLUDED.protein_ingredients_all,
			protein_ingredients_high = EXCLUDED.protein_ingredients_high,
			protein_ingredients_good = EXCLUDED.protein_ingredients_good,
			protein_ingredients_moderate = EXCLUDED.protein_ingredients_moderate,
			protein_ingredients_low = EXCLUDED.protein_ingredients_low,
			protein_quality_class = EXCLUDED.protein_quality_class,
			fat_ingredients_all = EXCLUDED.fat_ingredients_all,
			fat_ingredients_high = EXCLUDED.fat_ingredients_high,
			fat_ingredients_good = EXCLUDED.fat_ingredients_good,
			fat_ingredients_low = EXCLUDED.fat_ingredients_low,
			fat_quality_class = EXCLUDED.fat_quality_class,
			carb_ingredients_all = EXCLUDED.carb_ingredients_all,
			carb_ingredients_high = EXCLUDED.carb_ingredients_high,
			carb_ingredients_good = EXCLUDED.carb_ingredients_good,
			carb_ingredients_moderate = EXCLUDED.carb_ingredients_moderate,
			carb_ingredients_low = EXCLUDED.carb_ingredients_low,
			carb_quality_class = EXCLUDED.carb_quality_class,
			fiber_ingredients_all = EXCLUDED.fiber_ingredients_all,
			fiber_ingredients_high = EXCLUDED.fiber_ingredients_high,
			fiber_ingredients_good = EXCLUDED.fiber_ingredients_good,
			fiber_ingredients_moderate = EXCLUDED.fiber_ingredients_moderate,
			fiber_ingredients_low = EXCLUDED.fiber_ingredients_low,
			fiber_quality_class = EXCLUDED.fiber_quality_class,
			dirty_dozen_ingredients = EXCLUDED.dirty_dozen_ingredients,
			dirty_dozen_ingredients_count = EXCLUDED.dirty_dozen_ingredients_count,
			synthetic_nutrition_addition = EXCLUDED.synthetic_nutrition_addition,
			synthetic_nutrition_addition_count = EXCLUDED.synthetic_nutrition_addition_count,
			longevity_additives = EXCLUDED.longevity_additives,
			longevity_additives_count = EXCLUDED.longevity_additives_count,
			guaranteed_analysis_crude_protein_pct = EXCLUDED.guaranteed_analysis_crude_protein_pct,
			guaranteed_analysis_crude_fat_pct = EXCLUDED.guaranteed_analysis_crude_fat_pct,
			guaranteed_analysis_crude_fiber_pct = EXCLUDED.guaranteed_analysis_crude_fiber_pct,
			guaranteed_analysis_crude_moisture_pct = EXCLUDED.guaranteed_analysis_crude_moisture_pct,
			guaranteed_analysis_crude_ash_pct = EXCLUDED.guaranteed_analysis_crude_ash_pct,
			starchy_carb_pct = EXCLUDED.starchy_carb_pct,
			brand = EXCLUDED.brand,
			brand_confidence = EXCLUDED.brand_confidence,
			brand_method = EXCLUDED.brand_method,
			processed_at = EXCLUDED.processed_at,
			processor_version = EXCLUDED.processor_version`,
		attrs.ProductDetailID,
		string(attrs.FoodCategory), attrs.FoodCategoryReason,
		string(attrs.SourcingIntegrity), attrs.SourcingIntegrityReason,
		string(attrs.ProcessingMethod), string(attrs.SecondaryProcessingMethod), attrs.ProcessingMethodReason,
		string(attrs.NutritionallyAdequate), attrs.NutritionallyAdequateReason,
		nullIfEmpty(strings.Join(classifier.SplitIngredients(rawIngredients), ", ")),
		nullIfEmpty(joinGroup(attrs.Ingredients.Protein)), proteinHigh, proteinGood, proteinModerate, proteinLow, string(attrs.Ingredients.Protein.Tier),
		nullIfEmpty(joinGroup(attrs.Ingredients.Fat)), fatHigh, fatGood, fatLow, string(attrs.Ingredients.Fat.Tier),
		nullIfEmpty(joinGroup(attrs.Ingredients.Carb)), carbHigh, carbGood, carbModerate, carbLow, string(attrs.Ingredients.Carb.Tier),
		nullIfEmpty(joinGroup(attrs.Ingredients.Fiber)), fiberHigh, fiberGood, fiberModerate, fiberLow, string(attrs.Ingredients.Fiber.Tier),
		nullIfEmpty(strings.Join(attrs.Ingredients.DirtyDozen.Ingredients, ", ")), attrs.Ingredients.DirtyDozen.Count,
		nullIfEmpty(strings.Join(attrs.Ingredients.Synthetic.Ingredients, ", ")), attrs.Ingredients.Synthetic.Count,
		nullIfEmpty(strings.Join(attrs.Ingredients.Longevity.Ingredients, ", ")), attrs.Ingredients.Longevity.Count,
		attrs.Nutrients.CrudeProteinPct,
		attrs.Nutrients.CrudeFatPct,
		attrs.Nutrients.CrudeFiberPct,
		attrs.Nutrients.MoisturePct,
		attrs.Nutrients.AshPct,
		attrs.Nutrients.StarchyCarbPct,
		brand, attrs.Brand.Confidence, attrs.Brand.Method,
		time.Now().UTC(), h.pipeline.Version(),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrQueryTimeout
		}
		return fmt.Errorf("%w: upsert reprocessed attributes: %v", ErrDatabaseInsertFailed, err)
	}
	return nil
}

func joinGroup(r models.CategoryRollup) string {
	all := make([]string, 0, r.Total())
	all = append(all, r.High...)
	all = append(all, r.Good...)
	all = append(all, r.Moderate...)
	all = append(all, r.Low...)
	return strings.Join(all, ", ")
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// ==========================
// Batch Progress
// ==========================

func batchKey(batchID string) string {
	return "batch:" + batchID
}

func (h *Handler) initProgress(ctx context.Context, batchID string, total int) {
	if h.redisClient == nil {
		return
	}
	key := batchKey(batchID)
	err := h.redisClient.HSet(ctx, key, map[string]interface{}{
		"status":    "running",
		"total":     total,
		"processed": 0,
		"failed":    0,
		"startedAt": time.Now().UTC().Format(time.RFC3339),
	}).Err()
	if err != nil {
		h.logger.Warn("batch progress init failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		return
	}
	h.redisClient.Expire(ctx, key, h.config.ProgressTTL)
}

func (h *Handler) trackProgress(ctx context.Context, batchID, field string) {
	if h.redisClient == nil {
		return
	}
	if err := h.redisClient.HIncrBy(ctx, batchKey(batchID), field, 1).Err(); err != nil {
		h.logger.Warn("batch progress update failed", map[string]interface{}{
			"key":   batchKey(batchID),
			"error": err,
		})
	}
}

// finishProgress writes the authoritative final counts. It runs on a
// fresh context so a batch that burned its deadline still gets its
// terminal status recorded.
func (h *Handler) finishProgress(batchID string, total, succeeded, failed int) {
	if h.redisClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := batchKey(batchID)
	err := h.redisClient.HSet(ctx, key, map[string]interface{}{
		"status":     "done",
		"total":      total,
		"processed":  succeeded,
		"failed":     failed,
		"finishedAt": time.Now().UTC().Format(time.RFC3339),
	}).Err()
	if err != nil {
		h.logger.Warn("batch progress finish failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		return
	}
	h.redisClient.Expire(ctx, key, h.config.ProgressTTL)
}

func (h *Handler) invalidateCache(ctx context.Context, productDetailID int64) {
	if h.redisClient == nil {
		return
	}
	key := fmt.Sprintf("product:attrs:%d", productDetailID)
	if err := h.redisClient.Del(ctx, key).Err(); err != nil {
		h.logger.Warn("attribute cache invalidation failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
}

func mapErrorToCode(err error) (string, int32) {
	switch {
	case errors.Is(err, ErrQueryTimeout):
		return "QUERY_TIMEOUT", 2
	case errors.Is(err, ErrDatabaseInsertFailed):
		return "DATABASE_INSERT_FAILED", 3
	case errors.Is(err, ErrQueryExecutionFailed):
		return "QUERY_EXECUTION_FAILED", 3
	default:
		return "BATCH_FAILED", 0
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
