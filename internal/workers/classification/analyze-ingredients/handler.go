// internal/workers/classification/analyze-ingredients/handler.go
package analyzeingredients

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
)

const (
	TaskType = "analyze-ingredients"
)

var (
	ErrProductNotFound      = errors.New("PRODUCT_NOT_FOUND")
	ErrAnalysisFailed       = errors.New("ANALYSIS_FAILED")
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
		return nil, fmt.Errorf("%w: productDetailId is required", ErrAnalysisFailed)
	}

	ingredients := input.Ingredients
	if ingredients == "" {
		loaded, err := h.loadIngredients(ctx, input.ProductDetailID)
		if err != nil {
			return nil, err
		}
		ingredients = loaded
	}

	analysis := h.pipeline.Ingredients.Analyze(ingredients)

	if err := h.persist(ctx, input.ProductDetailID, ingredients, analysis); err != nil {
		return nil, err
	}

	h.logger.Info("ingredients analyzed", map[string]interface{}{
		"productDetailId": input.ProductDetailID,
		"proteinTier":     string(analysis.Protein.Tier),
		"dirtyDozenCount": analysis.DirtyDozen.Count,
		"syntheticCount":  analysis.Synthetic.Count,
		"longevityCount":  analysis.Longevity.Count,
	})

	return &Output{
		ProductDetailID:  input.ProductDetailID,
		Analysis:         analysis,
		ProcessorVersion: h.pipeline.Version(),
	}, nil
}

func (h *Handler) loadIngredients(ctx context.Context, productDetailID int64) (string, error) {
	var ingredients sql.NullString
	err := h.db.QueryRowContext(ctx,
		`SELECT ingredients FROM product_details WHERE id = $1`, productDetailID).
		Scan(&ingredients)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: product detail %d", ErrProductNotFound, productDetailID)
		}
		if ctx.Err() == context.DeadlineExceeded {
			return "", ErrQueryTimeout
		}
		return "", fmt.Errorf("%w: load ingredients: %v", ErrQueryExecutionFailed, err)
	}
	return ingredients.String, nil
}

func (h *Handler) persist(ctx context.Context, productDetailID int64, ingredients string, analysis models.IngredientAnalysis) error {
	proteinHigh, proteinGood, proteinModerate, proteinLow := analysis.Protein.Counts()
	fatHigh, fatGood, _, fatLow := analysis.Fat.Counts()
	carbHigh, carbGood, carbModerate, carbLow := analysis.Carb.Counts()
	fiberHigh, fiberGood, fiberModerate, fiberLow := analysis.Fiber.Counts()

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO processed_products (
			product_detail_id,
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
			processed_at, processor_version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		          $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
		          $31, $32, $33)
		ON CONFLICT (product_detail_id) DO UPDATE SET
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
			processed_at = EXCLUDED.processed_at,
			processor_version = EXCLUDED.processor_version`,
		productDetailID,
		nullIfEmpty(strings.Join(classifier.SplitIngredients(ingredients), ", ")),
		nullIfEmpty(joinGroup(analysis.Protein)), proteinHigh, proteinGood, proteinModerate, proteinLow, string(analysis.Protein.Tier),
		nullIfEmpty(joinGroup(analysis.Fat)), fatHigh, fatGood, fatLow, string(analysis.Fat.Tier),
		nullIfEmpty(joinGroup(analysis.Carb)), carbHigh, carbGood, carbModerate, carbLow, string(analysis.Carb.Tier),
		nullIfEmpty(joinGroup(analysis.Fiber)), fiberHigh, fiberGood, fiberModerate, fiberLow, string(analysis.Fiber.Tier),
		nullIfEmpty(strings.Join(analysis.DirtyDozen.Ingredients, ", ")), analysis.DirtyDozen.Count,
		nullIfEmpty(strings.Join(analysis.Synthetic.Ingredients, ", ")), analysis.Synthetic.Count,
		nullIfEmpty(strings.Join(analysis.Longevity.Ingredients, ", ")), analysis.Longevity.Count,
		time.Now().UTC(), h.pipeline.Version(),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrQueryTimeout
		}
		return fmt.Errorf("%w: upsert ingredient analysis: %v", ErrDatabaseInsertFailed, err)
	}
	return nil
}

// joinGroup flattens a rollup back into one display list, highest tier
// first, matching the order the tiers were assigned in.
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
		return "ANALYSIS_FAILED", 0
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
