// internal/workers/catalog/fetch-product-text/handler.go
package fetchproducttext

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"petfood-workers/internal/common/catalog"
	cerrors "petfood-workers/internal/common/errors"
	"petfood-workers/internal/common/logger"
	"petfood-workers/internal/common/metrics"
	"petfood-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "fetch-product-text"
)

var (
	ErrFetchFailed          = errors.New("FETCH_FAILED")
	ErrQueryTimeout         = errors.New("QUERY_TIMEOUT")
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
)

// CatalogService is the slice of the catalog client this worker needs.
// Tests substitute a stub instead of standing up the token flow.
type CatalogService interface {
	GetProduct(ctx context.Context, productDetailID int64) (*catalog.Product, error)
}

type Handler struct {
	config  *Config
	db      *sql.DB
	catalog CatalogService
	logger  logger.Logger
}

func NewHandler(config *Config, db *sql.DB, catalogService CatalogService, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		db:      db,
		catalog: catalogService,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		return nil, fmt.Errorf("%w: productDetailId is required", ErrFetchFailed)
	}

	product, err := h.catalog.GetProduct(ctx, input.ProductDetailID)
	if err != nil {
		return nil, err
	}

	detail := detailFromProduct(product)
	if err := h.storeDetail(ctx, detail); err != nil {
		return nil, err
	}

	h.logger.Info("catalog text stored", map[string]interface{}{
		"productDetailId": detail.ID,
		"productId":       detail.ProductID,
	})

	return &Output{
		ProductDetailID: detail.ID,
		ProductID:       detail.ProductID,
		Product:         detail.Text(),
	}, nil
}

func detailFromProduct(p *catalog.Product) *models.ProductDetail {
	return &models.ProductDetail{
		ID:                     p.ID,
		ProductID:              p.ProductID,
		ProductName:            p.Name,
		ProductCategory:        p.Category,
		ProductURL:             p.URL,
		ImageURL:               p.ImageURL,
		Price:                  p.Price,
		Size:                   p.Size,
		Details:                p.Details,
		MoreDetails:            p.MoreDetails,
		Specifications:         p.Specifications,
		Ingredients:            p.Ingredients,
		CaloricContent:         p.CaloricContent,
		GuaranteedAnalysis:     p.GuaranteedAnalysis,
		FeedingInstructions:    p.FeedingInstructions,
		TransitionInstructions: p.TransitionInstructions,
	}
}

// storeDetail upserts the raw text row. The catalog is the source of
// truth for every column here, so a refetch overwrites all of them.
func (h *Handler) storeDetail(ctx context.Context, d *models.ProductDetail) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO product_details (
			id, product_id, product_name, product_category, product_url, image_url,
			price, size, details, more_details, specifications, ingredients,
			caloric_content, guaranteed_analysis, feeding_instructions, transition_instructions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			product_id = EXCLUDED.product_id,
			product_name = EXCLUDED.product_name,
			product_category = EXCLUDED.product_category,
			product_url = EXCLUDED.product_url,
			image_url = EXCLUDED.image_url,
			price = EXCLUDED.price,
			size = EXCLUDED.size,
			details = EXCLUDED.details,
			more_details = EXCLUDED.more_details,
			specifications = EXCLUDED.specifications,
			ingredients = EXCLUDED.ingredients,
			caloric_content = EXCLUDED.caloric_content,
			guaranteed_analysis = EXCLUDED.guaranteed_analysis,
			feeding_instructions = EXCLUDED.feeding_instructions,
			transition_instructions = EXCLUDED.transition_instructions`,
		d.ID, d.ProductID, d.ProductName, nullIfEmpty(d.ProductCategory),
		nullIfEmpty(d.ProductURL), nullIfEmpty(d.ImageURL),
		nullIfEmpty(d.Price), nullIfEmpty(d.Size),
		nullIfEmpty(d.Details), nullIfEmpty(d.MoreDetails),
		nullIfEmpty(d.Specifications), nullIfEmpty(d.Ingredients),
		nullIfEmpty(d.CaloricContent), nullIfEmpty(d.GuaranteedAnalysis),
		nullIfEmpty(d.FeedingInstructions), nullIfEmpty(d.TransitionInstructions))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrQueryTimeout
		}
		return fmt.Errorf("%w: store product detail: %v", ErrDatabaseInsertFailed, err)
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// mapErrorToCode prefers the catalog client's StandardError, which
// already carries a BPMN code and retry budget.
func mapErrorToCode(err error) (string, int32) {
	var stdErr *cerrors.StandardError
	if errors.As(err, &stdErr) {
		bpmnErr := cerrors.ConvertToBPMNError(stdErr)
		return bpmnErr.Code, int32(bpmnErr.Retries)
	}
	switch {
	case errors.Is(err, ErrQueryTimeout):
		return "QUERY_TIMEOUT", 2
	case errors.Is(err, ErrDatabaseInsertFailed):
		return "DATABASE_INSERT_FAILED", 3
	default:
		return "FETCH_FAILED", 0
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
