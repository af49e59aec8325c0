// internal/workers/catalog/index-product/handler.go
package indexproduct

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"petfood-workers/internal/common/logger"
	"petfood-workers/internal/common/metrics"
	"petfood-workers/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	TaskType = "index-product"
)

var (
	ErrProductNotProcessed           = errors.New("PRODUCT_NOT_PROCESSED")
	ErrIndexingFailed                = errors.New("INDEXING_FAILED")
	ErrElasticsearchConnectionFailed = errors.New("ELASTICSEARCH_CONNECTION_FAILED")
	ErrSearchTimeout                 = errors.New("SEARCH_TIMEOUT")
	ErrQueryExecutionFailed          = errors.New("QUERY_EXECUTION_FAILED")
	ErrQueryTimeout                  = errors.New("QUERY_TIMEOUT")
)

type Handler struct {
	config *Config
	db     *sql.DB
	es     *elasticsearch.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, esClient *elasticsearch.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
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
	if input == nil || input.ProductDetailID <= 0 {
		return nil, errors.New("productDetailId is required")
	}

	doc, err := h.loadDocument(ctx, input.ProductDetailID)
	if err != nil {
		return nil, err
	}

	indexName := input.IndexName
	if indexName == "" {
		indexName = h.config.IndexName
	}

	result, err := h.indexDocument(ctx, indexName, doc)
	if err != nil {
		return nil, err
	}

	h.logger.Info("product indexed", map[string]interface{}{
		"productDetailId": doc.ProductDetailID,
		"indexName":       indexName,
		"result":          result,
	})

	return &Output{
		ProductDetailID: doc.ProductDetailID,
		IndexName:       indexName,
		DocumentID:      strconv.FormatInt(doc.ProductDetailID, 10),
		Result:          result,
	}, nil
}

// loadDocument joins the raw text row with its classification row.
// Products without a classification row are not indexable yet.
func (h *Handler) loadDocument(ctx context.Context, productDetailID int64) (*ProductDocument, error) {
	var (
		productID                             int64
		name                                  string
		category, ingredients                 sql.NullString
		brand, foodCategory, sourcing, method sql.NullString
		adequate, version                     sql.NullString
		baseScore                             sql.NullFloat64
		needsReview                           sql.NullBool
	)

	err := h.db.QueryRowContext(ctx, `
		SELECT d.product_id, d.product_name, d.product_category, d.ingredients,
		       p.brand, p.food_category, p.sourcing_integrity, p.processing_method_1,
		       p.nutritionally_adequate, p.base_score, p.needs_manual_review, p.processor_version
		FROM product_details d
		JOIN processed_products p ON p.product_detail_id = d.id
		WHERE d.id = $1`, productDetailID).
		Scan(&productID, &name, &category, &ingredients,
			&brand, &foodCategory, &sourcing, &method,
			&adequate, &baseScore, &needsReview, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: product detail %d has no classification row", ErrProductNotProcessed, productDetailID)
		}
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrQueryTimeout
		}
		return nil, fmt.Errorf("%w: load product summary: %v", ErrQueryExecutionFailed, err)
	}

	doc := &ProductDocument{
		ProductDetailID:       productDetailID,
		ProductID:             productID,
		Name:                  name,
		Category:              category.String,
		Brand:                 brand.String,
		Ingredients:           ingredients.String,
		FoodCategory:          foodCategory.String,
		SourcingIntegrity:     sourcing.String,
		ProcessingMethod:      method.String,
		NutritionallyAdequate: adequate.String,
		NeedsManualReview:     needsReview.Bool,
		ProcessorVersion:      version.String,
		IndexedAt:             time.Now().UTC(),
	}
	if baseScore.Valid {
		score := baseScore.Float64
		doc.BaseScore = &score
		doc.ScoreBucket = string(scoring.Bucket(score))
		doc.Grade = string(scoring.Grade(score))
	}
	return doc, nil
}

// indexDocument writes the summary keyed by product detail ID, so a
// re-index overwrites instead of duplicating.
func (h *Handler) indexDocument(ctx context.Context, indexName string, doc *ProductDocument) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: marshal document: %v", ErrIndexingFailed, err)
	}

	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: strconv.FormatInt(doc.ProductDetailID, 10),
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, h.es)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", ErrSearchTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrElasticsearchConnectionFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", fmt.Errorf("%w: %s", ErrIndexingFailed, res.String())
	}

	var r struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("%w: decode index response: %v", ErrIndexingFailed, err)
	}
	return r.Result, nil
}

func mapErrorToCode(err error) (string, int32) {
	switch {
	case errors.Is(err, ErrProductNotProcessed):
		return "PRODUCT_NOT_PROCESSED", 0
	case errors.Is(err, ErrQueryTimeout):
		return "QUERY_TIMEOUT", 2
	case errors.Is(err, ErrQueryExecutionFailed):
		return "QUERY_EXECUTION_FAILED", 3
	case errors.Is(err, ErrSearchTimeout):
		return "SEARCH_TIMEOUT", 2
	case errors.Is(err, ErrElasticsearchConnectionFailed):
		return "ELASTICSEARCH_CONNECTION_FAILED", 3
	case errors.Is(err, ErrIndexingFailed):
		return "INDEXING_FAILED", 3
	default:
		return "INDEXING_FAILED", 0
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
