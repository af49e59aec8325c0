// internal/workers/review/route-manual-review/handler.go
package routemanualreview

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"petfood-workers/internal/common/logger"
	"petfood-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"
)

const (
	TaskType = "route-manual-review"
)

var (
	ErrProductNotProcessed  = errors.New("PRODUCT_NOT_PROCESSED")
	ErrReviewRoutingFailed  = errors.New("REVIEW_ROUTING_FAILED")
	ErrQueryExecutionFailed = errors.New("QUERY_EXECUTION_FAILED")
	ErrQueryTimeout         = errors.New("QUERY_TIMEOUT")
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
)

// SNSService is the slice of the SNS client this worker publishes
// through. Tests substitute a stub.
type SNSService interface {
	Publish(ctx context.Context, topicARN, subject, message string) (string, error)
}

// reviewNotification is the SNS message payload.
type reviewNotification struct {
	ProductDetailID int64     `json:"productDetailId"`
	Reasons         []string  `json:"reasons"`
	QueuedAt        time.Time `json:"queuedAt"`
}

type Handler struct {
	config *Config
	db     *sql.DB
	sns    SNSService
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, snsService SNSService, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		sns:    snsService,
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

	reasons := input.Blocking
	if len(reasons) == 0 {
		persisted, err := h.loadPersistedReasons(ctx, input.ProductDetailID)
		if err != nil {
			return nil, err
		}
		reasons = persisted
	}

	if len(reasons) == 0 {
		h.logger.Info("product not flagged for review", map[string]interface{}{
			"productDetailId": input.ProductDetailID,
		})
		return &Output{
			ProductDetailID: input.ProductDetailID,
			ReviewQueued:    false,
		}, nil
	}

	if err := h.queueReview(ctx, input.ProductDetailID, reasons); err != nil {
		return nil, err
	}

	notificationID, err := h.publishNotification(ctx, input.ProductDetailID, reasons)
	if err != nil {
		return nil, err
	}

	h.logger.Info("review queued", map[string]interface{}{
		"productDetailId": input.ProductDetailID,
		"reasons":         reasons,
		"notificationId":  notificationID,
	})

	return &Output{
		ProductDetailID: input.ProductDetailID,
		ReviewQueued:    true,
		Reasons:         reasons,
		NotificationID:  notificationID,
	}, nil
}

// loadPersistedReasons reads the review flag written by the scoring
// step. An unflagged row yields no reasons.
func (h *Handler) loadPersistedReasons(ctx context.Context, productDetailID int64) ([]string, error) {
	var (
		needsReview sql.NullBool
		rawReasons  sql.NullString
	)

	err := h.db.QueryRowContext(ctx, `
		SELECT needs_manual_review, manual_review_reasons
		FROM processed_products
		WHERE product_detail_id = $1`, productDetailID).
		Scan(&needsReview, &rawReasons)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: product detail %d has no classification row", ErrProductNotProcessed, productDetailID)
		}
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrQueryTimeout
		}
		return nil, fmt.Errorf("%w: load review reasons: %v", ErrQueryExecutionFailed, err)
	}

	if !needsReview.Bool || rawReasons.String == "" {
		return nil, nil
	}
	return strings.Split(rawReasons.String, "; "), nil
}

// queueReview upserts the pending row, so re-routing a product after a
// reclassification refreshes its reasons instead of duplicating it.
func (h *Handler) queueReview(ctx context.Context, productDetailID int64, reasons []string) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO manual_review_queue (product_detail_id, reasons, status, created_at, updated_at)
		VALUES ($1, $2, 'pending', NOW(), NOW())
		ON CONFLICT (product_detail_id) DO UPDATE SET
			reasons = EXCLUDED.reasons,
			status = 'pending',
			updated_at = NOW()`,
		productDetailID, pq.Array(reasons))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrQueryTimeout
		}
		return fmt.Errorf("%w: queue review: %v", ErrDatabaseInsertFailed, err)
	}
	return nil
}

// publishNotification pushes the blocking factors to the review topic.
// Without a client or topic the queue row stands alone.
func (h *Handler) publishNotification(ctx context.Context, productDetailID int64, reasons []string) (string, error) {
	if h.sns == nil || h.config.TopicARN == "" {
		h.logger.Info("sns publishing disabled, review queued without notification", map[string]interface{}{
			"productDetailId": productDetailID,
		})
		return "", nil
	}

	payload, err := json.Marshal(reviewNotification{
		ProductDetailID: productDetailID,
		Reasons:         reasons,
		QueuedAt:        time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal notification: %v", ErrReviewRoutingFailed, err)
	}

	subject := fmt.Sprintf("Manual review needed for product %d", productDetailID)
	messageID, err := h.sns.Publish(ctx, h.config.TopicARN, subject, string(payload))
	if err != nil {
		return "", fmt.Errorf("%w: publish notification: %v", ErrReviewRoutingFailed, err)
	}
	return messageID, nil
}

func mapErrorToCode(err error) (string, int32) {
	switch {
	case errors.Is(err, ErrProductNotProcessed):
		return "PRODUCT_NOT_PROCESSED", 0
	case errors.Is(err, ErrQueryTimeout):
		return "QUERY_TIMEOUT", 2
	case errors.Is(err, ErrDatabaseInsertFailed):
		return "DATABASE_INSERT_FAILED", 3
	case errors.Is(err, ErrQueryExecutionFailed):
		return "QUERY_EXECUTION_FAILED", 3
	case errors.Is(err, ErrReviewRoutingFailed):
		return "REVIEW_ROUTING_FAILED", 3
	default:
		return "REVIEW_ROUTING_FAILED", 0
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
