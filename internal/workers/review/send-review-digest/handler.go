// internal/workers/review/send-review-digest/handler.go
package sendreviewdigest

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
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	TaskType = "send-review-digest"
)

var (
	ErrDigestSendFailed     = errors.New("DIGEST_SEND_FAILED")
	ErrQueryExecutionFailed = errors.New("QUERY_EXECUTION_FAILED")
	ErrQueryTimeout         = errors.New("QUERY_TIMEOUT")
)

// SESService is the slice of the SES client this worker sends through.
// Tests substitute a stub.
type SESService interface {
	SendEmail(ctx context.Context, from string, to []string, subject, body string) (string, error)
}

type Handler struct {
	config *Config
	db     *sql.DB
	ses    SESService
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, sesService SESService, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		ses:    sesService,
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
	limit := h.config.MaxItems
	if limit <= 0 {
		limit = 50
	}
	if input != nil && input.Limit > 0 && input.Limit < limit {
		limit = input.Limit
	}

	items, err := h.loadPendingItems(ctx, limit)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		h.logger.Info("no pending reviews, digest skipped", map[string]interface{}{
			"limit": limit,
		})
		return &Output{ItemCount: 0, Sent: false}, nil
	}

	recipients := h.config.Recipients
	if input != nil && len(input.Recipients) > 0 {
		recipients = input.Recipients
	}
	if h.ses == nil || len(recipients) == 0 {
		return nil, fmt.Errorf("%w: no recipients configured", ErrDigestSendFailed)
	}

	digestID := uuid.New().String()
	subject, body := renderDigest(digestID, items)

	messageID, err := h.ses.SendEmail(ctx, h.config.FromEmail, recipients, subject, body)
	if err != nil {
		return nil, fmt.Errorf("%w: send digest: %v", ErrDigestSendFailed, err)
	}

	h.markNotified(ctx, items)

	h.logger.Info("review digest sent", map[string]interface{}{
		"digestId":  digestID,
		"itemCount": len(items),
		"messageId": messageID,
	})

	return &Output{
		DigestID:  digestID,
		ItemCount: len(items),
		Sent:      true,
		MessageID: messageID,
		Items:     items,
	}, nil
}

func (h *Handler) loadPendingItems(ctx context.Context, limit int) ([]ReviewItem, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT q.product_detail_id, d.product_name, p.brand, q.reasons, q.created_at
		FROM manual_review_queue q
		JOIN product_details d ON d.id = q.product_detail_id
		LEFT JOIN processed_products p ON p.product_detail_id = q.product_detail_id
		WHERE q.status = 'pending'
		ORDER BY q.created_at
		LIMIT $1`, limit)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrQueryTimeout
		}
		return nil, fmt.Errorf("%w: load pending reviews: %v", ErrQueryExecutionFailed, err)
	}
	defer rows.Close()

	var items []ReviewItem
	for rows.Next() {
		var (
			item    ReviewItem
			brand   sql.NullString
			reasons pq.StringArray
		)
		if err := rows.Scan(&item.ProductDetailID, &item.ProductName, &brand, &reasons, &item.QueuedAt); err != nil {
			return nil, fmt.Errorf("%w: scan review row: %v", ErrQueryExecutionFailed, err)
		}
		item.Brand = brand.String
		item.Reasons = reasons
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrQueryTimeout
		}
		return nil, fmt.Errorf("%w: iterate review rows: %v", ErrQueryExecutionFailed, err)
	}
	return items, nil
}

// renderDigest builds the plain-text digest, one block per product.
func renderDigest(digestID string, items []ReviewItem) (string, string) {
	subject := fmt.Sprintf("Manual review digest: %d product(s) awaiting review", len(items))

	var b strings.Builder
	fmt.Fprintf(&b, "Digest %s\n\n", digestID)
	fmt.Fprintf(&b, "%d product(s) are waiting for manual review:\n\n", len(items))
	for _, item := range items {
		fmt.Fprintf(&b, "- #%d %s", item.ProductDetailID, item.ProductName)
		if item.Brand != "" {
			fmt.Fprintf(&b, " (%s)", item.Brand)
		}
		fmt.Fprintf(&b, "\n  queued %s\n", item.QueuedAt.Format("2006-01-02 15:04"))
		for _, reason := range item.Reasons {
			fmt.Fprintf(&b, "  * %s\n", reason)
		}
		b.WriteString("\n")
	}
	return subject, b.String()
}

// markNotified moves the digested rows out of pending. Failing here
// after the email went out must not fail the job, or the retry would
// send the digest twice; the rows simply reappear in the next one.
func (h *Handler) markNotified(ctx context.Context, items []ReviewItem) {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ProductDetailID
	}

	_, err := h.db.ExecContext(ctx, `
		UPDATE manual_review_queue
		SET status = 'notified', notified_at = NOW(), updated_at = NOW()
		WHERE product_detail_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		h.logger.Warn("failed to mark reviews notified", map[string]interface{}{
			"error": err,
			"ids":   ids,
		})
	}
}

func mapErrorToCode(err error) (string, int32) {
	switch {
	case errors.Is(err, ErrQueryTimeout):
		return "QUERY_TIMEOUT", 2
	case errors.Is(err, ErrQueryExecutionFailed):
		return "QUERY_EXECUTION_FAILED", 3
	case errors.Is(err, ErrDigestSendFailed):
		return "DIGEST_SEND_FAILED", 3
	default:
		return "DIGEST_SEND_FAILED", 0
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
