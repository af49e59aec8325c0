// internal/workers/review/send-review-digest/handler_test.go
package sendreviewdigest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"petfood-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// ==========================
// Test Helpers
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:    5 * time.Second,
		FromEmail:  "quality@petfood.example",
		Recipients: []string{"reviewers@petfood.example"},
		MaxItems:   50,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

type stubSES struct {
	calls   int
	from    string
	to      []string
	subject string
	body    string
	err     error
}

func (s *stubSES) SendEmail(ctx context.Context, from string, to []string, subject, body string) (string, error) {
	s.calls++
	s.from = from
	s.to = to
	s.subject = subject
	s.body = body
	if s.err != nil {
		return "", s.err
	}
	return "ses-msg-1", nil
}

func pendingColumns() []string {
	return []string{"product_detail_id", "product_name", "brand", "reasons", "created_at"}
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_SendsDigest(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	queuedAt := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery("FROM manual_review_queue q").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows(pendingColumns()).
			AddRow(int64(1), "Salmon Feast", "Acme Pet Foods",
				`{"food category unclassified","sourcing integrity unclassified"}`, queuedAt).
			AddRow(int64(2), "Chicken Dinner", nil,
				`{"base score below threshold"}`, queuedAt.Add(time.Hour)))
	mock.ExpectExec("UPDATE manual_review_queue").
		WithArgs(pq.Array([]int64{1, 2})).
		WillReturnResult(sqlmock.NewResult(0, 2))

	sesStub := &stubSES{}
	handler := NewHandler(createTestConfig(), db, sesStub, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.True(t, output.Sent)
	assert.Equal(t, 2, output.ItemCount)
	assert.Equal(t, "ses-msg-1", output.MessageID)
	_, err = uuid.Parse(output.DigestID)
	assert.NoError(t, err, "digest id must be a uuid")

	require.Len(t, output.Items, 2)
	assert.Equal(t, "Acme Pet Foods", output.Items[0].Brand)
	assert.Equal(t, "", output.Items[1].Brand)
	assert.Equal(t, []string{"base score below threshold"}, output.Items[1].Reasons)

	require.Equal(t, 1, sesStub.calls)
	assert.Equal(t, "quality@petfood.example", sesStub.from)
	assert.Equal(t, []string{"reviewers@petfood.example"}, sesStub.to)
	assert.Contains(t, sesStub.subject, "2 product(s)")

	body := sesStub.body
	assert.Contains(t, body, output.DigestID)
	assert.Contains(t, body, "- #1 Salmon Feast (Acme Pet Foods)")
	assert.Contains(t, body, "- #2 Chicken Dinner\n")
	assert.NotContains(t, body, "Chicken Dinner (", "empty brand must not render parentheses")
	assert.Contains(t, body, "queued 2024-03-01 09:30")
	assert.Contains(t, body, "  * food category unclassified\n")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_EmptyQueueSkipsSend(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM manual_review_queue q").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows(pendingColumns()))

	sesStub := &stubSES{}
	handler := NewHandler(createTestConfig(), db, sesStub, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.False(t, output.Sent)
	assert.Equal(t, 0, output.ItemCount)
	assert.Empty(t, output.DigestID)
	assert.Zero(t, sesStub.calls, "no email goes out for an empty queue")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_InputNarrowsLimitAndRecipients(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	queuedAt := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery("FROM manual_review_queue q").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(pendingColumns()).
			AddRow(int64(7), "Beef Stew", "Acme Pet Foods",
				`{"processing method unclassified"}`, queuedAt))
	mock.ExpectExec("UPDATE manual_review_queue").
		WithArgs(pq.Array([]int64{7})).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sesStub := &stubSES{}
	handler := NewHandler(createTestConfig(), db, sesStub, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Recipients: []string{"oncall@petfood.example"},
		Limit:      1,
	})
	require.NoError(t, err)

	assert.True(t, output.Sent)
	assert.Equal(t, 1, output.ItemCount)
	require.Equal(t, 1, sesStub.calls)
	assert.Equal(t, []string{"oncall@petfood.example"}, sesStub.to)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_NoRecipientsConfigured(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	queuedAt := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery("FROM manual_review_queue q").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows(pendingColumns()).
			AddRow(int64(1), "Salmon Feast", "Acme Pet Foods",
				`{"food category unclassified"}`, queuedAt))

	config := createTestConfig()
	config.Recipients = nil
	sesStub := &stubSES{}
	handler := NewHandler(config, db, sesStub, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{})
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrDigestSendFailed)
	assert.Nil(t, output)
	assert.Zero(t, sesStub.calls)
}

func TestExecute_SendFailureLeavesQueuePending(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	queuedAt := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery("FROM manual_review_queue q").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows(pendingColumns()).
			AddRow(int64(1), "Salmon Feast", "Acme Pet Foods",
				`{"food category unclassified"}`, queuedAt))

	sesStub := &stubSES{err: fmt.Errorf("ses throttled")}
	handler := NewHandler(createTestConfig(), db, sesStub, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{})
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrDigestSendFailed)
	assert.Nil(t, output)
	// No UPDATE was expected: the rows stay pending for the retry.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_MarkNotifiedFailureStillSucceeds(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	queuedAt := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery("FROM manual_review_queue q").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows(pendingColumns()).
			AddRow(int64(1), "Salmon Feast", "Acme Pet Foods",
				`{"food category unclassified"}`, queuedAt))
	mock.ExpectExec("UPDATE manual_review_queue").
		WithArgs(pq.Array([]int64{1})).
		WillReturnError(fmt.Errorf("connection reset"))

	sesStub := &stubSES{}
	handler := NewHandler(createTestConfig(), db, sesStub, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{})
	require.NoError(t, err, "the email went out, so the job must not fail")

	assert.True(t, output.Sent)
	assert.Equal(t, "ses-msg-1", output.MessageID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_QueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM manual_review_queue q").
		WithArgs(50).
		WillReturnError(fmt.Errorf("connection refused"))

	handler := NewHandler(createTestConfig(), db, &stubSES{}, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{})
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrQueryExecutionFailed)
	assert.Nil(t, output)
}

// ==========================
// Error Mapping Tests
// ==========================

func TestMapErrorToCode(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectedCode  string
		expectedRetry int32
	}{
		{"query timeout", ErrQueryTimeout, "QUERY_TIMEOUT", 2},
		{"query failure", fmt.Errorf("%w: boom", ErrQueryExecutionFailed), "QUERY_EXECUTION_FAILED", 3},
		{"send failure", fmt.Errorf("%w: throttled", ErrDigestSendFailed), "DIGEST_SEND_FAILED", 3},
		{"unknown error", errors.New("boom"), "DIGEST_SEND_FAILED", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, retries := mapErrorToCode(tt.err)
			assert.Equal(t, tt.expectedCode, code)
			assert.Equal(t, tt.expectedRetry, retries)
		})
	}
}
