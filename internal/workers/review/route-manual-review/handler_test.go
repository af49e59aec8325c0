// internal/workers/review/route-manual-review/handler_test.go
package routemanualreview

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"petfood-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
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
		Timeout:  5 * time.Second,
		TopicARN: "arn:aws:sns:us-east-1:000000000000:manual-review",
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

type stubSNS struct {
	calls    int
	topicARN string
	subject  string
	message  string
	err      error
}

func (s *stubSNS) Publish(ctx context.Context, topicARN, subject, message string) (string, error) {
	s.calls++
	s.topicARN = topicARN
	s.subject = subject
	s.message = message
	if s.err != nil {
		return "", s.err
	}
	return "msg-123", nil
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_QueuesAndPublishes(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	reasons := []string{"food category unclassified"}
	mock.ExpectExec("INSERT INTO manual_review_queue").
		WithArgs(int64(42), pq.Array(reasons)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	snsStub := &stubSNS{}
	handler := NewHandler(createTestConfig(), db, snsStub, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		ProductDetailID: 42,
		Blocking:        reasons,
	})
	require.NoError(t, err)

	assert.True(t, output.ReviewQueued)
	assert.Equal(t, reasons, output.Reasons)
	assert.Equal(t, "msg-123", output.NotificationID)

	require.Equal(t, 1, snsStub.calls)
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:manual-review", snsStub.topicARN)
	assert.Contains(t, snsStub.subject, "42")

	var notification reviewNotification
	require.NoError(t, json.Unmarshal([]byte(snsStub.message), &notification))
	assert.Equal(t, int64(42), notification.ProductDetailID)
	assert.Equal(t, reasons, notification.Reasons)
	assert.False(t, notification.QueuedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_FallsBackToPersistedReasons(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT needs_manual_review, manual_review_reasons").
		WithArgs(int64(77)).
		WillReturnRows(sqlmock.NewRows([]string{"needs_manual_review", "manual_review_reasons"}).
			AddRow(true, "food category unclassified; sourcing integrity unclassified"))

	mock.ExpectExec("INSERT INTO manual_review_queue").
		WithArgs(int64(77), pq.Array([]string{"food category unclassified", "sourcing integrity unclassified"})).
		WillReturnResult(sqlmock.NewResult(0, 1))

	handler := NewHandler(createTestConfig(), db, &stubSNS{}, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{ProductDetailID: 77})
	require.NoError(t, err)

	assert.True(t, output.ReviewQueued)
	assert.Len(t, output.Reasons, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_UnflaggedProductDoesNothing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT needs_manual_review, manual_review_reasons").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"needs_manual_review", "manual_review_reasons"}).
			AddRow(false, nil))

	snsStub := &stubSNS{}
	handler := NewHandler(createTestConfig(), db, snsStub, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{ProductDetailID: 5})
	require.NoError(t, err)

	assert.False(t, output.ReviewQueued)
	assert.Zero(t, snsStub.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_EmptyTopicSkipsPublish(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO manual_review_queue").
		WithArgs(int64(42), pq.Array([]string{"processing method unclassified"})).
		WillReturnResult(sqlmock.NewResult(0, 1))

	snsStub := &stubSNS{}
	config := createTestConfig()
	config.TopicARN = ""
	handler := NewHandler(config, db, snsStub, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		ProductDetailID: 42,
		Blocking:        []string{"processing method unclassified"},
	})
	require.NoError(t, err)

	assert.True(t, output.ReviewQueued)
	assert.Empty(t, output.NotificationID)
	assert.Zero(t, snsStub.calls)
}

func TestExecute_PublishFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO manual_review_queue").
		WillReturnResult(sqlmock.NewResult(0, 1))

	snsStub := &stubSNS{err: errors.New("topic not accessible")}
	handler := NewHandler(createTestConfig(), db, snsStub, createTestLogger(t))

	_, err = handler.Execute(context.Background(), &Input{
		ProductDetailID: 42,
		Blocking:        []string{"food category unclassified"},
	})
	assert.ErrorIs(t, err, ErrReviewRoutingFailed)
}

func TestExecute_ErrorPaths(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		input     *Input
		wantErr   error
	}{
		{
			name: "queue insert failure",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO manual_review_queue").
					WillReturnError(fmt.Errorf("deadlock detected"))
			},
			input:   &Input{ProductDetailID: 42, Blocking: []string{"reason"}},
			wantErr: ErrDatabaseInsertFailed,
		},
		{
			name: "missing classification row",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT needs_manual_review, manual_review_reasons").
					WillReturnError(sql.ErrNoRows)
			},
			input:   &Input{ProductDetailID: 404},
			wantErr: ErrProductNotProcessed,
		},
		{
			name: "reason lookup failure",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT needs_manual_review, manual_review_reasons").
					WillReturnError(fmt.Errorf("connection reset"))
			},
			input:   &Input{ProductDetailID: 7},
			wantErr: ErrQueryExecutionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
			require.NoError(t, err)
			defer db.Close()

			tt.setupMock(mock)

			handler := NewHandler(createTestConfig(), db, &stubSNS{}, createTestLogger(t))
			_, err = handler.Execute(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExecute_ValidatesInput(t *testing.T) {
	db, _, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, &stubSNS{}, createTestLogger(t))

	_, err = handler.Execute(context.Background(), nil)
	require.Error(t, err)

	code, retries := mapErrorToCode(err)
	assert.Equal(t, "REVIEW_ROUTING_FAILED", code)
	assert.Zero(t, retries, "validation failures must not retry")
}
