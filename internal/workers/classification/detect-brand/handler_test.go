// internal/workers/classification/detect-brand/handler_test.go
package detectbrand

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"petfood-workers/internal/classifier"
	"petfood-workers/internal/common/logger"
	"petfood-workers/internal/keywords"
	"petfood-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// ==========================
// Test Helpers
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func createTestPipeline() *classifier.Pipeline {
	return classifier.NewPipeline(keywords.Default(), "test-1.0.0")
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_DetectionTiers(t *testing.T) {
	tests := []struct {
		name               string
		text               models.ProductText
		expectedBrand      string
		expectedMethod     string
		expectedConfidence string
	}{
		{
			name:               "longest brand wins at name start",
			text:               models.ProductText{Name: "Blue Buffalo Wilderness Chicken Recipe"},
			expectedBrand:      "Blue Buffalo Wilderness",
			expectedMethod:     models.BrandMethodStartsWith,
			expectedConfidence: models.BrandConfidenceHigh,
		},
		{
			name:               "brand inside the name",
			text:               models.ProductText{Name: "Grain Free Recipe by Purina"},
			expectedBrand:      "Purina",
			expectedMethod:     models.BrandMethodContains,
			expectedConfidence: models.BrandConfidenceMedium,
		},
		{
			name: "brand only in fallback fields",
			text: models.ProductText{
				Details: "Made by Stella & Chewy's in the USA.",
			},
			expectedBrand:      "Stella & Chewy's",
			expectedMethod:     models.BrandMethodFallback,
			expectedConfidence: models.BrandConfidenceMedium,
		},
		{
			name:               "misspelled name fuzzy-matches",
			text:               models.ProductText{Name: "Purrina Pro Plann Adult"},
			expectedBrand:      "Purina Pro Plan",
			expectedMethod:     models.BrandMethodFuzzy,
			expectedConfidence: models.BrandConfidenceLow,
		},
		{
			name:               "unknown brand",
			text:               models.ProductText{Name: "ACME 123"},
			expectedBrand:      "",
			expectedMethod:     models.BrandMethodNone,
			expectedConfidence: models.BrandConfidenceNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec("INSERT INTO processed_products").
				WillReturnResult(sqlmock.NewResult(1, 1))

			text := tt.text
			handler := NewHandler(createTestConfig(), db, createTestPipeline(), createTestLogger(t))
			output, err := handler.Execute(context.Background(), &Input{
				ProductDetailID: 30,
				Product:         &text,
			})

			require.NoError(t, err)
			require.NotNil(t, output)
			assert.Equal(t, tt.expectedBrand, output.Detection.Brand)
			assert.Equal(t, tt.expectedMethod, output.Detection.Method)
			assert.Equal(t, tt.expectedConfidence, output.Detection.Confidence)
			assert.NotEmpty(t, output.Detection.Reason)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestExecute_PersistsDetection(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO processed_products").
		WithArgs(
			int64(31),
			"Blue Buffalo Wilderness", models.BrandConfidenceHigh, models.BrandMethodStartsWith,
			sqlmock.AnyArg(), "test-1.0.0",
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	text := models.ProductText{Name: "Blue Buffalo Wilderness Chicken Recipe"}
	handler := NewHandler(createTestConfig(), db, createTestPipeline(), createTestLogger(t))
	_, err = handler.Execute(context.Background(), &Input{ProductDetailID: 31, Product: &text})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_PersistsNullBrandWhenNoneDetected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO processed_products").
		WithArgs(
			int64(32),
			nil, models.BrandConfidenceNone, models.BrandMethodNone,
			sqlmock.AnyArg(), "test-1.0.0",
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	text := models.ProductText{Name: "ACME 123"}
	handler := NewHandler(createTestConfig(), db, createTestPipeline(), createTestLogger(t))
	_, err = handler.Execute(context.Background(), &Input{ProductDetailID: 32, Product: &text})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_LoadsTextFromDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT product_name, details").
		WithArgs(int64(33)).
		WillReturnRows(sqlmock.NewRows([]string{
			"product_name", "details", "more_details", "specifications", "ingredients",
		}).AddRow("Orijen Original Dry Dog Food", "", "", "", ""))
	mock.ExpectExec("INSERT INTO processed_products").
		WillReturnResult(sqlmock.NewResult(1, 1))

	handler := NewHandler(createTestConfig(), db, createTestPipeline(), createTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{ProductDetailID: 33})

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, "Orijen", output.Detection.Brand)
	assert.Equal(t, models.BrandMethodStartsWith, output.Detection.Method)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_ErrorPaths(t *testing.T) {
	tests := []struct {
		name        string
		input       *Input
		mockQuery   func(mock sqlmock.Sqlmock)
		expectedErr error
	}{
		{
			name:  "product not found",
			input: &Input{ProductDetailID: 404},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT product_name, details").
					WithArgs(int64(404)).
					WillReturnError(sql.ErrNoRows)
			},
			expectedErr: ErrProductNotFound,
		},
		{
			name:  "query execution failure",
			input: &Input{ProductDetailID: 34},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT product_name, details").
					WithArgs(int64(34)).
					WillReturnError(errors.New("connection refused"))
			},
			expectedErr: ErrQueryExecutionFailed,
		},
		{
			name: "upsert failure",
			input: &Input{
				ProductDetailID: 35,
				Product:         &models.ProductText{Name: "Orijen Original"},
			},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO processed_products").
					WillReturnError(errors.New("deadlock detected"))
			},
			expectedErr: ErrDatabaseInsertFailed,
		},
		{
			name:        "nil input",
			input:       nil,
			mockQuery:   func(mock sqlmock.Sqlmock) {},
			expectedErr: ErrDetectionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mockQuery(mock)

			handler := NewHandler(createTestConfig(), db, createTestPipeline(), createTestLogger(t))
			output, err := handler.Execute(context.Background(), tt.input)

			require.Error(t, err)
			assert.Nil(t, output)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkExecute(b *testing.B) {
	db, mock, err := sqlmock.New()
	if err != nil {
		b.Fatalf("failed to create mock database: %v", err)
	}
	defer db.Close()

	zapLogger, _ := zap.NewProduction()
	handler := NewHandler(createTestConfig(), db, createTestPipeline(), logger.NewZapAdapter(zapLogger))
	text := models.ProductText{Name: "Blue Buffalo Wilderness Chicken Recipe"}
	input := &Input{ProductDetailID: 1, Product: &text}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		mock.ExpectExec("INSERT INTO processed_products").
			WillReturnResult(sqlmock.NewResult(1, 1))
		if _, err := handler.Execute(context.Background(), input); err != nil {
			b.Fatalf("execute failed: %v", err)
		}
	}
}
