// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"petfood-workers/internal/classifier"
	"petfood-workers/internal/common/catalog"
	"petfood-workers/internal/common/config"
	"petfood-workers/internal/common/database"
	"petfood-workers/internal/common/logger"
	"petfood-workers/internal/keywords"
	"petfood-workers/internal/models"

	fetchproducttext "petfood-workers/internal/workers/catalog/fetch-product-text"
	indexproduct "petfood-workers/internal/workers/catalog/index-product"
	searchproducts "petfood-workers/internal/workers/catalog/search-products"

	analyzeingredients "petfood-workers/internal/workers/classification/analyze-ingredients"
	classifyattributes "petfood-workers/internal/workers/classification/classify-attributes"
	detectbrand "petfood-workers/internal/workers/classification/detect-brand"
	extractnutrients "petfood-workers/internal/workers/classification/extract-nutrients"
	reprocessproducts "petfood-workers/internal/workers/classification/reprocess-products"

	calculatebasescore "petfood-workers/internal/workers/scoring/calculate-base-score"
	calculatefinalscore "petfood-workers/internal/workers/scoring/calculate-final-score"

	routemanualreview "petfood-workers/internal/workers/review/route-manual-review"
	sendreviewdigest "petfood-workers/internal/workers/review/send-review-digest"
)

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
	pipeline    *classifier.Pipeline
)

// Fixture IDs, high enough to stay clear of real catalog rows. The
// clean product runs the full pipeline; the flagged one exercises the
// review path.
const (
	cleanProductID   int64 = 910001
	flaggedProductID int64 = 910002

	e2eIndex = "petfood-e2e"
)

func TestMain(m *testing.M) {
	// The suite needs the full docker-compose stack (Zeebe, Postgres,
	// Elasticsearch, Redis). Gate it so plain `go test ./...` stays green.
	if os.Getenv("E2E") == "" {
		fmt.Println("⏭️  E2E not set, skipping end-to-end suite")
		os.Exit(0)
	}

	var err error
	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         "localhost:26500",
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("❌ Failed to connect to Zeebe: %v", err))
	}

	zapLog, _ = zap.NewProduction()
	pipeline = classifier.NewPipeline(keywords.Default(), "")

	code := m.Run()

	zeebeClient.Close()
	os.Exit(code)
}

func TestFullE2E(t *testing.T) {
	_, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	t.Log("🚀 Starting FULL E2E Test with real services...")

	// 1. Check all external services are available
	assertAllServicesConnectivity(t, cfg)

	// 2. Create DB tables if needed and insert fixture products
	createDatabaseTables(t, cfg)

	// 3. Deploy all BPMN files
	deployAllBPMN(t, cfg, zapLog)

	// 4. Run all 12 workers against the fixtures
	testAllWorkers(t, cfg, zapLog)

	t.Log("✅ ALL TESTS PASSED — Full E2E workflow successful!")
}

func assertAllServicesConnectivity(t *testing.T, cfg *config.Config) {
	t.Log("🔍 Checking service connectivity...")

	// Force localhost for the compose stack regardless of config.
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Elasticsearch.URL = "http://localhost:9200"

	// --- PostgreSQL ---
	db, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "❌ PostgreSQL connection failed")
	assert.NoError(t, db.Ping(context.Background()), "❌ PostgreSQL ping failed")
	db.Close()
	t.Log("✅ PostgreSQL connected")

	// --- Redis ---
	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "❌ Redis client creation failed")
	assert.NoError(t, rdb.Ping(context.Background()), "❌ Redis ping failed")
	rdb.Close()
	t.Log("✅ Redis connected")

	// --- Elasticsearch ---
	esURL := cfg.Database.Elasticsearch.GetURL()
	t.Logf("🔗 Elasticsearch URL: %s", esURL)

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esURL},
	})
	require.NoError(t, err, "❌ Elasticsearch client creation failed")

	res, err := es.Info()
	require.NoError(t, err, "❌ Elasticsearch info request failed")
	assert.False(t, res.IsError(), "❌ Elasticsearch returned error")
	res.Body.Close()
	t.Log("✅ Elasticsearch connected")

	// --- Zeebe ---
	_, err = zeebeClient.NewTopologyCommand().Send(context.Background())
	assert.NoError(t, err, "❌ Zeebe topology request failed")
	t.Log("✅ Zeebe connected")
}

// ==========================
// 2. Database Tables Setup + Fixture Products
// ==========================
func createDatabaseTables(t *testing.T, cfg *config.Config) {
	t.Log("🔧 Creating database tables and inserting fixture products...")

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	db := dbClient.DB

	queries := []string{
		`CREATE TABLE IF NOT EXISTS product_details (
			id BIGINT PRIMARY KEY,
			product_id BIGINT,
			product_name TEXT,
			product_category TEXT,
			product_url TEXT,
			image_url TEXT,
			price TEXT,
			size TEXT,
			details TEXT,
			more_details TEXT,
			specifications TEXT,
			ingredients TEXT,
			caloric_content TEXT,
			guaranteed_analysis TEXT,
			feeding_instructions TEXT,
			transition_instructions TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS processed_products (
			product_detail_id BIGINT PRIMARY KEY REFERENCES product_details(id),
			food_category TEXT,
			food_category_reason TEXT,
			sourcing_integrity TEXT,
			sourcing_integrity_reason TEXT,
			processing_method_1 TEXT,
			processing_method_2 TEXT,
			processing_method_reason TEXT,
			nutritionally_adequate TEXT,
			nutritionally_adequate_reason TEXT,
			ingredients_all TEXT,
			protein_ingredients_all TEXT,
			protein_ingredients_high INTEGER,
			protein_ingredients_good INTEGER,
			protein_ingredients_moderate INTEGER,
			protein_ingredients_low INTEGER,
			protein_quality_class TEXT,
			fat_ingredients_all TEXT,
			fat_ingredients_high INTEGER,
			fat_ingredients_good INTEGER,
			fat_ingredients_low INTEGER,
			fat_quality_class TEXT,
			carb_ingredients_all TEXT,
			carb_ingredients_high INTEGER,
			carb_ingredients_good INTEGER,
			carb_ingredients_moderate INTEGER,
			carb_ingredients_low INTEGER,
			carb_quality_class TEXT,
			fiber_ingredients_all TEXT,
			fiber_ingredients_high INTEGER,
			fiber_ingredients_good INTEGER,
			fiber_ingredients_moderate INTEGER,
			fiber_ingredients_low INTEGER,
			fiber_quality_class TEXT,
			dirty_dozen_ingredients TEXT,
			dirty_dozen_ingredients_count INTEGER,
			synthetic_nutrition_addition TEXT,
			synthetic_nutrition_addition_count INTEGER,
			longevity_additives TEXT,
			longevity_additives_count INTEGER,
			guaranteed_analysis_crude_protein_pct DOUBLE PRECISION,
			guaranteed_analysis_crude_fat_pct DOUBLE PRECISION,
			guaranteed_analysis_crude_fiber_pct DOUBLE PRECISION,
			guaranteed_analysis_crude_moisture_pct DOUBLE PRECISION,
			guaranteed_analysis_crude_ash_pct DOUBLE PRECISION,
			starchy_carb_pct DOUBLE PRECISION,
			brand TEXT,
			brand_confidence DOUBLE PRECISION,
			brand_method TEXT,
			base_score DOUBLE PRECISION,
			needs_manual_review BOOLEAN DEFAULT FALSE,
			manual_review_reasons TEXT,
			processed_at TIMESTAMPTZ,
			processor_version TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS manual_review_queue (
			product_detail_id BIGINT PRIMARY KEY REFERENCES product_details(id),
			reasons TEXT[],
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			notified_at TIMESTAMPTZ
		)`,
	}

	for _, query := range queries {
		_, err := db.ExecContext(context.Background(), query)
		if err != nil {
			t.Logf("Warning: Failed to create table: %v", err)
		}
	}

	// Reset fixture rows so reruns start from the same state.
	cleanup := []string{
		fmt.Sprintf(`DELETE FROM manual_review_queue WHERE product_detail_id IN (%d, %d)`, cleanProductID, flaggedProductID),
		fmt.Sprintf(`DELETE FROM processed_products WHERE product_detail_id IN (%d, %d)`, cleanProductID, flaggedProductID),
	}
	for _, query := range cleanup {
		_, err := db.ExecContext(context.Background(), query)
		if err != nil {
			t.Logf("Warning: Failed to reset fixture rows: %v", err)
		}
	}

	// The clean product classifies as frozen raw, human grade,
	// complete and balanced. The flagged one has no usable text.
	fixtures := []string{
		fmt.Sprintf(`INSERT INTO product_details (
			id, product_id, product_name, product_category, ingredients,
			details, caloric_content, guaranteed_analysis, feeding_instructions
		) VALUES (
			%d, 77001,
			'Darwin''s Natural Selections Frozen Raw Dog Food, Salmon Recipe',
			'Dog Food',
			'Salmon, salmon with ground bone, zucchini, yellow squash, celery, romaine lettuce, cod liver oil',
			'Our frozen raw recipe is made from human grade ingredients and is never cooked. Uncooked and minimally processed, this complete and balanced diet meets AAFCO dog food nutrient profiles for all life stages.',
			'1,050 kcal ME/kg',
			'Crude Protein (min) 12%%, Crude Fat (min) 8%%, Crude Fiber (max) 1.5%%, Moisture (max) 72%%.',
			'Feed 2-3%% of your dog''s body weight daily. Keep frozen until ready to serve.'
		) ON CONFLICT (id) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			ingredients = EXCLUDED.ingredients,
			details = EXCLUDED.details,
			caloric_content = EXCLUDED.caloric_content,
			guaranteed_analysis = EXCLUDED.guaranteed_analysis,
			feeding_instructions = EXCLUDED.feeding_instructions`,
			cleanProductID),
		fmt.Sprintf(`INSERT INTO product_details (id, product_id, product_name, product_category)
			VALUES (%d, 77002, 'Mystery Sample Pack', 'Dog Food')
			ON CONFLICT (id) DO NOTHING`,
			flaggedProductID),
		// The flagged product gets its review state seeded directly;
		// the routing worker reads it from the processed row.
		fmt.Sprintf(`INSERT INTO processed_products (
			product_detail_id, needs_manual_review, manual_review_reasons, processed_at, processor_version
		) VALUES (%d, TRUE, 'food category unclassified; nutritional adequacy unknown', NOW(), 'e2e')
		ON CONFLICT (product_detail_id) DO UPDATE SET
			needs_manual_review = TRUE,
			manual_review_reasons = EXCLUDED.manual_review_reasons`,
			flaggedProductID),
	}

	for _, query := range fixtures {
		_, err := db.ExecContext(context.Background(), query)
		if err != nil {
			t.Logf("Warning: Failed to insert fixture: %v", err)
		}
	}

	t.Log("✅ Database tables created/verified with fixture products")
}

// ==========================
// 3. Deploy All BPMN Files
// ==========================
func deployAllBPMN(t *testing.T, _ *config.Config, _ *zap.Logger) {
	t.Log("🏗️ Deploying BPMN files...")

	client := zeebeClient

	possiblePaths := []string{
		"bpmn",
		"../bpmn",
		"../../bpmn",
		"./bpmn",
	}

	var bpmnDir string
	var files []os.DirEntry
	var err error

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			files, err = os.ReadDir(path)
			if err == nil {
				bpmnDir = path
				t.Logf("📁 Found BPMN directory: %s", bpmnDir)
				break
			}
		}
	}

	if bpmnDir == "" {
		t.Log("⚠️ BPMN directory not found in any expected location, skipping deployment")
		return
	}

	require.NoError(t, err, "❌ Cannot read BPMN directory")

	bpmnCount := 0
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(f.Name()), ".bpmn") {
			continue
		}

		path := fmt.Sprintf("%s/%s", bpmnDir, f.Name())
		t.Logf("📄 Deploying BPMN: %s", path)

		_, err := client.NewDeployResourceCommand().AddResourceFile(path).Send(context.Background())
		if err != nil {
			t.Logf("⚠️ Failed to deploy BPMN %s: %v", f.Name(), err)
		} else {
			t.Logf("✅ Deployed: %s", f.Name())
			bpmnCount++
		}
	}

	if bpmnCount == 0 {
		t.Log("ℹ️ No BPMN files were successfully deployed")
	} else {
		t.Logf("✅ Successfully deployed %d BPMN files", bpmnCount)
	}
}

// ==========================
// 4. Run All 12 Workers
// ==========================
func testAllWorkers(t *testing.T, cfg *config.Config, log *zap.Logger) {
	t.Log("🧪 Running all 12 workers against the fixtures...")

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	db := dbClient.DB

	esURL := cfg.Database.Elasticsearch.GetURL()
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{esURL}})
	require.NoError(t, err)

	rdbClient, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdbClient.Close()

	rdb := rdbClient.Client

	// Pipeline order matters: scoring and indexing read what the
	// classification steps persist.
	testCases := []struct {
		name   string
		testFn func(*testing.T, *config.Config, *zap.Logger, *sql.DB, *elasticsearch.Client, *redis.Client)
	}{
		{"fetch-product-text", testFetchProductText},
		{"classify-attributes", testClassifyAttributes},
		{"analyze-ingredients", testAnalyzeIngredients},
		{"extract-nutrients", testExtractNutrients},
		{"detect-brand", testDetectBrand},
		{"calculate-base-score", testCalculateBaseScore},
		{"calculate-final-score", testCalculateFinalScore},
		{"index-product", testIndexProduct},
		{"search-products", testSearchProducts},
		{"reprocess-products", testReprocessProducts},
		{"route-manual-review", testRouteManualReview},
		{"send-review-digest", testSendReviewDigest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.testFn(t, cfg, log, db, es, rdb)
		})
	}
}

// ==========================
// Worker Test Functions
// ==========================

func testFetchProductText(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	// The compose stack carries no catalog API, so the fetch must come
	// back with a catalog error rather than hang or panic.
	catalogCfg := cfg.Catalog
	catalogCfg.BaseURL = "http://localhost:8080/mock"
	catalogCfg.TokenURL = "http://localhost:8080/mock/token"
	catalogCfg.ClientID = "mock"
	catalogCfg.ClientSecret = "mock"
	catalogCfg.Timeout = 3000

	handler := fetchproducttext.NewHandler(&fetchproducttext.Config{
		Timeout: 10 * time.Second,
	}, db, catalog.NewClient(catalogCfg), logger.NewZapAdapter(log))

	input := &fetchproducttext.Input{ProductDetailID: cleanProductID}
	_, err := handler.Execute(context.Background(), input)
	assert.Error(t, err)
}

func testClassifyAttributes(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := classifyattributes.NewHandler(&classifyattributes.Config{
		Timeout: 30 * time.Second,
	}, db, rdb, pipeline, logger.NewZapAdapter(log))

	input := &classifyattributes.Input{ProductDetailID: cleanProductID}
	out, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, string(models.FoodCategoryRaw), out.FoodCategory.Category)
	assert.Equal(t, string(models.SourcingHumanGrade), out.SourcingIntegrity.Category)
	assert.NotEmpty(t, out.ProcessingMethod.Primary)
	assert.Equal(t, string(models.AdequateYes), out.NutritionallyAdequate.Category)
	assert.NotEmpty(t, out.ProcessorVersion)
}

func testAnalyzeIngredients(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := analyzeingredients.NewHandler(&analyzeingredients.Config{
		Timeout: 30 * time.Second,
	}, db, pipeline, logger.NewZapAdapter(log))

	input := &analyzeingredients.Input{ProductDetailID: cleanProductID}
	out, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, cleanProductID, out.ProductDetailID)
	// Salmon is a protein hit in the default tables.
	assert.NotEmpty(t, out.Analysis.Protein.Tier)
	assert.Zero(t, out.Analysis.DirtyDozen.Count)
}

func testExtractNutrients(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := extractnutrients.NewHandler(&extractnutrients.Config{
		Timeout:          30 * time.Second,
		ProcessorVersion: pipeline.Version(),
	}, db, logger.NewZapAdapter(log))

	input := &extractnutrients.Input{ProductDetailID: cleanProductID}
	out, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	require.NotNil(t, out.Nutrients.CrudeProteinPct)
	assert.InDelta(t, 12.0, *out.Nutrients.CrudeProteinPct, 0.001)
	require.NotNil(t, out.Nutrients.MoisturePct)
	assert.InDelta(t, 72.0, *out.Nutrients.MoisturePct, 0.001)
}

func testDetectBrand(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := detectbrand.NewHandler(&detectbrand.Config{
		Timeout: 30 * time.Second,
	}, db, pipeline, logger.NewZapAdapter(log))

	input := &detectbrand.Input{ProductDetailID: cleanProductID}
	out, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "Darwin's", out.Detection.Brand)
}

func testCalculateBaseScore(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := calculatebasescore.NewHandler(&calculatebasescore.Config{
		Timeout:  30 * time.Second,
		CacheTTL: time.Minute,
	}, db, rdb, logger.NewZapAdapter(log))

	input := &calculatebasescore.Input{ProductDetailID: cleanProductID}
	out, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, out.ScoreAvailable, "clean product should score, blocking: %v", out.Blocking)
	require.NotNil(t, out.BaseScore)
	assert.Greater(t, *out.BaseScore, 0.0)
	assert.False(t, out.NeedsReview)
}

func testCalculateFinalScore(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := calculatefinalscore.NewHandler(&calculatefinalscore.Config{
		Timeout:  30 * time.Second,
		CacheTTL: time.Minute,
	}, db, rdb, logger.NewZapAdapter(log))

	input := &calculatefinalscore.Input{
		ProductDetailID: cleanProductID,
		Handling: models.HandlingContext{
			Storage:       models.StorageFreezer,
			PackagingSize: models.PackagingOneMonth,
			ShelfLife:     models.ShelfLifeWeek,
		},
	}
	out, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.NotEmpty(t, out.Grade)
	assert.Greater(t, out.Breakdown.FinalScore, 0.0)
}

func testIndexProduct(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := indexproduct.NewHandler(&indexproduct.Config{
		Timeout:   30 * time.Second,
		IndexName: e2eIndex,
	}, db, es, logger.NewZapAdapter(log))

	input := &indexproduct.Input{ProductDetailID: cleanProductID}
	out, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, e2eIndex, out.IndexName)
	assert.Equal(t, fmt.Sprintf("%d", cleanProductID), out.DocumentID)
	assert.Contains(t, []string{"created", "updated"}, out.Result)
}

func testSearchProducts(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := searchproducts.NewHandler(&searchproducts.Config{
		Timeout:     30 * time.Second,
		IndexName:   e2eIndex,
		MaxPageSize: 50,
	}, es, logger.NewZapAdapter(log))

	// The document indexed above may not be visible yet, so only the
	// query round-trip is asserted, not the hit count.
	input := &searchproducts.Input{
		Filters: map[string]interface{}{"foodCategory": string(models.FoodCategoryRaw)},
	}
	out, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, out.TotalHits, int64(0))
}

func testReprocessProducts(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := reprocessproducts.NewHandler(&reprocessproducts.Config{
		Timeout:     2 * time.Minute,
		Concurrency: 2,
		ProgressTTL: time.Hour,
	}, db, rdb, pipeline, logger.NewZapAdapter(log))

	input := &reprocessproducts.Input{
		Mode:             reprocessproducts.ModeExplicit,
		ProductDetailIDs: []int64{cleanProductID},
	}
	out, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, reprocessproducts.ModeExplicit, out.Mode)
	assert.Equal(t, 1, out.Total)
	assert.Equal(t, 1, out.Succeeded)
	assert.Zero(t, out.Failed)
	assert.NotEmpty(t, out.BatchID)
}

func testRouteManualReview(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	// SNS is not part of the compose stack; a nil service still queues
	// the review, it just skips the notification.
	handler := routemanualreview.NewHandler(&routemanualreview.Config{
		Timeout: 30 * time.Second,
	}, db, nil, logger.NewZapAdapter(log))

	input := &routemanualreview.Input{ProductDetailID: flaggedProductID}
	out, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, out.ReviewQueued)
	assert.Len(t, out.Reasons, 2)
	assert.Empty(t, out.NotificationID)

	var status string
	err = db.QueryRowContext(context.Background(),
		`SELECT status FROM manual_review_queue WHERE product_detail_id = $1`,
		flaggedProductID).Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, "pending", status)
}

func testSendReviewDigest(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	// SES is not provisioned either: the digest must fail cleanly and
	// leave the queue rows pending for the next attempt.
	handler := sendreviewdigest.NewHandler(&sendreviewdigest.Config{
		Timeout:    30 * time.Second,
		FromEmail:  "quality@petfood.example",
		Recipients: []string{"reviewers@petfood.example"},
		MaxItems:   50,
	}, db, nil, logger.NewZapAdapter(log))

	input := &sendreviewdigest.Input{}
	_, err := handler.Execute(context.Background(), input)
	require.Error(t, err)
	assert.ErrorIs(t, err, sendreviewdigest.ErrDigestSendFailed)

	var status string
	err = db.QueryRowContext(context.Background(),
		`SELECT status FROM manual_review_queue WHERE product_detail_id = $1`,
		flaggedProductID).Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, "pending", status)
}
