// internal/models/score.go
package models

// ScoreBucket names the consumer-facing band a final score lands in.
type ScoreBucket string

const (
	BucketOptimal ScoreBucket = "Optimal"
	BucketGood    ScoreBucket = "Good"
	BucketFair    ScoreBucket = "Fair"
	BucketPoor    ScoreBucket = "Poor"
	BucketAtRisk  ScoreBucket = "At Risk"
)

// ScoreBreakdown is the result of applying handling deductions to a
// stored base score. It is computed per request and never persisted.
type ScoreBreakdown struct {
	BaseScore        float64            `json:"baseScore"`
	Deductions       map[string]float64 `json:"deductions"`
	TotalDeduction   float64            `json:"totalDeduction"`
	FinalScore       float64            `json:"finalScore"`
	Classification   ScoreBucket        `json:"classification"`
	ApplicableFields []string           `json:"applicableFields"`
}

// MicroScoreComponent grades one scoring factor in isolation.
type MicroScoreComponent struct {
	Grade LetterGrade `json:"grade"`
	Score float64     `json:"score"`
}

// MicroScore breaks the product's quality down factor by factor so the
// UI can show why a score is what it is.
type MicroScore struct {
	Food              MicroScoreComponent `json:"food"`
	Sourcing          MicroScoreComponent `json:"sourcing"`
	Processing        MicroScoreComponent `json:"processing"`
	Adequacy          MicroScoreComponent `json:"adequacy"`
	Carbohydrates     MicroScoreComponent `json:"carbohydrates"`
	ProteinQuality    MicroScoreComponent `json:"proteinQuality"`
	FatQuality        MicroScoreComponent `json:"fatQuality"`
	FiberQuality      MicroScoreComponent `json:"fiberQuality"`
	CarbQuality       MicroScoreComponent `json:"carbQuality"`
	DirtyDozen        MicroScoreComponent `json:"dirtyDozen"`
	SyntheticNutrient MicroScoreComponent `json:"syntheticNutrient"`
	Longevity         MicroScoreComponent `json:"longevity"`

	// Handling factors only appear when they were applicable to the
	// scored product.
	Storage   *MicroScoreComponent `json:"storage,omitempty"`
	Packaging *MicroScoreComponent `json:"packaging,omitempty"`
	ShelfLife *MicroScoreComponent `json:"shelfLife,omitempty"`
}

// LetterGrade is the A-F band for a numeric score.
type LetterGrade string

const (
	GradeA LetterGrade = "A"
	GradeB LetterGrade = "B"
	GradeC LetterGrade = "C"
	GradeD LetterGrade = "D"
	GradeF LetterGrade = "F"
)

// BatchReport summarises a batch classification run. Failed products
// are isolated, counted and listed; they never abort the batch.
type BatchReport struct {
	BatchID    string  `json:"batchId"`
	Total      int     `json:"total"`
	Succeeded  int     `json:"succeeded"`
	Failed     int     `json:"failed"`
	FailedIDs  []int64 `json:"failedIds,omitempty"`
	DurationMs int64   `json:"durationMs"`
}
