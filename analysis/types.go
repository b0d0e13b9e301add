package analysis

// BasicStats summarizes the dataset shape and hygiene.
type BasicStats struct {
	TotalRows          int   `json:"total_rows"`
	TotalColumns       int   `json:"total_columns"`
	MissingValues      int   `json:"missing_values"`
	DuplicateRows      int   `json:"duplicate_rows"`
	NumericColumns     int   `json:"numeric_columns"`
	CategoricalColumns int   `json:"categorical_columns"`
	MemoryUsageBytes   int64 `json:"memory_usage_bytes"`
}

// RowRef points at one flagged row. Product and Category are filled from the
// resolved roles when available, empty otherwise. Value is the metric that
// flagged the row (stock level, sales figure, outlying cell value).
type RowRef struct {
	Row      int     `json:"row"`
	Product  string  `json:"product,omitempty"`
	Category string  `json:"category,omitempty"`
	Value    float64 `json:"value"`
}

// SalesStats is the per-column sales sub-report. Std is the population
// standard deviation and is 0 when fewer than two values are present.
type SalesStats struct {
	Column    string   `json:"column"`
	Total     float64  `json:"total"`
	Mean      float64  `json:"mean"`
	Median    float64  `json:"median"`
	Std       float64  `json:"std"`
	Max       float64  `json:"max"`
	Min       float64  `json:"min"`
	ZeroCount int      `json:"zero_count"`
	Top       []RowRef `json:"top"`
}

// TurnoverBucket is an ordered rotation-speed category.
type TurnoverBucket string

const (
	BucketNoSales  TurnoverBucket = "no sales"
	BucketLow      TurnoverBucket = "low"
	BucketMedium   TurnoverBucket = "medium"
	BucketHigh     TurnoverBucket = "high"
	BucketVeryHigh TurnoverBucket = "very high"
)

// bucketTurnover classifies a turnover value. Boundaries are left-exclusive
// and right-inclusive except the first bucket, which swallows zero and any
// impossible negative input.
func bucketTurnover(t float64) TurnoverBucket {
	switch {
	case t <= 0.1:
		return BucketNoSales
	case t <= 0.5:
		return BucketLow
	case t <= 1:
		return BucketMedium
	case t <= 5:
		return BucketHigh
	default:
		return BucketVeryHigh
	}
}

// TurnoverEntry is the per-row rotation metric. Zero stock is replaced by 1
// before dividing, so a zero-stock row's turnover equals its raw sales count
// rather than infinity; sales=0, stock=0 therefore yields 0.
type TurnoverEntry struct {
	Row      int            `json:"row"`
	Product  string         `json:"product,omitempty"`
	Sales    float64        `json:"sales"`
	Stock    float64        `json:"stock"`
	Turnover float64        `json:"turnover"`
	Bucket   TurnoverBucket `json:"bucket"`
}

// InventoryAnalysis groups the stock-driven findings. StockColumn is empty
// when no stock role resolved, and every slice is then empty too.
type InventoryAnalysis struct {
	StockColumn string `json:"stock_column,omitempty"`
	// LowStock holds rows with stock in [0, threshold], ascending by stock.
	LowStock []RowRef `json:"low_stock"`
	// Overstock holds rows with stock above the overstock threshold.
	Overstock []RowRef `json:"overstock"`
	// NegativeStock counts rows with stock below zero. Treated as data
	// errors: reported here, never counted as low stock.
	NegativeStock int             `json:"negative_stock"`
	Turnover      []TurnoverEntry `json:"turnover,omitempty"`
}

// ColumnAnomalies carries both outlier signals for one numeric column. The
// z-score and IQR counts are independent and intentionally never reconciled.
type ColumnAnomalies struct {
	Column      string   `json:"column"`
	ZScoreCount int      `json:"zscore_count"`
	IQRCount    int      `json:"iqr_count"`
	Sample      []RowRef `json:"sample"`
}

// Result is the immutable bundle one analysis run produces. All sections are
// ordered slices so re-running on an unchanged table reproduces the result
// bit for bit.
type Result struct {
	Basic           BasicStats        `json:"basic_stats"`
	Sales           []SalesStats      `json:"sales_analysis"`
	Inventory       InventoryAnalysis `json:"inventory_analysis"`
	Anomalies       []ColumnAnomalies `json:"anomalies"`
	Recommendations []string          `json:"recommendations"`
}
