package analysis

// Config carries the analysis thresholds. Pass it explicitly to Analyze;
// there is no process-wide mutable configuration.
type Config struct {
	// LowStockThreshold flags rows with stock in [0, threshold]. Default 5.
	LowStockThreshold float64
	// OverstockThreshold flags rows with stock strictly above it. Default 100.
	OverstockThreshold float64
	// TopN limits the top-products list per sales column. Default 20.
	TopN int
	// ZScoreThreshold flags rows whose absolute z-score exceeds it. Default 3.
	ZScoreThreshold float64
	// IQRMultiplier widens the interquartile outlier fences. Default 1.5.
	IQRMultiplier float64
	// OutlierSampleSize caps the IQR-flagged row sample per column. Default 5.
	OutlierSampleSize int
	// ZeroSalesShare is the zero-sales fraction above which (strictly) the
	// rotation recommendation fires. Default 0.30.
	ZeroSalesShare float64
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		LowStockThreshold:  5,
		OverstockThreshold: 100,
		TopN:               20,
		ZScoreThreshold:    3.0,
		IQRMultiplier:      1.5,
		OutlierSampleSize:  5,
		ZeroSalesShare:     0.30,
	}
}

// withDefaults fills unset (zero or negative) fields so a partially
// populated Config behaves sensibly. LowStockThreshold is the exception:
// zero is a valid setting (flag only zero-stock rows), so only a negative
// value means unset.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.LowStockThreshold < 0 {
		c.LowStockThreshold = def.LowStockThreshold
	}
	if c.OverstockThreshold <= 0 {
		c.OverstockThreshold = def.OverstockThreshold
	}
	if c.TopN <= 0 {
		c.TopN = def.TopN
	}
	if c.ZScoreThreshold <= 0 {
		c.ZScoreThreshold = def.ZScoreThreshold
	}
	if c.IQRMultiplier <= 0 {
		c.IQRMultiplier = def.IQRMultiplier
	}
	if c.OutlierSampleSize <= 0 {
		c.OutlierSampleSize = def.OutlierSampleSize
	}
	if c.ZeroSalesShare <= 0 {
		c.ZeroSalesShare = def.ZeroSalesShare
	}
	return c
}
