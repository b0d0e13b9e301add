// Package analysis implements the two core components of the suite: the
// column resolver, which maps loosely named headers onto semantic roles, and
// the analysis engine, which derives statistics, stock alerts, outliers and
// recommendations from a loaded table.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"farmalytics/dataset"
)

// Analyze runs the full pipeline over a well-formed table. It never fails on
// data-quality issues: unresolved roles, non-numeric candidates and empty
// columns degrade to empty sections. Only a nil table is an error, since
// dataset.New already enforces the structural preconditions.
func Analyze(t *dataset.Table, roles RoleMapping, cfg Config) (*Result, error) {
	if t == nil {
		return nil, fmt.Errorf("table is nil")
	}
	cfg = cfg.withDefaults()

	res := &Result{
		Basic:     basicStats(t),
		Sales:     analyzeSales(t, roles, cfg),
		Inventory: analyzeInventory(t, roles, cfg),
		Anomalies: detectAnomalies(t, roles, cfg),
	}
	res.Recommendations = recommendations(res, t.Rows(), cfg)
	return res, nil
}

func basicStats(t *dataset.Table) BasicStats {
	numeric := t.NumericColumnCount()
	return BasicStats{
		TotalRows:          t.Rows(),
		TotalColumns:       len(t.Columns()),
		MissingValues:      t.MissingValues(),
		DuplicateRows:      t.DuplicateRows(),
		NumericColumns:     numeric,
		CategoricalColumns: len(t.Columns()) - numeric,
		MemoryUsageBytes:   t.MemoryEstimate(),
	}
}

// analyzeSales builds one sub-report per numeric column whose name matches a
// sales keyword. Non-numeric candidates are skipped silently.
func analyzeSales(t *dataset.Table, roles RoleMapping, cfg Config) []SalesStats {
	var out []SalesStats
	for _, col := range t.Columns() {
		if !matchesSalesKeywords(col.Name) || col.Kind != dataset.KindNumeric {
			continue
		}
		values, rows := (&col).NumericValues()
		if len(values) == 0 {
			continue
		}

		s := SalesStats{Column: col.Name}
		s.Total, _ = stats.Sum(values)
		s.Mean, _ = stats.Mean(values)
		s.Median, _ = stats.Median(values)
		s.Max, _ = stats.Max(values)
		s.Min, _ = stats.Min(values)
		if len(values) >= 2 {
			s.Std, _ = stats.StandardDeviationPopulation(values)
		}
		for _, v := range values {
			if v == 0 {
				s.ZeroCount++
			}
		}
		s.Top = topRows(t, roles, values, rows, cfg.TopN)
		out = append(out, s)
	}
	return out
}

// topRows returns the N largest values with their row context, ordered by
// value descending, ties broken by row index for determinism.
func topRows(t *dataset.Table, roles RoleMapping, values []float64, rows []int, n int) []RowRef {
	refs := make([]RowRef, len(values))
	for i := range values {
		refs[i] = rowRef(t, roles, rows[i], values[i])
	}
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].Value != refs[j].Value {
			return refs[i].Value > refs[j].Value
		}
		return refs[i].Row < refs[j].Row
	})
	if len(refs) > n {
		refs = refs[:n]
	}
	return refs
}

// rowRef builds a RowRef, filling product and category from resolved roles.
func rowRef(t *dataset.Table, roles RoleMapping, row int, value float64) RowRef {
	ref := RowRef{Row: row, Value: value}
	if name, ok := roles.Column(RoleProduct); ok {
		if col, found := t.Column(name); found {
			ref.Product = col.CellString(row)
		}
	}
	if name, ok := roles.Column(RoleCategory); ok {
		if col, found := t.Column(name); found {
			ref.Category = col.CellString(row)
		}
	}
	return ref
}

func analyzeInventory(t *dataset.Table, roles RoleMapping, cfg Config) InventoryAnalysis {
	inv := InventoryAnalysis{LowStock: []RowRef{}, Overstock: []RowRef{}}

	stockName, ok := roles.Column(RoleStockTotal)
	if !ok {
		return inv
	}
	stockCol, found := t.Column(stockName)
	if !found || stockCol.Kind != dataset.KindNumeric {
		return inv
	}
	inv.StockColumn = stockCol.Name

	values, rows := stockCol.NumericValues()
	for i, v := range values {
		switch {
		case v < 0:
			inv.NegativeStock++
		case v <= cfg.LowStockThreshold:
			inv.LowStock = append(inv.LowStock, rowRef(t, roles, rows[i], v))
		case v > cfg.OverstockThreshold:
			inv.Overstock = append(inv.Overstock, rowRef(t, roles, rows[i], v))
		}
	}
	sort.SliceStable(inv.LowStock, func(i, j int) bool {
		if inv.LowStock[i].Value != inv.LowStock[j].Value {
			return inv.LowStock[i].Value < inv.LowStock[j].Value
		}
		return inv.LowStock[i].Row < inv.LowStock[j].Row
	})

	inv.Turnover = turnover(t, roles, stockCol, cfg)
	return inv
}

// turnover computes per-row sales/stock with the zero-stock convention:
// stock 0 is replaced by 1 before dividing.
func turnover(t *dataset.Table, roles RoleMapping, stockCol *dataset.Column, _ Config) []TurnoverEntry {
	salesName, ok := roles.Column(RoleSalesTotal)
	if !ok {
		return nil
	}
	salesCol, found := t.Column(salesName)
	if !found || salesCol.Kind != dataset.KindNumeric {
		return nil
	}

	var out []TurnoverEntry
	for row := 0; row < t.Rows(); row++ {
		if salesCol.IsMissing(row) || stockCol.IsMissing(row) {
			continue
		}
		sales := salesCol.Numbers[row]
		stock := stockCol.Numbers[row]
		denom := stock
		if denom == 0 {
			denom = 1
		}
		tv := sales / denom
		entry := TurnoverEntry{
			Row:      row,
			Sales:    sales,
			Stock:    stock,
			Turnover: tv,
			Bucket:   bucketTurnover(tv),
		}
		if name, ok := roles.Column(RoleProduct); ok {
			if col, found := t.Column(name); found {
				entry.Product = col.CellString(row)
			}
		}
		out = append(out, entry)
	}
	return out
}

// detectAnomalies applies the z-score and IQR methods to every numeric
// column. The two counts are reported side by side, never merged.
func detectAnomalies(t *dataset.Table, roles RoleMapping, cfg Config) []ColumnAnomalies {
	var out []ColumnAnomalies
	for _, col := range t.Columns() {
		if col.Kind != dataset.KindNumeric {
			continue
		}
		values, rows := (&col).NumericValues()
		a := ColumnAnomalies{Column: col.Name, Sample: []RowRef{}}

		if len(values) >= 2 {
			mean, _ := stats.Mean(values)
			std, _ := stats.StandardDeviationPopulation(values)
			if std > 0 {
				for _, v := range values {
					if math.Abs((v-mean)/std) > cfg.ZScoreThreshold {
						a.ZScoreCount++
					}
				}
			}
		}

		if len(values) >= 4 {
			if q, err := stats.Quartile(values); err == nil {
				iqr := q.Q3 - q.Q1
				lo := q.Q1 - cfg.IQRMultiplier*iqr
				hi := q.Q3 + cfg.IQRMultiplier*iqr
				for i, v := range values {
					if v < lo || v > hi {
						a.IQRCount++
						if len(a.Sample) < cfg.OutlierSampleSize {
							a.Sample = append(a.Sample, rowRef(t, roles, rows[i], v))
						}
					}
				}
			}
		}

		out = append(out, a)
	}
	return out
}

// recommendations evaluates the fixed rule list against the computed
// sections. Rules are independent and fire in generation order (stock,
// sales, missing data), not ranked by severity.
func recommendations(res *Result, totalRows int, cfg Config) []string {
	recs := []string{}

	if n := len(res.Inventory.LowStock); n > 0 {
		recs = append(recs, fmt.Sprintf("%d products need urgent restocking", n))
	}

	if len(res.Sales) > 0 {
		zero := res.Sales[0].ZeroCount
		if float64(zero) > cfg.ZeroSalesShare*float64(totalRows) {
			recs = append(recs, fmt.Sprintf("%d products with no sales - consider rotation review", zero))
		}
	}

	if res.Basic.MissingValues > 0 {
		recs = append(recs, fmt.Sprintf("%d missing values detected", res.Basic.MissingValues))
	}

	return recs
}
