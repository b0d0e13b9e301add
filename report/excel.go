package report

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/xuri/excelize/v2"

	"farmalytics/analysis"
	"farmalytics/dataset"
)

// Fixed sheet names of the comprehensive workbook.
const (
	SheetOriginalData    = "Original Data"
	SheetExecSummary     = "Executive Summary"
	SheetSalesAnalysis   = "Sales Analysis"
	SheetStockAnalysis   = "Stock Analysis"
	SheetLowStockAlert   = "Low Stock Alert"
	SheetAlerts          = "Alerts & Recommendations"
	SheetDetailedMetrics = "Detailed Metrics"
	SheetCharts          = "Charts"
)

// alertsSheetMaxNoSales caps the per-product "no sales" alert rows.
const alertsSheetMaxNoSales = 20

// Comprehensive writes the full multi-sheet workbook and returns its path.
func (g *Generator) Comprehensive(t *dataset.Table, res *analysis.Result) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeOriginalData(f, headerStyle, t); err != nil {
		return "", err
	}
	writeExecutiveSummary(f, headerStyle, t, res)
	writeSalesAnalysis(f, headerStyle, res)
	writeStockAnalysis(f, headerStyle, res)
	writeLowStockAlert(f, headerStyle, res)
	writeAlerts(f, headerStyle, res)
	writeDetailedMetrics(f, headerStyle, t)
	if err := writeCharts(f, headerStyle, res); err != nil {
		return "", err
	}

	if idx, err := f.GetSheetIndex(SheetExecSummary); err == nil {
		f.SetActiveSheet(idx)
	}

	path := filepath.Join(g.outputDir, fmt.Sprintf("analytics_report_%s.xlsx", g.timestamp()))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save Excel report: %w", err)
	}
	log.Printf("Excel report generated: %s", path)
	return path, nil
}

// Quick writes a fast, analysis-free workbook: raw data, describe-style
// statistics, and the top 20 rows by the first numeric column.
func (g *Generator) Quick(t *dataset.Table) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}

	f.SetSheetName("Sheet1", "Data")
	writeTable(f, "Data", headerStyle, t)

	if _, err := f.NewSheet("Statistics"); err == nil {
		writeDescribe(f, "Statistics", headerStyle, t)
	}

	writeQuickTop(f, headerStyle, t)

	path := filepath.Join(g.outputDir, fmt.Sprintf("quick_report_%s.xlsx", g.timestamp()))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save quick report: %w", err)
	}
	log.Printf("Quick report generated: %s", path)
	return path, nil
}

func writeOriginalData(f *excelize.File, headerStyle int, t *dataset.Table) error {
	f.SetSheetName("Sheet1", SheetOriginalData)
	writeTable(f, SheetOriginalData, headerStyle, t)
	return nil
}

// writeTable dumps the table, headers styled, onto an existing sheet.
func writeTable(f *excelize.File, sheet string, headerStyle int, t *dataset.Table) {
	writeHeaderRow(f, sheet, headerStyle, t.ColumnNames())
	cols := t.Columns()
	for row := 0; row < t.Rows(); row++ {
		values := make([]interface{}, len(cols))
		for i := range cols {
			if cols[i].IsMissing(row) {
				continue
			}
			if cols[i].Kind == dataset.KindNumeric {
				values[i] = cols[i].Numbers[row]
			} else {
				values[i] = cols[i].Text[row]
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, row+2)
		f.SetSheetRow(sheet, cell, &values)
	}
	autoWidth(f, sheet, len(cols))
}

func writeExecutiveSummary(f *excelize.File, headerStyle int, t *dataset.Table, res *analysis.Result) {
	if _, err := f.NewSheet(SheetExecSummary); err != nil {
		return
	}
	writeHeaderRow(f, SheetExecSummary, headerStyle, []string{"Metric", "Value"})

	type pair struct {
		name  string
		value interface{}
	}
	rows := []pair{
		{"Total Rows", res.Basic.TotalRows},
		{"Total Columns", res.Basic.TotalColumns},
		{"Missing Values", res.Basic.MissingValues},
		{"Duplicate Rows", res.Basic.DuplicateRows},
	}
	for _, s := range res.Sales {
		rows = append(rows,
			pair{fmt.Sprintf("Total Sales (%s)", s.Column), s.Total},
			pair{fmt.Sprintf("Products Without Sales (%s)", s.Column), s.ZeroCount},
		)
	}
	rows = append(rows,
		pair{"Low Stock Products", len(res.Inventory.LowStock)},
		pair{"Overstock Products", len(res.Inventory.Overstock)},
		pair{"Critical Recommendations", len(res.Recommendations)},
	)

	for i, p := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		f.SetSheetRow(SheetExecSummary, cell, &[]interface{}{p.name, p.value})
	}
	f.SetColWidth(SheetExecSummary, "A", "A", 36)
	f.SetColWidth(SheetExecSummary, "B", "B", 20)
}

func writeSalesAnalysis(f *excelize.File, headerStyle int, res *analysis.Result) {
	if _, err := f.NewSheet(SheetSalesAnalysis); err != nil {
		return
	}
	writeHeaderRow(f, SheetSalesAnalysis, headerStyle, []string{
		"Column", "Total", "Mean", "Median", "Std", "Max", "Min", "Without Sales",
	})
	for i, s := range res.Sales {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		f.SetSheetRow(SheetSalesAnalysis, cell, &[]interface{}{
			s.Column, s.Total, s.Mean, s.Median, s.Std, s.Max, s.Min, s.ZeroCount,
		})
	}
	autoWidth(f, SheetSalesAnalysis, 8)
}

func writeStockAnalysis(f *excelize.File, headerStyle int, res *analysis.Result) {
	if _, err := f.NewSheet(SheetStockAnalysis); err != nil {
		return
	}
	writeHeaderRow(f, SheetStockAnalysis, headerStyle, []string{"Metric", "Value"})

	inv := res.Inventory
	rows := [][]interface{}{
		{"Stock Column", inv.StockColumn},
		{"Low Stock Products", len(inv.LowStock)},
		{"Overstock Products", len(inv.Overstock)},
		{"Negative Stock (data errors)", inv.NegativeStock},
	}

	// Turnover bucket distribution, in ladder order.
	buckets := []analysis.TurnoverBucket{
		analysis.BucketNoSales, analysis.BucketLow, analysis.BucketMedium,
		analysis.BucketHigh, analysis.BucketVeryHigh,
	}
	counts := make(map[analysis.TurnoverBucket]int, len(buckets))
	for _, e := range inv.Turnover {
		counts[e.Bucket]++
	}
	for _, b := range buckets {
		rows = append(rows, []interface{}{fmt.Sprintf("Turnover: %s", b), counts[b]})
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := r
		f.SetSheetRow(SheetStockAnalysis, cell, &row)
	}
	f.SetColWidth(SheetStockAnalysis, "A", "A", 32)
}

func writeLowStockAlert(f *excelize.File, headerStyle int, res *analysis.Result) {
	if _, err := f.NewSheet(SheetLowStockAlert); err != nil {
		return
	}
	writeHeaderRow(f, SheetLowStockAlert, headerStyle, []string{"Product", "Category", "Stock", "Row"})
	for i, ref := range res.Inventory.LowStock {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		f.SetSheetRow(SheetLowStockAlert, cell, &[]interface{}{ref.Product, ref.Category, ref.Value, ref.Row + 1})
	}
	autoWidth(f, SheetLowStockAlert, 4)
}

func writeAlerts(f *excelize.File, headerStyle int, res *analysis.Result) {
	if _, err := f.NewSheet(SheetAlerts); err != nil {
		return
	}
	writeHeaderRow(f, SheetAlerts, headerStyle, []string{"Type", "Product", "Value", "Recommendation"})

	row := 2
	writeRow := func(values []interface{}) {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		f.SetSheetRow(SheetAlerts, cell, &values)
		row++
	}

	for _, ref := range res.Inventory.LowStock {
		writeRow([]interface{}{"LOW STOCK", ref.Product, ref.Value, "RESTOCK URGENTLY"})
	}
	noSales := 0
	for _, e := range res.Inventory.Turnover {
		if e.Sales != 0 {
			continue
		}
		if noSales >= alertsSheetMaxNoSales {
			break
		}
		writeRow([]interface{}{"NO SALES", e.Product, e.Stock, "REVIEW ROTATION"})
		noSales++
	}
	for _, rec := range res.Recommendations {
		writeRow([]interface{}{"RECOMMENDATION", "SYSTEM", "", rec})
	}
	autoWidth(f, SheetAlerts, 4)
}

func writeDetailedMetrics(f *excelize.File, headerStyle int, t *dataset.Table) {
	if _, err := f.NewSheet(SheetDetailedMetrics); err != nil {
		return
	}
	writeHeaderRow(f, SheetDetailedMetrics, headerStyle, []string{
		"Column", "Type", "Unique Values", "Missing", "Missing %", "Mean", "Median", "Std",
	})

	rows := float64(t.Rows())
	for i, col := range t.Columns() {
		missing := col.MissingCount()
		values := []interface{}{
			col.Name, col.Kind.String(), uniqueCount(&col), missing,
			float64(missing) / rows * 100,
		}
		if col.Kind == dataset.KindNumeric {
			data, _ := (&col).NumericValues()
			if len(data) > 0 {
				mean, _ := stats.Mean(data)
				median, _ := stats.Median(data)
				values = append(values, mean, median)
				if len(data) >= 2 {
					std, _ := stats.StandardDeviationPopulation(data)
					values = append(values, std)
				}
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		f.SetSheetRow(SheetDetailedMetrics, cell, &values)
	}
	autoWidth(f, SheetDetailedMetrics, 8)
}

// writeCharts lays out the top-products table and embeds a bar chart over
// it. Skipped when there is no sales analysis to draw.
func writeCharts(f *excelize.File, headerStyle int, res *analysis.Result) error {
	if len(res.Sales) == 0 || len(res.Sales[0].Top) == 0 {
		return nil
	}
	if _, err := f.NewSheet(SheetCharts); err != nil {
		return nil
	}

	top := res.Sales[0].Top
	writeHeaderRow(f, SheetCharts, headerStyle, []string{"Product", res.Sales[0].Column})
	for i, ref := range top {
		label := ref.Product
		if label == "" {
			label = fmt.Sprintf("row %d", ref.Row+1)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		f.SetSheetRow(SheetCharts, cell, &[]interface{}{label, ref.Value})
	}
	f.SetColWidth(SheetCharts, "A", "A", 32)

	last := len(top) + 1
	if err := f.AddChart(SheetCharts, "D2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", SheetCharts),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", SheetCharts, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", SheetCharts, last),
		}},
		Title:  []excelize.RichTextRun{{Text: "Top products by sales"}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	}); err != nil {
		return fmt.Errorf("failed to add chart: %w", err)
	}
	return nil
}

// writeDescribe emits count/mean/std/min/quartiles/max per numeric column.
func writeDescribe(f *excelize.File, sheet string, headerStyle int, t *dataset.Table) {
	writeHeaderRow(f, sheet, headerStyle, []string{
		"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max",
	})
	row := 2
	for _, col := range t.Columns() {
		if col.Kind != dataset.KindNumeric {
			continue
		}
		data, _ := (&col).NumericValues()
		if len(data) == 0 {
			continue
		}
		mean, _ := stats.Mean(data)
		min, _ := stats.Min(data)
		max, _ := stats.Max(data)
		median, _ := stats.Median(data)
		values := []interface{}{col.Name, len(data), mean}
		if len(data) >= 2 {
			std, _ := stats.StandardDeviationPopulation(data)
			values = append(values, std)
		} else {
			values = append(values, 0)
		}
		q1, q3 := median, median
		if q, err := stats.Quartile(data); err == nil {
			q1, q3 = q.Q1, q.Q3
		}
		values = append(values, min, q1, median, q3, max)
		cell, _ := excelize.CoordinatesToCellName(1, row)
		f.SetSheetRow(sheet, cell, &values)
		row++
	}
	autoWidth(f, sheet, 9)
}

// writeQuickTop writes the 20 largest rows by the first numeric column.
func writeQuickTop(f *excelize.File, headerStyle int, t *dataset.Table) {
	var target *dataset.Column
	for i := range t.Columns() {
		if t.Columns()[i].Kind == dataset.KindNumeric {
			target = &t.Columns()[i]
			break
		}
	}
	if target == nil {
		return
	}

	sheet := fmt.Sprintf("Top 20 %s", sanitizeSheetName(target.Name))
	if _, err := f.NewSheet(sheet); err != nil {
		return
	}
	writeHeaderRow(f, sheet, headerStyle, t.ColumnNames())

	values, rows := target.NumericValues()
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	// Selection of the top 20 without disturbing source order elsewhere.
	for i := 0; i < len(order) && i < 20; i++ {
		best := i
		for j := i + 1; j < len(order); j++ {
			if values[order[j]] > values[order[best]] {
				best = j
			}
		}
		order[i], order[best] = order[best], order[i]
	}

	cols := t.Columns()
	for i := 0; i < len(order) && i < 20; i++ {
		srcRow := rows[order[i]]
		out := make([]interface{}, len(cols))
		for c := range cols {
			if cols[c].IsMissing(srcRow) {
				continue
			}
			if cols[c].Kind == dataset.KindNumeric {
				out[c] = cols[c].Numbers[srcRow]
			} else {
				out[c] = cols[c].Text[srcRow]
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		f.SetSheetRow(sheet, cell, &out)
	}
	autoWidth(f, sheet, len(cols))
}

func writeHeaderRow(f *excelize.File, sheet string, style int, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, style)
	}
}

func autoWidth(f *excelize.File, sheet string, columns int) {
	for i := 0; i < columns; i++ {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, 18)
	}
}

func uniqueCount(c *dataset.Column) int {
	seen := make(map[string]struct{})
	for row := 0; row < c.Len(); row++ {
		if c.IsMissing(row) {
			continue
		}
		seen[c.CellString(row)] = struct{}{}
	}
	return len(seen)
}

var sheetNameReplacer = strings.NewReplacer(":", "", "\\", "", "/", "", "?", "", "*", "", "[", "", "]", "")

// sanitizeSheetName keeps generated sheet names inside Excel's 31-char limit
// and strips the characters Excel rejects.
func sanitizeSheetName(name string) string {
	name = sheetNameReplacer.Replace(name)
	if len(name) > 20 {
		name = name[:20]
	}
	return name
}
