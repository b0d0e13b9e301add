package report

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"farmalytics/analysis"
	"farmalytics/dataset"
)

func testTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.New([]dataset.Column{
		dataset.NewTextColumn("Producto", []string{"Aspirina", "Ibuprofeno", "Omeprazol"}, []bool{false, false, false}),
		dataset.NewTextColumn("Laboratorio", []string{"Bayer", "Teva", "AstraZeneca"}, []bool{false, false, false}),
		dataset.NewNumericColumn("Cajas Vend. Total", []float64{120, 0, 45}, []bool{false, false, false}),
		dataset.NewNumericColumn("Cajas Stock Total", []float64{3, 0, 80}, []bool{false, false, false}),
	})
	require.NoError(t, err)
	return tbl
}

func testGenerator(t *testing.T) *Generator {
	t.Helper()
	gen, err := NewGenerator(t.TempDir())
	require.NoError(t, err)
	gen.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return gen
}

func analyzed(t *testing.T, tbl *dataset.Table) *analysis.Result {
	t.Helper()
	roles := analysis.ResolveRoles(tbl.ColumnNames())
	res, err := analysis.Analyze(tbl, roles, analysis.DefaultConfig())
	require.NoError(t, err)
	return res
}

func TestComprehensiveSheets(t *testing.T) {
	tbl := testTable(t)
	gen := testGenerator(t)

	path, err := gen.Comprehensive(tbl, analyzed(t, tbl))
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	for _, want := range []string{
		SheetOriginalData, SheetExecSummary, SheetSalesAnalysis,
		SheetStockAnalysis, SheetLowStockAlert, SheetAlerts,
		SheetDetailedMetrics, SheetCharts,
	} {
		assert.Contains(t, sheets, want)
	}

	// Original data round-trips with headers.
	rows, err := f.GetRows(SheetOriginalData)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Producto", rows[0][0])
	assert.Equal(t, "Aspirina", rows[1][0])

	// The low stock sheet carries both flagged products.
	low, err := f.GetRows(SheetLowStockAlert)
	require.NoError(t, err)
	require.Len(t, low, 3) // header + Aspirina(3) + Ibuprofeno(0)

	// Charts sheet holds the top-products table the chart points at.
	charts, err := f.GetRows(SheetCharts)
	require.NoError(t, err)
	require.NotEmpty(t, charts)
	assert.Equal(t, "Product", charts[0][0])
}

func TestComprehensiveWithoutSales(t *testing.T) {
	tbl, err := dataset.New([]dataset.Column{
		dataset.NewTextColumn("foo", []string{"a", "b"}, []bool{false, false}),
	})
	require.NoError(t, err)

	gen := testGenerator(t)
	res, err := analysis.Analyze(tbl, analysis.RoleMapping{}, analysis.DefaultConfig())
	require.NoError(t, err)

	path, err := gen.Comprehensive(tbl, res)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// No sales data, no Charts sheet.
	assert.NotContains(t, f.GetSheetList(), SheetCharts)
	assert.Contains(t, f.GetSheetList(), SheetExecSummary)
}

func TestQuickReport(t *testing.T) {
	tbl := testTable(t)
	gen := testGenerator(t)

	path, err := gen.Quick(tbl)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Data")
	assert.Contains(t, sheets, "Statistics")

	stats, err := f.GetRows("Statistics")
	require.NoError(t, err)
	require.NotEmpty(t, stats)
	assert.Equal(t, "Column", stats[0][0])
	// Two numeric columns, one statistics row each.
	assert.Len(t, stats, 3)
}

func TestHTMLReport(t *testing.T) {
	tbl := testTable(t)
	gen := testGenerator(t)

	path, err := gen.HTML(tbl, analyzed(t, tbl))
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	doc, err := goquery.NewDocumentFromReader(file)
	require.NoError(t, err)

	assert.Equal(t, 6, doc.Find(".metric").Length(), "overview metric cards")
	assert.Equal(t, 2, doc.Find(".alert").Length(), "low stock alerts")
	assert.GreaterOrEqual(t, doc.Find(".recommendation").Length(), 2)

	html, err := doc.Html()
	require.NoError(t, err)
	assert.Contains(t, html, "Ibuprofeno")
	assert.True(t, strings.Contains(html, "Sales"))
}

func TestHTMLRequiresResult(t *testing.T) {
	gen := testGenerator(t)
	_, err := gen.HTML(testTable(t), nil)
	assert.Error(t, err)
}

func TestReportFilenamesUseTimestamp(t *testing.T) {
	tbl := testTable(t)
	gen := testGenerator(t)

	path, err := gen.Quick(tbl)
	require.NoError(t, err)
	assert.Contains(t, path, "20240601_120000")
}
