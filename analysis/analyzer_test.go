package analysis

import (
	"reflect"
	"strings"
	"testing"

	"farmalytics/dataset"
)

func mustTable(t *testing.T, columns []dataset.Column) *dataset.Table {
	t.Helper()
	tbl, err := dataset.New(columns)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return tbl
}

func noMissing(n int) []bool {
	return make([]bool, n)
}

func TestAnalyzeNilTable(t *testing.T) {
	if _, err := Analyze(nil, RoleMapping{}, DefaultConfig()); err == nil {
		t.Fatal("expected error for nil table")
	}
}

func TestLowStockBoundary(t *testing.T) {
	tbl := mustTable(t, []dataset.Column{
		dataset.NewNumericColumn("Stock", []float64{-1, 0, 5, 6}, noMissing(4)),
	})
	roles := RoleMapping{RoleStockTotal: "Stock"}

	res, err := Analyze(tbl, roles, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	inv := res.Inventory
	if len(inv.LowStock) != 2 {
		t.Fatalf("LowStock = %v, want 2 entries", inv.LowStock)
	}
	// Ascending by stock: 0 before 5. Stock 6 above the threshold, -1 is a
	// data error, not low stock.
	if inv.LowStock[0].Value != 0 || inv.LowStock[1].Value != 5 {
		t.Errorf("LowStock values = [%v %v], want [0 5]", inv.LowStock[0].Value, inv.LowStock[1].Value)
	}
	if inv.NegativeStock != 1 {
		t.Errorf("NegativeStock = %d, want 1", inv.NegativeStock)
	}
	if len(inv.Overstock) != 0 {
		t.Errorf("Overstock = %v, want empty", inv.Overstock)
	}
}

func TestZeroLowStockThresholdFlagsOnlyZeroStock(t *testing.T) {
	tbl := mustTable(t, []dataset.Column{
		dataset.NewNumericColumn("Stock", []float64{-1, 0, 5, 6}, noMissing(4)),
	})
	roles := RoleMapping{RoleStockTotal: "Stock"}

	// Threshold 0 is a setting, not an unset field. Negative means unset.
	res, err := Analyze(tbl, roles, Config{LowStockThreshold: 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Inventory.LowStock) != 1 || res.Inventory.LowStock[0].Value != 0 {
		t.Errorf("LowStock = %v, want only the zero-stock row", res.Inventory.LowStock)
	}

	res, err = Analyze(tbl, roles, Config{LowStockThreshold: -1})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Inventory.LowStock) != 2 {
		t.Errorf("LowStock = %v, want the default threshold to apply", res.Inventory.LowStock)
	}
}

func TestOverstock(t *testing.T) {
	tbl := mustTable(t, []dataset.Column{
		dataset.NewNumericColumn("Stock", []float64{50, 101, 1000}, noMissing(3)),
	})
	res, err := Analyze(tbl, RoleMapping{RoleStockTotal: "Stock"}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Inventory.Overstock) != 2 {
		t.Errorf("Overstock = %v, want entries for 101 and 1000", res.Inventory.Overstock)
	}
}

func TestTurnoverConvention(t *testing.T) {
	tbl := mustTable(t, []dataset.Column{
		dataset.NewNumericColumn("Ventas Total", []float64{10, 0, 5, 30}, noMissing(4)),
		dataset.NewNumericColumn("Stock", []float64{0, 0, 50, 10}, noMissing(4)),
	})
	roles := RoleMapping{RoleSalesTotal: "Ventas Total", RoleStockTotal: "Stock"}

	res, err := Analyze(tbl, roles, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	turnover := res.Inventory.Turnover
	if len(turnover) != 4 {
		t.Fatalf("Turnover has %d entries, want 4", len(turnover))
	}

	tests := []struct {
		row    int
		value  float64
		bucket TurnoverBucket
	}{
		{0, 10, BucketVeryHigh}, // sales 10, stock 0: raw sales count, not infinity
		{1, 0, BucketNoSales},   // sales 0, stock 0
		{2, 0.1, BucketNoSales}, // boundary: 0.1 still "no sales"
		{3, 3, BucketHigh},
	}
	for _, tt := range tests {
		e := turnover[tt.row]
		if e.Turnover != tt.value {
			t.Errorf("row %d turnover = %v, want %v", tt.row, e.Turnover, tt.value)
		}
		if e.Bucket != tt.bucket {
			t.Errorf("row %d bucket = %q, want %q", tt.row, e.Bucket, tt.bucket)
		}
	}
}

func TestTurnoverBuckets(t *testing.T) {
	tests := []struct {
		turnover float64
		want     TurnoverBucket
	}{
		{-1, BucketNoSales},
		{0, BucketNoSales},
		{0.1, BucketNoSales},
		{0.11, BucketLow},
		{0.5, BucketLow},
		{0.51, BucketMedium},
		{1, BucketMedium},
		{1.01, BucketHigh},
		{5, BucketHigh},
		{5.01, BucketVeryHigh},
	}
	for _, tt := range tests {
		if got := bucketTurnover(tt.turnover); got != tt.want {
			t.Errorf("bucketTurnover(%v) = %q, want %q", tt.turnover, got, tt.want)
		}
	}
}

func TestRotationRecommendationBoundary(t *testing.T) {
	build := func(zeros int) *dataset.Table {
		values := make([]float64, 10)
		for i := range values {
			if i < zeros {
				values[i] = 0
			} else {
				values[i] = float64(i)
			}
		}
		return mustTable(t, []dataset.Column{
			dataset.NewNumericColumn("Ventas", values, noMissing(10)),
		})
	}

	// 4/10 zeros = 40%, strictly above 30%: fires.
	res, err := Analyze(build(4), RoleMapping{}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !containsSubstring(res.Recommendations, "rotation") {
		t.Errorf("40%% zero sales should fire the rotation recommendation, got %v", res.Recommendations)
	}

	// 3/10 zeros = exactly 30%: must not fire.
	res, err = Analyze(build(3), RoleMapping{}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if containsSubstring(res.Recommendations, "rotation") {
		t.Errorf("exactly 30%% zero sales must not fire the rotation recommendation, got %v", res.Recommendations)
	}
}

func TestSalesStatsSingleValueStdIsZero(t *testing.T) {
	tbl := mustTable(t, []dataset.Column{
		dataset.NewNumericColumn("Ventas", []float64{7}, noMissing(1)),
	})
	res, err := Analyze(tbl, RoleMapping{}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Sales) != 1 {
		t.Fatalf("Sales has %d entries, want 1", len(res.Sales))
	}
	s := res.Sales[0]
	if s.Std != 0 {
		t.Errorf("Std = %v, want the documented 0 for fewer than two values", s.Std)
	}
	if s.Total != 7 || s.Mean != 7 || s.Median != 7 || s.Max != 7 || s.Min != 7 {
		t.Errorf("unexpected stats: %+v", s)
	}
}

func TestNonNumericSalesColumnSkipped(t *testing.T) {
	tbl := mustTable(t, []dataset.Column{
		dataset.NewTextColumn("Ventas Comentario", []string{"ok", "bad"}, noMissing(2)),
		dataset.NewNumericColumn("Sales", []float64{1, 2}, noMissing(2)),
	})
	res, err := Analyze(tbl, RoleMapping{}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Sales) != 1 || res.Sales[0].Column != "Sales" {
		t.Errorf("Sales = %+v, want only the numeric Sales column", res.Sales)
	}
}

func TestOutlierSampleIsCapped(t *testing.T) {
	values := make([]float64, 36)
	for i := range values {
		values[i] = 1
	}
	for i := 30; i < 36; i++ {
		values[i] = 1000
	}
	tbl := mustTable(t, []dataset.Column{
		dataset.NewNumericColumn("Precio", values, noMissing(36)),
	})

	res, err := Analyze(tbl, RoleMapping{}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Anomalies) != 1 {
		t.Fatalf("Anomalies has %d entries, want 1", len(res.Anomalies))
	}
	a := res.Anomalies[0]
	if a.IQRCount != 6 {
		t.Errorf("IQRCount = %d, want 6", a.IQRCount)
	}
	if len(a.Sample) != 5 {
		t.Errorf("Sample has %d refs, want the cap of 5", len(a.Sample))
	}
	if a.ZScoreCount > tbl.Rows() || a.IQRCount > tbl.Rows() {
		t.Errorf("outlier counts exceed row count: %+v", a)
	}
}

func TestAnomaliesConstantColumn(t *testing.T) {
	tbl := mustTable(t, []dataset.Column{
		dataset.NewNumericColumn("Precio", []float64{5, 5, 5, 5, 5}, noMissing(5)),
	})
	res, err := Analyze(tbl, RoleMapping{}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	a := res.Anomalies[0]
	if a.ZScoreCount != 0 || a.IQRCount != 0 {
		t.Errorf("constant column flagged outliers: %+v", a)
	}
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	tbl := endToEndTable(t)
	roles := ResolveRoles(tbl.ColumnNames())

	first, err := Analyze(tbl, roles, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	second, err := Analyze(tbl, roles, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over the same table produced different results")
	}
}

func endToEndTable(t *testing.T) *dataset.Table {
	t.Helper()
	return mustTable(t, []dataset.Column{
		dataset.NewTextColumn("Product", []string{"A", "B", "C"}, noMissing(3)),
		dataset.NewTextColumn("Laboratory", []string{"LabX", "LabY", "LabX"}, noMissing(3)),
		dataset.NewNumericColumn("Cajas Vend. Total", []float64{10, 0, 5}, noMissing(3)),
		dataset.NewNumericColumn("Cajas Stock Total", []float64{2, 0, 50}, noMissing(3)),
	})
}

func TestEndToEndScenario(t *testing.T) {
	tbl := endToEndTable(t)

	roles := ResolveRoles(tbl.ColumnNames())
	for _, role := range []Role{RoleProduct, RoleCategory, RoleSalesTotal, RoleStockTotal} {
		if _, ok := roles.Column(role); !ok {
			t.Fatalf("role %s did not resolve, mapping: %v", role, roles)
		}
	}

	res, err := Analyze(tbl, roles, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	// Low stock (threshold 5): A with stock 2 and B with stock 0, ascending.
	low := res.Inventory.LowStock
	if len(low) != 2 {
		t.Fatalf("LowStock = %v, want B and A", low)
	}
	if low[0].Product != "B" || low[1].Product != "A" {
		t.Errorf("LowStock order = [%s %s], want [B A]", low[0].Product, low[1].Product)
	}
	if low[0].Category != "LabY" || low[1].Category != "LabX" {
		t.Errorf("LowStock categories = [%s %s], want [LabY LabX]", low[0].Category, low[1].Category)
	}

	if len(res.Sales) != 1 || res.Sales[0].ZeroCount != 1 {
		t.Fatalf("Sales = %+v, want one column with a single zero", res.Sales)
	}

	// 1/3 zero sales is above 30%: both the restock and rotation rules fire.
	if !containsSubstring(res.Recommendations, "restocking") {
		t.Errorf("missing restock recommendation: %v", res.Recommendations)
	}
	if !containsSubstring(res.Recommendations, "rotation") {
		t.Errorf("missing rotation recommendation: %v", res.Recommendations)
	}
}

func TestRecommendationOrder(t *testing.T) {
	tbl := mustTable(t, []dataset.Column{
		dataset.NewNumericColumn("Ventas", []float64{0, 0, 1}, []bool{false, false, false}),
		dataset.NewNumericColumn("Stock", []float64{1, 2, 3}, []bool{false, false, true}),
	})
	roles := RoleMapping{RoleSalesTotal: "Ventas", RoleStockTotal: "Stock"}

	res, err := Analyze(tbl, roles, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	// Fixed generation order: stock, then sales, then missing data.
	if len(res.Recommendations) != 3 {
		t.Fatalf("Recommendations = %v, want 3", res.Recommendations)
	}
	if !strings.Contains(res.Recommendations[0], "restocking") ||
		!strings.Contains(res.Recommendations[1], "rotation") ||
		!strings.Contains(res.Recommendations[2], "missing") {
		t.Errorf("wrong order: %v", res.Recommendations)
	}
}

func TestTopRowsDeterministicOrder(t *testing.T) {
	tbl := mustTable(t, []dataset.Column{
		dataset.NewNumericColumn("Ventas", []float64{5, 9, 5, 9}, noMissing(4)),
	})
	res, err := Analyze(tbl, RoleMapping{}, Config{TopN: 3})
	if err != nil {
		t.Fatal(err)
	}
	top := res.Sales[0].Top
	if len(top) != 3 {
		t.Fatalf("Top has %d rows, want 3", len(top))
	}
	// Descending by value, ties broken by row index.
	want := []struct {
		row   int
		value float64
	}{{1, 9}, {3, 9}, {0, 5}}
	for i, w := range want {
		if top[i].Row != w.row || top[i].Value != w.value {
			t.Errorf("Top[%d] = %+v, want row %d value %v", i, top[i], w.row, w.value)
		}
	}
}

func TestUnresolvedRolesDegradeGracefully(t *testing.T) {
	tbl := mustTable(t, []dataset.Column{
		dataset.NewTextColumn("foo", []string{"a", "b"}, noMissing(2)),
	})
	res, err := Analyze(tbl, RoleMapping{}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Sales) != 0 {
		t.Errorf("Sales = %v, want empty", res.Sales)
	}
	if res.Inventory.StockColumn != "" || len(res.Inventory.LowStock) != 0 {
		t.Errorf("Inventory = %+v, want empty", res.Inventory)
	}
}

func containsSubstring(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
