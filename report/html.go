package report

import (
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"time"

	"farmalytics/analysis"
	"farmalytics/dataset"
)

// htmlTemplate renders the self-contained summary page. Styling is inlined
// so the file can be mailed or opened from disk without assets.
var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"add": func(a, b int) int { return a + b },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Sales &amp; Inventory Report</title>
<style>
body { font-family: Arial, sans-serif; margin: 24px; color: #222; }
h1 { color: #2c3e50; border-bottom: 3px solid #4472C4; padding-bottom: 8px; }
h2 { color: #2c3e50; margin-top: 32px; }
.metric { display: inline-block; background: #f4f6fb; border: 1px solid #d5dbe8;
  border-radius: 6px; padding: 12px 18px; margin: 6px; min-width: 140px; }
.metric .value { font-size: 1.6em; font-weight: bold; color: #4472C4; }
.metric .label { font-size: 0.85em; color: #666; }
.alert { background: #fdecea; border-left: 4px solid #c0392b; padding: 10px 14px; margin: 8px 0; }
.recommendation { background: #fef9e7; border-left: 4px solid #f39c12; padding: 10px 14px; margin: 8px 0; }
table { border-collapse: collapse; margin-top: 12px; }
th { background: #4472C4; color: #fff; padding: 8px 14px; text-align: left; }
td { border: 1px solid #d5dbe8; padding: 6px 14px; }
tr:nth-child(even) { background: #f4f6fb; }
footer { margin-top: 40px; font-size: 0.8em; color: #999; }
</style>
</head>
<body>
<h1>Sales &amp; Inventory Report</h1>

<h2>Overview</h2>
<div class="metrics">
<div class="metric"><div class="value">{{.Basic.TotalRows}}</div><div class="label">Rows</div></div>
<div class="metric"><div class="value">{{.Basic.TotalColumns}}</div><div class="label">Columns</div></div>
<div class="metric"><div class="value">{{.Basic.MissingValues}}</div><div class="label">Missing values</div></div>
<div class="metric"><div class="value">{{.Basic.DuplicateRows}}</div><div class="label">Duplicate rows</div></div>
<div class="metric"><div class="value">{{len .Inventory.LowStock}}</div><div class="label">Low stock</div></div>
<div class="metric"><div class="value">{{len .Inventory.Overstock}}</div><div class="label">Overstock</div></div>
</div>

{{if .Sales}}
<h2>Sales</h2>
<table>
<tr><th>Column</th><th>Total</th><th>Mean</th><th>Median</th><th>Without sales</th></tr>
{{range .Sales}}
<tr><td>{{.Column}}</td><td>{{printf "%.2f" .Total}}</td><td>{{printf "%.2f" .Mean}}</td><td>{{printf "%.2f" .Median}}</td><td>{{.ZeroCount}}</td></tr>
{{end}}
</table>

{{with index .Sales 0}}
{{if .Top}}
<h2>Top products ({{.Column}})</h2>
<table>
<tr><th>#</th><th>Product</th><th>Category</th><th>Value</th></tr>
{{range $i, $ref := .Top}}
<tr><td>{{add $i 1}}</td><td>{{$ref.Product}}</td><td>{{$ref.Category}}</td><td>{{printf "%.2f" $ref.Value}}</td></tr>
{{end}}
</table>
{{end}}
{{end}}
{{end}}

{{if .Inventory.LowStock}}
<h2>Low stock alerts</h2>
{{range .Inventory.LowStock}}
<div class="alert"><strong>{{if .Product}}{{.Product}}{{else}}row {{add .Row 1}}{{end}}</strong> - stock {{printf "%.0f" .Value}}</div>
{{end}}
{{end}}

{{if .Recommendations}}
<h2>Recommendations</h2>
{{range .Recommendations}}
<div class="recommendation">{{.}}</div>
{{end}}
{{end}}

<footer>Generated {{.GeneratedAt}} from {{.SourceRows}} source rows.</footer>
</body>
</html>
`))

type htmlPage struct {
	*analysis.Result
	GeneratedAt string
	SourceRows  int
}

// HTML writes a standalone summary page and returns its path.
func (g *Generator) HTML(t *dataset.Table, res *analysis.Result) (string, error) {
	if res == nil {
		return "", fmt.Errorf("analysis result is required")
	}

	path := filepath.Join(g.outputDir, fmt.Sprintf("report_%s.html", g.timestamp()))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create HTML report: %w", err)
	}
	defer file.Close()

	page := htmlPage{
		Result:      res,
		GeneratedAt: g.now().Format(time.DateTime),
	}
	if t != nil {
		page.SourceRows = t.Rows()
	}
	if err := htmlTemplate.Execute(file, page); err != nil {
		return "", fmt.Errorf("failed to render HTML report: %w", err)
	}
	log.Printf("HTML report generated: %s", path)
	return path, nil
}
