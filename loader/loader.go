// Package loader turns a CSV or Excel file on disk into a dataset.Table.
// It owns every ingestion concern the analysis core is not allowed to see:
// encoding detection, delimiter sniffing, header cleanup, empty-row removal
// and fallible numeric coercion. The table it hands off always satisfies the
// core's preconditions (equal column lengths, trimmed unique names).
package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"farmalytics/dataset"
)

// MaxFileSizeMB caps the accepted input size.
const MaxFileSizeMB = 100

var supportedExts = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
}

// candidate delimiters, in the order they are tried.
var delimiters = []rune{',', ';', '\t', '|'}

// SupportedExtension reports whether the filename has a loadable extension.
func SupportedExtension(name string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(name))]
}

// Load validates the file, parses it according to its extension and returns
// a well-formed table.
func Load(path string) (*dataset.Table, error) {
	if err := validateFile(path); err != nil {
		return nil, err
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	default:
		rows, err = readExcel(path)
	}
	if err != nil {
		return nil, err
	}

	table, err := buildTable(rows)
	if err != nil {
		return nil, err
	}

	log.Printf("Dataset loaded: %s (%d rows, %d columns)", filepath.Base(path), table.Rows(), len(table.Columns()))
	return table, nil
}

// validateFile checks existence, extension and size before parsing anything.
func validateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file not found: %w", err)
	}
	if !supportedExts[strings.ToLower(filepath.Ext(path))] {
		return fmt.Errorf("unsupported format %q, expected .csv, .xlsx or .xls", filepath.Ext(path))
	}
	if exceedsSizeLimit(info.Size()) {
		return fmt.Errorf("file too large: %.1f MB, limit %d MB",
			float64(info.Size())/(1<<20), MaxFileSizeMB)
	}
	return nil
}

// exceedsSizeLimit compares against the exact byte limit, so a file one byte
// over MaxFileSizeMB is rejected rather than floored to a whole megabyte.
func exceedsSizeLimit(size int64) bool {
	return size > int64(MaxFileSizeMB)<<20
}

func readCSV(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	data, encoding := decodeBytes(raw)
	log.Printf("Detected encoding: %s", encoding)

	delim := detectDelimiter(data)
	log.Printf("Detected delimiter: %q", delim)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1 // ragged rows are padded in buildTable
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

// decodeBytes strips a UTF-8 BOM and, when the content is not valid UTF-8,
// falls back to Windows-1252 (the usual encoding of Spanish-language
// exports). Returns the decoded bytes and the encoding name used.
func decodeBytes(raw []byte) ([]byte, string) {
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(raw) {
		return raw, "utf-8"
	}

	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
	if err != nil || !utf8.Valid(decoded) {
		// Last resort: keep the raw bytes, the CSV reader copes with them.
		return raw, "unknown"
	}
	return decoded, "windows-1252"
}

// detectDelimiter picks the candidate that splits the first line into the
// most fields. Comma wins ties by being tried first.
func detectDelimiter(data []byte) rune {
	firstLine := string(data)
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = string(data[:i])
	}

	best := ','
	max := 1
	for _, d := range delimiters {
		if n := strings.Count(firstLine, string(d)) + 1; n > max {
			max = n
			best = d
		}
	}
	return best
}

// readExcel returns the rows of the first sheet.
func readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// buildTable converts header + data rows into typed columns: headers are
// trimmed and deduplicated, fully empty rows dropped, short rows padded, and
// each column coerced to numeric only when every non-missing cell converts.
func buildTable(rows [][]string) (*dataset.Table, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("file is too short, expected a header row and at least one data row")
	}

	headers := dedupeHeaders(rows[0])

	var data [][]string
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		padded := make([]string, len(headers))
		for i := range padded {
			if i < len(row) {
				padded[i] = strings.TrimSpace(row[i])
			}
		}
		data = append(data, padded)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("file has no data rows")
	}

	columns := make([]dataset.Column, 0, len(headers))
	for i, name := range headers {
		cells := make([]string, len(data))
		for r := range data {
			cells[r] = data[r][i]
		}
		columns = append(columns, buildColumn(name, cells))
	}

	return dataset.New(columns)
}

// dedupeHeaders trims header names, names blank columns and suffixes
// repeats so the table constructor's uniqueness invariant holds.
func dedupeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		key := strings.ToLower(name)
		if n, dup := seen[key]; dup {
			seen[key] = n + 1
			name = fmt.Sprintf("%s (%d)", name, n+1)
			key = strings.ToLower(name)
		}
		seen[key] = 1
		headers[i] = name
	}
	return headers
}

// buildColumn coerces a column to numeric when every non-missing cell
// parses; otherwise the column stays text and the failed coercion is logged
// rather than silently swallowed.
func buildColumn(name string, cells []string) dataset.Column {
	missing := make([]bool, len(cells))
	numbers := make([]float64, len(cells))
	numeric := true
	nonMissing := 0
	var firstBad string

	for i, cell := range cells {
		if isMissingValue(cell) {
			missing[i] = true
			continue
		}
		nonMissing++
		if v, ok := parseNumber(cell); ok {
			numbers[i] = v
		} else {
			numeric = false
			if firstBad == "" {
				firstBad = cell
			}
		}
	}

	if numeric && nonMissing > 0 {
		return dataset.NewNumericColumn(name, numbers, missing)
	}
	if firstBad != "" && looksNumericName(name) {
		log.Printf("Column %q kept as text: value %q is not numeric", name, firstBad)
	}
	return dataset.NewTextColumn(name, cells, missing)
}

// looksNumericName limits coercion-failure logging to columns that were
// probably meant to be numeric.
func looksNumericName(name string) bool {
	lowered := strings.ToLower(name)
	for _, kw := range []string{"total", "stock", "vend", "vent", "precio", "pvp", "costo", "price", "sales"} {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

var missingMarkers = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
}

func isMissingValue(cell string) bool {
	return missingMarkers[strings.ToLower(cell)]
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
