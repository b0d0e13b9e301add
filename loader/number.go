package loader

import (
	"strconv"
	"strings"
)

// parseNumber converts a raw cell to float64, accepting both plain Go
// syntax and the European formats these exports use ("1.234,56", "12,5",
// "1 234"). Returns false when the cell is not a number.
func parseNumber(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	// Non-breaking and regular spaces sometimes group thousands.
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		// 1.234,56 - dots group thousands, comma is the decimal mark.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		// 1,234.56 - commas group thousands.
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			// 1,234,567 - grouping only.
			s = strings.ReplaceAll(s, ",", "")
		} else {
			// 12,5 - decimal comma.
			s = strings.Replace(s, ",", ".", 1)
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
