package server

import (
	"strings"

	"github.com/kljensen/snowball"

	"farmalytics/analysis"
	"farmalytics/dataset"
)

// SearchMatch is one product row matched by a search query.
type SearchMatch struct {
	Row     int    `json:"row"`
	Product string `json:"product"`
}

// searchProducts finds rows whose product name matches the query. Terms are
// stemmed with the Spanish snowball stemmer so "comprimidos" matches
// "comprimido"; pharmacy catalogs are overwhelmingly Spanish. A plain
// substring check backs the stemmer up for codes and abbreviations the
// stemmer leaves alone.
func searchProducts(t *dataset.Table, roles analysis.RoleMapping, query string, limit int) []SearchMatch {
	matches := []SearchMatch{}

	productCol, ok := roles.Column(analysis.RoleProduct)
	if !ok {
		return matches
	}
	col, ok := t.Column(productCol)
	if !ok {
		return matches
	}

	queryStems := stemTerms(query)
	queryLower := strings.ToLower(strings.TrimSpace(query))
	if len(queryStems) == 0 && queryLower == "" {
		return matches
	}

	for row := 0; row < col.Len(); row++ {
		if col.IsMissing(row) {
			continue
		}
		name := col.CellString(row)
		if !termsMatch(name, queryStems, queryLower) {
			continue
		}
		matches = append(matches, SearchMatch{Row: row, Product: name})
		if limit > 0 && len(matches) >= limit {
			break
		}
	}
	return matches
}

// termsMatch reports whether every query stem appears among the stems of
// name, or failing that, whether the raw query is a substring of name.
func termsMatch(name string, queryStems []string, queryLower string) bool {
	if len(queryStems) > 0 {
		nameStems := make(map[string]struct{})
		for _, s := range stemTerms(name) {
			nameStems[s] = struct{}{}
		}
		all := true
		for _, qs := range queryStems {
			if _, ok := nameStems[qs]; !ok {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return queryLower != "" && strings.Contains(strings.ToLower(name), queryLower)
}

// stemTerms splits s into words and stems each. Words the stemmer rejects
// are kept lowercased as-is.
func stemTerms(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	stems := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:()[]")
		if f == "" {
			continue
		}
		stem, err := snowball.Stem(f, "spanish", true)
		if err != nil || stem == "" {
			stem = f
		}
		stems = append(stems, stem)
	}
	return stems
}
