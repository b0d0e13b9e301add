package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmalytics/analysis"
	"farmalytics/dataset"
)

func searchTable(t *testing.T) (*dataset.Table, analysis.RoleMapping) {
	t.Helper()
	tbl, err := dataset.New([]dataset.Column{
		dataset.NewTextColumn("Producto", []string{
			"Aspirina Comprimidos 500mg",
			"Ibuprofeno Jarabe Infantil",
			"Omeprazol Capsulas",
			"Jarabe para la tos",
		}, []bool{false, false, false, false}),
	})
	require.NoError(t, err)
	return tbl, analysis.RoleMapping{analysis.RoleProduct: "Producto"}
}

func TestSearchProductsStemming(t *testing.T) {
	tbl, roles := searchTable(t)

	// Singular query matches the plural product name via stemming.
	matches := searchProducts(tbl, roles, "comprimido", 0)
	require.Len(t, matches, 1)
	assert.Equal(t, "Aspirina Comprimidos 500mg", matches[0].Product)

	matches = searchProducts(tbl, roles, "jarabe", 0)
	assert.Len(t, matches, 2)
}

func TestSearchProductsSubstringFallback(t *testing.T) {
	tbl, roles := searchTable(t)

	// Codes are not stemmable; the raw substring check catches them.
	matches := searchProducts(tbl, roles, "500mg", 0)
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].Row)
}

func TestSearchProductsLimit(t *testing.T) {
	tbl, roles := searchTable(t)
	matches := searchProducts(tbl, roles, "jarabe", 1)
	assert.Len(t, matches, 1)
}

func TestSearchProductsNoProductRole(t *testing.T) {
	tbl, _ := searchTable(t)
	matches := searchProducts(tbl, analysis.RoleMapping{}, "jarabe", 0)
	assert.Empty(t, matches)
}

func TestSearchProductsCaseInsensitive(t *testing.T) {
	tbl, roles := searchTable(t)
	matches := searchProducts(tbl, roles, "OMEPRAZOL", 0)
	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].Row)
}
