package analysis

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Role is a semantic category a raw column may represent.
type Role string

const (
	RoleProduct    Role = "product"
	RoleCategory   Role = "category"
	RoleSalesTotal Role = "sales_total"
	RoleStockTotal Role = "stock_total"
	RolePrice      Role = "price"
)

// roleOrder fixes the resolution (and logging) order of roles.
var roleOrder = []Role{RoleProduct, RoleCategory, RoleSalesTotal, RoleStockTotal, RolePrice}

// KeywordTable maps each role to an ordered list of candidate substrings.
// Earlier substrings take priority: a match on an earlier substring, across
// any column, wins over a match on a later one.
type KeywordTable map[Role][]string

// defaultKeywords is the built-in priority table, tuned for the pharmacy
// exports the tool was written for plus generic Spanish/English headers.
var defaultKeywords = KeywordTable{
	RoleProduct:    {"producto", "product", "produto", "item", "sku"},
	RoleCategory:   {"laboratorio", "laboratory", "categoria", "category", "rubro", "departamento"},
	RoleSalesTotal: {"cajas vend. total", "ventas total", "unidades vendidas", "vend", "sales", "venda"},
	RoleStockTotal: {"cajas stock total", "cajas stock", "stock", "inventario", "inventory"},
	RolePrice:      {"pvp", "precio", "price", "costo"},
}

// salesLikeKeywords marks columns that get their own sales sub-report,
// independent of the single resolved sales_total role.
var salesLikeKeywords = []string{"vent", "vend", "sales", "venda"}

// DefaultKeywords returns a copy of the built-in keyword table.
func DefaultKeywords() KeywordTable {
	out := make(KeywordTable, len(defaultKeywords))
	for role, words := range defaultKeywords {
		out[role] = append([]string(nil), words...)
	}
	return out
}

// LoadKeywordTable reads a role -> keyword list override from a YAML file.
// Roles absent from the file keep their built-in keyword lists.
func LoadKeywordTable(path string) (KeywordTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyword file: %w", err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse keyword file: %w", err)
	}

	table := DefaultKeywords()
	for name, words := range raw {
		role := Role(strings.ToLower(strings.TrimSpace(name)))
		if _, known := defaultKeywords[role]; !known {
			return nil, fmt.Errorf("unknown role %q in keyword file", name)
		}
		if len(words) > 0 {
			table[role] = words
		}
	}
	return table, nil
}

// RoleMapping assigns at most one column name to each role. A role may be
// unresolved; consumers must skip the corresponding analysis, not fail.
type RoleMapping map[Role]string

// Column returns the column resolved for role, if any.
func (m RoleMapping) Column(role Role) (string, bool) {
	name, ok := m[role]
	return name, ok
}

// ResolveRoles infers which column plays each semantic role using the
// built-in keyword table. Pure function of the column name list.
func ResolveRoles(columnNames []string) RoleMapping {
	return DefaultKeywords().Resolve(columnNames)
}

// Resolve scans column names in their original left-to-right order and, per
// role, picks the first column whose lowercased name contains a candidate
// substring - candidates checked in priority order (substrings outer loop,
// columns inner loop, first hit wins). Resolution is independent per role,
// so one column can serve several roles. A name like "non_stock_flag"
// matching the "stock" keyword is a known limitation, not special-cased.
func (kt KeywordTable) Resolve(columnNames []string) RoleMapping {
	lowered := make([]string, len(columnNames))
	for i, name := range columnNames {
		lowered[i] = strings.ToLower(strings.TrimSpace(name))
	}

	mapping := make(RoleMapping, len(roleOrder))
	for _, role := range roleOrder {
		for _, keyword := range kt[role] {
			found := false
			for i, name := range lowered {
				if strings.Contains(name, keyword) {
					mapping[role] = strings.TrimSpace(columnNames[i])
					found = true
					break
				}
			}
			if found {
				break
			}
		}
	}
	return mapping
}

// matchesSalesKeywords reports whether a column name looks like a sales
// figure. Re-derived from the name directly so that several sales-like
// columns each get their own sub-report.
func matchesSalesKeywords(name string) bool {
	lowered := strings.ToLower(name)
	for _, kw := range salesLikeKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
