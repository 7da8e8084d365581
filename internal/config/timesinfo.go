package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// attrEntry is one record of the attribute metadata source. The source is a
// JSON array of these objects.
type attrEntry struct {
	Name    string   `json:"name"`
	GamsCat string   `json:"gams-cat"`
	Indexes []string `json:"indexes"`
	Mapping []string `json:"mapping"`

	// Type marks derived attributes, which are computed downstream rather
	// than mapped from input tables; presence of the field is what matters.
	Type *string `json:"type"`
}

// gamsCategories is the fixed output ordering of table categories. Tables are
// emitted grouped by category in this priority, alphabetically within each
// group. This ordering is a presentation contract consumed by writers.
var gamsCategories = []string{"set", "subset", "subsubset", "md-set", "parameter"}

// valueColumn is appended to a parameter's index columns in its output header.
const valueColumn = "VALUE"

// timesInfo is the compiled form of the attribute metadata source.
type timesInfo struct {
	// TableOrder is the total ordering over output table names.
	TableOrder []string

	// AllAttributes holds the lower-cased names of every parameter entry.
	AllAttributes map[string]struct{}

	// ParamMaps are the mapping rules synthesized from parameter entries.
	ParamMaps []TableMap

	// Headers gives every entry's output header: indexes plus VALUE for
	// parameters, bare indexes for sets. The tabular writer consumes this.
	Headers map[string][]string

	// Warnings collects non-fatal findings (unknown categories).
	Warnings []string
}

// processTimesInfo compiles the attribute metadata source.
func processTimesInfo(data []byte) (*timesInfo, error) {
	var entries []attrEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("times-info: decode: %w", err)
	}

	info := &timesInfo{
		AllAttributes: map[string]struct{}{},
		Headers:       make(map[string][]string, len(entries)),
	}

	known := map[string]bool{}
	for _, c := range gamsCategories {
		known[c] = true
	}

	catToTables := map[string][]string{}
	unknownCats := map[string]struct{}{}
	for _, e := range entries {
		if e.Name == "" || e.GamsCat == "" {
			return nil, fmt.Errorf("times-info: entry missing name or gams-cat: %+v", e)
		}
		catToTables[e.GamsCat] = append(catToTables[e.GamsCat], e.Name)
		if !known[e.GamsCat] {
			unknownCats[e.GamsCat] = struct{}{}
		}

		if e.GamsCat == "parameter" {
			info.AllAttributes[strings.ToLower(e.Name)] = struct{}{}
			info.Headers[e.Name] = append(append([]string{}, e.Indexes...), valueColumn)
		} else {
			info.Headers[e.Name] = append([]string{}, e.Indexes...)
		}

		if e.GamsCat == "parameter" && e.Type == nil {
			m, err := paramMapping(e)
			if err != nil {
				return nil, err
			}
			info.ParamMaps = append(info.ParamMaps, m)
		}
	}

	if len(unknownCats) > 0 {
		cats := make([]string, 0, len(unknownCats))
		for c := range unknownCats {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		info.Warnings = append(info.Warnings,
			fmt.Sprintf("unknown categories in attribute metadata: %s", strings.Join(cats, ", ")))
	}

	for _, c := range gamsCategories {
		names := catToTables[c]
		sort.Strings(names)
		info.TableOrder = append(info.TableOrder, names...)
	}

	return info, nil
}

// paramMapping synthesizes the mapping rule for one parameter entry: output
// columns are the entry's indexes plus VALUE; input columns come from the
// entry's mapping list plus a value column; the rule filters the input
// table's attribute column to this entry's name. User-constraint attributes
// (UC* prefix) live in the user-constraint input table, everything else in
// the general attribute table.
func paramMapping(e attrEntry) (TableMap, error) {
	if e.Mapping == nil {
		return TableMap{}, fmt.Errorf("times-info: parameter %s has no mapping columns", e.Name)
	}
	cols := append(append([]string{}, e.Indexes...), valueColumn)
	xlCols := append(append([]string{}, e.Mapping...), strings.ToLower(valueColumn))
	if len(xlCols) < len(cols) {
		return TableMap{}, fmt.Errorf("times-info: parameter %s maps %d of %d index columns",
			e.Name, len(e.Mapping), len(e.Indexes))
	}
	colMap := make(map[string]string, len(cols))
	for i, c := range cols {
		colMap[c] = xlCols[i]
	}
	xlName := TagFiT
	if strings.HasPrefix(strings.ToLower(e.Name), "uc") {
		xlName = TagUCT
	}
	return TableMap{
		Name:       e.Name,
		Cols:       cols,
		XLName:     string(xlName),
		XLCols:     xlCols,
		ColMap:     colMap,
		FilterRows: map[string]string{"attribute": e.Name},
	}, nil
}
