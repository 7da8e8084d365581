package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TableMap is one compiled mapping rule: it relates an output table and its
// ordered columns to the tagged input table the data comes from. Rules are
// loaded from the mapping grammar source and synthesized from attribute
// metadata; both produce this type.
type TableMap struct {
	// Name is the output table name.
	Name string

	// Cols are the output column names, in header order.
	Cols []string

	// XLName is the input tag (canonical, upper-cased, with marker) or a
	// plain table name for inputs that are not tagged tables.
	XLName string

	// XLCols are the input columns, lower-cased, with filter tokens removed.
	// len(Cols) <= len(XLCols) always holds: a filter predicate consumes an
	// input column without contributing to the output projection.
	XLCols []string

	// ColMap maps each output column to the input column it is filled from.
	ColMap map[string]string

	// FilterRows restricts the rule to input rows where each named column
	// (lower-cased) holds the given literal value. Empty means all rows.
	FilterRows map[string]string
}

// mappingSeparator splits a mapping line into its output and input halves.
const mappingSeparator = " = "

// todoTag marks a mapping whose input table has not been decided yet.
const todoTag = "~TODO"

// readMappings parses the mapping grammar source. Each non-blank line has the
// shape
//
//	OUTPUT_TABLE[OUT_COL,...] = ~TAG(in_col,...)
//
// where an input token may instead be a "Column:LITERAL" row-filter pair.
// The first blank line terminates the file; content after it is not read.
//
// Lines naming the ~TODO placeholder tag or containing TODO column tokens
// describe mappings that are not finished yet; they are skipped and counted
// in dropped rather than treated as errors. rawCols records the declared
// output columns of every line, including dropped ones, keyed by output
// table name; the writer's header table is derived from it.
func readMappings(r io.Reader) (maps []TableMap, rawCols map[string][]string, dropped int, err error) {
	rawCols = map[string][]string{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line == "" {
			break
		}
		m, incomplete, perr := parseMappingLine(line)
		if perr != nil {
			return nil, nil, 0, perr
		}
		rawCols[m.Name] = m.Cols
		if incomplete {
			dropped++
			continue
		}
		maps = append(maps, m)
	}
	if serr := sc.Err(); serr != nil {
		return nil, nil, 0, fmt.Errorf("mappings: read: %w", serr)
	}
	return maps, rawCols, dropped, nil
}

// parseMappingLine compiles a single rule. incomplete is true for placeholder
// lines that must be dropped (with a warning) by the caller.
func parseMappingLine(line string) (m TableMap, incomplete bool, err error) {
	out, in, ok := strings.Cut(line, mappingSeparator)
	if !ok {
		return m, false, fmt.Errorf("mappings: missing %q separator: %q", mappingSeparator, line)
	}

	name, colsStr, ok := splitBracketed(out, '[', ']')
	if !ok {
		return m, false, fmt.Errorf("mappings: malformed output side: %q", line)
	}
	xlName, xlColsStr, ok := splitBracketed(in, '(', ')')
	if !ok {
		return m, false, fmt.Errorf("mappings: malformed input side: %q", line)
	}

	cols := strings.Split(colsStr, ",")
	rawXLCols := strings.Split(xlColsStr, ",")

	filterRows := map[string]string{}
	xlCols := make([]string, 0, len(rawXLCols))
	for _, tok := range rawXLCols {
		if col, val, isFilter := strings.Cut(tok, ":"); isFilter {
			filterRows[strings.ToLower(strings.TrimSpace(col))] = strings.TrimSpace(val)
			continue
		}
		xlCols = append(xlCols, strings.ToLower(tok))
	}

	m = TableMap{Name: name, Cols: cols, XLName: xlName, XLCols: xlCols, FilterRows: filterRows}

	// Unfinished rules are tracked, not rejected.
	if xlName == todoTag || anyHasPrefix(rawXLCols, "TODO") {
		return m, true, nil
	}

	// A rule that declares more outputs than it has inputs can never be
	// satisfied; reject it at load time rather than truncating silently.
	if len(cols) > len(xlCols) {
		return m, false, fmt.Errorf(
			"mappings: %s declares %d output columns but only %d input columns remain after filters: %q",
			name, len(cols), len(xlCols), line)
	}

	m.ColMap = make(map[string]string, len(cols))
	for i, c := range cols {
		m.ColMap[c] = xlCols[i]
	}

	// Canonicalize tag spellings; plain (marker-less) input names pass through.
	if strings.HasPrefix(m.XLName, TagMarker) {
		m.XLName = strings.ToUpper(m.XLName)
	}
	return m, false, nil
}

// splitBracketed splits "name<open>inner<close>" into name and inner.
func splitBracketed(s string, open, clos rune) (name, inner string, ok bool) {
	var parts []string
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == open || r == clos }) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func anyHasPrefix(ss []string, prefix string) bool {
	for _, s := range ss {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
