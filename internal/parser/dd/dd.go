// Package dd implements a parser for GAMS DD data files. A DD file is a
// sequence of blocks; each block carries either parameter values or set
// members:
//
//	PARAMETER
//	PARAM_NAME ' '/
//	'KEY1'.'KEY2' value
//	...
//	/
//
//	SET SET_NAME
//	/
//	'ELEM1'.'ELEM2' 'description'
//	...
//	/
//
// Parameter rows are keyed by a dot-delimited compound identifier followed by
// a scalar value; a row with a single token is a bare scalar. Set rows are a
// dot-delimited identifier optionally followed by a quoted description.
// Quoting protects components that contain structurally significant
// characters (the dot separator, spaces).
//
// The parser only understands this subset of the GAMS set/parameter notation;
// see https://www.gams.com/latest/docs/UG_SetDefinition.html for the full
// grammar. Anything outside the subset is a hard StructuralError: silently
// dropping model data is worse than stopping the run.
package dd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/siddharth-krishna/xl2times/internal/records"
)

// Block kinds used in structural error reports.
const (
	BlockParameter = "parameter"
	BlockSet       = "set"
)

// StructuralError reports a malformed row or block in a DD source. It names
// the block kind and the raw offending line so the operator can locate the
// problem in the source file. Structural errors are not recoverable: the
// enclosing source is abandoned.
type StructuralError struct {
	Block  string // BlockParameter or BlockSet
	Line   string // raw line as read (trailing whitespace stripped)
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("dd: malformed %s block: %s: %q", e.Block, e.Reason, e.Line)
}

// Options configures the DD parser. All fields are optional.
type Options struct {
	// NormalizeNFC applies Unicode NFC normalization to the input stream
	// before parsing. DD files exported on different platforms occasionally
	// disagree on composed vs decomposed forms for accented identifiers;
	// normalizing keeps set-member deduplication byte-stable.
	NormalizeNFC bool
}

// Parser parses DD input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// File holds the records parsed from a single DD source: parameter rows by
// parameter name (duplicates preserved, order preserved) and deduplicated set
// tuples by set name.
type File struct {
	Params map[string][]records.Row
	Sets   map[string]*TupleSet
}

// NewFile returns an empty File with initialized maps.
func NewFile() *File {
	return &File{
		Params: map[string][]records.Row{},
		Sets:   map[string]*TupleSet{},
	}
}

// utf8BOM is stripped from the start of the input if present.
const utf8BOM = "\uFEFF"

// paramNameDecoration trails the parameter name on its header line.
const paramNameDecoration = " ' '/"

// Parse reads an entire DD source and returns its parameter rows and set
// tuples. The whole input is consumed: configuration and data files are small
// relative to the workbooks they describe, and block boundaries are easier to
// diagnose with the full line slice at hand.
func (p *Parser) Parse(r io.Reader) (*File, error) {
	if p.opt.NormalizeNFC {
		r = transform.NewReader(r, norm.NFC)
	}

	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if len(lines) == 0 {
			line = strings.TrimPrefix(line, utf8BOM)
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dd: read: %w", err)
	}

	out := NewFile()
	index := 0
	for index < len(lines) {
		if strings.HasPrefix(lines[index], "PARAMETER") {
			next, err := parseParameterBlock(lines, index, out)
			if err != nil {
				return nil, err
			}
			index = next
		}
		if index < len(lines) && strings.HasPrefix(lines[index], "SET") {
			next, err := parseSetBlock(lines, index, out)
			if err != nil {
				return nil, err
			}
			index = next
		}
		index++
	}
	return out, nil
}

// parseParameterBlock consumes one PARAMETER block starting at lines[index]
// and returns the index of the block's closing line.
func parseParameterBlock(lines []string, index int, out *File) (int, error) {
	// The parameter name is on the next non-blank line.
	index++
	for index < len(lines) && strings.TrimSpace(lines[index]) == "" {
		index++
	}
	if index >= len(lines) {
		return 0, &StructuralError{BlockParameter, "", "unexpected end of input before parameter name"}
	}
	name := strings.ReplaceAll(lines[index], paramNameDecoration, "")

	index++
	var rows []records.Row
	for index < len(lines) && !strings.HasPrefix(lines[index], "/") && lines[index] != "" {
		row, err := parseParameterRow(lines[index])
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
		index++
	}

	// A repeated block for the same name within one source replaces the
	// earlier one; concatenation only happens across sources (see Merge).
	out.Params[name] = rows
	return index, nil
}

// parseParameterRow splits one data row on single spaces. One token is a bare
// scalar; two tokens are a dot-delimited key plus a value. Key components are
// unquoted unless they contain an embedded space, in which case they are
// assumed to be already-unquoted content and left intact. Any other token
// count is a structural error, even though a quoted component containing a
// space can trip it; that trigger is part of the format contract.
func parseParameterRow(line string) (records.Row, error) {
	words := strings.Split(line, " ")
	var row records.Row
	switch len(words) {
	case 1:
		row = records.Row{words[0]}
	case 2:
		comps := strings.Split(words[0], ".")
		row = make(records.Row, 0, len(comps)+1)
		for _, c := range comps {
			if !strings.Contains(c, " ") {
				c = strings.Trim(c, "'")
			}
			row = append(row, c)
		}
		row = append(row, words[1])
	default:
		return nil, &StructuralError{BlockParameter, line, "unexpected number of spaces in value setting"}
	}
	return row, nil
}

// parseSetBlock consumes one SET block starting at lines[index] and returns
// the index of the block's closing line. Tuples for a set name that already
// appeared earlier are unioned into the existing collection: a model set may
// be declared across several blocks and files, and membership is a set, not a
// log of assignments.
func parseSetBlock(lines []string, index int, out *File) (int, error) {
	tag := lines[index]
	fields := strings.Split(tag, " ")
	if len(fields) != 2 {
		return 0, &StructuralError{BlockSet, tag, "expected SET followed by exactly one name"}
	}
	name := fields[1]

	index++
	for index < len(lines) && strings.TrimSpace(lines[index]) == "" {
		index++
	}
	if index >= len(lines) || !strings.HasPrefix(lines[index], "/") {
		return 0, &StructuralError{BlockSet, tag, "missing opening / delimiter"}
	}
	index++

	set := out.Sets[name]
	if set == nil {
		set = NewTupleSet()
		out.Sets[name] = set
	}
	for index < len(lines) && !strings.HasPrefix(lines[index], "/") && lines[index] != "" {
		tuple, err := parseSetRow(lines[index])
		if err != nil {
			return 0, err
		}
		set.Add(tuple)
		index++
	}
	return index, nil
}

// parseSetRow tokenizes one set data row. The line is split on the quote
// character so quoted substrings (which may contain the dot delimiter or
// spaces) stay whole; adjacent fragments are then reassembled into logical
// words. The first word is the dot-delimited key; an optional second word is
// a descriptive string. More than two words is a structural error. Unbalanced
// quotes are not repaired; they surface through the same error path.
func parseSetRow(line string) (records.Row, error) {
	parts := [][]string{nil}
	for _, word := range strings.Split(line, "'") {
		if word == "" {
			continue
		}
		switch {
		case strings.TrimSpace(word) == "":
			parts = append(parts, nil)
		case strings.HasSuffix(word, " "):
			parts[len(parts)-1] = append(parts[len(parts)-1], strings.TrimSpace(word))
			parts = append(parts, nil)
		default:
			parts[len(parts)-1] = append(parts[len(parts)-1], word)
		}
	}
	words := make([]string, len(parts))
	for i, p := range parts {
		words[i] = strings.Join(p, "")
	}

	tuple := records.Row(strings.Split(words[0], "."))
	switch len(words) {
	case 1:
	case 2:
		tuple = append(tuple, words[1])
	default:
		return nil, &StructuralError{BlockSet, line, "unexpected number of spaces in value setting"}
	}
	return tuple, nil
}
