// Package config loads and compiles the declarative mapping rules that drive
// the conversion: the mapping grammar, the attribute metadata, the tag-schema
// definitions, and the per-attribute default tables. The four sources are
// compiled independently and merged once at startup into an immutable Config;
// downstream consumers treat it as read-only, so it is safe to share across
// goroutines.
//
// Default copies of the sources ship embedded in the binary, mirroring the
// layout under data/; each can be overridden by path, which is also how the
// tests feed fixtures.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed data/times_mapping.txt
var defaultMappings []byte

//go:embed data/times-info.json
var defaultTimesInfo []byte

//go:embed data/veda-tags.json
var defaultVedaTags []byte

//go:embed data/veda-attr-defaults.json
var defaultAttrDefaults []byte

// Options selects the configuration sources and the region allow-list.
// Empty paths select the embedded defaults.
type Options struct {
	MappingFile      string
	TimesInfoFile    string
	VedaTagsFile     string
	AttrDefaultsFile string

	// Regions is a raw comma-separated region allow-list. Empty means no
	// filtering.
	Regions string
}

// Config is the compiled, immutable configuration for one run. It is built
// once, never mutated afterwards, and discarded at process exit.
type Config struct {
	// TableMaps holds the merged mapping rules, first-seen order preserved.
	// Attribute-derived rules override grammar-derived rules of the same
	// output name.
	TableMaps []TableMap

	// TableOrder is the fixed output ordering over table names: grouped by
	// category (set, subset, subsubset, md-set, parameter), alphabetical
	// within each group.
	TableOrder []string

	// Headers gives the expected output header for every known table name.
	// It is derived from the attribute metadata for all entries, with the
	// mapping grammar's declared output columns taking precedence; this is
	// the header set the tabular writer validates against.
	Headers map[string][]string

	// AllAttributes is the set of parameter names, lower-cased.
	AllAttributes map[string]struct{}

	// AttrAliases is the set of attribute names that are aliases for a
	// canonical attribute.
	AttrAliases map[string]struct{}

	ColumnAliases   map[Tag]map[string]string
	RowCommentChars map[Tag]map[string][]string
	DiscardIfEmpty  map[Tag]bool
	KnownColumns    map[Tag]map[string]struct{}

	AttrDefaults *AttrDefaults

	// FilterRegions restricts which regions downstream consumers retain.
	// Empty means all regions.
	FilterRegions map[string]struct{}

	// DroppedMappings counts grammar lines skipped as not yet implemented.
	DroppedMappings int

	// Warnings aggregates every non-fatal finding from compilation, for
	// operator reporting. Warnings never halt the run.
	Warnings []string
}

// New loads all configuration sources and compiles them into a Config.
// Every source is read fully before any compiled rule is returned, so no
// partial configuration state is ever observable.
func New(opt Options) (*Config, error) {
	mappingSrc, err := sourceBytes(opt.MappingFile, defaultMappings)
	if err != nil {
		return nil, err
	}
	timesInfoSrc, err := sourceBytes(opt.TimesInfoFile, defaultTimesInfo)
	if err != nil {
		return nil, err
	}
	vedaTagsSrc, err := sourceBytes(opt.VedaTagsFile, defaultVedaTags)
	if err != nil {
		return nil, err
	}
	attrDefaultsSrc, err := sourceBytes(opt.AttrDefaultsFile, defaultAttrDefaults)
	if err != nil {
		return nil, err
	}

	grammarMaps, rawCols, dropped, err := readMappings(strings.NewReader(string(mappingSrc)))
	if err != nil {
		return nil, err
	}
	info, err := processTimesInfo(timesInfoSrc)
	if err != nil {
		return nil, err
	}
	schemas, err := readVedaTagsInfo(vedaTagsSrc)
	if err != nil {
		return nil, err
	}
	defaults, aliasNames, err := readVedaAttrDefaults(attrDefaultsSrc)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TableMaps:       mergeTableMaps(grammarMaps, info.ParamMaps),
		TableOrder:      info.TableOrder,
		Headers:         mergeHeaders(info.Headers, rawCols),
		AllAttributes:   info.AllAttributes,
		AttrAliases:     aliasNames,
		ColumnAliases:   schemas.ColumnAliases,
		RowCommentChars: schemas.RowCommentChars,
		DiscardIfEmpty:  schemas.DiscardIfEmpty,
		KnownColumns:    schemas.KnownColumns,
		AttrDefaults:    defaults,
		FilterRegions:   parseRegionsFilter(opt.Regions),
		DroppedMappings: dropped,
	}
	if dropped > 0 {
		cfg.Warnings = append(cfg.Warnings,
			fmt.Sprintf("dropping %d mappings that are not yet complete", dropped))
	}
	cfg.Warnings = append(cfg.Warnings, info.Warnings...)
	cfg.Warnings = append(cfg.Warnings, schemas.Warnings...)
	return cfg, nil
}

func sourceBytes(path string, embedded []byte) ([]byte, error) {
	if path == "" {
		return embedded, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return b, nil
}

// mergeTableMaps combines grammar-derived and attribute-derived rules into
// one list keyed by output-table name. The result preserves first-seen order;
// an attribute-derived rule replaces the grammar-derived rule of the same
// name in place.
func mergeTableMaps(grammar, attr []TableMap) []TableMap {
	merged := make([]TableMap, 0, len(grammar)+len(attr))
	index := make(map[string]int, len(grammar))
	for _, m := range grammar {
		index[m.Name] = len(merged)
		merged = append(merged, m)
	}
	for _, m := range attr {
		if i, ok := index[m.Name]; ok {
			merged[i] = m
			continue
		}
		index[m.Name] = len(merged)
		merged = append(merged, m)
	}
	return merged
}

// mergeHeaders builds the writer's header table: attribute-derived headers
// for every entry, overridden by the grammar's declared output columns where
// a mapping line (finished or not) names the table.
func mergeHeaders(attrHeaders map[string][]string, grammarCols map[string][]string) map[string][]string {
	merged := make(map[string][]string, len(attrHeaders))
	for name, cols := range attrHeaders {
		merged[name] = cols
	}
	for name, cols := range grammarCols {
		merged[name] = cols
	}
	return merged
}

// parseRegionsFilter parses the raw comma-separated region allow-list.
// The empty string yields an empty set, meaning no filtering.
func parseRegionsFilter(regions string) map[string]struct{} {
	out := map[string]struct{}{}
	if regions == "" {
		return out
	}
	for _, r := range strings.Split(strings.ToUpper(strings.Trim(regions, " ")), ",") {
		out[r] = struct{}{}
	}
	return out
}
