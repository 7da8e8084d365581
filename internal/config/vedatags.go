package config

import (
	"encoding/json"
	"fmt"
)

// vedaTagEntry is one record of the tag-definition source (a JSON array).
// TagName is stored without the marker and in lower case.
type vedaTagEntry struct {
	TagName     string         `json:"tag_name"`
	BaseTag     string         `json:"base_tag"`
	ValidFields []vedaTagField `json:"valid_fields"`
}

// vedaTagField describes one accepted column of a tagged table.
type vedaTagField struct {
	Name            string   `json:"name"`
	UseName         string   `json:"use_name"`
	Aliases         []string `json:"aliases"`
	RowIgnoreSymbol []string `json:"row_ignore_symbol"`
}

// tagSchemas is the compiled form of the tag-definition source.
type tagSchemas struct {
	// ColumnAliases maps, per tag, every accepted column alias to the
	// canonical column name.
	ColumnAliases map[Tag]map[string]string

	// RowCommentChars maps, per tag, each canonical column name to the
	// symbols that mark a row as a comment for that column.
	RowCommentChars map[Tag]map[string][]string

	// DiscardIfEmpty holds the tags whose empty tables must be dropped
	// downstream: exactly those with an explicitly or derivedly populated
	// schema.
	DiscardIfEmpty map[Tag]bool

	// KnownColumns holds, per tag, the canonical column set.
	KnownColumns map[Tag]map[string]struct{}

	// Warnings lists catalog tags absent from the source. This is a
	// completeness check, not an error.
	Warnings []string
}

// readVedaTagsInfo compiles the tag-definition source.
//
// Inheritance: a tag naming a base_tag receives value copies of the base's
// compiled alias table, comment table, and known-column set. The copy is
// taken when the dependent tag is reached, so the base must be defined
// earlier in the source. The copy is a snapshot, never a live reference;
// later changes to one side cannot leak into the other.
func readVedaTagsInfo(data []byte) (*tagSchemas, error) {
	var entries []vedaTagEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("veda-tags: decode: %w", err)
	}

	s := &tagSchemas{
		ColumnAliases:   map[Tag]map[string]string{},
		RowCommentChars: map[Tag]map[string][]string{},
		DiscardIfEmpty:  map[Tag]bool{},
		KnownColumns:    map[Tag]map[string]struct{}{},
	}

	// Catalog completeness: every tag this program accepts should be
	// described by the source.
	present := map[Tag]struct{}{}
	for _, e := range entries {
		if e.TagName == "" {
			return nil, fmt.Errorf("veda-tags: entry missing tag_name")
		}
		tag := tagFromShortName(e.TagName)
		if !tag.Valid() {
			return nil, fmt.Errorf("veda-tags: unknown tag %q", e.TagName)
		}
		present[tag] = struct{}{}
	}
	for _, t := range AllTags {
		if _, ok := present[t]; !ok {
			s.Warnings = append(s.Warnings, fmt.Sprintf("catalog tag %s is not described by the tag-definition source", t))
		}
	}

	for _, e := range entries {
		tag := tagFromShortName(e.TagName)

		if len(e.ValidFields) > 0 {
			s.DiscardIfEmpty[tag] = true
			aliases := map[string]string{}
			comments := map[string][]string{}
			cols := map[string]struct{}{}

			for _, f := range e.ValidFields {
				if f.Name == "" {
					return nil, fmt.Errorf("veda-tags: %s has a field without a name", tag)
				}
				fieldName := f.Name
				names := append([]string{}, f.Aliases...)
				if f.UseName != "" && f.UseName != f.Name {
					// The stored name is itself an alias for the name the
					// program uses.
					fieldName = f.UseName
					names = append(names, f.Name)
				}
				cols[fieldName] = struct{}{}
				for _, alias := range names {
					aliases[alias] = fieldName
					comments[fieldName] = f.RowIgnoreSymbol
				}
			}

			s.ColumnAliases[tag] = aliases
			s.RowCommentChars[tag] = comments
			s.KnownColumns[tag] = cols
		}

		if e.BaseTag != "" {
			base := tagFromShortName(e.BaseTag)
			if !base.Valid() {
				return nil, fmt.Errorf("veda-tags: %s names unknown base tag %q", tag, e.BaseTag)
			}
			if aliases, ok := s.ColumnAliases[base]; ok {
				s.ColumnAliases[tag] = copyStringMap(aliases)
				s.DiscardIfEmpty[tag] = true
			}
			if comments, ok := s.RowCommentChars[base]; ok {
				s.RowCommentChars[tag] = copySliceMap(comments)
			}
			if cols, ok := s.KnownColumns[base]; ok {
				s.KnownColumns[tag] = copySet(cols)
			}
		}
	}

	return s, nil
}

func copyStringMap(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copySliceMap(src map[string][]string) map[string][]string {
	dst := make(map[string][]string, len(src))
	for k, v := range src {
		dst[k] = append([]string{}, v...)
	}
	return dst
}

func copySet(src map[string]struct{}) map[string]struct{} {
	dst := make(map[string]struct{}, len(src))
	for k := range src {
		dst[k] = struct{}{}
	}
	return dst
}
