package config

import (
	"reflect"
	"strings"
	"testing"
)

const vedaTagsFixture = `[
  {
    "tag_name": "fi_t",
    "valid_fields": [
      {"name": "region", "aliases": [], "row_ignore_symbol": ["\\I:", "*"]},
      {"name": "commname", "use_name": "commodity", "aliases": ["commodityname"], "row_ignore_symbol": ["*"]},
      {"name": "attribute", "aliases": ["attrib"], "row_ignore_symbol": ["*"]}
    ]
  },
  {"tag_name": "tfm_ins-ts", "base_tag": "fi_t"},
  {"tag_name": "startyear"}
]`

func TestReadVedaTagsAliases(t *testing.T) {
	s, err := readVedaTagsInfo([]byte(vedaTagsFixture))
	if err != nil {
		t.Fatalf("readVedaTagsInfo: %v", err)
	}

	aliases := s.ColumnAliases[TagFiT]
	// The stored name "commname" becomes an alias of its use_name; "region"
	// has no aliases and no use_name indirection, so it appears only in the
	// known-column set.
	want := map[string]string{
		"commodityname": "commodity",
		"commname":      "commodity",
		"attrib":        "attribute",
	}
	if !reflect.DeepEqual(aliases, want) {
		t.Fatalf("ColumnAliases[~FI_T] = %v, want %v", aliases, want)
	}

	if got := s.RowCommentChars[TagFiT]["commodity"]; !reflect.DeepEqual(got, []string{"*"}) {
		t.Fatalf("RowCommentChars[~FI_T][commodity] = %v", got)
	}

	cols := s.KnownColumns[TagFiT]
	for _, c := range []string{"region", "commodity", "attribute"} {
		if _, ok := cols[c]; !ok {
			t.Fatalf("KnownColumns[~FI_T] missing %q (have %v)", c, cols)
		}
	}

	if !s.DiscardIfEmpty[TagFiT] {
		t.Fatal("~FI_T has a populated schema, must be in DiscardIfEmpty")
	}
	if s.DiscardIfEmpty[Tag("~STARTYEAR")] {
		t.Fatal("~STARTYEAR declares no fields, must not be in DiscardIfEmpty")
	}
}

func TestReadVedaTagsMissingAliasesOmitsMappings(t *testing.T) {
	// A field with no aliases and no use_name indirection contributes no
	// alias entries and no comment chars; only the known-column set sees it.
	s, err := readVedaTagsInfo([]byte(`[
  {"tag_name": "currencies",
   "valid_fields": [{"name": "currency", "aliases": [], "row_ignore_symbol": ["*"]}]}
]`))
	if err != nil {
		t.Fatalf("readVedaTagsInfo: %v", err)
	}
	tag := TagCurrencies
	if _, ok := s.KnownColumns[tag]["currency"]; !ok {
		t.Fatalf("KnownColumns = %v", s.KnownColumns[tag])
	}
	if len(s.ColumnAliases[tag]) != 0 {
		t.Fatalf("ColumnAliases = %v, want empty", s.ColumnAliases[tag])
	}
}

func TestReadVedaTagsInheritance(t *testing.T) {
	s, err := readVedaTagsInfo([]byte(vedaTagsFixture))
	if err != nil {
		t.Fatalf("readVedaTagsInfo: %v", err)
	}

	dep := TagTfmInsTs
	if !reflect.DeepEqual(s.ColumnAliases[dep], s.ColumnAliases[TagFiT]) {
		t.Fatalf("dependent aliases = %v, want copy of base", s.ColumnAliases[dep])
	}
	if !s.DiscardIfEmpty[dep] {
		t.Fatal("derivedly populated tag must be in DiscardIfEmpty")
	}

	// The copy is a snapshot, not a live reference.
	s.ColumnAliases[dep]["extra"] = "extra"
	if _, ok := s.ColumnAliases[TagFiT]["extra"]; ok {
		t.Fatal("mutating the dependent's table altered the base's")
	}
	s.RowCommentChars[dep]["commodity"] = append(s.RowCommentChars[dep]["commodity"], "!")
	if got := s.RowCommentChars[TagFiT]["commodity"]; !reflect.DeepEqual(got, []string{"*"}) {
		t.Fatalf("base comment chars mutated: %v", got)
	}
}

func TestReadVedaTagsCompletenessWarnings(t *testing.T) {
	s, err := readVedaTagsInfo([]byte(vedaTagsFixture))
	if err != nil {
		t.Fatalf("readVedaTagsInfo: %v", err)
	}
	// Every catalog tag missing from the fixture is warned about, and never
	// fatally.
	if len(s.Warnings) != len(AllTags)-3 {
		t.Fatalf("warnings = %d, want %d", len(s.Warnings), len(AllTags)-3)
	}
	for _, w := range s.Warnings {
		if strings.Contains(w, string(TagFiT)+" ") {
			t.Fatalf("unexpected warning for present tag: %q", w)
		}
	}
}

func TestReadVedaTagsUnknownTagIsFatal(t *testing.T) {
	_, err := readVedaTagsInfo([]byte(`[{"tag_name": "bogus_tag", "valid_fields": [{"name": "region", "aliases": ["reg"]}]}]`))
	if err == nil {
		t.Fatal("expected error for tag outside the catalog")
	}
	if !strings.Contains(err.Error(), "bogus_tag") {
		t.Fatalf("error should name the offending tag: %v", err)
	}
}

func TestReadVedaTagsUnknownBaseTagIsFatal(t *testing.T) {
	_, err := readVedaTagsInfo([]byte(`[{"tag_name": "fi_t", "base_tag": "bogus_base"}]`))
	if err == nil {
		t.Fatal("expected error for base tag outside the catalog")
	}
}
