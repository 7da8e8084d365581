package config

import "strings"

// Tag identifies one of the accepted table categories. The catalog is closed:
// a table tag outside this list is not one this program understands. Section
// 2.4 of the TIMES model documentation (Part IV) describes the tags.
//
// The string value is the canonical spelling used in mapping rules and the
// tag-definition source: upper case with a leading tag marker.
type Tag string

// TagMarker prefixes every canonical tag name.
const TagMarker = "~"

const (
	TagActivePDef     Tag = "~ACTIVEPDEF"
	TagBookRegionsMap Tag = "~BOOKREGIONS_MAP"
	TagComAgg         Tag = "~COMAGG"
	TagComEmi         Tag = "~COMEMI"
	TagCurrencies     Tag = "~CURRENCIES"
	TagDefaultYear    Tag = "~DEFAULTYEAR"
	TagDefUnits       Tag = "~DEFUNITS"
	TagEndYear        Tag = "~ENDYEAR"
	TagFiComm         Tag = "~FI_COMM"
	TagFiProcess      Tag = "~FI_PROCESS"
	TagFiT            Tag = "~FI_T"
	TagMilestoneYears Tag = "~MILESTONEYEARS"
	TagStartYear      Tag = "~STARTYEAR"
	TagTfmAva         Tag = "~TFM_AVA"
	TagTfmComGrp      Tag = "~TFM_COMGRP"
	TagTfmCSets       Tag = "~TFM_CSETS"
	TagTfmDins        Tag = "~TFM_DINS"
	TagTfmDinsAt      Tag = "~TFM_DINS-AT"
	TagTfmDinsTs      Tag = "~TFM_DINS-TS"
	TagTfmDinsTsl     Tag = "~TFM_DINS-TSL"
	TagTfmFill        Tag = "~TFM_FILL"
	TagTfmFillR       Tag = "~TFM_FILL-R"
	TagTfmIns         Tag = "~TFM_INS"
	TagTfmInsAt       Tag = "~TFM_INS-AT"
	TagTfmInsTs       Tag = "~TFM_INS-TS"
	TagTfmInsTsl      Tag = "~TFM_INS-TSL"
	TagTfmInsTxt      Tag = "~TFM_INS-TXT"
	TagTfmMig         Tag = "~TFM_MIG"
	TagTfmPSets       Tag = "~TFM_PSETS"
	TagTfmTopDins     Tag = "~TFM_TOPDINS"
	TagTfmTopIns      Tag = "~TFM_TOPINS"
	TagTfmUpd         Tag = "~TFM_UPD"
	TagTfmUpdAt       Tag = "~TFM_UPD-AT"
	TagTfmUpdTs       Tag = "~TFM_UPD-TS"
	TagTimePeriods    Tag = "~TIMEPERIODS"
	TagTimeSlices     Tag = "~TIMESLICES"
	TagTradeLinks     Tag = "~TRADELINKS"
	TagTradeLinksDins Tag = "~TRADELINKS_DINS"
	TagUCSets         Tag = "~UC_SETS"
	TagUCT            Tag = "~UC_T"
	// Used by Veda for unit conversion when displaying results.
	TagUnitConversion Tag = "~UNITCONVERSION"
)

// AllTags enumerates every tag in the catalog, in canonical order.
var AllTags = []Tag{
	TagActivePDef,
	TagBookRegionsMap,
	TagComAgg,
	TagComEmi,
	TagCurrencies,
	TagDefaultYear,
	TagDefUnits,
	TagEndYear,
	TagFiComm,
	TagFiProcess,
	TagFiT,
	TagMilestoneYears,
	TagStartYear,
	TagTfmAva,
	TagTfmComGrp,
	TagTfmCSets,
	TagTfmDins,
	TagTfmDinsAt,
	TagTfmDinsTs,
	TagTfmDinsTsl,
	TagTfmFill,
	TagTfmFillR,
	TagTfmIns,
	TagTfmInsAt,
	TagTfmInsTs,
	TagTfmInsTsl,
	TagTfmInsTxt,
	TagTfmMig,
	TagTfmPSets,
	TagTfmTopDins,
	TagTfmTopIns,
	TagTfmUpd,
	TagTfmUpdAt,
	TagTfmUpdTs,
	TagTimePeriods,
	TagTimeSlices,
	TagTradeLinks,
	TagTradeLinksDins,
	TagUCSets,
	TagUCT,
	TagUnitConversion,
}

var tagSet = func() map[Tag]struct{} {
	m := make(map[Tag]struct{}, len(AllTags))
	for _, t := range AllTags {
		m[t] = struct{}{}
	}
	return m
}()

// Valid reports whether t is in the catalog.
func (t Tag) Valid() bool {
	_, ok := tagSet[t]
	return ok
}

// ParseTag canonicalizes s (upper case, marker required) and reports whether
// the result is a catalog tag.
func ParseTag(s string) (Tag, bool) {
	t := Tag(strings.ToUpper(s))
	return t, t.Valid()
}

// tagFromShortName builds a Tag from the marker-less, case-insensitive
// spelling used by the tag-definition source (e.g. "fi_t" -> ~FI_T). The
// result may be outside the catalog; callers decide whether that matters.
func tagFromShortName(s string) Tag {
	return Tag(TagMarker + strings.ToUpper(s))
}
