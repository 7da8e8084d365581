package config

import (
	"encoding/json"
	"fmt"
	"sort"
)

// attrDefaultsEntry is one record of the per-attribute defaults source (a
// JSON object keyed by attribute name).
type attrDefaultsEntry struct {
	// TimesAttribute names the canonical attribute this entry is an alias
	// for, when set.
	TimesAttribute string `json:"times-attribute"`

	Defaults *struct {
		Commodity string `json:"commodity"`
		LimType   string `json:"limtype"`
		TSLevel   string `json:"ts-level"`
	} `json:"defaults"`
}

// LimTypeGroups buckets attributes by the bound kind they default to.
type LimTypeGroups struct {
	FX []string
	LO []string
	UP []string
}

// TSLevelGroups buckets attributes by the time-slice level they default to.
type TSLevelGroups struct {
	DayNite []string
	Annual  []string
}

// AttrDefaults is the compiled per-attribute defaults table. The categorical
// groupings are fixed sub-fields rather than nested maps so the four default
// categories are checked at compile time.
type AttrDefaults struct {
	// Aliases maps each canonical attribute name to the alias names that
	// resolve to it.
	Aliases map[string][]string

	// Commodity maps an attribute to its default commodity, where declared.
	Commodity map[string]string

	LimType LimTypeGroups
	TSLevel TSLevelGroups
}

// readVedaAttrDefaults compiles the defaults source. aliasNames is the set of
// attribute names that declare a canonical-attribute reference; it is used
// elsewhere to recognize aliases.
//
// Entries are processed in sorted name order so the compiled group and alias
// lists are deterministic regardless of source serialization order.
func readVedaAttrDefaults(data []byte) (*AttrDefaults, map[string]struct{}, error) {
	var entries map[string]attrDefaultsEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, nil, fmt.Errorf("attr-defaults: decode: %w", err)
	}

	defaults := &AttrDefaults{
		Aliases:   map[string][]string{},
		Commodity: map[string]string{},
		LimType:   LimTypeGroups{FX: []string{}, LO: []string{}, UP: []string{}},
		TSLevel:   TSLevelGroups{DayNite: []string{}, Annual: []string{}},
	}
	aliasNames := map[string]struct{}{}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		e := entries[name]

		if e.TimesAttribute != "" {
			aliasNames[name] = struct{}{}
			defaults.Aliases[e.TimesAttribute] = append(defaults.Aliases[e.TimesAttribute], name)
		}

		if e.Defaults == nil {
			continue
		}
		if c := e.Defaults.Commodity; c != "" {
			defaults.Commodity[name] = c
		}
		if lt := e.Defaults.LimType; lt != "" {
			switch lt {
			case "FX":
				defaults.LimType.FX = append(defaults.LimType.FX, name)
			case "LO":
				defaults.LimType.LO = append(defaults.LimType.LO, name)
			case "UP":
				defaults.LimType.UP = append(defaults.LimType.UP, name)
			default:
				return nil, nil, fmt.Errorf("attr-defaults: %s declares unknown limtype %q", name, lt)
			}
		}
		if lvl := e.Defaults.TSLevel; lvl != "" {
			switch lvl {
			case "DAYNITE":
				defaults.TSLevel.DayNite = append(defaults.TSLevel.DayNite, name)
			case "ANNUAL":
				defaults.TSLevel.Annual = append(defaults.TSLevel.Annual, name)
			default:
				return nil, nil, fmt.Errorf("attr-defaults: %s declares unknown ts-level %q", name, lvl)
			}
		}
	}

	return defaults, aliasNames, nil
}
