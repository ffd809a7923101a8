package filter

import (
	"slices"

	"github.com/grassfps/grassfps/internal/record"
	"github.com/grassfps/grassfps/internal/util"
)

// Global is consulted once per record before any category. A source on the
// blacklist is rejected even when it is also whitelisted.
type Global struct {
	SourceBlacklist       []record.SourceKey `json:"source_blacklist,omitempty" description:"Plugins whose records are never patched."`
	EnableSourceWhitelist bool               `json:"enable_source_whitelist,omitempty" description:"Only patch records from plugins in source_whitelist."`
	SourceWhitelist       []record.SourceKey `json:"source_whitelist,omitempty" description:"Plugins whose records may be patched when the whitelist is enabled."`
	RecordBlacklist       []record.Key       `json:"record_blacklist,omitempty" description:"Records that are never patched."`

	_ struct{} `additionalProperties:"false"`
}

func (g *Global) Allows(key record.Key) bool {
	if slices.Contains(g.SourceBlacklist, key.Source) {
		return false
	}
	if g.EnableSourceWhitelist && !slices.Contains(g.SourceWhitelist, key.Source) {
		return false
	}
	return !slices.Contains(g.RecordBlacklist, key)
}

func (g *Global) Equal(other *Global) bool {
	return util.FastEqual(g, other, func(g, other *Global) bool {
		return g.EnableSourceWhitelist == other.EnableSourceWhitelist &&
			util.SetEqual(g.SourceBlacklist, other.SourceBlacklist) &&
			util.SetEqual(g.SourceWhitelist, other.SourceWhitelist) &&
			util.SetEqual(g.RecordBlacklist, other.RecordBlacklist)
	})
}
