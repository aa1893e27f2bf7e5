// Package scenario resolves the base settings file into one concrete
// settings object per (planning year, case).
package scenario

import "github.com/gridwright/powerprep/internal/domain"

// MergeSettings overlays patch onto base and returns the merged result.
// Keys present in both sides as nested mappings are merged recursively;
// any other key from patch replaces (or creates) the base entry. Neither
// input is mutated, and the result shares no mutable state with either,
// so a merged settings object can be handed to a case without cross-case
// contamination. Merging the same patch twice is a no-op.
func MergeSettings(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = domain.CopyValue(v)
	}
	for k, v := range patch {
		baseMap, baseOK := asMap(out[k])
		patchMap, patchOK := asMap(v)
		if baseOK && patchOK {
			out[k] = MergeSettings(baseMap, patchMap)
			continue
		}
		out[k] = domain.CopyValue(v)
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch tv := v.(type) {
	case map[string]any:
		return tv, true
	case domain.Settings:
		return tv, true
	default:
		return nil, false
	}
}
