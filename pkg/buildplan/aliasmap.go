// SPDX-License-Identifier: MPL-2.0

package buildplan

import (
	"slices"

	"golang.org/x/exp/maps"

	"github.com/loombuild/loom/pkg/modgraph"
)

// AliasMap records the module renames visible when compiling one module.
// Keys are original declared names, values are the final substituted names.
// A nil map means no substitutions. Resolution keeps maps injective: two
// originals never map to the same final name (that collision is reported as
// a conflict diagnostic instead).
type AliasMap map[modgraph.ModuleName]modgraph.ModuleName

// Lookup returns the substituted name for an original, if any.
func (m AliasMap) Lookup(original modgraph.ModuleName) (modgraph.ModuleName, bool) {
	final, ok := m[original]
	return final, ok
}

// Apply returns the substituted name for an original, or the original
// unchanged when the map holds no entry for it.
func (m AliasMap) Apply(original modgraph.ModuleName) modgraph.ModuleName {
	if final, ok := m[original]; ok {
		return final
	}
	return original
}

// Clone returns an independent copy. Nil stays nil.
func (m AliasMap) Clone() AliasMap {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}

// Equal reports whether two maps hold exactly the same entries.
func (m AliasMap) Equal(other AliasMap) bool {
	return maps.Equal(m, other)
}

// SortedOriginals returns the original-name keys in lexicographic order,
// for deterministic iteration and reporting.
func (m AliasMap) SortedOriginals() []modgraph.ModuleName {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
