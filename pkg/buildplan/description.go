// SPDX-License-Identifier: MPL-2.0

package buildplan

import (
	"github.com/loombuild/loom/pkg/modgraph"
)

// HostArtifactQualifier is appended to a product's artifact name when the
// product is built for the host, so a product planned at both destinations
// never produces colliding artifacts or build-command keys.
const HostArtifactQualifier = "-tool"

type (
	// ModuleBuildDescription is everything the downstream command emitter
	// needs to compile one module at one destination. Descriptions are
	// created once per BuildIdentity and immutable afterwards.
	ModuleBuildDescription struct {
		// Identity keys the description: module plus destination.
		Identity BuildIdentity `json:"identity"`
		// ModuleName is the final name the module compiles under, after any
		// substitution. Equals the declared name when no alias applies.
		ModuleName modgraph.ModuleName `json:"moduleName"`
		// Aliases is the module's final alias map, nil when no rename is
		// visible from this module.
		Aliases AliasMap `json:"aliases,omitempty"`
		// Parameters are the destination's compile parameters.
		Parameters BuildParameters `json:"parameters"`
	}

	// ProductBuildDescription resolves one artifact-producing product at one
	// destination to the module builds backing it. Library products are
	// compile-time groupings and get no description.
	ProductBuildDescription struct {
		// Product is the product's graph-wide reference (declared name).
		Product modgraph.ProductRef `json:"product"`
		// Kind is the product's declared kind.
		Kind modgraph.ProductKind `json:"kind"`
		// Destination is the machine the product's artifact runs on.
		Destination Destination `json:"destination"`
		// ArtifactName is the final artifact name: the product's name after
		// aliasing, with HostArtifactQualifier appended for host builds.
		ArtifactName string `json:"artifactName"`
		// Modules lists the build identities of the product's exported
		// modules, in export declaration order.
		Modules []BuildIdentity `json:"modules"`
	}
)

// IsRenamed reports whether the module compiles under a substituted name.
func (d *ModuleBuildDescription) IsRenamed() bool {
	return d.ModuleName != d.Identity.Ref.Name
}

// String returns "package/module@destination as finalName" for log output.
func (d *ModuleBuildDescription) String() string {
	s := d.Identity.String()
	if d.IsRenamed() {
		s += " as " + string(d.ModuleName)
	}
	return s
}

// String returns "package:product@destination" for log output.
func (d *ProductBuildDescription) String() string {
	return d.Product.String() + "@" + string(d.Destination)
}

// artifactName derives the destination-qualified artifact name from a
// product's final (possibly alias-substituted) name.
func artifactName(final modgraph.ProductName, dest Destination) string {
	if dest == DestinationHost {
		return string(final) + HostArtifactQualifier
	}
	return string(final)
}
