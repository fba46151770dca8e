// SPDX-License-Identifier: MPL-2.0

package buildplan

import (
	"fmt"

	"github.com/loombuild/loom/pkg/modgraph"
)

const (
	// DestinationTarget builds for the platform the product ships on.
	DestinationTarget Destination = "target"
	// DestinationHost builds for the machine running the build. Macros,
	// plugins, and build tools execute during compilation, so everything
	// they reach is compiled for the host.
	DestinationHost Destination = "host"

	// ConfigurationDebug builds without optimization, with assertions.
	ConfigurationDebug BuildConfiguration = "debug"
	// ConfigurationRelease builds optimized.
	ConfigurationRelease BuildConfiguration = "release"
)

type (
	// Destination says which machine an artifact is compiled for. It is one
	// axis of BuildIdentity: the same module can be planned once per
	// destination, each with its own parameters.
	Destination string

	// BuildConfiguration selects the optimization mode of one destination's
	// parameters.
	BuildConfiguration string

	// BuildParameters bundles the per-destination inputs the planner needs.
	// The planner treats everything here as opaque; it only copies the
	// bundle onto the descriptions it creates.
	BuildParameters struct {
		// Triple is the compilation target triple (e.g., "arm64-apple-macosx").
		Triple string `json:"triple"`
		// Configuration is debug or release. Empty defaults to debug.
		Configuration BuildConfiguration `json:"configuration"`
	}

	// BuildIdentity is the planner's unit of deduplication: one module
	// compiled for one destination. Two identities with the same module but
	// different destinations are distinct builds with distinct artifacts.
	BuildIdentity struct {
		// Ref is the module's graph-wide reference (original declared name).
		Ref modgraph.ModuleRef `json:"ref"`
		// Destination is the machine the module is compiled for.
		Destination Destination `json:"destination"`
	}
)

// String returns "package/module@destination", the form used in log output
// and error messages.
func (id BuildIdentity) String() string {
	return fmt.Sprintf("%s@%s", id.Ref, id.Destination)
}

// normalized returns the parameters with defaults applied.
func (p BuildParameters) normalized() BuildParameters {
	if p.Configuration == "" {
		p.Configuration = ConfigurationDebug
	}
	return p
}
