// SPDX-License-Identifier: MPL-2.0

package buildplan

import (
	"fmt"
	"strings"

	"github.com/loombuild/loom/pkg/modgraph"
)

const (
	// SeverityWarning indicates a recoverable planning warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a diagnostic that makes the plan unusable.
	// Errors are still collected rather than thrown so one run surfaces
	// every independent problem.
	SeverityError Severity = "error"

	// CodeInvalidAliasIdentifier reports an alias request whose replacement
	// name is not a plain identifier.
	CodeInvalidAliasIdentifier DiagnosticCode = "invalid_alias_identifier"
	// CodeConflictingAliasRequest reports two dependency paths requiring the
	// same module under different final names.
	CodeConflictingAliasRequest DiagnosticCode = "conflicting_alias_request"
	// CodeAmbiguousAliasInProduct reports conflicting alias requests that
	// enter through dependency edges of one and the same consumer module.
	CodeAmbiguousAliasInProduct DiagnosticCode = "ambiguous_alias_in_product"
	// CodeNonSubstitutableSourcesAliased reports an alias applied to a
	// module whose sources cannot all be compiled under a substituted name.
	CodeNonSubstitutableSourcesAliased DiagnosticCode = "non_substitutable_sources_aliased"
	// CodeDuplicateProductName reports two packages exporting products under
	// the same final name with no alias telling them apart.
	CodeDuplicateProductName DiagnosticCode = "duplicate_product_name"
	// CodeToolsVersionTooOldForAliasing reports a package whose tools
	// version predates module aliasing; alias requests into it are ignored
	// and it cannot be disambiguated by renaming.
	CodeToolsVersionTooOldForAliasing DiagnosticCode = "tools_version_too_old_for_aliasing"
	// CodeUnusedAliasRequest reports an alias request whose original name
	// matches no module in the subtree it applies to.
	CodeUnusedAliasRequest DiagnosticCode = "unused_alias_request"
	// CodeDestinationConflict reports a build identity whose memoized
	// description disagrees with what a later dependency path requires.
	CodeDestinationConflict DiagnosticCode = "destination_conflict"
)

type (
	// Severity represents planning diagnostic severity.
	Severity string

	// DiagnosticCode is a machine-readable identifier for a diagnostic kind.
	DiagnosticCode string

	// AliasRequest is one requested module rename as declared on a product
	// dependency edge, kept for diagnostic reporting.
	AliasRequest struct {
		// Original is the module name the request matches against.
		Original modgraph.ModuleName `json:"original"`
		// Replacement is the name the module should be compiled under.
		Replacement modgraph.ModuleName `json:"replacement"`
		// Consumer is the module whose dependency edge declared the request.
		Consumer modgraph.ModuleRef `json:"consumer"`
		// Product is the product the declaring edge points at.
		Product modgraph.ProductRef `json:"product"`
	}

	// Diagnostic represents a structured planning problem that is returned
	// to callers (rather than rendered) so the surrounding tool controls
	// presentation. Which fields are set depends on Code; String assembles a
	// readable line from whatever is present.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity `json:"severity"`
		// Code is the machine-readable diagnostic kind.
		Code DiagnosticCode `json:"code"`
		// Module is the module the diagnostic is about (when module-scoped).
		Module modgraph.ModuleRef `json:"module,omitzero"`
		// Product is the product involved (when product-scoped).
		Product modgraph.ProductRef `json:"product,omitzero"`
		// ProductName is the colliding final name for duplicate products.
		ProductName modgraph.ProductName `json:"productName,omitempty"`
		// Packages lists involved package identities in lexicographic order.
		Packages []modgraph.PackageIdentity `json:"packages,omitempty"`
		// Requests lists the alias requests involved, in a stable order.
		Requests []AliasRequest `json:"requests,omitempty"`
		// Identity is the build identity involved (destination conflicts).
		Identity BuildIdentity `json:"identity,omitzero"`
	}

	// Diagnostics is a collection of planning diagnostics in emission order.
	Diagnostics []Diagnostic
)

// String renders the request as "original->replacement".
func (r AliasRequest) String() string {
	return string(r.Original) + "->" + string(r.Replacement)
}

// String assembles a single-line description of the diagnostic. This is
// plumbing for logs and error wrapping, not the rendering surface; callers
// that present diagnostics to people are expected to format the structured
// fields themselves.
func (d Diagnostic) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s]", d.Severity, d.Code)
	switch d.Code {
	case CodeInvalidAliasIdentifier:
		fmt.Fprintf(&sb, " request %s on edge from %s to %s is not a valid identifier",
			requestList(d.Requests), d.Module, d.Product)
	case CodeConflictingAliasRequest:
		fmt.Fprintf(&sb, " module %s is required under conflicting names by requests %s",
			d.Module, requestList(d.Requests))
	case CodeAmbiguousAliasInProduct:
		fmt.Fprintf(&sb, " module %s is renamed ambiguously by requests %s declared by the same consumer",
			d.Module, requestList(d.Requests))
	case CodeNonSubstitutableSourcesAliased:
		fmt.Fprintf(&sb, " module %s has non-substitutable sources but is renamed by %s",
			d.Module, requestList(d.Requests))
	case CodeDuplicateProductName:
		fmt.Fprintf(&sb, " product name %q is exported by packages %s",
			d.ProductName, packageList(d.Packages))
	case CodeToolsVersionTooOldForAliasing:
		fmt.Fprintf(&sb, " package %s predates module aliasing", packageList(d.Packages))
	case CodeUnusedAliasRequest:
		fmt.Fprintf(&sb, " request %s on edge from %s to %s matches no module",
			requestList(d.Requests), d.Module, d.Product)
	case CodeDestinationConflict:
		fmt.Fprintf(&sb, " build identity %s was planned with a different alias map", d.Identity)
	}
	return sb.String()
}

// Error implements the error interface so diagnostics can travel through
// ordinary Go error plumbing.
func (d Diagnostic) Error() string { return d.String() }

// HasErrors reports whether any diagnostic has error severity.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error-severity diagnostics in emission order.
func (ds Diagnostics) Errors() Diagnostics {
	return ds.filter(SeverityError)
}

// Warnings returns the warning-severity diagnostics in emission order.
func (ds Diagnostics) Warnings() Diagnostics {
	return ds.filter(SeverityWarning)
}

// OfCode returns the diagnostics with the given code in emission order.
func (ds Diagnostics) OfCode(code DiagnosticCode) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

func (ds Diagnostics) filter(sev Severity) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

func requestList(reqs []AliasRequest) string {
	parts := make([]string, len(reqs))
	for i, r := range reqs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

func packageList(ids []modgraph.PackageIdentity) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
