// SPDX-License-Identifier: MPL-2.0

// Package modgraph defines the resolved package graph consumed by the build
// planner: packages, the modules they declare, the products they export, and
// the dependency edges between them.
//
// The graph is an immutable snapshot. Upstream manifest resolution (out of
// scope for this module) assembles it through [Builder], which validates the
// structure and freezes it into a [ResolvedGraph]. All collections preserve
// declaration order; nothing in this package depends on map iteration order.
//
// # Identity
//
// Packages are identified by [PackageIdentity], a case-insensitive canonical
// string. Modules are identified by [ModuleRef] (package identity plus module
// name) and products by [ProductRef]. These refs are small comparable values
// used as map keys throughout the planner.
//
// # Dependencies
//
// A module's dependency list mixes two edge kinds, expressed as the closed
// sum type [Dependency]:
//
//   - [ModuleDependency]: a module in the same package.
//   - [ProductDependency]: a product exported by some package, optionally
//     carrying requested module-name aliases.
//
// Exhaustive type switches over [Dependency] are safe: the interface is
// sealed and these two are the only implementations.
//
// # Validation
//
// [Builder.Build] collects every structural problem it finds as a
// [ValidationIssue] and reports them together in a [GraphValidationError]
// rather than stopping at the first one.
package modgraph
