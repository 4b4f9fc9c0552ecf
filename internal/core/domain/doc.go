// Package domain defines the core entities for strapisync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - Schema / Attribute: content-type and component descriptors
//   - RawEntity: one CMS record as delivered by the REST API
//   - Node: the unit of output pushed into the graph store
//   - Snapshot: the previously materialised node index used for diffing
//   - MediaAsset / MediaCacheEntry: media download cache bookkeeping
//   - Source / Endpoint: what to sync and where to fetch it
//
// It also owns the identity rules (NodeTypeName, DeriveID) because both the
// normaliser and the reconciliation engine must apply them identically.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, github.com/google/uuid
//   - Cannot Import: Any internal/ package
package domain
