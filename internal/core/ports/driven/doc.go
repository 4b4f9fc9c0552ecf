// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ClientFactory / Client: Strapi REST access (schemas, entities, uploads)
//   - Authenticator: Exchanges configured credentials for a bearer token
//   - Normaliser: Decomposes raw entities into graph nodes
//   - NodeStore: The graph sink nodes are created in, touched and deleted from
//   - CacheStore: Persisted key-value state (media cache, last sync time)
//   - ConfigStore: Source configuration
//
// # Optional Interfaces
//
//   - PostProcessor: Mutates normalised batches before they are stored (media pass)
//   - FileDownloader: Downloads media; without it media attributes stay unlinked
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
