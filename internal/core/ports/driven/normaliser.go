package driven

import (
	"sync"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

// Normaliser decomposes one raw entity into graph nodes.
type Normaliser interface {
	// Normalise returns the nodes for entity, normalised against the schema
	// uid. The entry node is always last. Unresolvable schema references
	// return a *domain.ConfigError.
	Normalise(sc *SyncContext, entity domain.RawEntity, uid string) ([]*domain.Node, error)
}

// SyncContext carries per-run state through normalisation and
// post-processing. A fresh context is built for every run.
type SyncContext struct {
	// Source is the name of the source being synced.
	Source string

	// APIURL is the source base URL used to absolutise media urls.
	APIURL string

	// IDs derives node ids for the source.
	IDs domain.IDSpace

	// Schemas is the registry fetched at the start of the run.
	Schemas *domain.SchemaRegistry

	// Media resolves media assets to file node ids. Nil disables media linking.
	Media MediaResolver

	// Lookup finds upload records referenced from rich text. May be nil.
	Lookup MediaLookup

	mu      sync.Mutex
	claimed map[string]struct{}
}

// NewSyncContext creates the context for one run of source.
func NewSyncContext(source domain.Source, schemas *domain.SchemaRegistry) *SyncContext {
	return &SyncContext{
		Source:  source.Name,
		APIURL:  source.BaseURL(),
		IDs:     domain.NewIDSpace(source.Name),
		Schemas: schemas,
		claimed: make(map[string]struct{}),
	}
}

// Reserve marks ids that will be emitted as entries later in the run,
// so relation stubs for them are never produced.
func (c *SyncContext) Reserve(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.claimed[id] = struct{}{}
	}
}

// Claim records id as emitted. It returns false if id was already
// reserved or claimed this run.
func (c *SyncContext) Claim(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.claimed[id]; ok {
		return false
	}
	c.claimed[id] = struct{}{}
	return true
}
