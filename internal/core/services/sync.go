package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
	"github.com/custodia-labs/strapisync/internal/core/ports/driving"
	"github.com/custodia-labs/strapisync/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// failureCounter is implemented by media resolvers that count soft failures.
type failureCounter interface {
	Failures() int
}

// SyncOrchestrator coordinates content synchronisation.
type SyncOrchestrator struct {
	config     driven.ConfigStore
	clients    driven.ClientFactory
	normaliser driven.Normaliser
	nodes      driven.NodeStore
	cache      driven.CacheStore
	pipeline   driven.PostProcessorPipeline
	media      driven.MediaResolverFactory
	now        func() time.Time

	// Status tracking
	mu          sync.RWMutex
	activeSyncs map[string]*driving.SyncStatus
}

// NewSyncOrchestrator creates a new sync orchestrator.
// The pipeline and media factory are optional; without them media
// attributes are stored unlinked.
func NewSyncOrchestrator(
	config driven.ConfigStore,
	clients driven.ClientFactory,
	normaliser driven.Normaliser,
	nodes driven.NodeStore,
	cache driven.CacheStore,
	pipeline driven.PostProcessorPipeline,
	media driven.MediaResolverFactory,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		config:      config,
		clients:     clients,
		normaliser:  normaliser,
		nodes:       nodes,
		cache:       cache,
		pipeline:    pipeline,
		media:       media,
		now:         time.Now,
		activeSyncs: make(map[string]*driving.SyncStatus),
	}
}

// Sync runs one reconciliation of a source.
//
// Nodes already pushed before a fatal error stay pushed; the last-sync
// timestamp is only written once every step has succeeded.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *SyncOrchestrator) Sync(ctx context.Context, name string) (*driving.SyncReport, error) {
	// 1. Get source configuration
	source, err := o.config.Source(name)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}

	status, err := o.begin(name)
	if err != nil {
		return nil, err
	}
	defer o.clearStatus(name)

	report := &driving.SyncReport{
		Source:       name,
		StartedAt:    o.now(),
		NodesDeleted: make(map[string]int),
	}
	logger.Info("Starting sync for source %s", name)

	// 2. Create client (authenticates)
	if o.clients == nil {
		return nil, fmt.Errorf("create client: client factory not configured")
	}
	client, err := o.clients.Create(ctx, *source)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	// 3. Fetch schemas
	logger.Section("Schemas")
	schemaList, err := client.FetchSchemas(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: schemas: %w", domain.ErrFetch, err)
	}
	schemas := domain.NewSchemaRegistry(schemaList)
	logger.Debug("Loaded %d schemas", schemas.Len())

	// 4. Build endpoints
	endpoints, err := BuildEndpoints(*source, schemas)
	if err != nil {
		return nil, fmt.Errorf("build endpoints: %w", err)
	}
	report.Endpoints = len(endpoints)

	// 5. Touch existing nodes and snapshot them for diffing
	existing, err := o.nodes.ListNodes(ctx, domain.NodeFilter{Source: name})
	if err != nil {
		return nil, fmt.Errorf("list existing nodes: %w", err)
	}
	for _, n := range existing {
		if err := o.nodes.TouchNode(ctx, n.ID); err != nil {
			return nil, fmt.Errorf("touch node %s: %w", n.ID, err)
		}
	}
	report.NodesTouched = len(existing)
	snapshot := domain.BuildSnapshot(existing)
	owned := IndexOwnership(existing)

	// 6. Read last sync time
	lastSync, err := o.lastSync(ctx, name)
	if err != nil {
		return nil, err
	}
	runStarted := o.now().UTC()

	// 7. Full fetch, used for deletions
	logger.Section("Fetch")
	full, err := o.fetchAll(ctx, client, endpoints)
	if err != nil {
		return nil, err
	}
	for _, res := range full {
		report.Fetched += len(res.Entities)
		logger.Debug("%s: %d entities", res.Endpoint.Path, len(res.Entities))
	}

	// 8. Delta fetch, used for creation when a previous sync exists
	data := full
	if lastSync != "" {
		delta := make([]domain.Endpoint, len(endpoints))
		for i, ep := range endpoints {
			delta[i] = ep.WithUpdatedSince(lastSync)
		}
		data, err = o.fetchAll(ctx, client, delta)
		if err != nil {
			return nil, err
		}
		report.Incremental = true
	}

	// 9. Delete entries that disappeared upstream
	deletions := ComputeDeletions(snapshot, full)
	for _, typeName := range sortedTypes(deletions) {
		refs := deletions[typeName]
		logger.Info("Strapi: %s deleting %d", typeName, len(refs))
		for _, ref := range refs {
			if err := o.nodes.DeleteNode(ctx, ref.ID); err != nil {
				return nil, fmt.Errorf("delete node %s: %w", ref.ID, err)
			}
		}
		report.NodesDeleted[typeName] = len(refs)
	}

	// 10. Normalise, post-process and store
	sc := driven.NewSyncContext(*source, schemas)
	sc.Lookup = client
	if o.media != nil {
		sc.Media = o.media.ForSource(*source)
	}
	for _, res := range full {
		for _, e := range res.Entities {
			sc.Reserve(sc.IDs.Entity(res.Endpoint.TypeName, e.ID))
		}
	}

	logger.Section("Normalise")
	for _, res := range data {
		for _, entity := range res.Entities {
			created, pruned, err := o.processEntity(ctx, sc, owned, res.Endpoint, entity)
			if err != nil {
				return nil, err
			}
			report.Processed++
			report.NodesCreated += created
			report.ChildrenPruned += pruned
			o.mu.Lock()
			status.EntitiesProcessed++
			o.mu.Unlock()
		}
	}

	if fc, ok := sc.Media.(failureCounter); ok {
		report.MediaFailures = fc.Failures()
		o.mu.Lock()
		status.ErrorCount = report.MediaFailures
		o.mu.Unlock()
	}

	// 11. Drop relation stubs no stored node links to any more
	report.StubsPruned, err = o.pruneStubs(ctx, name)
	if err != nil {
		return nil, err
	}

	// 12. Record successful sync
	if err := o.cache.Set(ctx, name, domain.LastSyncKey, []byte(runStarted.Format(time.RFC3339))); err != nil {
		return nil, fmt.Errorf("save last sync: %w", err)
	}

	report.FinishedAt = o.now()
	logger.Info("Sync complete: %d entities, %d nodes, %d deleted, %d stale children, %d stubs pruned, %d media failures",
		report.Processed, report.NodesCreated, report.TotalDeleted(), report.ChildrenPruned, report.StubsPruned, report.MediaFailures)
	return report, nil
}

// SyncAll runs Sync for all configured sources.
func (o *SyncOrchestrator) SyncAll(ctx context.Context) ([]*driving.SyncReport, error) {
	var (
		reports []*driving.SyncReport
		errs    []error
	)
	for _, source := range o.config.Sources() {
		report, err := o.Sync(ctx, source.Name)
		if err != nil {
			errs = append(errs, fmt.Errorf("sync %s: %w", source.Name, err))
			continue
		}
		reports = append(reports, report)
	}

	if len(errs) > 0 {
		return reports, errors.Join(errs...)
	}
	return reports, nil
}

// Status returns sync status for a source.
func (o *SyncOrchestrator) Status(_ context.Context, name string) (*driving.SyncStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if status, ok := o.activeSyncs[name]; ok {
		// Return a copy to avoid race conditions
		return &driving.SyncStatus{
			Source:            status.Source,
			Running:           status.Running,
			EntitiesProcessed: status.EntitiesProcessed,
			ErrorCount:        status.ErrorCount,
		}, nil
	}

	// Not running - return idle status
	return &driving.SyncStatus{
		Source:  name,
		Running: false,
	}, nil
}

// processEntity normalises one entity and pushes its nodes to the sink.
// Stored children of the entry that the new node set no longer contains
// are deleted first. It returns the number of nodes created and pruned.
func (o *SyncOrchestrator) processEntity(
	ctx context.Context,
	sc *driven.SyncContext,
	owned Ownership,
	endpoint domain.Endpoint,
	entity domain.RawEntity,
) (int, int, error) {
	// 1. NORMALISE
	nodes, err := o.normaliser.Normalise(sc, entity, endpoint.UID)
	if err != nil {
		return 0, 0, fmt.Errorf("normalise: %w", err)
	}

	// 2. RUN POST-PROCESSOR PIPELINE (media linking)
	batch := &domain.NodeBatch{Source: sc.Source, Nodes: nodes}
	if o.pipeline != nil {
		if err := o.pipeline.Process(ctx, sc, batch); err != nil {
			return 0, 0, fmt.Errorf("post-process: %w", err)
		}
	}

	// 3. PRUNE CHILDREN THE ENTRY NO LONGER OWNS
	keep := make(map[string]struct{}, len(batch.Nodes))
	for _, n := range batch.Nodes {
		keep[n.ID] = struct{}{}
	}
	stale := owned.Stale(sc.IDs.Entity(endpoint.TypeName, entity.ID), keep)
	for _, id := range stale {
		if err := o.nodes.DeleteNode(ctx, id); err != nil {
			return 0, 0, fmt.Errorf("delete stale child %s: %w", id, err)
		}
	}

	// 4. FINGERPRINT AND STORE
	for _, n := range batch.Nodes {
		n.Digest = domain.ContentDigest(n.Content)
		if err := o.nodes.CreateNode(ctx, n); err != nil {
			return 0, 0, fmt.Errorf("create node %s: %w", n.ID, err)
		}
	}
	logger.Debug("%s %d: %d nodes, %d stale children", endpoint.TypeName, entity.ID, len(batch.Nodes), len(stale))

	return len(batch.Nodes), len(stale), nil
}

// pruneStubs deletes relation stubs of the source that no stored node
// links to. Stubs are shared references, so this runs once all entries of
// the run are stored.
func (o *SyncOrchestrator) pruneStubs(ctx context.Context, source string) (int, error) {
	nodes, err := o.nodes.ListNodes(ctx, domain.NodeFilter{Source: source})
	if err != nil {
		return 0, fmt.Errorf("list nodes: %w", err)
	}
	refs := Referenced(nodes)

	pruned := 0
	for _, n := range nodes {
		if n.Kind != domain.NodeKindRelation {
			continue
		}
		if _, ok := refs[n.ID]; ok {
			continue
		}
		if err := o.nodes.DeleteNode(ctx, n.ID); err != nil {
			return pruned, fmt.Errorf("delete stub %s: %w", n.ID, err)
		}
		pruned++
	}
	if pruned > 0 {
		logger.Debug("Pruned %d unreferenced relation stubs", pruned)
	}
	return pruned, nil
}

// fetchAll fetches every endpoint concurrently and returns results in
// endpoint order. The first failure cancels the rest.
func (o *SyncOrchestrator) fetchAll(
	ctx context.Context,
	fetcher driven.EntityFetcher,
	endpoints []domain.Endpoint,
) ([]domain.FetchResult, error) {
	results := make([]domain.FetchResult, len(endpoints))
	g, gctx := errgroup.WithContext(ctx)
	for i, ep := range endpoints {
		g.Go(func() error {
			entities, err := fetcher.FetchEntities(gctx, ep)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", domain.ErrFetch, ep.Path, err)
			}
			results[i] = domain.FetchResult{Endpoint: ep, Entities: entities}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// lastSync returns the stored last-sync time, or "" on the first run.
func (o *SyncOrchestrator) lastSync(ctx context.Context, name string) (string, error) {
	data, err := o.cache.Get(ctx, name, domain.LastSyncKey)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get last sync: %w", err)
	}
	return string(data), nil
}

// begin registers a running sync, rejecting a second concurrent run.
func (o *SyncOrchestrator) begin(name string) (*driving.SyncStatus, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, running := o.activeSyncs[name]; running {
		return nil, fmt.Errorf("sync %s: %w", name, domain.ErrSyncInProgress)
	}
	status := &driving.SyncStatus{Source: name, Running: true}
	o.activeSyncs[name] = status
	return status, nil
}

// clearStatus removes status tracking after sync completes.
func (o *SyncOrchestrator) clearStatus(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.activeSyncs, name)
}
