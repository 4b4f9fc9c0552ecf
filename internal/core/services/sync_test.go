package services

import (
	"context"
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/strapisync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
	"github.com/custodia-labs/strapisync/internal/normalisers/strapi"
)

// --- Mock implementations for sync testing ---

// syncMockClient implements driven.Client for testing.
type syncMockClient struct {
	schemas    []domain.Schema
	schemaErr  error
	full       map[string][]domain.RawEntity
	delta      map[string][]domain.RawEntity
	fetchErr   map[string]error
	media      map[string]map[string]any
	mu         stdsync.Mutex
	fetched    []domain.Endpoint
	deltaSince []string
}

func (m *syncMockClient) FetchSchemas(_ context.Context) ([]domain.Schema, error) {
	return m.schemas, m.schemaErr
}

func (m *syncMockClient) FetchEntities(_ context.Context, ep domain.Endpoint) ([]domain.RawEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, ep)

	if err := m.fetchErr[ep.Path]; err != nil {
		return nil, err
	}
	if filters, ok := ep.Query["filters"].(map[string]any); ok {
		since := filters["updatedAt"].(map[string]any)["$gt"].(string)
		m.deltaSince = append(m.deltaSince, since)
		return m.delta[ep.Path], nil
	}
	return m.full[ep.Path], nil
}

func (m *syncMockClient) FindMediaByURL(_ context.Context, url string) (map[string]any, error) {
	if rec, ok := m.media[url]; ok {
		return rec, nil
	}
	return nil, domain.ErrNotFound
}

// syncMockFactory implements driven.ClientFactory for testing.
type syncMockFactory struct {
	client *syncMockClient
	err    error
}

func (f *syncMockFactory) Create(_ context.Context, _ domain.Source) (driven.Client, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

// syncMockPipeline records processed batches.
type syncMockPipeline struct {
	mu      stdsync.Mutex
	batches int
	err     error
}

func (p *syncMockPipeline) Process(_ context.Context, _ *driven.SyncContext, _ *domain.NodeBatch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches++
	return p.err
}

// syncMockMedia is a resolver factory whose resolvers report failures.
type syncMockMedia struct {
	failures int
}

func (m *syncMockMedia) ForSource(_ domain.Source) driven.MediaResolver {
	return &syncMockResolver{failures: m.failures}
}

type syncMockResolver struct {
	failures int
}

func (r *syncMockResolver) Resolve(_ context.Context, _ domain.MediaAsset) (string, bool) {
	return "", false
}

func (r *syncMockResolver) Failures() int { return r.failures }

// --- Fixtures ---

func syncTestSchemas() []domain.Schema {
	scalar := func(typ string) domain.Attribute {
		return domain.Attribute{Type: typ, Kind: domain.ParseAttributeKind(typ)}
	}
	return []domain.Schema{
		{
			UID: "api::article.article", Kind: domain.SchemaKindCollection,
			SingularName: "article", PluralName: "articles",
			Attributes: map[string]domain.Attribute{
				"title": scalar("string"),
				"body":  scalar("richtext"),
				"links": {
					Type: "component", Kind: domain.AttributeComponent,
					Component: "shared.link", Repeatable: true,
				},
				"author": {
					Type: "relation", Kind: domain.AttributeRelation,
					Relation: "manyToOne", Target: "api::writer.writer",
				},
			},
		},
		{
			UID: "api::writer.writer", Kind: domain.SchemaKindCollection,
			SingularName: "writer", PluralName: "writers",
			Attributes: map[string]domain.Attribute{"name": scalar("string"), "bio": scalar("text")},
		},
		{
			UID: "shared.link", Kind: domain.SchemaKindComponent,
			Attributes: map[string]domain.Attribute{"href": scalar("string")},
		},
		{
			UID: "api::homepage.homepage", Kind: domain.SchemaKindSingle,
			SingularName: "homepage", PluralName: "homepages",
			Attributes: map[string]domain.Attribute{"headline": scalar("string")},
		},
	}
}

func article(id int64, title string, writerID float64) domain.RawEntity {
	attrs := map[string]any{"title": title}
	if writerID != 0 {
		attrs["author"] = map[string]any{"data": map[string]any{
			"id":         writerID,
			"attributes": map[string]any{"name": "stub-name"},
		}}
	}
	return domain.RawEntity{ID: id, Attributes: attrs}
}

func blogSource(types ...string) domain.Source {
	src := domain.Source{Name: "blog", APIURL: "http://cms.local"}
	for _, t := range types {
		if t == "homepage" {
			src.SingleTypes = append(src.SingleTypes, domain.TypeConfig{SingularName: t})
			continue
		}
		src.CollectionTypes = append(src.CollectionTypes, domain.TypeConfig{SingularName: t})
	}
	return src
}

type syncHarness struct {
	orch   *SyncOrchestrator
	client *syncMockClient
	nodes  *memory.NodeStore
	cache  *memory.CacheStore
	config *memory.ConfigStore
}

func newSyncHarness(src domain.Source, client *syncMockClient) *syncHarness {
	if client.schemas == nil {
		client.schemas = syncTestSchemas()
	}
	h := &syncHarness{
		client: client,
		nodes:  memory.NewNodeStore(),
		cache:  memory.NewCacheStore(),
		config: memory.NewConfigStore(src),
	}
	h.orch = NewSyncOrchestrator(h.config, &syncMockFactory{client: client}, strapi.New(), h.nodes, h.cache, nil, nil)
	h.orch.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return h
}

func (h *syncHarness) entryID(typeName string, id int64) string {
	return domain.NewIDSpace("blog").Entity(typeName, id)
}

// --- Tests ---

func TestSyncOrchestrator_Sync_FirstRun(t *testing.T) {
	client := &syncMockClient{full: map[string][]domain.RawEntity{
		"/api/articles": {article(1, "One", 0), article(2, "Two", 0)},
		"/api/homepage": {{ID: 1, Attributes: map[string]any{"headline": "Welcome"}}},
	}}
	h := newSyncHarness(blogSource("article", "homepage"), client)
	ctx := context.Background()

	report, err := h.orch.Sync(ctx, "blog")
	require.NoError(t, err)

	assert.False(t, report.Incremental)
	assert.Equal(t, 2, report.Endpoints)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 3, report.NodesCreated)
	assert.Zero(t, report.TotalDeleted())

	n, err := h.nodes.GetNode(ctx, h.entryID("TYPE_ARTICLE", 2))
	require.NoError(t, err)
	assert.Equal(t, "Two", n.Content["title"])
	assert.NotEmpty(t, n.Digest)

	ts, err := h.cache.Get(ctx, "blog", domain.LastSyncKey)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T10:00:00Z", string(ts))
	assert.Empty(t, client.deltaSince)
}

func TestSyncOrchestrator_Sync_IncrementalUsesDeltaAndFullForDeletes(t *testing.T) {
	client := &syncMockClient{full: map[string][]domain.RawEntity{
		"/api/articles": {article(1, "One", 0), article(2, "Two", 0), article(3, "Three", 0)},
	}}
	h := newSyncHarness(blogSource("article"), client)
	ctx := context.Background()

	_, err := h.orch.Sync(ctx, "blog")
	require.NoError(t, err)

	// Article 2 was removed upstream and article 1 was edited.
	client.full["/api/articles"] = []domain.RawEntity{article(1, "One v2", 0), article(3, "Three", 0)}
	client.delta = map[string][]domain.RawEntity{"/api/articles": {article(1, "One v2", 0)}}

	report, err := h.orch.Sync(ctx, "blog")
	require.NoError(t, err)

	assert.True(t, report.Incremental)
	assert.Equal(t, []string{"2024-03-01T10:00:00Z"}, client.deltaSince)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, map[string]int{"TYPE_ARTICLE": 1}, report.NodesDeleted)
	assert.Equal(t, 3, report.NodesTouched)

	_, err = h.nodes.GetNode(ctx, h.entryID("TYPE_ARTICLE", 2))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	one, err := h.nodes.GetNode(ctx, h.entryID("TYPE_ARTICLE", 1))
	require.NoError(t, err)
	assert.Equal(t, "One v2", one.Content["title"])

	_, err = h.nodes.GetNode(ctx, h.entryID("TYPE_ARTICLE", 3))
	assert.NoError(t, err, "unchanged entries survive an incremental run")
}

func TestSyncOrchestrator_Sync_EmptyTypeDeletesEverything(t *testing.T) {
	client := &syncMockClient{full: map[string][]domain.RawEntity{
		"/api/articles": {article(1, "One", 0)},
	}}
	h := newSyncHarness(blogSource("article"), client)
	ctx := context.Background()

	_, err := h.orch.Sync(ctx, "blog")
	require.NoError(t, err)

	client.full["/api/articles"] = nil
	report, err := h.orch.Sync(ctx, "blog")
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalDeleted())
	assert.Zero(t, h.nodes.Len())
}

func TestSyncOrchestrator_Sync_RelationStubDoesNotShadowEntry(t *testing.T) {
	client := &syncMockClient{full: map[string][]domain.RawEntity{
		"/api/articles": {article(1, "One", 5), article(2, "Two", 6)},
		"/api/writers":  {{ID: 5, Attributes: map[string]any{"name": "Ada", "bio": "real"}}},
	}}
	h := newSyncHarness(blogSource("article", "writer"), client)
	ctx := context.Background()

	_, err := h.orch.Sync(ctx, "blog")
	require.NoError(t, err)

	writer, err := h.nodes.GetNode(ctx, h.entryID("TYPE_WRITER", 5))
	require.NoError(t, err)
	assert.Equal(t, domain.NodeKindEntry, writer.Kind)
	assert.Equal(t, "real", writer.Content["bio"])

	stub, err := h.nodes.GetNode(ctx, h.entryID("TYPE_WRITER", 6))
	require.NoError(t, err)
	assert.Equal(t, domain.NodeKindRelation, stub.Kind)
	assert.Empty(t, stub.ParentID)

	one, err := h.nodes.GetNode(ctx, h.entryID("TYPE_ARTICLE", 1))
	require.NoError(t, err)
	assert.Equal(t, writer.ID, one.Content[domain.LinkKey("author")])
}

func TestSyncOrchestrator_Sync_SharedStubSurvivesReferencerDeletion(t *testing.T) {
	client := &syncMockClient{full: map[string][]domain.RawEntity{
		"/api/articles": {article(1, "One", 9), article(2, "Two", 9)},
	}}
	h := newSyncHarness(blogSource("article"), client)
	ctx := context.Background()

	_, err := h.orch.Sync(ctx, "blog")
	require.NoError(t, err)

	// Article 1 is removed upstream; article 2 is unchanged and not in the delta.
	client.full["/api/articles"] = []domain.RawEntity{article(2, "Two", 9)}
	client.delta = map[string][]domain.RawEntity{"/api/articles": nil}

	report, err := h.orch.Sync(ctx, "blog")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"TYPE_ARTICLE": 1}, report.NodesDeleted)
	assert.Zero(t, report.StubsPruned)

	_, err = h.nodes.GetNode(ctx, h.entryID("TYPE_ARTICLE", 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stubID := h.entryID("TYPE_WRITER", 9)
	stub, err := h.nodes.GetNode(ctx, stubID)
	require.NoError(t, err, "stub outlives the entry that first emitted it")
	assert.Equal(t, domain.NodeKindRelation, stub.Kind)
	assert.Empty(t, stub.ParentID)

	two, err := h.nodes.GetNode(ctx, h.entryID("TYPE_ARTICLE", 2))
	require.NoError(t, err)
	assert.Equal(t, stubID, two.Content[domain.LinkKey("author")])
}

func TestSyncOrchestrator_Sync_PrunesUnreferencedStub(t *testing.T) {
	client := &syncMockClient{full: map[string][]domain.RawEntity{
		"/api/articles": {article(1, "One", 9)},
	}}
	h := newSyncHarness(blogSource("article"), client)
	ctx := context.Background()

	_, err := h.orch.Sync(ctx, "blog")
	require.NoError(t, err)

	// The author is unset on the only referencer.
	client.full["/api/articles"] = []domain.RawEntity{article(1, "One v2", 0)}
	client.delta = map[string][]domain.RawEntity{"/api/articles": {article(1, "One v2", 0)}}

	report, err := h.orch.Sync(ctx, "blog")
	require.NoError(t, err)
	assert.Equal(t, 1, report.StubsPruned)

	_, err = h.nodes.GetNode(ctx, h.entryID("TYPE_WRITER", 9))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, h.nodes.Len())
}

func TestSyncOrchestrator_Sync_PrunesChildrenNoLongerProduced(t *testing.T) {
	withChildren := article(1, "One", 0)
	withChildren.Attributes["body"] = "hello"
	withChildren.Attributes["links"] = []any{
		map[string]any{"id": float64(21), "href": "/a"},
		map[string]any{"id": float64(22), "href": "/b"},
	}
	client := &syncMockClient{full: map[string][]domain.RawEntity{
		"/api/articles": {withChildren, article(2, "Two", 0)},
	}}
	h := newSyncHarness(blogSource("article"), client)
	ctx := context.Background()

	_, err := h.orch.Sync(ctx, "blog")
	require.NoError(t, err)

	ids := domain.NewIDSpace("blog")
	entryID := h.entryID("TYPE_ARTICLE", 1)
	bodyID := ids.Child(entryID, "body", "Text")
	_, err = h.nodes.GetNode(ctx, bodyID)
	require.NoError(t, err)

	// The body is cleared and the first link removed.
	edited := article(1, "One v2", 0)
	edited.Attributes["links"] = []any{map[string]any{"id": float64(22), "href": "/b"}}
	client.full["/api/articles"] = []domain.RawEntity{edited, article(2, "Two", 0)}
	client.delta = map[string][]domain.RawEntity{"/api/articles": {edited}}

	report, err := h.orch.Sync(ctx, "blog")
	require.NoError(t, err)
	assert.Equal(t, 2, report.ChildrenPruned)

	_, err = h.nodes.GetNode(ctx, bodyID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = h.nodes.GetNode(ctx, ids.Entity("COMPONENT_SHARED_LINK", 21))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	kept, err := h.nodes.GetNode(ctx, ids.Entity("COMPONENT_SHARED_LINK", 22))
	require.NoError(t, err)
	assert.Equal(t, entryID, kept.ParentID)

	entry, err := h.nodes.GetNode(ctx, entryID)
	require.NoError(t, err)
	assert.Equal(t, "One v2", entry.Content["title"])
	assert.NotContains(t, entry.Content, domain.LinkKey("body"))

	children, err := h.nodes.ListNodes(ctx, domain.NodeFilter{Source: "blog", Kind: domain.NodeKindRichText})
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestSyncOrchestrator_Sync_FetchErrorKeepsTimestamp(t *testing.T) {
	client := &syncMockClient{
		full:     map[string][]domain.RawEntity{"/api/articles": {article(1, "One", 0)}},
		fetchErr: map[string]error{"/api/writers": errors.New("503")},
	}
	h := newSyncHarness(blogSource("article", "writer"), client)
	ctx := context.Background()

	_, err := h.orch.Sync(ctx, "blog")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetch)

	_, err = h.cache.Get(ctx, "blog", domain.LastSyncKey)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, h.nodes.Len())
}

func TestSyncOrchestrator_Sync_SchemaError(t *testing.T) {
	client := &syncMockClient{schemas: []domain.Schema{}, schemaErr: errors.New("forbidden")}
	h := newSyncHarness(blogSource("article"), client)

	_, err := h.orch.Sync(context.Background(), "blog")
	assert.ErrorIs(t, err, domain.ErrFetch)
}

func TestSyncOrchestrator_Sync_UnknownType(t *testing.T) {
	h := newSyncHarness(blogSource("article", "product"), &syncMockClient{})

	_, err := h.orch.Sync(context.Background(), "blog")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownSchema)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.Empty(t, h.client.fetched, "nothing is fetched on a configuration error")
}

func TestSyncOrchestrator_Sync_SourceNotFound(t *testing.T) {
	h := newSyncHarness(blogSource("article"), &syncMockClient{})

	_, err := h.orch.Sync(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncOrchestrator_Sync_ClientError(t *testing.T) {
	h := newSyncHarness(blogSource("article"), &syncMockClient{})
	h.orch.clients = &syncMockFactory{err: domain.ErrAuthInvalid}

	_, err := h.orch.Sync(context.Background(), "blog")
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}

func TestSyncOrchestrator_Sync_InProgress(t *testing.T) {
	h := newSyncHarness(blogSource("article"), &syncMockClient{})
	_, err := h.orch.begin("blog")
	require.NoError(t, err)

	_, err = h.orch.Sync(context.Background(), "blog")
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	status, err := h.orch.Status(context.Background(), "blog")
	require.NoError(t, err)
	assert.True(t, status.Running)
}

func TestSyncOrchestrator_Sync_PipelineAndMediaFailures(t *testing.T) {
	client := &syncMockClient{full: map[string][]domain.RawEntity{
		"/api/articles": {article(1, "One", 0), article(2, "Two", 0)},
	}}
	h := newSyncHarness(blogSource("article"), client)
	pipeline := &syncMockPipeline{}
	h.orch.pipeline = pipeline
	h.orch.media = &syncMockMedia{failures: 2}

	report, err := h.orch.Sync(context.Background(), "blog")
	require.NoError(t, err)
	assert.Equal(t, 2, pipeline.batches)
	assert.Equal(t, 2, report.MediaFailures)
}

func TestSyncOrchestrator_Sync_PipelineErrorAborts(t *testing.T) {
	client := &syncMockClient{full: map[string][]domain.RawEntity{
		"/api/articles": {article(1, "One", 0)},
	}}
	h := newSyncHarness(blogSource("article"), client)
	h.orch.pipeline = &syncMockPipeline{err: errors.New("boom")}

	_, err := h.orch.Sync(context.Background(), "blog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post-process")

	_, err = h.cache.Get(context.Background(), "blog", domain.LastSyncKey)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncOrchestrator_Sync_IsolatesSources(t *testing.T) {
	client := &syncMockClient{full: map[string][]domain.RawEntity{
		"/api/articles": {article(1, "One", 0)},
	}}
	h := newSyncHarness(blogSource("article"), client)
	ctx := context.Background()

	foreign := &domain.Node{ID: "foreign", Source: "docs", SourceID: 9, Type: "TYPE_ARTICLE", Kind: domain.NodeKindEntry}
	require.NoError(t, h.nodes.CreateNode(ctx, foreign))

	_, err := h.orch.Sync(ctx, "blog")
	require.NoError(t, err)

	_, err = h.nodes.GetNode(ctx, "foreign")
	assert.NoError(t, err)
}

func TestSyncOrchestrator_SyncAll_JoinsErrors(t *testing.T) {
	client := &syncMockClient{full: map[string][]domain.RawEntity{
		"/api/articles": {article(1, "One", 0)},
	}}
	h := newSyncHarness(blogSource("article"), client)
	broken := blogSource("product")
	broken.Name = "shop"
	h.config.SetSources(blogSource("article"), broken)

	reports, err := h.orch.SyncAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownSchema)
	assert.Contains(t, err.Error(), "sync shop")
	require.Len(t, reports, 1)
	assert.Equal(t, "blog", reports[0].Source)
}

func TestSyncOrchestrator_Status_Idle(t *testing.T) {
	h := newSyncHarness(blogSource("article"), &syncMockClient{})

	status, err := h.orch.Status(context.Background(), "blog")
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Equal(t, "blog", status.Source)
}
