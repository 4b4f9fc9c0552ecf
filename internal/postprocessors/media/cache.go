package media

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
	"github.com/custodia-labs/strapisync/internal/logger"
)

// Ensure the cache types implement the interfaces.
var (
	_ driven.MediaResolverFactory = (*Factory)(nil)
	_ driven.MediaResolver        = (*Cache)(nil)
)

// Factory builds a Cache per source and run.
type Factory struct {
	store      driven.CacheStore
	nodes      driven.NodeStore
	downloader driven.FileDownloader
}

// NewFactory creates a media cache factory.
func NewFactory(store driven.CacheStore, nodes driven.NodeStore, downloader driven.FileDownloader) *Factory {
	return &Factory{store: store, nodes: nodes, downloader: downloader}
}

// ForSource returns a fresh cache scoped to source.
func (f *Factory) ForSource(source domain.Source) driven.MediaResolver {
	return NewCache(source.Name, source.BaseURL(), f.store, f.nodes, f.downloader)
}

// Cache resolves media assets to file nodes, downloading only on a miss.
// Entries live in the CacheStore namespace of the source.
type Cache struct {
	source     string
	apiURL     string
	store      driven.CacheStore
	nodes      driven.NodeStore
	downloader driven.FileDownloader

	group    singleflight.Group
	failures atomic.Int64
}

// NewCache creates a media cache for one source.
func NewCache(
	source, apiURL string,
	store driven.CacheStore,
	nodes driven.NodeStore,
	downloader driven.FileDownloader,
) *Cache {
	return &Cache{
		source:     source,
		apiURL:     apiURL,
		store:      store,
		nodes:      nodes,
		downloader: downloader,
	}
}

// Resolve returns the file node id for asset. Concurrent calls for the
// same asset share one lookup and at most one download.
func (c *Cache) Resolve(ctx context.Context, asset domain.MediaAsset) (string, bool) {
	key := domain.MediaCacheKey(asset.ID) + "@" + asset.UpdatedAt
	v, _, _ := c.group.Do(key, func() (any, error) {
		return c.resolve(ctx, asset), nil
	})
	id, _ := v.(string)
	return id, id != ""
}

// Failures returns the number of assets that could not be downloaded.
func (c *Cache) Failures() int {
	return int(c.failures.Load())
}

func (c *Cache) resolve(ctx context.Context, asset domain.MediaAsset) string {
	key := domain.MediaCacheKey(asset.ID)

	if id, ok := c.lookup(ctx, key, asset); ok {
		logger.Debug("media %d: cache hit %s", asset.ID, id)
		return id
	}

	url := asset.SourceURL(c.apiURL)
	node, err := c.downloader.Download(ctx, c.source, asset, url)
	if err != nil {
		c.fail(asset, err)
		return ""
	}
	if err := c.nodes.CreateNode(ctx, node); err != nil {
		c.fail(asset, err)
		return ""
	}

	entry, err := json.Marshal(domain.MediaCacheEntry{FileNodeID: node.ID, UpdatedAt: asset.UpdatedAt})
	if err == nil {
		err = c.store.Set(ctx, c.source, key, entry)
	}
	if err != nil {
		// The file node exists; the next run just downloads it again.
		logger.Warn("media %d: saving cache entry: %v", asset.ID, err)
	}
	return node.ID
}

// lookup returns the cached file node when the entry matches asset's
// updatedAt and the node still exists. The node is touched on a hit.
func (c *Cache) lookup(ctx context.Context, key string, asset domain.MediaAsset) (string, bool) {
	data, err := c.store.Get(ctx, c.source, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("media %d: reading cache: %v", asset.ID, err)
		}
		return "", false
	}

	var entry domain.MediaCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		logger.Debug("media %d: discarding malformed cache entry", asset.ID)
		return "", false
	}
	if entry.FileNodeID == "" || entry.UpdatedAt != asset.UpdatedAt {
		return "", false
	}
	if _, err := c.nodes.GetNode(ctx, entry.FileNodeID); err != nil {
		return "", false
	}
	if err := c.nodes.TouchNode(ctx, entry.FileNodeID); err != nil {
		logger.Warn("media %d: touching file node: %v", asset.ID, err)
	}
	return entry.FileNodeID, true
}

func (c *Cache) fail(asset domain.MediaAsset, err error) {
	c.failures.Add(1)
	logger.Warn("media %d: download %s failed: %v", asset.ID, asset.URL, err)
}
