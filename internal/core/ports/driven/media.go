package driven

import (
	"context"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

// MediaResolver maps media assets to downloaded file nodes.
type MediaResolver interface {
	// Resolve returns the file node id for asset, downloading it only when
	// no cached download with the same updatedAt exists. Download failures
	// are soft: ok is false and the asset stays unlinked.
	Resolve(ctx context.Context, asset domain.MediaAsset) (fileNodeID string, ok bool)
}

// FileDownloader fetches media bytes into local storage.
type FileDownloader interface {
	// Download fetches url, writes the bytes locally and returns the file
	// node describing them. The caller persists the node.
	Download(ctx context.Context, source string, asset domain.MediaAsset, url string) (*domain.Node, error)
}

// MediaResolverFactory builds the media resolver for one run of a source.
type MediaResolverFactory interface {
	ForSource(source domain.Source) MediaResolver
}
