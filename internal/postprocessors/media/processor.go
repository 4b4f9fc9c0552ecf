package media

import (
	"context"
	"errors"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
	"github.com/custodia-labs/strapisync/internal/logger"
)

// Name is the registry name of the processor.
const Name = "media"

// DefaultConcurrency is the number of assets resolved at once per attribute.
const DefaultConcurrency = 4

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// Processor links media attributes and rich-text images to file nodes.
// Every failure is soft: the asset simply stays unlinked.
type Processor struct {
	concurrency int
	richText    bool
}

// Option configures the processor.
type Option func(*Processor)

// WithConcurrency sets how many assets of one attribute resolve at once.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithRichText enables or disables rich-text image extraction.
func WithRichText(enabled bool) Option {
	return func(p *Processor) {
		p.richText = enabled
	}
}

// New creates a media processor.
func New(opts ...Option) *Processor {
	p := &Processor{
		concurrency: DefaultConcurrency,
		richText:    true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process links every media value in batch. It only fails when ctx is done.
func (p *Processor) Process(ctx context.Context, sc *driven.SyncContext, batch *domain.NodeBatch) error {
	if sc == nil || sc.Media == nil || batch == nil {
		return nil
	}

	for _, node := range batch.Nodes {
		switch node.Kind {
		case domain.NodeKindEntry, domain.NodeKindComponent:
			p.linkAttributes(ctx, sc, node)
		case domain.NodeKindRichText:
			if p.richText {
				p.linkRichText(ctx, sc, node)
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// linkAttributes resolves the media attributes declared by the node schema.
func (p *Processor) linkAttributes(ctx context.Context, sc *driven.SyncContext, node *domain.Node) {
	schema := sc.Schemas.Lookup(node.SchemaUID)
	if schema == nil {
		return
	}

	names := make([]string, 0, len(schema.Attributes))
	for name, attr := range schema.Attributes {
		if attr.Kind == domain.AttributeMedia {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		switch v := node.Content[domain.ContentKey(name)].(type) {
		case map[string]any:
			p.linkRecords(ctx, sc, []any{v})
		case []any:
			p.linkRecords(ctx, sc, v)
		}
	}
}

// linkRecords resolves records concurrently and sets the link on each
// record whose asset resolved.
func (p *Processor) linkRecords(ctx context.Context, sc *driven.SyncContext, records []any) {
	ids := make([]string, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, item := range records {
		rec, ok := item.(map[string]any)
		if !ok {
			continue
		}
		asset, ok := domain.MediaAssetFromContent(rec)
		if !ok {
			continue
		}
		g.Go(func() error {
			if id, ok := sc.Media.Resolve(gctx, asset); ok {
				ids[i] = id
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, id := range ids {
		if id != "" {
			records[i].(map[string]any)[domain.LocalFileKey] = id
		}
	}
}

// linkRichText extracts markdown images from a rich-text node, looks each
// one up in the upload library and appends the resolved ones to medias.
func (p *Processor) linkRichText(ctx context.Context, sc *driven.SyncContext, node *domain.Node) {
	text, _ := node.Content["data"].(string)
	images := extractImages(text, sc.APIURL)
	if len(images) == 0 || sc.Lookup == nil {
		return
	}

	found := make([]map[string]any, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, img := range images {
		g.Go(func() error {
			found[i] = p.resolveImage(gctx, sc, img)
			return nil
		})
	}
	_ = g.Wait()

	medias, _ := node.Content["medias"].([]any)
	for _, m := range found {
		if m != nil {
			medias = append(medias, m)
		}
	}
	node.Content["medias"] = medias
}

func (p *Processor) resolveImage(ctx context.Context, sc *driven.SyncContext, img markdownImage) map[string]any {
	rel := strings.TrimPrefix(img.URL, sc.APIURL)
	record, err := sc.Lookup.FindMediaByURL(ctx, rel)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("rich text image %s: not in upload library", img.Src)
		} else {
			logger.Warn("rich text image %s: lookup failed: %v", img.Src, err)
		}
		return nil
	}

	file := domain.CleanMedia(record)
	media := map[string]any{
		"alternativeText": img.AlternativeText,
		"url":             img.URL,
		"src":             img.Src,
		"file":            file,
	}
	if asset, ok := domain.MediaAssetFromContent(file); ok {
		if id, ok := sc.Media.Resolve(ctx, asset); ok {
			media[domain.LocalFileKey] = id
		}
	}
	return media
}
