package strapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

// FetchEntities returns every entity served by endpoint. Collection
// endpoints are paged: the first page reports the page count and the
// remaining pages are fetched concurrently, then concatenated in order.
func (c *Client) FetchEntities(ctx context.Context, endpoint domain.Endpoint) ([]domain.RawEntity, error) {
	if endpoint.IsSingle() {
		return c.fetchSingle(ctx, endpoint)
	}

	first, err := c.get(ctx, endpoint.Path, withPage(endpoint.Query, 1))
	if err != nil {
		return nil, err
	}
	pages := [][]domain.RawEntity{parseEntities(gjson.GetBytes(first, "data"))}

	pageCount := int(gjson.GetBytes(first, "meta.pagination.pageCount").Int())
	if pageCount > 1 {
		rest := make([][]domain.RawEntity, pageCount-1)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.concurrency)
		for page := 2; page <= pageCount; page++ {
			g.Go(func() error {
				body, err := c.get(gctx, endpoint.Path, withPage(endpoint.Query, page))
				if err != nil {
					return fmt.Errorf("page %d: %w", page, err)
				}
				rest[page-2] = parseEntities(gjson.GetBytes(body, "data"))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		pages = append(pages, rest...)
	}

	var out []domain.RawEntity
	for _, p := range pages {
		out = append(out, p...)
	}
	return out, nil
}

// fetchSingle fetches a single type. An unpublished single type answers
// 404 or null data; both mean there is nothing to sync.
func (c *Client) fetchSingle(ctx context.Context, endpoint domain.Endpoint) ([]domain.RawEntity, error) {
	body, err := c.get(ctx, endpoint.Path, endpoint.Query)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	data := gjson.GetBytes(body, "data")
	if !data.IsObject() {
		return nil, nil
	}
	e, ok := parseEntity(data)
	if !ok {
		return nil, nil
	}
	return []domain.RawEntity{e}, nil
}

// withPage copies query with pagination.page set.
func withPage(query map[string]any, page int) map[string]any {
	q := make(map[string]any, len(query)+1)
	for k, v := range query {
		q[k] = v
	}
	pagination := map[string]any{}
	if p, ok := query["pagination"].(map[string]any); ok {
		for k, v := range p {
			pagination[k] = v
		}
	}
	pagination["page"] = page
	q["pagination"] = pagination
	return q
}

func parseEntities(data gjson.Result) []domain.RawEntity {
	var out []domain.RawEntity
	for _, item := range data.Array() {
		if e, ok := parseEntity(item); ok {
			out = append(out, e)
		}
	}
	return out
}

// parseEntity accepts both the nested {id, attributes} record and the
// flat record where every field other than id is an attribute.
func parseEntity(item gjson.Result) (domain.RawEntity, bool) {
	id := item.Get("id")
	if !id.Exists() {
		return domain.RawEntity{}, false
	}

	attrs := map[string]any{}
	if nested := item.Get("attributes"); nested.IsObject() {
		if err := json.Unmarshal([]byte(nested.Raw), &attrs); err != nil {
			return domain.RawEntity{}, false
		}
	} else {
		if err := json.Unmarshal([]byte(item.Raw), &attrs); err != nil {
			return domain.RawEntity{}, false
		}
		delete(attrs, "id")
	}
	return domain.RawEntity{ID: id.Int(), Attributes: attrs}, true
}
