package strapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

const uploadFilesPath = "/api/upload/files"

// FindMediaByURL looks up an upload record by its relative url.
func (c *Client) FindMediaByURL(ctx context.Context, url string) (map[string]any, error) {
	body, err := c.get(ctx, uploadFilesPath, map[string]any{
		"filters": map[string]any{"url": url},
	})
	if err != nil {
		return nil, fmt.Errorf("find media %s: %w", url, err)
	}

	records := gjson.ParseBytes(body)
	if data := records.Get("data"); data.IsArray() {
		records = data
	}
	first := records.Get("0")
	if !first.IsObject() {
		return nil, fmt.Errorf("media %s: %w", url, domain.ErrNotFound)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(first.Raw), &record); err != nil {
		return nil, fmt.Errorf("decode media %s: %w", url, err)
	}
	return domain.CleanMedia(record), nil
}
