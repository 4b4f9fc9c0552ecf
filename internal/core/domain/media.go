package domain

import (
	"strconv"
	"strings"
)

// MediaFields is the whitelist of upload attributes kept on media values.
var MediaFields = []string{
	"name",
	"alternativeText",
	"caption",
	"width",
	"height",
	"formats",
	"hash",
	"ext",
	"mime",
	"size",
	"url",
	"previewUrl",
	"provider",
	"provider_metadata",
	"createdAt",
	"updatedAt",
}

// LocalFileKey is the content key linking a media value to its downloaded file node.
var LocalFileKey = LinkKey("localFile")

const (
	// MediaCacheKeyPrefix prefixes media cache entries.
	MediaCacheKeyPrefix = "strapi-media-"

	// LastSyncKey holds the time of the last successful sync.
	LastSyncKey = "timestamp"
)

// MediaAsset is the subset of an upload record needed to download it.
type MediaAsset struct {
	ID        int64
	Name      string
	URL       string
	Mime      string
	UpdatedAt string
}

// MediaAssetFromContent reads an asset from a cleaned media value.
// It returns false if the value has no id or url.
func MediaAssetFromContent(v map[string]any) (MediaAsset, bool) {
	id, ok := AsInt64(v["id"])
	if !ok {
		return MediaAsset{}, false
	}
	url, _ := v["url"].(string)
	if url == "" {
		return MediaAsset{}, false
	}
	a := MediaAsset{ID: id, URL: url}
	a.Name, _ = v["name"].(string)
	a.Mime, _ = v["mime"].(string)
	a.UpdatedAt, _ = v["updatedAt"].(string)
	return a, true
}

// SourceURL returns the absolute download URL. Relative urls are prefixed
// with apiURL; urls that already start with http are returned unchanged.
func (a MediaAsset) SourceURL(apiURL string) string {
	if strings.HasPrefix(a.URL, "http") {
		return a.URL
	}
	return strings.TrimRight(apiURL, "/") + a.URL
}

// MediaCacheEntry is the persisted record of a downloaded asset.
type MediaCacheEntry struct {
	FileNodeID string `json:"fileNodeID"`
	UpdatedAt  string `json:"updatedAt"`
}

// MediaCacheKey returns the cache key for an asset id.
func MediaCacheKey(assetID int64) string {
	return MediaCacheKeyPrefix + strconv.FormatInt(assetID, 10)
}

// AsInt64 converts a decoded JSON number to int64.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), n == float64(int64(n))
	case interface{ Int64() (int64, error) }:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}

// CleanMedia flattens an upload record into {id, <whitelisted fields>}.
// Records in envelope shape ({id, attributes}) and flat records are both accepted.
func CleanMedia(record map[string]any) map[string]any {
	if record == nil {
		return nil
	}
	attrs := record
	if inner, ok := record["attributes"].(map[string]any); ok {
		attrs = inner
	}
	out := make(map[string]any, len(MediaFields)+1)
	out["id"] = record["id"]
	for _, f := range MediaFields {
		if v, ok := attrs[f]; ok {
			out[f] = v
		}
	}
	return out
}
