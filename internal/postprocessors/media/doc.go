// Package media links media attributes to downloaded file nodes.
//
// The Cache is the media download cache: one entry per upload id holding
// the file node id and the upload's updatedAt, so an unchanged asset is
// downloaded at most once across runs. The Processor is the post-processing
// pass that walks each normalised batch, resolves media attributes through
// the cache and extracts images embedded in rich-text markdown.
package media
