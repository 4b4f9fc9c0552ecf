// Package download fetches media assets over HTTP into a local directory
// and describes each download as a File node.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/afero"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
)

// DefaultTimeout bounds a single download.
const DefaultTimeout = 2 * time.Minute

// Ensure Downloader implements the interface.
var _ driven.FileDownloader = (*Downloader)(nil)

// Downloader writes media under <root>/<source>/.
type Downloader struct {
	fs   afero.Fs
	root string
	http *resty.Client
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithFs replaces the target filesystem.
func WithFs(fs afero.Fs) Option {
	return func(d *Downloader) { d.fs = fs }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Downloader) { d.http = resty.NewWithClient(c) }
}

// New creates a Downloader rooted at root on the OS filesystem.
func New(root string, opts ...Option) *Downloader {
	d := &Downloader{
		fs:   afero.NewOsFs(),
		root: root,
		http: resty.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.http.SetTimeout(DefaultTimeout)
	return d
}

// Download fetches url and writes it to disk. The returned node id is
// derived from the url so re-downloading the same asset overwrites it.
func (d *Downloader) Download(
	ctx context.Context,
	source string,
	asset domain.MediaAsset,
	url string,
) (*domain.Node, error) {
	resp, err := d.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode())
	}
	body := resp.Body()

	mtype := mimetype.Detect(body)
	mime := asset.Mime
	if mime == "" {
		mime = mtype.String()
	}

	dir := filepath.Join(d.root, source)
	if err := d.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	target := filepath.Join(dir, fileName(url, mtype.Extension()))
	if err := afero.WriteFile(d.fs, target, body, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", target, err)
	}

	content := map[string]any{
		"url":  url,
		"path": target,
		"mime": mime,
		"size": len(body),
	}
	if asset.Name != "" {
		content["name"] = asset.Name
	}
	if asset.UpdatedAt != "" {
		content["updatedAt"] = asset.UpdatedAt
	}

	return &domain.Node{
		ID:       domain.NewIDSpace(source).Derive(domain.FileNodeType, url),
		Source:   source,
		SourceID: asset.ID,
		Type:     domain.FileNodeType,
		Kind:     domain.NodeKindFile,
		Content:  content,
	}, nil
}

// fileName names a download by the hash of its url, keeping the url's
// extension and falling back to the detected one.
func fileName(url, detected string) string {
	sum := sha256.Sum256([]byte(url))
	name := hex.EncodeToString(sum[:16])

	ext := path.Ext(strings.SplitN(url, "?", 2)[0])
	if ext == "" || len(ext) > 8 {
		ext = detected
	}
	return name + ext
}
