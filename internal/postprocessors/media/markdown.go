package media

import (
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// markdownImage is one image reference found in rich text.
type markdownImage struct {
	// URL is the absolute download url.
	URL string
	// Src is the destination exactly as written.
	Src string
	// AlternativeText is the image alt text.
	AlternativeText string
}

// extractImages returns the images of a markdown document in document order.
// Root-relative destinations are prefixed with apiURL; http(s) destinations
// are kept; anything else is ignored.
func extractImages(text, apiURL string) []markdownImage {
	if text == "" {
		return nil
	}

	// Parsers are single use.
	doc := parser.NewWithExtensions(parser.CommonExtensions).Parse([]byte(text))

	var images []markdownImage
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		img, ok := node.(*ast.Image)
		if !ok || !entering {
			return ast.GoToNext
		}

		src := string(img.Destination)
		var url string
		switch {
		case strings.HasPrefix(src, "/"):
			url = apiURL + src
		case strings.HasPrefix(strings.ToLower(src), "http"):
			url = src
		default:
			return ast.GoToNext
		}

		images = append(images, markdownImage{
			URL:             url,
			Src:             src,
			AlternativeText: altText(img),
		})
		return ast.GoToNext
	})
	return images
}

func altText(img *ast.Image) string {
	var b strings.Builder
	for _, child := range img.GetChildren() {
		if t, ok := child.(*ast.Text); ok {
			b.Write(t.Literal)
		}
	}
	return b.String()
}
