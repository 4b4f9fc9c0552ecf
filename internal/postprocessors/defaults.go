package postprocessors

import (
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
	"github.com/custodia-labs/strapisync/internal/postprocessors/media"
)

// DefaultNames is the pipeline used when the configuration names none.
var DefaultNames = []string{media.Name}

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register(media.Name, buildMedia)
}

// buildMedia creates a media processor from generic config.
// Supported config keys:
//   - concurrency (int): Assets resolved at once per attribute (default: 4)
//   - rich_text (bool): Extract images from rich-text markdown (default: true)
func buildMedia(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []media.Option

	if cfg != nil {
		if n := getIntFromConfig(cfg, "concurrency"); n > 0 {
			opts = append(opts, media.WithConcurrency(n))
		}
		if enabled, ok := cfg["rich_text"].(bool); ok {
			opts = append(opts, media.WithRichText(enabled))
		}
	}

	return media.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
