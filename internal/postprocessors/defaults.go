package postprocessors

import (
	"github.com/custodia-labs/persona-digest/internal/core/ports/driven"
	"github.com/custodia-labs/persona-digest/internal/postprocessors/segmenter"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("segmenter", buildSegmenter)
}

// buildSegmenter creates a segmenter processor from generic config.
// Supported config keys:
//   - max_length (int): Character budget per passage (default: 300)
//   - max_count (int): Maximum passages per document (default: 200)
func buildSegmenter(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []segmenter.Option

	if cfg != nil {
		if n := getIntFromConfig(cfg, "max_length"); n > 0 {
			opts = append(opts, segmenter.WithMaxLength(n))
		}
		if n := getIntFromConfig(cfg, "max_count"); n > 0 {
			opts = append(opts, segmenter.WithMaxCount(n))
		}
	}

	return segmenter.New(opts...), nil
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
