package postprocessors

import (
	"github.com/custodia-labs/docembed/internal/core/ports/driven"
	"github.com/custodia-labs/docembed/internal/postprocessors/chunker"
	"github.com/custodia-labs/docembed/internal/postprocessors/tokens"
)

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("tokens", buildTokens)
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 500)
//   - overlap (int): Overlapping characters between chunks (default: 50)
//   - trim (bool): Trim each chunk and drop empties (default: false)
//
// Values are passed through unvalidated so out of range settings
// fail when the chunker runs.
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	if trim, ok := cfg["trim"].(bool); ok {
		opts = append(opts, chunker.WithTrim(trim))
	}

	return chunker.New(opts...), nil
}

// buildTokens creates a token estimating processor.
// Supported config keys:
//   - chars_per_token (float): Characters per token (default: 4)
func buildTokens(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []tokens.Option

	switch v := cfg["chars_per_token"].(type) {
	case float64:
		opts = append(opts, tokens.WithCharsPerToken(v))
	case int:
		opts = append(opts, tokens.WithCharsPerToken(float64(v)))
	case int64:
		opts = append(opts, tokens.WithCharsPerToken(float64(v)))
	}

	return tokens.New(opts...), nil
}

// getIntFromConfig extracts an int from a generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
