// Package config assembles a document.Options value from the host's TOML
// config file and environment, using internal/config/loader's generic
// map[string]any loaders. Host configuration is deliberately not
// core-owned: buffercore's own public API never reads a file or an
// environment variable itself, only the document.Options value this
// package produces.
package config

import (
	"github.com/keystorm-labs/buffercore/internal/config/loader"
	"github.com/keystorm-labs/buffercore/internal/document"
)

// EnvPrefix is the environment variable prefix consulted by LoadOptions,
// generalized from the teacher's KEYSTORM_ prefix.
const EnvPrefix = "BUFFERCORE_"

func envMapping() map[string]string {
	return map[string]string{
		EnvPrefix + "LARGE_FILE_THRESHOLD": "buffer.largeFileThreshold",
		EnvPrefix + "FORCE_LARGE":          "buffer.forceLarge",
		EnvPrefix + "EAGER_LINE_INDEX":     "buffer.eagerLineIndex",
		EnvPrefix + "FORCE_LINE_INDEX":     "buffer.forceLineIndex",
		EnvPrefix + "CHUNK_SIZE":           "buffer.chunkSize",
		EnvPrefix + "CHUNK_ALIGNMENT":      "buffer.chunkAlignment",
		EnvPrefix + "MAX_CACHED_CHUNKS":    "buffer.maxCachedChunks",
		EnvPrefix + "ASSUMED_LINE_LENGTH":  "buffer.assumedLineLength",
	}
}

// LoadOptions builds a document.Options from a TOML file's [buffer] table
// (tomlPath may not exist, in which case it is silently skipped) overlaid
// with any BUFFERCORE_* environment variables, starting from
// document.DefaultOptions().
func LoadOptions(tomlPath string) (document.Options, error) {
	opts := document.DefaultOptions()

	tomlValues, err := loader.NewTOMLLoader(tomlPath).Load()
	if err != nil {
		return opts, err
	}
	applyBufferTable(&opts, asMap(tomlValues["buffer"]))

	envValues, err := loader.NewEnvLoaderWithMapping(EnvPrefix, envMapping()).Load()
	if err != nil {
		return opts, err
	}
	applyBufferTable(&opts, asMap(envValues["buffer"]))

	return opts, nil
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func applyBufferTable(opts *document.Options, table map[string]any) {
	if table == nil {
		return
	}
	if v, ok := asInt64(table["largeFileThreshold"]); ok {
		opts.LargeFileThreshold = v
	}
	if v, ok := table["forceLarge"].(bool); ok {
		opts.ForceLarge = v
	}
	if v, ok := table["eagerLineIndex"].(bool); ok {
		opts.EagerLineIndex = v
	}
	if v, ok := table["forceLineIndex"].(bool); ok {
		opts.ForceLineIndex = v
	}
	if v, ok := asInt64(table["chunkSize"]); ok {
		opts.ChunkSize = v
	}
	if v, ok := asInt64(table["chunkAlignment"]); ok {
		opts.ChunkAlignment = v
	}
	if v, ok := asInt64(table["maxCachedChunks"]); ok {
		opts.MaxCachedChunks = int(v)
	}
	if v, ok := asInt64(table["assumedLineLength"]); ok {
		opts.AssumedLineLength = v
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
