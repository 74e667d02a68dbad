package usecases

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/oliauusc/CSCI201-Group7/internal/core/ports"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/metrics"
)

// cacheGet decodes the cached value at key into dst. A nil cache, a miss or an
// undecodable entry all report false.
func cacheGet(ctx context.Context, cache ports.CacheService, key, op string, dst any) bool {
	if cache == nil {
		return false
	}
	data, err := cache.Get(ctx, key)
	if err != nil || json.Unmarshal(data, dst) != nil {
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(op).Inc()
	return true
}

func cacheSet(ctx context.Context, cache ports.CacheService, key string, v any, ttlSeconds int) {
	if cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := cache.Set(ctx, key, data, ttlSeconds); err != nil {
		slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}
