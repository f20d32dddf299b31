package middleware

import (
	"fmt"
	"time"

	"github.com/llmcomms/llmcomms/cachestore"
	"github.com/llmcomms/llmcomms/llm"
	"github.com/llmcomms/llmcomms/util"
)

// DefaultCacheTTL is used when neither cache_ttl_seconds nor cache_ttl is
// present on the request's provider hints.
const DefaultCacheTTL = 5 * time.Minute

// CacheMiddleware implements spec §4.7: only unary responses are cached,
// the streaming path is a pure pass-through.
type CacheMiddleware struct {
	Cache      cachestore.Cache
	DefaultTTL time.Duration
}

// NewCacheMiddleware constructs a CacheMiddleware with the given backing
// store. defaultTTL, if zero, falls back to DefaultCacheTTL.
func NewCacheMiddleware(cache cachestore.Cache, defaultTTL time.Duration) *CacheMiddleware {
	if defaultTTL <= 0 {
		defaultTTL = DefaultCacheTTL
	}
	return &CacheMiddleware{Cache: cache, DefaultTTL: defaultTTL}
}

func cacheKey(ctx *llm.ExecutionContext) (string, error) {
	hash, err := util.Hash(ctx.Request)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s:%s", ctx.Provider, ctx.Model, hash), nil
}

// isTruthyHint interprets a provider hint value as bool-ish: a bool, the
// string "true", or a nonzero number.
func isTruthyHint(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	}
	return false
}

// positiveDurationHint interprets a provider hint value as a positive
// number of seconds, returning (duration, true) if valid.
func positiveDurationHint(v interface{}) (time.Duration, bool) {
	var seconds float64
	switch t := v.(type) {
	case int:
		seconds = float64(t)
	case int64:
		seconds = float64(t)
	case float64:
		seconds = t
	default:
		return 0, false
	}
	if seconds <= 0 {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

func (m *CacheMiddleware) resolveTTL(req *llm.Request) time.Duration {
	if v, ok := req.Hint("cache_ttl_seconds"); ok {
		if d, valid := positiveDurationHint(v); valid {
			return d
		}
	}
	if v, ok := req.Hint("cache_ttl"); ok {
		if d, valid := positiveDurationHint(v); valid {
			return d
		}
	}
	return m.DefaultTTL
}

func (m *CacheMiddleware) bypassed(req *llm.Request) bool {
	v, ok := req.Hint("no_cache")
	return ok && isTruthyHint(v)
}

// Handle implements Middleware.
func (m *CacheMiddleware) Handle(ctx *llm.ExecutionContext, next Next) (*llm.Response, error) {
	if ctx.Request == nil || m.bypassed(ctx.Request) {
		return next(ctx)
	}

	key, err := cacheKey(ctx)
	if err != nil {
		return next(ctx)
	}

	if cached, ok := m.Cache.Get(key); ok {
		if ctx.CallContext != nil {
			ctx.CallContext.SetItem(llm.ItemCacheHit, true)
		}
		return cached, nil
	}

	resp, err := next(ctx)
	if err != nil {
		return nil, err
	}

	ttl := m.resolveTTL(ctx.Request)
	if len(resp.ToolCalls) == 0 && ttl > 0 {
		m.Cache.Set(key, resp, ttl)
		if ctx.CallContext != nil {
			ctx.CallContext.SetItem(llm.ItemCacheStored, true)
		}
	}

	return resp, nil
}

// HandleStream implements Middleware: the streaming path never consults or
// populates the cache.
func (m *CacheMiddleware) HandleStream(ctx *llm.ExecutionContext, next StreamNext) (llm.Stream, error) {
	return next(ctx)
}
