package parserapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/core"
	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/log"
)

// CachingParser wraps a StatementParser with a TTL cache keyed by the upload
// content. Re-submitting the same PDF for the same bank skips the remote
// round trip, and concurrent identical uploads are coalesced into one call.
// Failures are never cached.
type CachingParser struct {
	inner  StatementParser
	cache  *gocache.Cache
	group  singleflight.Group
	logger *log.Logger

	hits   int64
	misses int64
}

// NewCachingParser wraps inner with a cache holding results for ttl.
func NewCachingParser(inner StatementParser, ttl time.Duration, logger *log.Logger) *CachingParser {
	return &CachingParser{
		inner:  inner,
		cache:  gocache.New(ttl, 2*ttl),
		logger: logger.WithComponent(log.ComponentCache),
	}
}

// Parse returns a cached statement when the same bank+PDF pair was parsed
// recently, delegating to the wrapped parser otherwise.
func (p *CachingParser) Parse(ctx context.Context, bank core.Bank, filename string, pdf []byte) (*core.Statement, error) {
	key := cacheKey(bank, pdf)
	if v, ok := p.cache.Get(key); ok {
		atomic.AddInt64(&p.hits, 1)
		p.logger.DebugContext(ctx, "Parse cache hit", log.FieldBank, string(bank), log.FieldCacheKey, key)
		return v.(*core.Statement), nil
	}
	atomic.AddInt64(&p.misses, 1)

	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		// Double-check: another flight may have populated the cache while
		// this one queued.
		if v, ok := p.cache.Get(key); ok {
			return v, nil
		}
		st, err := p.inner.Parse(ctx, bank, filename, pdf)
		if err != nil {
			return nil, err
		}
		p.cache.SetDefault(key, st)
		return st, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.Statement), nil
}

// Hits returns how many parses were served from cache.
func (p *CachingParser) Hits() int64 { return atomic.LoadInt64(&p.hits) }

// Misses returns how many parses went to the remote service.
func (p *CachingParser) Misses() int64 { return atomic.LoadInt64(&p.misses) }

// Ping delegates readiness checks to the wrapped parser when it supports them.
func (p *CachingParser) Ping(ctx context.Context) error {
	if pinger, ok := p.inner.(interface{ Ping(context.Context) error }); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

func cacheKey(bank core.Bank, pdf []byte) string {
	h := sha256.New()
	h.Write([]byte(bank))
	h.Write([]byte{0})
	h.Write(pdf)
	return hex.EncodeToString(h.Sum(nil))
}
