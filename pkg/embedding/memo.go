package embedding

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoizingProvider caches vectors keyed by a content hash so unchanged
// text never hits the backend twice. Items that churn through repeated
// syncs dominate the call volume; the hash keys on task type too since
// document and query embeddings differ on some backends.
type MemoizingProvider struct {
	inner Provider
	cache *gocache.Cache
}

func NewMemoizingProvider(inner Provider, ttl time.Duration) *MemoizingProvider {
	return &MemoizingProvider{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (p *MemoizingProvider) Generate(text string, taskType string) ([]float32, error) {
	key := memoKey(text, taskType)
	if cached, found := p.cache.Get(key); found {
		return cached.([]float32), nil
	}

	values, err := p.inner.Generate(text, taskType)
	if err != nil {
		return nil, err
	}

	p.cache.Set(key, values, gocache.DefaultExpiration)
	return values, nil
}

func (p *MemoizingProvider) Dimension() int {
	return p.inner.Dimension()
}

func memoKey(text string, taskType string) string {
	sum := sha256.Sum256([]byte(taskType + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
