package service

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/mmynk/settleup/pkg/api"
)

// SummaryCache memoises member summaries. Keys embed the scope's expense-set
// version, so any write to the scope makes older entries unreachable and
// they simply expire. A nil *SummaryCache caches nothing.
type SummaryCache struct {
	c *cache.Cache
}

// NewSummaryCache returns a cache whose entries live for ttl. A ttl of zero
// or less disables caching.
func NewSummaryCache(ttl time.Duration) *SummaryCache {
	if ttl <= 0 {
		return nil
	}
	return &SummaryCache{c: cache.New(ttl, 2*ttl)}
}

func summaryKey(groupID, memberID string, version int64) string {
	scope := groupID
	if scope == "" {
		scope = "*"
	}
	return fmt.Sprintf("%s|%s|%d", scope, memberID, version)
}

func (c *SummaryCache) Get(key string) (api.MemberSummary, bool) {
	if c == nil {
		return api.MemberSummary{}, false
	}
	v, ok := c.c.Get(key)
	if !ok {
		return api.MemberSummary{}, false
	}
	summary, ok := v.(api.MemberSummary)
	return summary, ok
}

func (c *SummaryCache) Set(key string, summary api.MemberSummary) {
	if c == nil {
		return
	}
	c.c.SetDefault(key, summary)
}

// Len reports the number of cached summaries, expired ones included.
func (c *SummaryCache) Len() int {
	if c == nil {
		return 0
	}
	return c.c.ItemCount()
}
