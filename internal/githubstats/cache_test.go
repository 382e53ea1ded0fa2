package githubstats

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheExpiry(t *testing.T) {
	now := fixedNow
	c := NewCache(time.Hour, func() time.Time { return now })

	c.Set("Alice", Stats{Username: "alice", Followers: 3})

	got, ok := c.Get("alice")
	assert.True(t, ok)
	assert.Equal(t, 3, got.Followers)

	now = now.Add(time.Hour)
	_, ok = c.Get("ALICE")
	assert.True(t, ok, "an entry exactly ttl old is still fresh")

	now = now.Add(time.Second)
	_, ok = c.Get("alice")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestCacheIgnoresEmptyStats(t *testing.T) {
	c := NewCache(0, nil)
	c.Set("ghost", Stats{})
	_, ok := c.Get("ghost")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestCachePurge(t *testing.T) {
	now := fixedNow
	c := NewCache(time.Minute, func() time.Time { return now })

	c.Set("old", Stats{Username: "old"})
	now = now.Add(2 * time.Minute)
	c.Set("new", Stats{Username: "new"})

	assert.Equal(t, 1, c.Purge())
	assert.Equal(t, 1, c.Len())
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache(time.Hour, nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("user-%d", i%4)
			c.Set(name, Stats{Username: name})
			_, _ = c.Get(name)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, c.Len())
}
