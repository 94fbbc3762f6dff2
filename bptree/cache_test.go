package bptree

import (
	"errors"
	"testing"
)

func leafWithID(pageID int64) *Node {
	return newLeaf(pageID, 4)
}

func TestCacheHitMissCounters(t *testing.T) {
	c := NewBufferCache(2, func(*Node) error { return nil })

	if _, ok := c.Get(1); ok {
		t.Fatal("empty cache returned a node")
	}
	if c.Misses() != 1 {
		t.Fatalf("misses = %d, want 1", c.Misses())
	}

	if err := c.Put(1, leafWithID(1)); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(1); !ok {
		t.Fatal("cached node not returned")
	}
	if c.Hits() != 1 {
		t.Fatalf("hits = %d, want 1", c.Hits())
	}
}

func TestCacheEvictsLRU(t *testing.T) {
	var evicted []int64
	c := NewBufferCache(2, func(n *Node) error {
		evicted = append(evicted, n.PageID)
		return nil
	})

	c.Put(1, leafWithID(1))
	c.Put(2, leafWithID(2))

	// Touch 1 so 2 becomes the LRU victim.
	c.Get(1)

	n3 := leafWithID(3)
	n3.dirty = true
	c.Put(3, n3)

	if c.Evictions() != 1 {
		t.Fatalf("evictions = %d, want 1", c.Evictions())
	}
	if len(evicted) != 0 {
		t.Fatalf("clean victim was flushed: %v", evicted)
	}
	if _, ok := c.Get(2); ok {
		t.Fatal("LRU entry 2 still cached")
	}
	if _, ok := c.Get(1); !ok {
		t.Fatal("recently used entry 1 was evicted")
	}
}

func TestCacheFlushesDirtyVictim(t *testing.T) {
	var flushed []int64
	c := NewBufferCache(1, func(n *Node) error {
		flushed = append(flushed, n.PageID)
		return nil
	})

	dirty := leafWithID(1)
	dirty.dirty = true
	c.Put(1, dirty)
	c.Put(2, leafWithID(2))

	if len(flushed) != 1 || flushed[0] != 1 {
		t.Fatalf("flushed = %v, want [1]", flushed)
	}
}

func TestCacheUpdateDoesNotEvict(t *testing.T) {
	c := NewBufferCache(1, func(*Node) error { return nil })

	c.Put(1, leafWithID(1))
	c.Put(1, leafWithID(1))

	if c.Evictions() != 0 {
		t.Fatalf("update of existing key evicted: evictions = %d", c.Evictions())
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
}

func TestCacheFlushAll(t *testing.T) {
	var flushed []int64
	c := NewBufferCache(4, func(n *Node) error {
		flushed = append(flushed, n.PageID)
		return nil
	})

	clean := leafWithID(1)
	c.Put(1, clean)
	for _, id := range []int64{2, 3} {
		n := leafWithID(id)
		n.dirty = true
		c.Put(id, n)
	}
	c.Get(1)
	c.Get(9) // miss

	if err := c.FlushAll(); err != nil {
		t.Fatal(err)
	}
	if len(flushed) != 2 {
		t.Fatalf("flushed %d nodes, want 2 (dirty only): %v", len(flushed), flushed)
	}
	if c.Len() != 0 {
		t.Fatalf("len after FlushAll = %d, want 0", c.Len())
	}

	// Counters survive the flush.
	if c.Hits() != 1 || c.Misses() != 1 {
		t.Fatalf("counters reset: hits=%d misses=%d", c.Hits(), c.Misses())
	}
}

func TestCacheEvictErrorSurfaces(t *testing.T) {
	boom := errors.New("disk gone")
	c := NewBufferCache(1, func(*Node) error { return boom })

	dirty := leafWithID(1)
	dirty.dirty = true
	c.Put(1, dirty)

	if err := c.Put(2, leafWithID(2)); !errors.Is(err, boom) {
		t.Fatalf("Put = %v, want wrapped flush error", err)
	}
}

func TestCacheCapacityClamp(t *testing.T) {
	c := NewBufferCache(0, func(*Node) error { return nil })
	if c.capacity != 1 {
		t.Fatalf("capacity = %d, want clamp to 1", c.capacity)
	}
}

func TestHitRate(t *testing.T) {
	c := NewBufferCache(2, func(*Node) error { return nil })

	if rate := c.HitRate(); rate != 0 {
		t.Fatalf("hit rate with no accesses = %v, want 0", rate)
	}

	c.Put(1, leafWithID(1))
	c.Get(1)
	c.Get(2)

	if rate := c.HitRate(); rate != 0.5 {
		t.Fatalf("hit rate = %v, want 0.5", rate)
	}
}
