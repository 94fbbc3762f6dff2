package bptree

import (
	"os"
	"sync/atomic"

	"github.com/evangelisilva/BPlusTree/common"
)

const (
	// Per-node serialization allowance and per-entry cost used to derive
	// the order. The formula must stay fixed so files written with the
	// same page size remain interoperable across runs.
	nodeMetaReserve = 32
	entryWidth      = 16 // one key plus one value-or-child
)

// Config holds configuration for the B+Tree index
type Config struct {
	Path       string
	CacheBytes int // Buffer cache budget; capacity in nodes is CacheBytes/PageSize, at least 1
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		CacheBytes: 4 << 20, // 1024 cached nodes at 4KB pages
	}
}

// BTree is a durable ordered int64-to-int64 map backed by a single
// page file. It is a single-session index: Open always starts empty.
// Access is single-threaded; only the cache tolerates concurrent
// counter reads.
type BTree struct {
	config Config
	disk   *DiskManager
	cache  *BufferCache
	order  int

	rootPageID int64
	numKeys    int64

	closed atomic.Bool
}

// Open creates a fresh index at path. A pre-existing file is deleted
// and recreated empty.
func Open(path string, cacheBytes int) (*BTree, error) {
	return New(Config{Path: path, CacheBytes: cacheBytes})
}

// New creates a fresh index from config.
func New(config Config) (*BTree, error) {
	if err := os.Remove(config.Path); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	disk, err := OpenDiskManager(config.Path, PageSize)
	if err != nil {
		return nil, err
	}

	t := &BTree{
		config: config,
		disk:   disk,
		order:  (PageSize - nodeMetaReserve) / entryWidth,
	}
	t.cache = NewBufferCache(config.CacheBytes/PageSize, disk.WriteNode)

	fresh, err := disk.IsFresh()
	if err != nil {
		disk.Close()
		return nil, err
	}

	if fresh {
		root, err := t.newNode(true)
		if err != nil {
			disk.Close()
			return nil, err
		}
		t.rootPageID = root.PageID
		if err := disk.WriteRootPage(root.PageID); err != nil {
			disk.Close()
			return nil, err
		}
	} else {
		t.rootPageID, err = disk.ReadRootPage()
		if err != nil {
			disk.Close()
			return nil, err
		}
	}

	return t, nil
}

// Order returns the maximum number of keys a node holds before it
// splits.
func (t *BTree) Order() int {
	return t.order
}

// load returns the node for pageID, reading it from disk on a cache
// miss. The returned reference is valid until the next cache-disturbing
// operation evicts it; mutations must go through markDirty.
func (t *BTree) load(pageID int64) (*Node, error) {
	if n, ok := t.cache.Get(pageID); ok {
		return n, nil
	}

	n, err := t.disk.ReadNode(pageID, t.order)
	if err != nil {
		return nil, err
	}
	if err := t.cache.Put(pageID, n); err != nil {
		return nil, err
	}
	return n, nil
}

// markDirty flags a mutated node and reinserts it into the cache,
// promoting it to most recently used.
func (t *BTree) markDirty(n *Node) error {
	n.dirty = true
	return t.cache.Put(n.PageID, n)
}

// newNode allocates a fresh page, wraps it in a dirty node, and
// inserts it into the cache.
func (t *BTree) newNode(isLeaf bool) (*Node, error) {
	pageID, err := t.disk.AllocatePage()
	if err != nil {
		return nil, err
	}

	var n *Node
	if isLeaf {
		n = newLeaf(pageID, t.order)
	} else {
		n = newInternal(pageID, t.order)
	}
	n.dirty = true

	if err := t.cache.Put(pageID, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Search returns the value stored under key, or common.ErrKeyNotFound.
func (t *BTree) Search(key int64) (int64, error) {
	if t.closed.Load() {
		return 0, common.ErrClosed
	}

	n, err := t.load(t.rootPageID)
	if err != nil {
		return 0, err
	}

	for !n.IsLeaf {
		pos := n.search(key)
		var childIdx int
		if pos >= 0 {
			// A separator equals the first key of its right subtree's
			// leftmost leaf, so an exact match routes right.
			childIdx = pos + 1
		} else {
			childIdx = -pos - 1
		}

		n, err = t.load(n.Children[childIdx])
		if err != nil {
			return 0, err
		}
	}

	pos := n.search(key)
	if pos < 0 {
		return 0, common.ErrKeyNotFound
	}
	return n.Values[pos], nil
}

// Insert stores a key-value pair, overwriting the value if the key
// already exists. A root split grows the tree by one level and updates
// the metadata page.
func (t *BTree) Insert(key, value int64) error {
	if t.closed.Load() {
		return common.ErrClosed
	}

	oldRootID := t.rootPageID
	split, err := t.insertInto(oldRootID, key, value)
	if err != nil {
		return err
	}
	if split == nil {
		return nil
	}

	root, err := t.newNode(false)
	if err != nil {
		return err
	}
	root.Keys[0] = split.key
	root.Children[0] = oldRootID
	root.Children[1] = split.right.PageID
	root.KeyCount = 1
	if err := t.markDirty(root); err != nil {
		return err
	}

	t.rootPageID = root.PageID
	return t.disk.WriteRootPage(root.PageID)
}

// Close flushes all dirty nodes and closes the file. The index is
// unusable afterwards.
func (t *BTree) Close() error {
	if t.closed.Swap(true) {
		return nil
	}

	if err := t.cache.FlushAll(); err != nil {
		t.disk.Close()
		return err
	}
	return t.disk.Close()
}

// Stats returns engine and cache statistics.
func (t *BTree) Stats() common.Stats {
	s := common.Stats{
		NumKeys:        t.numKeys,
		CacheHits:      t.cache.Hits(),
		CacheMisses:    t.cache.Misses(),
		CacheEvictions: t.cache.Evictions(),
		CacheHitRate:   t.cache.HitRate(),
	}
	if pages, err := t.disk.NumPages(); err == nil {
		s.NumPages = pages
	}
	return s
}
