package bptree

import (
	"github.com/evangelisilva/BPlusTree/common"
)

// Iterator walks the leaf chain from the leftmost leaf, yielding every
// key in ascending order until the chain terminates.
type Iterator struct {
	tree *BTree
	leaf *Node
	idx  int
	err  error
}

// Scan returns an iterator positioned before the first key.
func (t *BTree) Scan() (common.Iterator, error) {
	if t.closed.Load() {
		return nil, common.ErrClosed
	}

	n, err := t.load(t.rootPageID)
	if err != nil {
		return nil, err
	}

	// Follow the leftmost spine down to the first leaf.
	for !n.IsLeaf {
		n, err = t.load(n.Children[0])
		if err != nil {
			return nil, err
		}
	}

	return &Iterator{tree: t, leaf: n, idx: -1}, nil
}

// Next advances the iterator and reports whether a key-value pair is
// available.
func (it *Iterator) Next() bool {
	if it.err != nil || it.leaf == nil {
		return false
	}

	it.idx++
	for it.idx >= it.leaf.KeyCount {
		if it.leaf.Next == nilPage {
			it.leaf = nil
			return false
		}

		next, err := it.tree.load(it.leaf.Next)
		if err != nil {
			it.err = err
			return false
		}
		it.leaf = next
		it.idx = 0
	}

	return true
}

// Key returns the current key.
func (it *Iterator) Key() int64 {
	if it.leaf == nil {
		return 0
	}
	return it.leaf.Keys[it.idx]
}

// Value returns the current value.
func (it *Iterator) Value() int64 {
	if it.leaf == nil {
		return 0
	}
	return it.leaf.Values[it.idx]
}

// Error returns any error encountered during iteration.
func (it *Iterator) Error() error {
	return it.err
}

// Close releases the iterator.
func (it *Iterator) Close() error {
	it.leaf = nil
	return nil
}
