package bptree

import (
	"fmt"
	"io"
	"strings"

	"github.com/evangelisilva/BPlusTree/common"
)

// DumpTree writes a depth-first rendering of the tree to w, one node
// per line, children indented under their parent.
func (t *BTree) DumpTree(w io.Writer) error {
	if t.closed.Load() {
		return common.ErrClosed
	}
	return t.dumpNode(w, t.rootPageID, 0)
}

func (t *BTree) dumpNode(w io.Writer, pageID int64, depth int) error {
	n, err := t.load(pageID)
	if err != nil {
		return err
	}

	indent := strings.Repeat("  ", depth)
	if n.IsLeaf {
		_, err := fmt.Fprintf(w, "%sLeaf(%d) keys=%v next=%d\n",
			indent, n.PageID, n.Keys[:n.KeyCount], n.Next)
		return err
	}

	if _, err := fmt.Fprintf(w, "%sInternal(%d) keys=%v\n",
		indent, n.PageID, n.Keys[:n.KeyCount]); err != nil {
		return err
	}
	for i := 0; i <= n.KeyCount; i++ {
		if err := t.dumpNode(w, n.Children[i], depth+1); err != nil {
			return err
		}
	}
	return nil
}

// DumpLeaves writes the leaf chain to w in chain order, starting from
// the leftmost leaf.
func (t *BTree) DumpLeaves(w io.Writer) error {
	if t.closed.Load() {
		return common.ErrClosed
	}

	n, err := t.load(t.rootPageID)
	if err != nil {
		return err
	}
	for !n.IsLeaf {
		n, err = t.load(n.Children[0])
		if err != nil {
			return err
		}
	}

	for {
		if _, err := fmt.Fprintf(w, "Leaf(%d) keys=%v\n", n.PageID, n.Keys[:n.KeyCount]); err != nil {
			return err
		}
		if n.Next == nilPage {
			return nil
		}
		n, err = t.load(n.Next)
		if err != nil {
			return err
		}
	}
}
