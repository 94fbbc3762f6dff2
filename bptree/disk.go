package bptree

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

const (
	// PageSize is the fixed page size (matches the typical OS page size).
	PageSize = 4096

	// Node wire format within one page, big-endian:
	//   [isLeaf(1)][next(8)][keyCount(4)][keys 8*k][values 8*k | children 8*(k+1)]
	// Trailing bytes are zero-padded to PageSize.
	nodeHeaderSize = 13

	headerOffsetIsLeaf   = 0
	headerOffsetNext     = 1
	headerOffsetKeyCount = 9
)

var ErrPageOverflow = errors.New("bptree: serialized node exceeds page size")

// DiskManager owns the backing file. Page 0 is reserved for metadata
// and stores only the current root page id; node pages begin at id 1.
type DiskManager struct {
	file     *os.File
	pageSize int64
	buf      []byte // scratch page for serialization
}

// OpenDiskManager opens or creates the page file at path. A missing or
// empty file is extended to exactly one page, reserving page 0.
func OpenDiskManager(path string, pageSize int) (*DiskManager, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}

	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	if fi.Size() == 0 {
		if err := file.Truncate(int64(pageSize)); err != nil {
			file.Close()
			return nil, fmt.Errorf("bptree: reserve metadata page: %w", err)
		}
	}

	return &DiskManager{
		file:     file,
		pageSize: int64(pageSize),
		buf:      make([]byte, pageSize),
	}, nil
}

// IsFresh reports whether only the metadata page exists.
func (d *DiskManager) IsFresh() (bool, error) {
	fi, err := d.file.Stat()
	if err != nil {
		return false, err
	}
	return fi.Size() == d.pageSize, nil
}

// NumPages returns the total number of pages in the file, metadata
// page included.
func (d *DiskManager) NumPages() (int64, error) {
	fi, err := d.file.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size() / d.pageSize, nil
}

// AllocatePage extends the file by one page and returns the new page
// id. The page's contents are unspecified until the first WriteNode.
func (d *DiskManager) AllocatePage() (int64, error) {
	fi, err := d.file.Stat()
	if err != nil {
		return 0, err
	}

	pageID := fi.Size() / d.pageSize
	if err := d.file.Truncate(fi.Size() + d.pageSize); err != nil {
		return 0, fmt.Errorf("bptree: allocate page %d: %w", pageID, err)
	}
	return pageID, nil
}

// WriteRootPage records the root page id in the metadata page.
func (d *DiskManager) WriteRootPage(rootPageID int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(rootPageID))
	if _, err := d.file.WriteAt(buf[:], 0); err != nil {
		return fmt.Errorf("bptree: write root page id: %w", err)
	}
	return nil
}

// ReadRootPage reads the root page id from the metadata page.
func (d *DiskManager) ReadRootPage() (int64, error) {
	var buf [8]byte
	if _, err := d.file.ReadAt(buf[:], 0); err != nil {
		return 0, fmt.Errorf("bptree: read root page id: %w", err)
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

func serializedSize(n *Node) int {
	if n.IsLeaf {
		return nodeHeaderSize + 16*n.KeyCount
	}
	return nodeHeaderSize + 8*n.KeyCount + 8*(n.KeyCount+1)
}

// WriteNode serializes the node into the scratch page and writes it at
// PageID*pageSize. Clears the node's dirty flag on success.
func (d *DiskManager) WriteNode(n *Node) error {
	if int64(serializedSize(n)) > d.pageSize {
		return ErrPageOverflow
	}

	for i := range d.buf {
		d.buf[i] = 0
	}

	if n.IsLeaf {
		d.buf[headerOffsetIsLeaf] = 1
	}
	binary.BigEndian.PutUint64(d.buf[headerOffsetNext:], uint64(n.Next))
	binary.BigEndian.PutUint32(d.buf[headerOffsetKeyCount:], uint32(n.KeyCount))

	off := nodeHeaderSize
	for i := 0; i < n.KeyCount; i++ {
		binary.BigEndian.PutUint64(d.buf[off:], uint64(n.Keys[i]))
		off += 8
	}
	if n.IsLeaf {
		for i := 0; i < n.KeyCount; i++ {
			binary.BigEndian.PutUint64(d.buf[off:], uint64(n.Values[i]))
			off += 8
		}
	} else {
		for i := 0; i <= n.KeyCount; i++ {
			binary.BigEndian.PutUint64(d.buf[off:], uint64(n.Children[i]))
			off += 8
		}
	}

	if _, err := d.file.WriteAt(d.buf, n.PageID*d.pageSize); err != nil {
		return fmt.Errorf("bptree: write page %d: %w", n.PageID, err)
	}

	n.dirty = false
	return nil
}

// ReadNode reads one page and deserializes it into a clean node whose
// arrays are sized to the given order.
func (d *DiskManager) ReadNode(pageID int64, order int) (*Node, error) {
	buf := make([]byte, d.pageSize)
	if _, err := d.file.ReadAt(buf, pageID*d.pageSize); err != nil {
		return nil, fmt.Errorf("bptree: read page %d: %w", pageID, err)
	}

	var n *Node
	if buf[headerOffsetIsLeaf] == 1 {
		n = newLeaf(pageID, order)
	} else {
		n = newInternal(pageID, order)
	}
	n.Next = int64(binary.BigEndian.Uint64(buf[headerOffsetNext:]))
	n.KeyCount = int(int32(binary.BigEndian.Uint32(buf[headerOffsetKeyCount:])))

	off := nodeHeaderSize
	for i := 0; i < n.KeyCount; i++ {
		n.Keys[i] = int64(binary.BigEndian.Uint64(buf[off:]))
		off += 8
	}
	if n.IsLeaf {
		for i := 0; i < n.KeyCount; i++ {
			n.Values[i] = int64(binary.BigEndian.Uint64(buf[off:]))
			off += 8
		}
	} else {
		for i := 0; i <= n.KeyCount; i++ {
			n.Children[i] = int64(binary.BigEndian.Uint64(buf[off:]))
			off += 8
		}
	}

	return n, nil
}

// Close closes the backing file.
func (d *DiskManager) Close() error {
	return d.file.Close()
}
