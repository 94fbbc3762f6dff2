package bptree

import (
	mrand "math/rand"
	"testing"
)

func TestScanEmptyTree(t *testing.T) {
	tree := openTestTree(t, 4<<20)

	iter, err := tree.Scan()
	if err != nil {
		t.Fatal(err)
	}
	defer iter.Close()

	if iter.Next() {
		t.Fatal("Next on empty tree returned true")
	}
	if iter.Error() != nil {
		t.Fatalf("iterator error: %v", iter.Error())
	}
}

func TestScanSingleLeaf(t *testing.T) {
	tree := openTestTree(t, 4<<20)

	for k := int64(1); k <= 5; k++ {
		if err := tree.Insert(k, k*2); err != nil {
			t.Fatal(err)
		}
	}

	iter, err := tree.Scan()
	if err != nil {
		t.Fatal(err)
	}
	defer iter.Close()

	want := int64(1)
	for iter.Next() {
		if iter.Key() != want || iter.Value() != want*2 {
			t.Fatalf("got (%d, %d), want (%d, %d)", iter.Key(), iter.Value(), want, want*2)
		}
		want++
	}
	if want != 6 {
		t.Fatalf("scan stopped after %d keys, want 5", want-1)
	}
}

func TestScanAcrossLeaves(t *testing.T) {
	tree := openTestTree(t, 512)

	const numKeys = 2000
	rng := mrand.New(mrand.NewSource(7))
	for _, k := range rng.Perm(numKeys) {
		if err := tree.Insert(int64(k), int64(k)); err != nil {
			t.Fatalf("insert %d: %v", k, err)
		}
	}

	iter, err := tree.Scan()
	if err != nil {
		t.Fatal(err)
	}
	defer iter.Close()

	count := 0
	prev := int64(-1)
	for iter.Next() {
		if iter.Key() <= prev {
			t.Fatalf("scan out of order: %d after %d", iter.Key(), prev)
		}
		prev = iter.Key()
		count++
	}
	if iter.Error() != nil {
		t.Fatalf("iterator error: %v", iter.Error())
	}
	if count != numKeys {
		t.Fatalf("scan visited %d keys, want %d", count, numKeys)
	}
}

func TestScanAfterCloseIsRejected(t *testing.T) {
	tree := openTestTree(t, 4<<20)
	tree.Close()

	if _, err := tree.Scan(); err == nil {
		t.Fatal("Scan after Close succeeded")
	}
}
