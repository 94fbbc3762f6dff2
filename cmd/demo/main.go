package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/evangelisilva/BPlusTree/bptree"
	"github.com/evangelisilva/BPlusTree/common"
)

func main() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("B+Tree Index Demo")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	path := "./demo-index.db"
	defer os.Remove(path)

	// Small cache budget so evictions actually happen during the demo.
	tree, err := bptree.Open(path, 4*bptree.PageSize)
	if err != nil {
		log.Fatal(err)
	}
	defer tree.Close()

	fmt.Printf("✓ Opened index (order=%d, page size=%d)\n", tree.Order(), bptree.PageSize)

	// Insert some data
	fmt.Println("\n[Writing data]")
	numKeys := int64(1000)
	for i := int64(1); i <= numKeys; i++ {
		if err := tree.Insert(i, i*100); err != nil {
			log.Fatalf("insert %d: %v", i, err)
		}
	}
	fmt.Printf("  PUT %d keys (key i -> i*100)\n", numKeys)

	// Point lookups
	fmt.Println("\n[Reading data]")
	for _, key := range []int64{1, 500, 1000} {
		value, err := tree.Search(key)
		if err != nil {
			log.Fatalf("search %d: %v", key, err)
		}
		fmt.Printf("  GET %d -> %d\n", key, value)
	}

	// Lookup a key that was never inserted
	if _, err := tree.Search(numKeys + 1); err == common.ErrKeyNotFound {
		fmt.Printf("  GET %d -> key not found (as expected)\n", numKeys+1)
	}

	// Overwrite in place
	fmt.Println("\n[Updating data - values overwrite in place]")
	if err := tree.Insert(500, 555); err != nil {
		log.Fatal(err)
	}
	value, _ := tree.Search(500)
	fmt.Printf("  PUT 500 -> 555, GET 500 -> %d\n", value)

	// Ordered traversal over the leaf chain
	fmt.Println("\n[Leaf-chain scan - first 10 keys in order]")
	iter, err := tree.Scan()
	if err != nil {
		log.Fatal(err)
	}
	count := 0
	for iter.Next() && count < 10 {
		fmt.Printf("  %d -> %d\n", iter.Key(), iter.Value())
		count++
	}
	iter.Close()

	// Dump a small tree so the structure is readable
	fmt.Println("\n[Tree structure - small index with 10 keys]")
	smallPath := "./demo-small.db"
	defer os.Remove(smallPath)
	small, err := bptree.Open(smallPath, bptree.PageSize)
	if err != nil {
		log.Fatal(err)
	}
	defer small.Close()
	for i := int64(1); i <= 10; i++ {
		if err := small.Insert(i, i); err != nil {
			log.Fatal(err)
		}
	}
	if err := small.DumpTree(os.Stdout); err != nil {
		log.Fatal(err)
	}
	fmt.Println("\n[Leaf chain]")
	if err := small.DumpLeaves(os.Stdout); err != nil {
		log.Fatal(err)
	}

	// Cache statistics
	fmt.Println("\n[Statistics]")
	stats := tree.Stats()
	fmt.Printf("  Keys:       %d\n", stats.NumKeys)
	fmt.Printf("  Pages:      %d\n", stats.NumPages)
	fmt.Printf("  Cache hits: %d, misses: %d, evictions: %d\n",
		stats.CacheHits, stats.CacheMisses, stats.CacheEvictions)
	fmt.Printf("  Hit rate:   %.2f%%\n", stats.CacheHitRate*100)
}
