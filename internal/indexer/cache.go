package indexer

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mvp-joe/semantic/internal/symtab"
)

// cacheKey identifies a file version without reading it.
type cacheKey struct {
	path    string
	modTime int64
	size    int64
}

type cacheEntry struct {
	table *symtab.Table
	hash  string
}

// TableCache keeps recently extracted tables keyed by path, mtime and size. A nil
// or zero-sized cache never hits. Tables are immutable so entries are shared.
type TableCache struct {
	lru *lru.Cache[cacheKey, cacheEntry]
}

// NewTableCache creates a cache of up to size tables; size <= 0 disables caching.
func NewTableCache(size int) (*TableCache, error) {
	if size <= 0 {
		return &TableCache{}, nil
	}
	c, err := lru.New[cacheKey, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &TableCache{lru: c}, nil
}

func keyFor(path string, modTime time.Time, size int64) cacheKey {
	return cacheKey{path: path, modTime: modTime.UnixNano(), size: size}
}

// Get returns the cached table and content hash for this file version.
func (c *TableCache) Get(path string, modTime time.Time, size int64) (*symtab.Table, string, bool) {
	if c == nil || c.lru == nil {
		return nil, "", false
	}
	e, ok := c.lru.Get(keyFor(path, modTime, size))
	return e.table, e.hash, ok
}

// Add stores table for this file version.
func (c *TableCache) Add(path string, modTime time.Time, size int64, table *symtab.Table, hash string) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Add(keyFor(path, modTime, size), cacheEntry{table: table, hash: hash})
}

// Len returns the number of cached tables.
func (c *TableCache) Len() int {
	if c == nil || c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
