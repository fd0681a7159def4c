package core

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

const docCacheSize = 5000

// docCache holds validated query documents keyed by query text. Variables
// are applied after lookup so one entry serves every set of variables.
type docCache struct {
	cache *lru.TwoQueueCache[string, *ast.QueryDocument]
}

// initCache initializes the document cache
func (e *Engine) initCache() (err error) {
	e.docs.cache, err = lru.New2Q[string, *ast.QueryDocument](docCacheSize)
	return
}

// Get returns the document for query from the cache
func (c docCache) Get(query string) (doc *ast.QueryDocument, fromCache bool) {
	if c.cache == nil {
		return nil, false
	}
	doc, fromCache = c.cache.Get(query)
	return
}

// Set adds the document for query to the cache
func (c docCache) Set(query string, doc *ast.QueryDocument) {
	if c.cache != nil {
		c.cache.Add(query, doc)
	}
}
