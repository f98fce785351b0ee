package correspond

import (
	"github.com/dshills/marksync/internal/markup"
	"github.com/dshills/marksync/internal/vtree"
)

// Cache builds correspondence tables lazily, one per inline run per render
// pass. A cache belongs to a single tree generation and is replaced, never
// merged, when the tree is regenerated.
type Cache struct {
	tokens *markup.TokenSet
	tables map[*vtree.Node]*Table
}

// NewCache creates an empty cache using the given token table.
func NewCache(ts *markup.TokenSet) *Cache {
	return &Cache{
		tokens: ts,
		tables: make(map[*vtree.Node]*Table),
	}
}

// For returns the table for the given annotated text run, building it on
// first use. Returns nil for nodes that are not annotated text runs.
func (c *Cache) For(run *vtree.Node) *Table {
	if run == nil || run.Kind != vtree.KindText || !run.Annotated() {
		return nil
	}
	if t, ok := c.tables[run]; ok {
		return t
	}
	t := Build(run.Raw, run.TextContent(), c.tokens)
	c.tables[run] = t
	return t
}

// Size returns the number of tables built so far.
func (c *Cache) Size() int {
	return len(c.tables)
}
