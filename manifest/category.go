package manifest

import "bytes"

// Category maps entity names to their placements, remembering the order in
// which they were added.
type Category struct {
	names   []string
	entries map[string]Entry
}

func newCategory() *Category {
	return &Category{
		entries: make(map[string]Entry),
	}
}

// Len returns the number of entities in the category
func (c *Category) Len() int {
	return len(c.entries)
}

// Set stores the entry for the named entity. It reports whether an existing
// entry was replaced, in which case the entity keeps its original position.
func (c *Category) Set(name string, e Entry) bool {
	_, ok := c.entries[name]
	if !ok {
		c.names = append(c.names, name)
	}
	c.entries[name] = e
	return ok
}

// Get returns the entry for the named entity
func (c *Category) Get(name string) (Entry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// Delete removes the named entity
func (c *Category) Delete(name string) {
	if _, ok := c.entries[name]; !ok {
		return
	}
	delete(c.entries, name)
	for i, n := range c.names {
		if n == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}
}

// Names returns the entity names in the order they were added
func (c *Category) Names() []string {
	return c.names
}

func (c *Category) marshal(b *bytes.Buffer) error {
	b.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := writeKey(b, name); err != nil {
			return err
		}
		if err := writeValue(b, c.entries[name]); err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}
