package ruleset

import (
	"fmt"
	"iter"
	"slices"
)

// ClassCatalog provides lookup of class definitions by ID.
//
// A ClassCatalog is immutable once built and safe for concurrent reads.
type ClassCatalog struct {
	classes map[string]*Class
	ids     []string
}

// NewClassCatalog builds a catalog from classes.
//
// Precondition: every class must be non-nil with a non-empty ID.
// Postcondition: Returns an error if two classes share an ID.
func NewClassCatalog(classes []*Class) (*ClassCatalog, error) {
	cat := &ClassCatalog{classes: make(map[string]*Class, len(classes))}
	for _, c := range classes {
		if c == nil || c.ID == "" {
			panic("NewClassCatalog: precondition violated: class must be non-nil with a non-empty ID")
		}
		if _, dup := cat.classes[c.ID]; dup {
			return nil, fmt.Errorf("duplicate class id %q", c.ID)
		}
		cat.classes[c.ID] = c
		cat.ids = append(cat.ids, c.ID)
	}
	slices.Sort(cat.ids)
	return cat, nil
}

// Lookup returns the class with the given ID.
//
// Postcondition: Returns the Class, or an error wrapping ErrUnknownClass.
func (c *ClassCatalog) Lookup(id string) (*Class, error) {
	cls, ok := c.classes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, id)
	}
	return cls, nil
}

// IDs yields every class ID in lexical order. The sequence may be ranged
// over any number of times.
func (c *ClassCatalog) IDs() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, id := range c.ids {
			if !yield(id) {
				return
			}
		}
	}
}

// Len returns the number of classes in the catalog.
func (c *ClassCatalog) Len() int {
	return len(c.ids)
}

// IsImmune reports whether classID lists effectID among its immunities.
// Unknown classes are immune to nothing.
func (c *ClassCatalog) IsImmune(classID, effectID string) bool {
	cls, ok := c.classes[classID]
	if !ok {
		return false
	}
	return cls.ImmuneTo(effectID)
}
