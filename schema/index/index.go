// Package index provides builders for declaring index key tuples and
// unique-together constraints on entity types.
//
//	index.Fields("species", "strain")           // lookup key tuple
//	index.Fields("name", "version").Unique()    // unique_together
package index

import "fmt"

// Descriptor holds the configuration of one index key tuple.
type Descriptor struct {
	Fields []string // Attribute names, in declaration order.
	Unique bool     // The tuple is a unique_together constraint.
	Err    error
}

// Builder constructs index descriptors.
type Builder struct {
	desc *Descriptor
}

// Fields declares an index key tuple over the named attributes.
func Fields(names ...string) *Builder {
	return &Builder{desc: &Descriptor{Fields: names}}
}

// Unique marks the tuple as a unique_together constraint.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// Descriptor returns the built descriptor.
func (b *Builder) Descriptor() *Descriptor {
	d := b.desc
	if d.Err == nil && len(d.Fields) == 0 {
		d.Err = fmt.Errorf("index: key tuple cannot be empty")
	}
	if d.Err == nil {
		seen := make(map[string]bool, len(d.Fields))
		for _, f := range d.Fields {
			if f == "" {
				d.Err = fmt.Errorf("index: key tuple contains an empty attribute name")
				break
			}
			if seen[f] {
				d.Err = fmt.Errorf("index: key tuple repeats attribute %q", f)
				break
			}
			seen[f] = true
		}
	}
	return d
}
