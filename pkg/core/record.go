package core

import "fmt"

// Attribute names understood by Service.Save.
const (
	AttrOwnerID      = "ownerId"
	AttrCollectionID = "collectionId"
	AttrName         = "name"
	AttrData         = "data"
	AttrPath         = "path"
	AttrRevision     = "revision"
)

// Attributes is a generic key-value bag.
type Attributes map[string]any

// Record is a thin model over an attribute bag. It carries no persistence
// behavior of its own; Service.Save turns it into a Document.
type Record struct {
	attrs Attributes
}

// NewRecord creates a record holding a copy of attrs.
func NewRecord(attrs Attributes) *Record {
	r := &Record{attrs: make(Attributes, len(attrs))}
	r.Merge(attrs)
	return r
}

// Get returns the raw attribute value, or nil.
func (r *Record) Get(name string) any {
	if r.attrs == nil {
		return nil
	}
	return r.attrs[name]
}

// Set stores an attribute value.
func (r *Record) Set(name string, value any) {
	if r.attrs == nil {
		r.attrs = make(Attributes)
	}
	r.attrs[name] = value
}

// Merge overwrites the record's attributes with the given ones.
func (r *Record) Merge(attrs Attributes) {
	for k, v := range attrs {
		r.Set(k, v)
	}
}

// String returns the attribute formatted as a string, or "" when unset.
// Numeric ids are accepted since owners and collections are often numbers.
func (r *Record) String(name string) string {
	switch v := r.Get(name).(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Attributes returns a copy of the attribute bag.
func (r *Record) Attributes() Attributes {
	out := make(Attributes, len(r.attrs))
	for k, v := range r.attrs {
		out[k] = v
	}
	return out
}

// Key builds the document key from the identity attributes.
func (r *Record) Key() Key {
	return Key{
		OwnerID:      r.String(AttrOwnerID),
		CollectionID: r.String(AttrCollectionID),
		Name:         r.String(AttrName),
	}
}
