// Package tokens provides the immutable token store used to render notification templates.
//
// A store maps flat string keys to values. Values are either a single string or a list of
// strings for multi-value fields (selected newsletter channels, checkbox groups). Stores are
// built once per notification event with a Builder and are read-only afterwards, so the same
// store can be shared by every field rendered during a dispatch.
//
//	toks := tokens.NewBuilder().
//	    Set("admin_email", "admin@example.com").
//	    WithPrefix("member_").
//	    Set("firstname", "Jane").
//	    SetList("newsletter", "Weekly", "Product news").
//	    Build()
//
//	toks.Get("member_firstname").String() // "Jane"
package tokens

import (
	"maps"
	"slices"
	"strings"
)

// ListSeparator joins list values when they are rendered as a single string.
const ListSeparator = "\n"

// Value is a single token value.
type Value struct {
	single string
	list   []string
	isList bool
}

// String returns a single value unchanged and list values joined by ListSeparator.
func (v Value) String() string {
	if v.isList {
		return strings.Join(v.list, ListSeparator)
	}
	return v.single
}

// List returns the value as a list. A single value becomes a one-element list,
// an empty single value an empty list.
func (v Value) List() []string {
	if v.isList {
		return slices.Clone(v.list)
	}
	if v.single == "" {
		return []string{}
	}
	return []string{v.single}
}

// IsList reports whether the value was set as a list.
func (v Value) IsList() bool {
	return v.isList
}

// IsEmpty reports whether the value renders to an empty string.
func (v Value) IsEmpty() bool {
	return v.String() == ""
}

// String creates a single-string value.
func String(s string) Value {
	return Value{single: s}
}

// List creates a multi-value token value.
func List(items ...string) Value {
	return Value{list: slices.Clone(items), isList: true}
}

// Tokens is an immutable token store. The zero value is an empty store.
type Tokens struct {
	values map[string]Value
}

// Empty returns a store without tokens.
func Empty() Tokens {
	return Tokens{}
}

// FromMap builds a store from plain string values.
func FromMap(m map[string]string) Tokens {
	b := NewBuilder()
	for k, v := range m {
		b.Set(k, v)
	}
	return b.Build()
}

// Get returns the value stored under name and whether it exists.
func (t Tokens) Get(name string) (Value, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Lookup returns the rendered value of name, or an empty string when it is missing.
func (t Tokens) Lookup(name string) string {
	return t.values[name].String()
}

// Has reports whether name exists in the store.
func (t Tokens) Has(name string) bool {
	_, ok := t.values[name]
	return ok
}

// Len returns the number of tokens.
func (t Tokens) Len() int {
	return len(t.values)
}

// Names returns all token names in sorted order.
func (t Tokens) Names() []string {
	return slices.Sorted(maps.Keys(t.values))
}

// Map returns a copy of the store rendered to plain strings.
func (t Tokens) Map() map[string]string {
	out := make(map[string]string, len(t.values))
	for k, v := range t.values {
		out[k] = v.String()
	}
	return out
}

// Builder accumulates tokens before freezing them into a Tokens store.
// A Builder is not safe for concurrent use.
type Builder struct {
	prefix string
	values map[string]Value
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{values: make(map[string]Value)}
}

// WithPrefix sets a namespace prefix applied to keys set afterwards.
// Passing an empty prefix removes it.
func (b *Builder) WithPrefix(prefix string) *Builder {
	b.prefix = prefix
	return b
}

// Set stores a single string value. Empty names are ignored.
func (b *Builder) Set(name, value string) *Builder {
	return b.SetValue(name, String(value))
}

// SetList stores a multi-value token.
func (b *Builder) SetList(name string, items ...string) *Builder {
	return b.SetValue(name, List(items...))
}

// SetValue stores an already constructed value.
func (b *Builder) SetValue(name string, v Value) *Builder {
	if name == "" {
		return b
	}
	b.values[b.prefix+name] = v
	return b
}

// Merge copies every token of t into the builder, applying the current prefix.
func (b *Builder) Merge(t Tokens) *Builder {
	for k, v := range t.values {
		b.SetValue(k, v)
	}
	return b
}

// Build freezes the builder content. The builder can keep being used; later
// changes do not affect stores that were already built.
func (b *Builder) Build() Tokens {
	return Tokens{values: maps.Clone(b.values)}
}
