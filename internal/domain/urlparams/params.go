// Package urlparams holds the ordered URL parameter set exchanged between
// link extraction, mutation and route generation.
package urlparams

import (
	"slices"
	"strconv"
	"strings"
)

// Kind tells which shape a Value has.
type Kind int

// Value kinds.
const (
	KindScalar Kind = iota + 1
	KindList
	KindPair
)

// Value is a scalar, an ordered list of strings, or a single key/value pair.
type Value struct {
	kind   Kind
	scalar string
	list   []string
	key    string
}

// Scalar creates a single-string value.
func Scalar(s string) Value { return Value{kind: KindScalar, scalar: s} }

// List creates an ordered list value. An empty list is valid and renders nothing.
func List(vs ...string) Value {
	l := make([]string, len(vs))
	copy(l, vs)
	return Value{kind: KindList, list: l}
}

// Pair creates a key/value value, rendered as name[key]=value.
func Pair(key, value string) Value { return Value{kind: KindPair, key: key, scalar: value} }

// Kind returns the value shape.
func (v Value) Kind() Kind { return v.kind }

// String returns the scalar, or the pair value.
func (v Value) String() string { return v.scalar }

// Strings returns a copy of the list items. A scalar yields a one-item list.
func (v Value) Strings() []string {
	switch v.kind {
	case KindList:
		l := make([]string, len(v.list))
		copy(l, v.list)
		return l
	case KindScalar:
		return []string{v.scalar}
	}
	return nil
}

// Pair returns the key and value of a pair.
func (v Value) Pair() (key, value string) { return v.key, v.scalar }

// Single returns the only string carried by a scalar or a one-item list.
func (v Value) Single() (string, bool) {
	switch v.kind {
	case KindScalar:
		return v.scalar, true
	case KindList:
		if len(v.list) == 1 {
			return v.list[0], true
		}
	}
	return "", false
}

// Index returns the position of s in a list, or -1.
func (v Value) Index(s string) int {
	if v.kind != KindList {
		return -1
	}
	return slices.Index(v.list, s)
}

// Params is an insertion-ordered set of named values.
type Params struct {
	keys   []string
	values map[string]Value
}

// New creates an empty parameter set.
func New() *Params {
	return &Params{values: make(map[string]Value)}
}

// Len returns the number of parameters.
func (p *Params) Len() int { return len(p.keys) }

// Keys returns the parameter names in insertion order.
func (p *Params) Keys() []string {
	ks := make([]string, len(p.keys))
	copy(ks, p.keys)
	return ks
}

// Get returns a parameter value.
func (p *Params) Get(name string) (Value, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Has reports whether a parameter is set.
func (p *Params) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Set stores a value. An existing parameter keeps its position.
func (p *Params) Set(name string, v Value) {
	if _, ok := p.values[name]; !ok {
		p.keys = append(p.keys, name)
	}
	p.values[name] = v
}

// Delete removes a parameter.
func (p *Params) Delete(name string) {
	if _, ok := p.values[name]; !ok {
		return
	}
	delete(p.values, name)
	p.keys = slices.DeleteFunc(p.keys, func(k string) bool { return k == name })
}

// Append adds s to the list parameter name unless it is already there.
// A missing parameter becomes a one-item list; a scalar is promoted to a list.
func (p *Params) Append(name, s string) {
	v, ok := p.values[name]
	if !ok {
		p.Set(name, List(s))
		return
	}
	items := v.Strings()
	if slices.Contains(items, s) {
		return
	}
	p.Set(name, List(append(items, s)...))
}

// Remove drops s from the list parameter name. Remaining items are re-indexed.
// A scalar equal to s removes the parameter.
func (p *Params) Remove(name, s string) {
	v, ok := p.values[name]
	if !ok {
		return
	}
	switch v.kind {
	case KindScalar:
		if v.scalar == s {
			p.Delete(name)
		}
	case KindList:
		if i := v.Index(s); i >= 0 {
			p.Set(name, List(slices.Delete(v.Strings(), i, i+1)...))
		}
	}
}

// Merge overlays other onto p, in other's order.
func (p *Params) Merge(other *Params) {
	for _, k := range other.keys {
		p.Set(k, other.values[k])
	}
}

// Clone returns an independent copy.
func (p *Params) Clone() *Params {
	c := &Params{keys: make([]string, len(p.keys)), values: make(map[string]Value, len(p.values))}
	copy(c.keys, p.keys)
	for k, v := range p.values {
		if v.kind == KindList {
			v = List(v.list...)
		}
		c.values[k] = v
	}
	return c
}

// QueryString renders the set in bracket notation, unescaped:
// a=1&color[0]=red&color[1]=blue&sort_by[price]=asc. Empty lists render nothing.
func (p *Params) QueryString() string {
	var b strings.Builder
	write := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(value)
	}
	for _, k := range p.keys {
		v := p.values[k]
		switch v.kind {
		case KindScalar:
			write(k, v.scalar)
		case KindList:
			for i, item := range v.list {
				write(ListKey(k, i), item)
			}
		case KindPair:
			write(k+"["+v.key+"]", v.scalar)
		}
	}
	return b.String()
}

// ListKey returns the bracketed query key of the i-th item of list name.
func ListKey(name string, i int) string {
	return name + "[" + strconv.Itoa(i) + "]"
}
