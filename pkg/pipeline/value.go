package pipeline

import (
	"sort"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind int

// Value kinds.
const (
	KindNone Kind = iota
	KindString
	KindBool
	KindMap
)

// Value is the result of a function call: nothing, a string, a boolean or a
// set of named values written to several properties at once.
type Value struct {
	kind Kind
	str  string
	b    bool
	m    map[string]string
}

// None is the empty result; nothing is written.
var None = Value{}

// String wraps s.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool wraps b.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Map wraps a multi-output result. A nil map is None.
func Map(m map[string]string) Value {
	if m == nil {
		return None
	}
	return Value{kind: KindMap, m: m}
}

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// Text renders string and bool values the way they are stored in a property
// dictionary. Booleans are lowercase. Other kinds report false.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case KindString:
		return v.str, true
	case KindBool:
		return strconv.FormatBool(v.b), true
	default:
		return "", false
	}
}

// Entries returns the named values of a map result in name order.
func (v Value) Entries() []Entry {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = Entry{Name: k, Value: v.m[k]}
	}
	return out
}

// Entry is one named value of a multi-output result.
type Entry struct {
	Name  string
	Value string
}
