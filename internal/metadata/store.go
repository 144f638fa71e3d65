package metadata

import (
	"fmt"
	"strings"

	"example.com/fbprobe/internal/fdb"
)

// Kind tags the shape of a stored value. Heuristics discover facts of mixed
// shape under a free-form key space, so every value carries its kind and can
// be matched exhaustively.
type Kind int

const (
	KindInt Kind = iota
	KindString
	KindStringList
	KindFieldList
)

type Value struct {
	Kind    Kind
	Int     int64
	Str     string
	Strings []string
	Fields  []fdb.Field
}

func IntValue(v int64) Value          { return Value{Kind: KindInt, Int: v} }
func StringValue(s string) Value      { return Value{Kind: KindString, Str: s} }
func StringsValue(s []string) Value   { return Value{Kind: KindStringList, Strings: s} }
func FieldsValue(f []fdb.Field) Value { return Value{Kind: KindFieldList, Fields: f} }

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindString:
		return v.Str
	case KindStringList:
		return strings.Join(v.Strings, ", ")
	case KindFieldList:
		parts := make([]string, 0, len(v.Fields))
		for _, f := range v.Fields {
			parts = append(parts, fmt.Sprintf("@%d %s[%d]", f.Offset, f.Type, f.Size))
		}
		return strings.Join(parts, " | ")
	default:
		return ""
	}
}

// Store accumulates discovered facts. Keys keep insertion order so reports
// render deterministically, and a fact is never overwritten: the first
// discovery wins.
type Store struct {
	keys   []string
	values map[string]Value
}

func NewStore() *Store {
	return &Store{values: make(map[string]Value)}
}

// Put records a fact unless the key already exists.
func (s *Store) Put(key string, v Value) {
	if _, ok := s.values[key]; ok {
		return
	}
	s.keys = append(s.keys, key)
	s.values[key] = v
}

// AddInt increments an integer fact, creating it at delta.
func (s *Store) AddInt(key string, delta int64) {
	if cur, ok := s.values[key]; ok {
		cur.Int += delta
		s.values[key] = cur
		return
	}
	s.Put(key, IntValue(delta))
}

// AppendString grows a string-list fact up to max entries.
func (s *Store) AppendString(key, str string, max int) {
	cur, ok := s.values[key]
	if !ok {
		s.Put(key, StringsValue([]string{str}))
		return
	}
	if max > 0 && len(cur.Strings) >= max {
		return
	}
	cur.Strings = append(cur.Strings, str)
	s.values[key] = cur
}

func (s *Store) Get(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns the key set in insertion order.
func (s *Store) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s *Store) Len() int {
	return len(s.keys)
}
