// Package objects implements the polymorphic value objects stored in
// the keyspace: STRING, HASH, LIST, SET and ZSET, each a closed tagged
// union over a compact and (where applicable) a promoted encoding.
// Promotion is one-way and invisible to callers except through the
// Encoding() introspection method: every operation behaves identically
// regardless of which encoding currently backs the object.
//
// Grounded on original_source/RedisObject.{hpp,cpp} (the type tag and
// the WRONGTYPE contract) and on the per-type headers
// {String,Hash,List,Set,ZSet}Object.hpp (the encoding variants and
// their promotion thresholds).
package objects

import (
	"fmt"
	"time"
)

// Rehasher is satisfied by *dict.Dict[V] for any V. It lets Keyspace
// enumerate every internally rehashing Dict across hash-typed value
// objects, plus its own top-level dict, without needing to know each
// Dict's element type.
type Rehasher interface {
	IsRehashing() bool
	Drive(deadline time.Time)
}

// Rehashing is implemented by value objects that may internally own a
// dict.Dict once promoted (Hash, Set, ZSet). It returns that Dict, or
// nil if the object is still in its compact, dict-free encoding.
type Rehashing interface {
	Value
	Rehasher() Rehasher
}

// Type is the logical type tag of a value object, independent of its
// internal encoding.
type Type uint8

const (
	TypeString Type = iota
	TypeList
	TypeHash
	TypeSet
	TypeZSet
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	case TypeHash:
		return "hash"
	case TypeSet:
		return "set"
	case TypeZSet:
		return "zset"
	default:
		return "unknown"
	}
}

// Value is satisfied by every concrete value object (*String, *Hash,
// *List, *Set, *ZSet). The keyspace stores Values directly; commands
// type-assert to the concrete type they need and produce a
// WrongTypeError on mismatch, per spec §4.3's type-mismatch policy.
type Value interface {
	Type() Type
	// Encoding names the object's current internal layout, for
	// introspection only (e.g. an INFO-style command). It must never
	// influence the outward behavior of any operation.
	Encoding() string
}

// WrongTypeError is returned when a command's handler is applied to a
// key whose object has a different type tag. The object is left
// untouched: validation always precedes mutation.
type WrongTypeError struct {
	Have Type
	Want Type
}

func (e *WrongTypeError) Error() string {
	return fmt.Sprintf("WRONGTYPE Operation against a key holding the wrong kind of value")
}

// AsHash type-asserts v to *Hash, returning a *WrongTypeError otherwise.
func AsHash(v Value) (*Hash, error) {
	if h, ok := v.(*Hash); ok {
		return h, nil
	}
	return nil, &WrongTypeError{Have: v.Type(), Want: TypeHash}
}

// AsString type-asserts v to *String, returning a *WrongTypeError otherwise.
func AsString(v Value) (*String, error) {
	if s, ok := v.(*String); ok {
		return s, nil
	}
	return nil, &WrongTypeError{Have: v.Type(), Want: TypeString}
}

// AsList type-asserts v to *List, returning a *WrongTypeError otherwise.
func AsList(v Value) (*List, error) {
	if l, ok := v.(*List); ok {
		return l, nil
	}
	return nil, &WrongTypeError{Have: v.Type(), Want: TypeList}
}

// AsSet type-asserts v to *Set, returning a *WrongTypeError otherwise.
func AsSet(v Value) (*Set, error) {
	if s, ok := v.(*Set); ok {
		return s, nil
	}
	return nil, &WrongTypeError{Have: v.Type(), Want: TypeSet}
}

// AsZSet type-asserts v to *ZSet, returning a *WrongTypeError otherwise.
func AsZSet(v Value) (*ZSet, error) {
	if z, ok := v.(*ZSet); ok {
		return z, nil
	}
	return nil, &WrongTypeError{Have: v.Type(), Want: TypeZSet}
}
