package pubcache

import "reflect"

const delimiter = "|"

// Key names a family of cache entries holding values of type T.
//
// The static type of T is part of the encoded name, so NewKey[int]("id") and
// NewKey[string]("id") never share entries. Interface type parameters keep
// their own names too: NewKey[error]("x") and NewKey[fmt.Stringer]("x") differ.
type Key[T any] struct {
	name string
}

// NewKey creates a typed key.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: reflect.TypeFor[T]().String() + ":" + name}
}

// Name returns the encoded key name, including the type prefix.
func (k Key[T]) Name() string { return k.name }

// Lookup addresses a single entry: a Key plus the identifier within it.
type Lookup[T any] struct {
	Key        Key[T]
	Identifier string
}

// L pairs key with identifier.
func L[T any](key Key[T], identifier string) Lookup[T] {
	return Lookup[T]{Key: key, Identifier: identifier}
}

// FullKey is the ExpiringCache key the lookup reads and writes.
func (l Lookup[T]) FullKey() string {
	return l.Key.name + delimiter + l.Identifier
}
