// Package patch models partial-update request bodies where "key absent" and
// "key present with null" mean different things.
package patch

import (
	"bytes"
	"encoding/json"
)

// Field records whether a JSON key was present and whether it carried null.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		var zero T
		f.Null = true
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(b, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Ptr returns nil for an explicit null, otherwise a pointer to the value.
func (f Field[T]) Ptr() *T {
	if f.Null {
		return nil
	}
	v := f.Value
	return &v
}

// Of builds a present, non-null field.
func Of[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null builds a present field that clears the column.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// Updates collects column assignments for a partial UPDATE.
type Updates map[string]interface{}

// Put records column=value when f was present in the request.
func Put[T any](u Updates, column string, f Field[T]) {
	if !f.Set {
		return
	}
	if f.Null {
		u[column] = nil
		return
	}
	u[column] = f.Value
}

// PutWith is Put with a conversion, used for columns whose storage type differs
// from the wire type.
func PutWith[T any](u Updates, column string, f Field[T], conv func(T) interface{}) {
	if !f.Set {
		return
	}
	if f.Null {
		u[column] = nil
		return
	}
	u[column] = conv(f.Value)
}
