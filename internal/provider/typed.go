// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package provider

import "fmt"

// Get evaluates p and asserts the result is of type T. It fails with
// ErrNoValuePresent when p is absent, and with a type error when p's
// value cannot be asserted to T.
func Get[T any](p Provider) (T, error) {
	var zero T
	v, err := p.Get()
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("provider value %v is not of type %T", v, zero)
	}
	return t, nil
}

// GetOrElse returns p's value asserted to T, or def if absent or of
// the wrong type.
func GetOrElse[T any](p Provider, def T) T {
	v, err := Get[T](p)
	if err != nil {
		return def
	}
	return v
}

// GetOrNone returns p's value asserted to T and true, or the zero
// value and false if absent or of the wrong type.
func GetOrNone[T any](p Provider) (T, bool) {
	v, err := Get[T](p)
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}
