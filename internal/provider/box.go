// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package provider

import "fmt"

// Box is the simplest Provider: a fixed, possibly-absent value. A Box
// holding a nil interface value is considered absent, mirroring the
// Python original's use of None as the absence sentinel.
type Box struct {
	value any
}

// NewBox wraps value in a Provider. Passing nil produces an absent provider.
func NewBox(value any) Provider {
	return &Box{value: value}
}

func (b *Box) Present() bool {
	return b.value != nil
}

func (b *Box) Get() (any, error) {
	if b.value == nil {
		return nil, &ErrNoValuePresent{Provider: b}
	}
	return b.value, nil
}

func (b *Box) Visit(fn func(Provider) bool) {
	if !fn(b) {
		return
	}
	// Support providers nested inside a boxed slice, e.g. a ListProperty
	// backed by a Box([]any) whose elements are themselves providers.
	if items, ok := b.value.([]any); ok {
		for _, item := range items {
			if p, ok := item.(Provider); ok {
				p.Visit(fn)
			}
		}
	}
}

func (b *Box) String() string {
	return fmt.Sprintf("Box(%v)", b.value)
}
