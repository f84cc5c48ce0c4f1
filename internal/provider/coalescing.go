// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package provider

import "fmt"

type coalescing struct {
	primary  Provider
	fallback Provider
}

func (c *coalescing) Present() bool {
	return c.primary.Present() || c.fallback.Present()
}

func (c *coalescing) Get() (any, error) {
	if v, ok := OrNone(c.primary); ok {
		return v, nil
	}
	if v, ok := OrNone(c.fallback); ok {
		return v, nil
	}
	return nil, &ErrNoValuePresent{Provider: c}
}

func (c *coalescing) Visit(fn func(Provider) bool) {
	if !fn(c) {
		return
	}
	c.primary.Visit(fn)
	c.fallback.Visit(fn)
}

func (c *coalescing) String() string {
	return fmt.Sprintf("Coalescing(%v, %v)", c.primary, c.fallback)
}
