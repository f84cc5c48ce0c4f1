// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

// Package provider implements the lazily-evaluated value algebra that
// underlies Kahmi properties: boxed values, mapped and flat-mapped
// transforms, and left-biased coalescing of two providers.
//
// Provider is intentionally not generic. Kahmi needs to hold
// heterogeneously-typed providers in the same slice or map (a task's
// declared properties, the operands of a Coalescing provider, the
// captured closures of a Mapped provider), and Go generics erase at
// the collection boundary anyway. Type safety at the call site comes
// from the Get[T]/GetOrElse[T]/GetOrNone[T] helpers in typed.go, which do a
// single type assertion against the any returned by Provider.Get.
package provider

import "fmt"

// ErrNoValuePresent is returned by Get when a provider has no value to
// offer: an empty Box, a Property with neither an explicit value nor a
// default, or a Coalescing provider whose operands are both absent.
type ErrNoValuePresent struct {
	Provider Provider
}

func (e *ErrNoValuePresent) Error() string {
	return fmt.Sprintf("no value present: %v", e.Provider)
}

// Provider is one node in a lazily-evaluated expression tree. Every
// operation re-evaluates the tree from scratch; nothing is cached
// unless the node is a Property that has been finalized.
type Provider interface {
	// Present reports whether Get would currently succeed.
	Present() bool

	// Get evaluates the provider eagerly. It returns ErrNoValuePresent
	// when the provider has no value.
	Get() (any, error)

	// Visit performs a depth-first traversal of the expression tree,
	// including properties captured by Mapped/FlatMapped closures. If
	// fn returns false for a node, Visit does not descend into that
	// node's children.
	Visit(fn func(Provider) bool)
}

// OrElse returns the provider's value, or def if absent.
func OrElse(p Provider, def any) any {
	v, err := p.Get()
	if err != nil {
		return def
	}
	return v
}

// OrNone returns the provider's value and true, or nil and false if absent.
func OrNone(p Provider) (any, bool) {
	v, err := p.Get()
	if err != nil {
		return nil, false
	}
	return v, true
}

// Map returns a Provider that applies fn to upstream's value once
// evaluated. captured lists any Property nodes that fn closes over but
// does not reach through upstream itself; Visit descends into them so
// that dependency collection (see property.Dependencies) sees them.
func Map(upstream Provider, fn func(any) any, captured ...Provider) Provider {
	return &mapped{upstream: upstream, fn: fn, captured: captured}
}

// FlatMap is like Map, but fn itself returns a Provider which is then
// evaluated for the final value.
func FlatMap(upstream Provider, fn func(any) (Provider, error), captured ...Provider) Provider {
	return &flatMapped{upstream: upstream, fn: fn, captured: captured}
}

// Coalesce returns a Provider that yields primary's value if present,
// otherwise falls back to fallback. primary is consulted first and
// exclusively; fallback is evaluated only when primary is absent.
func Coalesce(primary, fallback Provider) Provider {
	return &coalescing{primary: primary, fallback: fallback}
}

func visitCaptured(captured []Provider, fn func(Provider) bool) {
	for _, c := range captured {
		c.Visit(fn)
	}
}
