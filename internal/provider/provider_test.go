// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package provider_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kahmi-build/kahmi/internal/provider"
)

func TestBoxPresentAndAbsent(t *testing.T) {
	present := provider.NewBox("hello")
	absent := provider.NewBox(nil)

	assert.True(t, present.Present())
	assert.False(t, absent.Present())

	v, err := present.Get()
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	_, err = absent.Get()
	require.Error(t, err)
	assert.IsType(t, &provider.ErrNoValuePresent{}, err)
}

// P1: p.OrElse(v) == (p.Get() if present else v).
func TestOrElseMatchesGetWhenPresent(t *testing.T) {
	p := provider.NewBox(42)
	assert.Equal(t, 42, provider.OrElse(p, 0))

	absent := provider.NewBox(nil)
	assert.Equal(t, 7, provider.OrElse(absent, 7))
}

func TestMap(t *testing.T) {
	base := provider.NewBox(2)
	doubled := provider.Map(base, func(v any) any { return v.(int) * 2 })

	v, err := provider.Get[int](doubled)
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

func TestFlatMap(t *testing.T) {
	base := provider.NewBox(5)
	flat := provider.FlatMap(base, func(v any) (provider.Provider, error) {
		return provider.NewBox(v.(int) + 1), nil
	})

	v, err := provider.Get[int](flat)
	require.NoError(t, err)
	assert.Equal(t, 6, v)
}

// Coalescing precedence: left wins when present; fallback consulted
// only when primary reports absent.
func TestCoalescePrecedence(t *testing.T) {
	primary := provider.NewBox("primary")
	fallback := provider.NewBox("fallback")
	c := provider.Coalesce(primary, fallback)
	v, err := provider.Get[string](c)
	require.NoError(t, err)
	assert.Equal(t, "primary", v)

	c2 := provider.Coalesce(provider.NewBox(nil), fallback)
	v2, err := provider.Get[string](c2)
	require.NoError(t, err)
	assert.Equal(t, "fallback", v2)
}

// Visit must walk into providers captured by a Map closure, not just
// the upstream chain, so dependency collection sees them (P5).
func TestVisitDescendsIntoCapturedProviders(t *testing.T) {
	captured := provider.NewBox("captured-value")
	upstream := provider.NewBox(1)
	mapped := provider.Map(upstream, func(v any) any { return v }, captured)

	var seen []provider.Provider
	mapped.Visit(func(p provider.Provider) bool {
		seen = append(seen, p)
		return true
	})

	assert.Contains(t, seen, captured)
	assert.Contains(t, seen, upstream)
	assert.Contains(t, seen, mapped)
}

func TestVisitStopsDescendingWhenFnReturnsFalse(t *testing.T) {
	inner := provider.NewBox("inner")
	outer := provider.Map(inner, func(v any) any { return v })

	visited := 0
	outer.Visit(func(p provider.Provider) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}
