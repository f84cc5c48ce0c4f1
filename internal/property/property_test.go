// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package property_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kahmi-build/kahmi/internal/property"
	"github.com/kahmi-build/kahmi/internal/provider"
)

type fakeOwner struct{ path string }

func (f *fakeOwner) OwnerPath() string { return f.path }

func TestPropertyGetUsesValueOverDefault(t *testing.T) {
	p := property.New(property.Input).Instantiate(nil, "x")
	p.SetDefault("fallback")
	v, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)

	require.NoError(t, p.Set("explicit"))
	v, err = p.Get()
	require.NoError(t, err)
	assert.Equal(t, "explicit", v)
}

func TestPropertyGetFailsWhenAbsent(t *testing.T) {
	p := property.New().Instantiate(nil, "x")
	_, err := p.Get()
	require.Error(t, err)
}

// P3: finalized properties reject Set and return the snapshot.
func TestPropertyFinalize(t *testing.T) {
	p := property.New().Instantiate(nil, "x")
	require.NoError(t, p.Set("v1"))

	v, err := p.Finalize()
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	err = p.Set("v2")
	require.Error(t, err)
	var finalizedErr *property.ErrFinalized
	assert.ErrorAs(t, err, &finalizedErr)

	v, err = p.Get()
	require.NoError(t, err)
	assert.Equal(t, "v1", v, "reads after finalize return the snapshot, not the rejected write")
}

// P4: finalize_on_read caches on first read; later upstream mutation
// is invisible because the first read cached the derived value.
func TestPropertyFinalizeOnRead(t *testing.T) {
	upstream := property.New().Instantiate(nil, "upstream")
	require.NoError(t, upstream.Set("initial"))

	derived := property.New().Instantiate(nil, "derived")
	require.NoError(t, derived.Set(provider.Map(upstream, func(v any) any {
		return v.(string) + "-mapped"
	})))
	derived.FinalizeOnRead()

	v, err := derived.Get()
	require.NoError(t, err)
	assert.Equal(t, "initial-mapped", v)

	// Mutating upstream after the first read must not change the cached value.
	require.NoError(t, upstream.Set("changed"))
	v, err = derived.Get()
	require.NoError(t, err)
	assert.Equal(t, "initial-mapped", v)
}

// P5: Dependencies/CollectProperties returns every Property reachable
// through the expression, including closure captures.
func TestPropertyDependenciesThroughClosureCapture(t *testing.T) {
	a := property.New().Instantiate(nil, "a")
	require.NoError(t, a.Set("a-value"))
	captured := property.New().Instantiate(nil, "captured")
	require.NoError(t, captured.Set("captured-value"))

	derived := property.New().Instantiate(nil, "derived")
	combined := provider.Map(a, func(v any) any {
		return v
	}, captured)
	require.NoError(t, derived.Set(combined))

	deps := derived.Dependencies()
	names := map[string]bool{}
	for _, d := range deps {
		names[d.Name()] = true
	}
	assert.True(t, names["a"])
	assert.True(t, names["captured"])
}

func TestPropertyWithNoExplicitValueHasNoDependencies(t *testing.T) {
	p := property.New().Instantiate(nil, "x")
	p.SetDefault("default-only")
	assert.Empty(t, p.Dependencies())
}

func TestPropertyMarkersImmutableAfterInstantiate(t *testing.T) {
	tmpl := property.New(property.Output)
	a := tmpl.Instantiate(nil, "a")
	b := tmpl.Instantiate(nil, "b")
	assert.Equal(t, []property.Marker{property.Output}, a.Markers())
	assert.Equal(t, []property.Marker{property.Output}, b.Markers())
}

func TestOwnerResolvesViaFunc(t *testing.T) {
	owner := &fakeOwner{path: ":root:task"}
	p := property.New().Instantiate(func() property.Owner { return owner }, "x")
	assert.Equal(t, owner, p.Owner())
}

func TestListPropertyAddAndExtend(t *testing.T) {
	lp := property.NewListProperty(property.InputFile).Instantiate(nil, "files")
	lp.Add("a.txt")
	lp.Extend([]any{"b.txt", "c.txt"})

	v, err := lp.Get()
	require.NoError(t, err)
	assert.Equal(t, []any{"a.txt", "b.txt", "c.txt"}, v)
}

func TestListPropertySkipsAbsentProviderElements(t *testing.T) {
	lp := property.NewListProperty().Instantiate(nil, "files")
	present := provider.NewBox("present.txt")
	absent := provider.NewBox(nil)
	lp.Extend([]any{present, absent})

	v, err := lp.Get()
	require.NoError(t, err)
	assert.Equal(t, []any{"present.txt"}, v)
}
