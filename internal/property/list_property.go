// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package property

import "github.com/kahmi-build/kahmi/internal/provider"

// ListProperty is a Property specialized for a mutable sequence of
// values-or-providers. Add/Extend append lazily by re-wrapping the
// underlying provider in a Map, the same trick the Python original
// uses (kahmi.build.model.property.ListProperty).
//
// Declared separately from Property rather than as a generic
// Property[[]T] because its Get must resolve each element that is
// itself a Provider, silently dropping absent ones — a resolution
// rule plain Property does not have.
type ListProperty struct {
	Property
}

// NewListProperty constructs an empty ListProperty template.
func NewListProperty(markers ...Marker) *ListProperty {
	lp := &ListProperty{Property: *New(markers...)}
	lp.Property.value = provider.NewBox([]any{})
	return lp
}

// Instantiate clones the list property template into a fresh one bound
// to owner under name, starting from an empty list.
func (lp *ListProperty) Instantiate(owner OwnerFunc, name string) *ListProperty {
	clone := &ListProperty{Property: *lp.Property.Instantiate(owner, name)}
	clone.Property.value = provider.NewBox([]any{})
	return clone
}

// Get resolves the list, evaluating and unwrapping any element that is
// itself a provider.Provider and silently skipping absent ones.
func (lp *ListProperty) Get() (any, error) {
	v, err := lp.Property.Get()
	if err != nil {
		return nil, err
	}
	raw, ok := v.([]any)
	if !ok {
		return v, nil
	}
	result := make([]any, 0, len(raw))
	for _, item := range raw {
		if p, ok := item.(provider.Provider); ok {
			if val, ok := provider.OrNone(p); ok {
				result = append(result, val)
			}
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

// Add appends a single value or provider to the list.
func (lp *ListProperty) Add(value any) {
	lp.extendRaw([]any{value})
}

// Extend appends every element of values to the list.
func (lp *ListProperty) Extend(values []any) {
	lp.extendRaw(values)
}

func (lp *ListProperty) extendRaw(values []any) {
	current := lp.Property.value
	if current == nil {
		current = provider.NewBox([]any{})
	}
	lp.Property.value = provider.Map(current, func(v any) any {
		left, _ := v.([]any)
		out := make([]any, len(left), len(left)+len(values))
		copy(out, left)
		return append(out, values...)
	})
}
