// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

// Package property implements named, owned, finalizable providers —
// the glue between the provider algebra and task/project attributes.
//
// A Property's owner is referenced weakly in spirit: Property never
// stores a strong pointer to its owner, only a closure supplied by the
// owner's package (model.Task, typically) that resolves to the owner
// for as long as something else keeps it alive. This mirrors the
// Python original's `origin: Optional[Callable[[], HavingProperties]]`
// built from a weakref.ref, and sidesteps an import cycle between
// property (low-level) and model (which owns Task).
package property

import (
	"fmt"
	"sort"

	"github.com/kahmi-build/kahmi/internal/provider"
)

// Marker classifies the role a property plays in fingerprinting and
// automatic dependency inference.
type Marker int

const (
	// Input properties contribute their JSON-canonical value to a
	// task's fingerprint.
	Input Marker = iota
	// InputFile properties additionally contribute the contents of the
	// file(s) named by their value.
	InputFile
	// InputDir properties behave like InputFile but name directories.
	InputDir
	// Output properties, when read by another task's property, cause
	// the Executor to record an automatic task-to-task dependency.
	Output
)

func (m Marker) String() string {
	switch m {
	case Input:
		return "Input"
	case InputFile:
		return "InputFile"
	case InputDir:
		return "InputDir"
	case Output:
		return "Output"
	default:
		return "Unknown"
	}
}

// Handle is the type-erased facade every declared property satisfies,
// whether a plain Property or a ListProperty. Task stores its declared
// properties as a map[string]Handle so compute_all_dependencies and
// get_task_inputs can iterate them uniformly regardless of the
// concrete generic-free type beneath.
type Handle interface {
	provider.Provider
	Name() string
	Markers() []Marker
	HasMarker(Marker) bool
	Dependencies() []*Property
	Owner() Owner
}

// Owner is implemented by whatever declares a Property — in this
// module, always a *model.Task. It exists so this package does not
// need to import model.
type Owner interface {
	// OwnerPath returns a stable, human-readable identifier for the
	// owner, used only for diagnostics.
	OwnerPath() string
}

// OwnerFunc resolves to the Property's owner, or nil if the owner has
// been collected. Construct one with a weak.Pointer in the owning
// package so Property never keeps its owner alive.
type OwnerFunc func() Owner

// DefaultFunc computes a property's default value from its owner at
// read time.
type DefaultFunc func(Owner) any

// ErrFinalized is returned by Set when called on a finalized property.
type ErrFinalized struct {
	Name string
}

func (e *ErrFinalized) Error() string {
	return fmt.Sprintf("property %q is finalized", e.Name)
}

// Property is a named provider attached to an owner, markers describing
// its fingerprinting/dependency role, and finalization semantics.
type Property struct {
	name    string
	markers []Marker
	owner   OwnerFunc

	value           provider.Provider // nil until Set is called
	defaultValue    provider.Provider
	defaultFunc     DefaultFunc
	finalized       bool
	finalizeOnRead  bool
	hasFinal        bool
	finalValue      any
}

// New constructs a property template: no owner, no name yet. Task
// construction calls Instantiate to bind it to a concrete owner.
func New(markers ...Marker) *Property {
	return &Property{markers: markers}
}

// Instantiate clones the property's markers and default into a fresh,
// unfinalized property bound to owner under name. This is the Go
// counterpart of the Python original's class-level property template
// cloning: each Task construction calls Instantiate once per declared
// property instead of relying on class-annotation scanning.
func (p *Property) Instantiate(owner OwnerFunc, name string) *Property {
	return &Property{
		name:        name,
		markers:     append([]Marker(nil), p.markers...),
		owner:       owner,
		defaultValue: p.defaultValue,
		defaultFunc: p.defaultFunc,
	}
}

func (p *Property) Name() string      { return p.name }
func (p *Property) Markers() []Marker { return p.markers }

// HasMarker reports whether m is among the property's markers.
func (p *Property) HasMarker(m Marker) bool {
	for _, marker := range p.markers {
		if marker == m {
			return true
		}
	}
	return false
}

// Owner resolves the owner, or nil if it has been collected or this
// property has no owner (e.g. it is still a template).
func (p *Property) Owner() Owner {
	if p.owner == nil {
		return nil
	}
	return p.owner()
}

// SetDefault installs v (a plain value or a provider.Provider) as the
// default consulted when no explicit value has been Set.
func (p *Property) SetDefault(v any) *Property {
	p.defaultFunc = nil
	if pr, ok := v.(provider.Provider); ok {
		p.defaultValue = pr
	} else {
		p.defaultValue = provider.NewBox(v)
	}
	return p
}

// SetDefaultFunc installs fn as the default, computed lazily from the
// owner on each read that needs it.
func (p *Property) SetDefaultFunc(fn DefaultFunc) *Property {
	p.defaultValue = nil
	p.defaultFunc = fn
	return p
}

// Set installs the explicit value (a plain value or a provider.Provider).
// It fails with ErrFinalized once the property has been finalized.
func (p *Property) Set(v any) error {
	if p.finalized {
		return &ErrFinalized{Name: p.name}
	}
	if pr, ok := v.(provider.Provider); ok {
		p.value = pr
	} else {
		p.value = provider.NewBox(v)
	}
	return nil
}

// Present reports whether Get would currently succeed.
func (p *Property) Present() bool {
	if p.finalized && !p.finalizeOnRead {
		return p.hasFinal
	}
	if p.value != nil && p.value.Present() {
		return true
	}
	if p.defaultFunc != nil {
		return p.defaultFunc(p.Owner()) != nil
	}
	return p.defaultValue != nil && p.defaultValue.Present()
}

// Get evaluates the property: its explicit value if present, else its
// default (function or provider), else ErrNoValuePresent. Once
// finalized, Get returns the cached final value — computed immediately
// by Finalize, or lazily on first read after FinalizeOnRead.
func (p *Property) Get() (any, error) {
	if p.finalized {
		if p.finalizeOnRead {
			p.finalValue, _ = p.resolve()
			p.hasFinal = p.finalValue != nil
			p.finalizeOnRead = false
		}
		if !p.hasFinal {
			return nil, &provider.ErrNoValuePresent{Provider: p}
		}
		return p.finalValue, nil
	}
	return p.resolve()
}

func (p *Property) resolve() (any, error) {
	if p.value != nil {
		if v, ok := provider.OrNone(p.value); ok {
			return v, nil
		}
	}
	if p.defaultFunc != nil {
		if v := p.defaultFunc(p.Owner()); v != nil {
			return v, nil
		}
	} else if p.defaultValue != nil {
		if v, ok := provider.OrNone(p.defaultValue); ok {
			return v, nil
		}
	}
	return nil, &provider.ErrNoValuePresent{Provider: p}
}

// Visit implements provider.Provider: it descends into the installed
// value if present, otherwise the default provider.
func (p *Property) Visit(fn func(provider.Provider) bool) {
	if !fn(p) {
		return
	}
	if p.value != nil {
		p.value.Visit(fn)
	} else if p.defaultValue != nil {
		p.defaultValue.Visit(fn)
	}
}

// Finalize evaluates the property now, caches the result, and marks it
// finalized: further Set calls fail, and Get returns the cached value.
func (p *Property) Finalize() (any, error) {
	if !p.finalized || p.finalizeOnRead {
		v, err := p.resolve()
		if err != nil {
			p.hasFinal = false
			p.finalValue = nil
		} else {
			p.hasFinal = true
			p.finalValue = v
		}
		p.finalizeOnRead = false
		p.finalized = true
	}
	if !p.hasFinal {
		return nil, &provider.ErrNoValuePresent{Provider: p}
	}
	return p.finalValue, nil
}

// FinalizeOnRead marks the property finalized but defers evaluation
// and caching until the next Get call.
func (p *Property) FinalizeOnRead() {
	if !p.finalized {
		p.finalized = true
		p.finalizeOnRead = true
	}
}

// IsFinalized reports whether the property has been finalized.
func (p *Property) IsFinalized() bool { return p.finalized }

// Dependencies returns every Property reachable through the installed
// explicit value, including ones captured by Mapped/FlatMapped
// closures (P5). A property with no explicit value (only a default)
// has no dependencies: the default source does not introduce a build
// dependency edge.
func (p *Property) Dependencies() []*Property {
	if p.value == nil {
		return nil
	}
	return CollectProperties(p.value)
}

func (p *Property) String() string {
	status := ""
	if p.finalized {
		status = "finalized "
	}
	return fmt.Sprintf("<%sProperty %q %v>", status, p.name, p.markers)
}

// CollectProperties walks prov's expression tree (including captured
// closures) and returns every Property node found, in visitation order.
func CollectProperties(prov provider.Provider) []*Property {
	var result []*Property
	prov.Visit(func(node provider.Provider) bool {
		if prop, ok := node.(*Property); ok {
			result = append(result, prop)
		}
		return true
	})
	return result
}

// SortedNames returns the keys of m in lexicographic order — used
// wherever declared properties must be iterated deterministically
// (task input fingerprinting, in particular).
func SortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
