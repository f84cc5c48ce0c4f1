// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

// Package plugin stands in for the Script Host's dynamic
// importlib.import_module lookup: Go has no equivalent of importing an
// arbitrary module by a string computed at runtime, so every plugin a
// build script can apply must be registered ahead of time, the same
// way OpenTofu's internal/backend/init hardcodes its backend registry
// instead of loading backends dynamically.
package plugin

import (
	"fmt"
	"sync"

	"github.com/kahmi-build/kahmi/internal/model"
)

// ApplyFunc is a plugin's entry point: it configures project, typically
// by registering extensions and task factories.
type ApplyFunc func(project *model.Project) error

const libraryPrefix = "kahmi.build.lib."

var (
	mu       sync.RWMutex
	registry = map[string]ApplyFunc{}
)

// Register makes fn available under name. It panics if name is already
// registered, since registrations happen at init() time and a
// collision indicates a programming error, not a runtime condition.
func Register(name string, fn ApplyFunc) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("plugin %q already registered", name))
	}
	registry[name] = fn
}

// Apply resolves name against the registry, trying the built-in
// library namespace first (mirroring the Python original's
// "kahmi.build.lib.<name>" module before falling back to "<name>"),
// then invokes it against project.
func Apply(name string, project *model.Project) error {
	mu.RLock()
	fn, ok := registry[libraryPrefix+name]
	if !ok {
		fn, ok = registry[name]
	}
	mu.RUnlock()
	if !ok {
		return fmt.Errorf("no plugin registered under %q or %q", libraryPrefix+name, name)
	}
	return fn(project)
}
