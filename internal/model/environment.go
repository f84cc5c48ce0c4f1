// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package model

// Environment is the single process-wide container for a build
// invocation: the root project, the state tracker, and the build
// graph. It is constructed once in main and passed explicitly — there
// are no package-level singletons anywhere in this module.
type Environment struct {
	RootProject *Project

	// StateTracker and Graph are declared as `any` here to avoid a
	// dependency cycle (internal/state and internal/graph both import
	// model for *Task/*Project). Callers type-assert to the concrete
	// interfaces they need; cmd/kahmi is the only place that wires all
	// three together.
	StateTracker any
	Graph        any
}

// NewEnvironment constructs an Environment whose root project is named
// name and rooted at directory. StateTracker and Graph are left nil;
// callers set them once constructed.
func NewEnvironment(name, directory string) *Environment {
	env := &Environment{}
	env.RootProject = NewRootProject(env, name, directory)
	return env
}
