// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package model

import (
	"context"
	"fmt"
	"weak"

	"github.com/kahmi-build/kahmi/internal/property"
)

// Status is the state-machine position of a Task, derived from its
// dirty flag and post-execution fields rather than stored directly.
type Status int

const (
	StatusUnknown Status = iota
	StatusPending
	StatusUpToDate
	StatusSkipped
	StatusFinished
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusUpToDate:
		return "UPTODATE"
	case StatusSkipped:
		return "SKIPPED"
	case StatusFinished:
		return "FINISHED"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Task is an atomic unit of work: a named set of actions, declared
// properties, and explicit or property-derived dependencies.
type Task struct {
	project weak.Pointer[Project]
	name    string

	// detachedPath is set only on a worker-side task snapshot built by
	// NewDetachedTask, which has no project to derive Path from (see
	// SPEC_FULL.md's shared-resource policy: workers receive a detached
	// snapshot of a single task, not the project tree).
	detachedPath string

	actions []Action

	dependencies []weak.Pointer[Task]
	finalizers   []weak.Pointer[Task]

	properties map[string]property.Handle

	Description string
	Group       string
	Default     bool
	Public      bool
	SyncIO      bool

	Executed bool
	DidWork  bool
	Dirty    *bool // nil = unset (Status UNKNOWN)
	Err      error
}

// NewTask constructs a task named name inside project. Callers should
// go through Project.Task instead of calling this directly so that the
// project's task map stays authoritative.
func NewTask(project *Project, name string) *Task {
	return &Task{
		project:    weak.Make(project),
		name:       name,
		properties: map[string]property.Handle{},
		Default:    true,
		Public:     true,
	}
}

// NewDetachedTask builds a task snapshot with no owning project,
// identified directly by path. It exists for the worker side of the
// execution protocol: a worker process reconstructs just enough of a
// task to run its actions, without the project tree, sibling tasks, or
// the Environment the main process alone owns.
func NewDetachedTask(path string) *Task {
	return &Task{
		detachedPath: path,
		properties:   map[string]property.Handle{},
		Default:      true,
		Public:       true,
	}
}

func (t *Task) OwnerPath() string { return t.Path() }

func (t *Task) Name() string { return t.name }

// Project resolves the owning project. Panics if the project has been
// collected, which should never happen while any Task reachable from
// the Environment's root is alive (the Environment holds the project
// tree with strong references), or if called on a detached task.
func (t *Task) Project() *Project {
	if t.detachedPath != "" {
		panic(fmt.Sprintf("task %q: detached tasks have no project", t.detachedPath))
	}
	p := t.project.Value()
	if p == nil {
		panic(fmt.Sprintf("task %q: lost reference to project", t.name))
	}
	return p
}

// Path is this task's globally-unique identifier: "<project path>:<name>".
func (t *Task) Path() string {
	if t.detachedPath != "" {
		return t.detachedPath
	}
	return t.Project().Path() + ":" + t.name
}

func (t *Task) String() string {
	return fmt.Sprintf("<Task %q>", t.Path())
}

// Actions returns a copy of the task's action list.
func (t *Task) Actions() []Action {
	return append([]Action(nil), t.actions...)
}

// Performs appends action to the task's action list.
func (t *Task) Performs(action Action) {
	t.actions = append(t.actions, action)
}

// DependsOn declares explicit dependencies on other tasks.
func (t *Task) DependsOn(tasks ...*Task) {
	for _, dep := range tasks {
		t.dependencies = append(t.dependencies, weak.Make(dep))
	}
}

// FinalizedBy declares tasks that must run after this one completes.
func (t *Task) FinalizedBy(tasks ...*Task) {
	for _, f := range tasks {
		t.finalizers = append(t.finalizers, weak.Make(f))
	}
}

// Dependencies returns a copy of the task's explicit (depends_on) dependencies.
func (t *Task) Dependencies() []*Task {
	return resolveWeak(t.dependencies, t.name, "dependency")
}

// Finalizers returns a copy of the task's finalizer list.
func (t *Task) Finalizers() []*Task {
	return resolveWeak(t.finalizers, t.name, "finalizer")
}

func resolveWeak(refs []weak.Pointer[Task], owner, kind string) []*Task {
	out := make([]*Task, 0, len(refs))
	for _, ref := range refs {
		task := ref.Value()
		if task == nil {
			panic(fmt.Sprintf("task %q: lost reference to %s", owner, kind))
		}
		out = append(out, task)
	}
	return out
}

// DeclareProperty instantiates template bound to this task under name
// and registers it as a declared property, contributing to
// compute_all_dependencies, GetTaskInputs and fingerprinting.
func (t *Task) DeclareProperty(name string, template *property.Property) *property.Property {
	owner := func() property.Owner { return t }
	prop := template.Instantiate(owner, name)
	t.properties[name] = prop
	return prop
}

// DeclareListProperty is DeclareProperty's ListProperty counterpart.
func (t *Task) DeclareListProperty(name string, template *property.ListProperty) *property.ListProperty {
	owner := func() property.Owner { return t }
	prop := template.Instantiate(owner, name)
	t.properties[name] = prop
	return prop
}

// Properties returns the task's declared properties by name.
func (t *Task) Properties() map[string]property.Handle {
	return t.properties
}

// ComputeAllDependencies returns the union of explicit dependencies and
// dependencies inferred from declared properties: for every declared
// property p, for every q in p.Dependencies(), if q carries the Output
// marker and q's owner is a Task, that task is a dependency. Output
// markers propagate transitively through Mapped/FlatMapped wrapping
// because Dependencies/Visit walks through those nodes (see
// SPEC_FULL.md's Open Questions decision).
func (t *Task) ComputeAllDependencies() []*Task {
	seen := map[*Task]bool{}
	var result []*Task
	add := func(task *Task) {
		if task != nil && !seen[task] {
			seen[task] = true
			result = append(result, task)
		}
	}

	for _, dep := range t.Dependencies() {
		add(dep)
	}

	for _, name := range property.SortedNames(t.properties) {
		prop := t.properties[name]
		for _, consumed := range prop.Dependencies() {
			if !consumed.HasMarker(property.Output) {
				continue
			}
			if owningTask, ok := consumed.Owner().(*Task); ok {
				add(owningTask)
			}
		}
	}

	return result
}

// Execute runs each action in insertion order. Errors raised by an
// action are caught and stored in Err; Execute never re-raises on its
// own. Executed is always set to true, even on error. Calling Execute
// twice fails with ErrRepeatedExecution.
func (t *Task) Execute(ctx context.Context) error {
	if t.Executed {
		return &ErrRepeatedExecution{Path: t.Path()}
	}
	defer func() {
		t.Executed = true
		if r := recover(); r != nil {
			t.Err = fmt.Errorf("panic during task execution: %v", r)
		}
	}()
	for _, action := range t.actions {
		if err := action.Execute(ctx, t); err != nil {
			t.Err = err
			break
		}
	}
	return nil
}

// ReraiseError returns the task's stored execution error, if any.
func (t *Task) ReraiseError() error {
	return t.Err
}

// Status derives the task's position in the state machine from Dirty,
// Executed, DidWork and Err.
func (t *Task) Status() Status {
	switch {
	case t.Executed && t.Err != nil:
		return StatusError
	case t.Executed && t.DidWork:
		return StatusFinished
	case t.Executed && !t.DidWork:
		return StatusSkipped
	case t.Dirty == nil:
		return StatusUnknown
	case *t.Dirty:
		return StatusPending
	default:
		return StatusUpToDate
	}
}
