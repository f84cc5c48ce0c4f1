// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package model

import "context"

// Action is a unit of side-effectful work attached to a Task. Concrete
// kinds live in internal/action; this package only needs the contract
// because Task.Execute runs them in order.
type Action interface {
	// Execute runs the action against task. Errors are caught by
	// Task.Execute and stored as the task's exception, never
	// propagated directly.
	Execute(ctx context.Context, task *Task) error
}

// ActionSpec is the tagged-variant, wire-safe description of an Action,
// used when a task crosses into a worker process (see internal/exec).
// Go has no transparent closure serialization, so the "LambdaAction"
// of the Python original is re-expressed here as a named Builtin that
// the worker process looks up in a registry (see internal/action).
type ActionSpec struct {
	Kind    string         `json:"kind"`
	Command *CommandSpec   `json:"command,omitempty"`
	MkDir   *MkDirSpec     `json:"mkdir,omitempty"`
	Builtin *BuiltinSpec   `json:"builtin,omitempty"`
}

type CommandSpec struct {
	Commands   [][]string        `json:"commands"`
	WorkingDir string            `json:"workingDir,omitempty"`
	Environ    map[string]string `json:"environ,omitempty"`
}

type MkDirSpec struct {
	Directory string `json:"directory"`
}

type BuiltinSpec struct {
	ID     string         `json:"id"`
	Params map[string]any `json:"params,omitempty"`
}

// ActionFactory turns a wire-safe ActionSpec back into a runnable
// Action inside a worker process. internal/action.Decode has this
// shape; it handles a fixed set of kinds and nothing registers more.
type ActionFactory func(ActionSpec) (Action, error)

// Specable is implemented by actions that can cross a process boundary
// into a worker. An Action that does not implement Specable can only
// run in sequential (in-process) mode.
type Specable interface {
	Spec() ActionSpec
}
