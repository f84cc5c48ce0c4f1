// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

// Package state tracks whether a task's inputs have changed since its
// last successful execution, driving the incremental execution engine's
// up-to-date checks.
package state

import "github.com/kahmi-build/kahmi/internal/model"

// Tracker decides whether a task needs to run again.
type Tracker interface {
	// TaskInputsChanged reports whether inputs differs from what was
	// recorded the last time task finished, or whether nothing has
	// been recorded yet.
	TaskInputsChanged(task *model.Task, inputs model.TaskInputs) (bool, error)

	// TaskFinished records inputs as the last-known state for task. If
	// task failed, implementations should record a sentinel that forces
	// a rerun next time regardless of whether the inputs change again.
	TaskFinished(task *model.Task, inputs model.TaskInputs) error
}

// NoTracker always reports a task's inputs as changed and records
// nothing. Tests use it where persisted state is not wanted; cmd/kahmi
// always opens a SqliteTracker instead.
type NoTracker struct{}

var _ Tracker = NoTracker{}

func (NoTracker) TaskInputsChanged(*model.Task, model.TaskInputs) (bool, error) { return true, nil }
func (NoTracker) TaskFinished(*model.Task, model.TaskInputs) error              { return nil }
