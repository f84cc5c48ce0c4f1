// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package exec

import (
	"github.com/kahmi-build/kahmi/internal/model"
)

// TaskSnapshot is the pure-data form of a task sent across the worker
// process boundary. It deliberately excludes the project, declared
// properties, and dependency/finalizer edges: a worker runs actions
// against a detached task and nothing else (see SPEC_FULL.md's
// shared-resource policy).
type TaskSnapshot struct {
	Path        string             `json:"path"`
	Actions     []model.ActionSpec `json:"actions"`
	Description string             `json:"description"`
	Group       string             `json:"group"`
	Default     bool               `json:"default"`
	Public      bool               `json:"public"`
	SyncIO      bool               `json:"sync_io"`
}

// TaskResult is the pure-data form of a task's post-execution public
// state, written back by the worker for the parent to reconcile.
type TaskResult struct {
	Description string `json:"description"`
	Group       string `json:"group"`
	Default     bool   `json:"default"`
	Public      bool   `json:"public"`
	SyncIO      bool   `json:"sync_io"`
	Executed    bool   `json:"executed"`
	DidWork     bool   `json:"did_work"`
	Dirty       *bool  `json:"dirty,omitempty"`
	Err         string `json:"err,omitempty"`
}

// NewSnapshot builds the wire form of task for a worker to execute.
func NewSnapshot(task *model.Task) (TaskSnapshot, error) {
	specs := make([]model.ActionSpec, 0, len(task.Actions()))
	for _, act := range task.Actions() {
		specable, ok := act.(model.Specable)
		if !ok {
			return TaskSnapshot{}, &ErrNotSpecable{TaskPath: task.Path()}
		}
		specs = append(specs, specable.Spec())
	}
	return TaskSnapshot{
		Path:        task.Path(),
		Actions:     specs,
		Description: task.Description,
		Group:       task.Group,
		Default:     task.Default,
		Public:      task.Public,
		SyncIO:      task.SyncIO,
	}, nil
}

// ErrNotSpecable is returned when a task performs an action that
// cannot cross a process boundary (e.g. action.Func), ruling out
// worker-pool execution for that task.
type ErrNotSpecable struct {
	TaskPath string
}

func (e *ErrNotSpecable) Error() string {
	return "task " + e.TaskPath + " has an action that cannot be sent to a worker process"
}

// Reconcile copies every public field of result onto task that
// differs, per spec.md's reconciliation rule. It never touches
// weak-reference-based edges (dependencies, finalizers, project),
// since those are not part of TaskResult.
func Reconcile(task *model.Task, result TaskResult) {
	task.Description = result.Description
	task.Group = result.Group
	task.Default = result.Default
	task.Public = result.Public
	task.SyncIO = result.SyncIO
	task.Executed = result.Executed
	task.DidWork = result.DidWork
	task.Dirty = result.Dirty
	if result.Err != "" {
		task.Err = errString(result.Err)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
