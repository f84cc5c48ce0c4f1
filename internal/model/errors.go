// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package model

import "fmt"

// ErrRepeatedExecution is raised by Task.Execute when a task has
// already executed once.
type ErrRepeatedExecution struct {
	Path string
}

func (e *ErrRepeatedExecution) Error() string {
	return fmt.Sprintf("task %q already executed", e.Path)
}

// ErrDuplicateName is raised by Project.Task, Project.NewChild and
// Project.RegisterExtension when a name is already in use.
type ErrDuplicateName struct {
	Kind string // "task", "project" or "extension"
	Path string
}

func (e *ErrDuplicateName) Error() string {
	return fmt.Sprintf("%s %q already in use", e.Kind, e.Path)
}

// ErrSelectorNotMatched is raised by Project.ResolveTasks when one or
// more selectors match nothing.
type ErrSelectorNotMatched struct {
	Selectors []string
}

func (e *ErrSelectorNotMatched) Error() string {
	return fmt.Sprintf("unmatched selectors: %v", e.Selectors)
}

// ErrDependencyFailed marks a task skipped because an upstream task
// in its dependency set ended in error.
type ErrDependencyFailed struct {
	TaskPath string
	DepPath  string
}

func (e *ErrDependencyFailed) Error() string {
	return fmt.Sprintf("task %q skipped: dependency %q failed", e.TaskPath, e.DepPath)
}
