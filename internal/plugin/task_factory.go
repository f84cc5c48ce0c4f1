// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package plugin

import "github.com/kahmi-build/kahmi/internal/model"

// Constructor configures a freshly-created task with a task type's
// declared properties and actions. It is the Go stand-in for the
// Python original's Task subclasses: since Go has no class hierarchy
// to scan for property templates, a task type is just a plain
// function applied to a task right after construction.
type Constructor func(*model.Task) error

// TaskFactory is usually registered as a project extension by a
// plugin's ApplyFunc to give build scripts both a default-named task
// and a named-task constructor for one task type:
//
//	factory := plugin.NewTaskFactory(project, "compile", newCompileTask)
//	task, err := factory.New("compileDebug")  // named variant
//	task, err = factory.Configure(func(t *model.Task) { ... })  // default-named variant
type TaskFactory struct {
	project     *model.Project
	defaultName string
	construct   Constructor
}

// NewTaskFactory builds a factory that registers tasks of one type on
// project, using defaultName when no explicit name is given.
func NewTaskFactory(project *model.Project, defaultName string, construct Constructor) *TaskFactory {
	return &TaskFactory{project: project, defaultName: defaultName, construct: construct}
}

// New registers and constructs a task named name.
func (f *TaskFactory) New(name string) (*model.Task, error) {
	task, err := f.project.Task(name)
	if err != nil {
		return nil, err
	}
	if err := f.construct(task); err != nil {
		return nil, err
	}
	return task, nil
}

// Configure registers the factory's default-named task, if not already
// present, and applies configure to it.
func (f *TaskFactory) Configure(configure func(*model.Task)) (*model.Task, error) {
	var task *model.Task
	if existing := f.project.Tasks.Get(f.defaultName); existing != nil {
		task = existing
	} else {
		var err error
		task, err = f.New(f.defaultName)
		if err != nil {
			return nil, err
		}
	}
	configure(task)
	return task, nil
}
