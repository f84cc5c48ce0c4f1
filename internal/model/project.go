// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package model

import (
	"path/filepath"
	"strings"
	"weak"

	"github.com/hashicorp/go-multierror"
)

const defaultBuildDirectoryName = ".build"

// Project is a namespace of tasks and extensions, and a node in the
// tree of child projects the Script Host populates.
type Project struct {
	env    weak.Pointer[Environment]
	parent weak.Pointer[Project]

	name      string
	directory string

	children   map[string]*Project
	childOrder []string

	Tasks *TaskContainer

	extensions map[string]any
}

// NewRootProject constructs the root project of env, rooted at directory.
func NewRootProject(env *Environment, name, directory string) *Project {
	return newProject(env, nil, name, directory)
}

func newProject(env *Environment, parent *Project, name, directory string) *Project {
	p := &Project{
		env:        weak.Make(env),
		name:       name,
		directory:  directory,
		children:   map[string]*Project{},
		Tasks:      newTaskContainer(),
		extensions: map[string]any{},
	}
	if parent != nil {
		p.parent = weak.Make(parent)
	}
	return p
}

func (p *Project) Name() string      { return p.name }
func (p *Project) Directory() string { return p.directory }

// BuildDirectory is directory/.build, the root for persisted state
// (see SPEC_FULL.md's persisted state layout).
func (p *Project) BuildDirectory() string {
	return filepath.Join(p.directory, defaultBuildDirectoryName)
}

// Parent returns the enclosing project, or nil at the root.
func (p *Project) Parent() *Project {
	return p.parent.Value()
}

// Root walks up to the outermost enclosing project.
func (p *Project) Root() *Project {
	cur := p
	for cur.Parent() != nil {
		cur = cur.Parent()
	}
	return cur
}

// Path is the ':'-joined chain from the root project to p.
func (p *Project) Path() string {
	if parent := p.Parent(); parent != nil {
		return parent.Path() + ":" + p.name
	}
	return p.name
}

// Environment resolves the enclosing Environment.
func (p *Project) Environment() *Environment {
	return p.env.Value()
}

// NewChild creates and registers a child project named name, rooted at
// directory. It fails with ErrDuplicateName if the name is already
// taken among siblings.
func (p *Project) NewChild(name, directory string) (*Project, error) {
	if _, exists := p.children[name]; exists {
		return nil, &ErrDuplicateName{Kind: "project", Path: p.Path() + ":" + name}
	}
	child := newProject(p.Environment(), p, name, directory)
	p.children[name] = child
	p.childOrder = append(p.childOrder, name)
	return child, nil
}

// IterSubProjects yields every descendant project, depth-first.
func (p *Project) IterSubProjects() []*Project {
	var out []*Project
	for _, name := range p.childOrder {
		child := p.children[name]
		out = append(out, child)
		out = append(out, child.IterSubProjects()...)
	}
	return out
}

// IterAllTasks yields every task in this project and its descendants.
func (p *Project) IterAllTasks() []*Task {
	out := append([]*Task(nil), p.Tasks.All()...)
	for _, child := range p.IterSubProjects() {
		out = append(out, child.Tasks.All()...)
	}
	return out
}

// Task registers and returns a new task named name. It fails with
// ErrDuplicateName if name is already registered in this project.
func (p *Project) Task(name string) (*Task, error) {
	if p.Tasks.Has(name) {
		return nil, &ErrDuplicateName{Kind: "task", Path: p.Path() + ":" + name}
	}
	t := NewTask(p, name)
	p.Tasks.add(t)
	return t, nil
}

// RegisterExtension publishes obj under name so it can be resolved by
// the Script Host. Re-registering a name is an error (write-once).
func (p *Project) RegisterExtension(name string, obj any) error {
	if _, exists := p.extensions[name]; exists {
		return &ErrDuplicateName{Kind: "extension", Path: p.Path() + ":" + name}
	}
	p.extensions[name] = obj
	return nil
}

// Extension looks up a previously registered extension by name.
func (p *Project) Extension(name string) (any, bool) {
	v, ok := p.extensions[name]
	return v, ok
}

// ResolveTasks resolves a list of user selectors against the project
// tree rooted at p.Root(), per spec.md §4.4:
//   - ":group"        matches tasks whose Group equals group
//   - ":proj:...:name" matches by exact task Path
//   - "name"          matches when the trailing segment of Path equals it
//
// Every selector matching nothing is reported as its own
// ErrSelectorNotMatched, all collected into one multierror.Error (even
// when only one selector fails), rather than failing on the first.
func (p *Project) ResolveTasks(selectors []string) ([]*Task, error) {
	root := p.Root()
	allTasks := root.IterAllTasks()

	var selected []*Task
	seen := map[*Task]bool{}
	unmatched := map[string]bool{}
	for _, s := range selectors {
		unmatched[s] = true
	}

	for _, sel := range selectors {
		for _, task := range allTasks {
			if matchesSelector(task, sel) {
				if !seen[task] {
					seen[task] = true
					selected = append(selected, task)
				}
				delete(unmatched, sel)
			}
		}
	}

	if len(unmatched) > 0 {
		var result *multierror.Error
		for s := range unmatched {
			result = multierror.Append(result, &ErrSelectorNotMatched{Selectors: []string{s}})
		}
		return nil, result.ErrorOrNil()
	}

	return selected, nil
}

func matchesSelector(task *Task, sel string) bool {
	if strings.HasPrefix(sel, ":") {
		group := strings.TrimPrefix(sel, ":")
		if task.Group != "" && task.Group == group {
			return true
		}
	}
	if task.Path() == sel || ":"+task.Path() == sel {
		return true
	}
	if idx := strings.LastIndex(task.Path(), ":"); idx >= 0 {
		if task.Path()[idx+1:] == sel {
			return true
		}
	} else if task.Path() == sel {
		return true
	}
	return false
}
