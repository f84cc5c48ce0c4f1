// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

// Package graph assembles the tasks reachable from a project tree into
// a dependency graph and derives the order in which they must run.
package graph

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/kahmi-build/kahmi/internal/collections"
	"github.com/kahmi-build/kahmi/internal/model"
)

// CycleError reports that the selected subgraph is not a DAG, so no
// topological order exists.
type CycleError struct {
	Remaining []*model.Task
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("build graph has a cycle among %d task(s)", len(e.Remaining))
}

// BuildGraph holds every task reachable from the tasks added to it,
// together with the dependency and finalizer edges between them, and
// tracks which of those tasks are selected to run.
type BuildGraph struct {
	seen     collections.Set[*model.Task]
	selected collections.Set[*model.Task]

	// forward[a] contains b for every edge a -> b, meaning b depends on
	// a (a must run first). finalizer edges go task -> finalizer, the
	// same direction as dependency edges (dependency -> dependent).
	forward map[*model.Task]collections.Set[*model.Task]
	inbound map[*model.Task]collections.Set[*model.Task]

	logger hclog.Logger
}

// New constructs an empty BuildGraph that discards its log output.
func New() *BuildGraph {
	return NewWithLogger(hclog.NewNullLogger())
}

// NewWithLogger constructs an empty BuildGraph that logs graph
// construction and ordering decisions to logger, normally a
// logger.Named("graph") sub-logger of the process-wide logger.
func NewWithLogger(logger hclog.Logger) *BuildGraph {
	return &BuildGraph{
		seen:     collections.NewSet[*model.Task](),
		selected: collections.NewSet[*model.Task](),
		forward:  map[*model.Task]collections.Set[*model.Task]{},
		inbound:  map[*model.Task]collections.Set[*model.Task]{},
		logger:   logger,
	}
}

func (g *BuildGraph) addEdge(from, to *model.Task) {
	if g.forward[from] == nil {
		g.forward[from] = collections.NewSet[*model.Task]()
	}
	g.forward[from].Add(to)
	if g.inbound[to] == nil {
		g.inbound[to] = collections.NewSet[*model.Task]()
	}
	g.inbound[to].Add(from)
}

// AddProject adds every task in project and its descendants.
func (g *BuildGraph) AddProject(project *model.Project) {
	g.AddTasks(project.IterAllTasks())
}

// AddTask adds task along with every dependency and finalizer it
// transitively pulls in.
func (g *BuildGraph) AddTask(task *model.Task) {
	if g.seen.Has(task) {
		return
	}
	g.seen.Add(task)
	g.logger.Trace("added task to graph", "task", task.Path())
	if _, ok := g.forward[task]; !ok {
		g.forward[task] = collections.NewSet[*model.Task]()
	}

	for _, dep := range task.ComputeAllDependencies() {
		g.AddTask(dep)
		g.addEdge(dep, task)
	}
	for _, finalizer := range task.Finalizers() {
		g.AddTask(finalizer)
		g.addEdge(task, finalizer)
	}
}

// AddTasks adds every task in tasks.
func (g *BuildGraph) AddTasks(tasks []*model.Task) {
	for _, t := range tasks {
		g.AddTask(t)
	}
}

// Select marks task as selected to run.
func (g *BuildGraph) Select(task *model.Task) {
	g.selected.Add(task)
	g.logger.Debug("selected task", "task", task.Path())
}

// SelectDefaults selects every task in the graph whose Default flag is set.
func (g *BuildGraph) SelectDefaults() {
	for _, task := range g.Tasks() {
		if task.Default {
			g.Select(task)
		}
	}
}

// IsSelected reports whether task has been selected.
func (g *BuildGraph) IsSelected(task *model.Task) bool {
	return g.selected.Has(task)
}

// Tasks returns every task known to the graph, in no particular order.
func (g *BuildGraph) Tasks() []*model.Task {
	out := make([]*model.Task, 0, len(g.seen))
	for t := range g.seen {
		out = append(out, t)
	}
	return out
}

// SelectedTasks returns every selected task, in no particular order.
func (g *BuildGraph) SelectedTasks() []*model.Task {
	out := make([]*model.Task, 0, len(g.selected))
	for t := range g.selected {
		out = append(out, t)
	}
	return out
}

// Predecessors returns task's direct predecessors in this graph: the
// tasks that must finish before task can start, per the dependency and
// finalizer edges added through AddTask.
func (g *BuildGraph) Predecessors(task *model.Task) []*model.Task {
	set := g.inbound[task]
	out := make([]*model.Task, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	return out
}

// SelectedClosure returns the subgraph made of the selected tasks and
// everything they transitively depend on or are finalized by. The
// Executor schedules against this closure rather than the full graph,
// since an unselected task's dependencies are irrelevant to the run.
func (g *BuildGraph) SelectedClosure() *BuildGraph {
	sub := NewWithLogger(g.logger)
	for _, task := range g.SelectedTasks() {
		sub.AddTask(task)
	}
	return sub
}

// TasksInOrder returns the selected tasks and everything they
// transitively depend on, in a topological order: every task appears
// after all of its dependencies. Ties among tasks that become
// available simultaneously are broken lexicographically by Path, so
// the order is deterministic across runs for the same graph.
//
// It returns a *CycleError if the relevant subgraph is not a DAG.
func (g *BuildGraph) TasksInOrder() ([]*model.Task, error) {
	return g.SelectedClosure().Order()
}

// Order returns every task known to g in topological order. Unlike
// TasksInOrder it does not first narrow to the selected tasks' closure
// — callers that already hold a closure (e.g. from SelectedClosure)
// should call this directly to avoid recomputing it.
func (g *BuildGraph) Order() ([]*model.Task, error) {
	return g.kahnOrder()
}

func (g *BuildGraph) kahnOrder() ([]*model.Task, error) {
	indegree := make(map[*model.Task]int, len(g.seen))
	for t := range g.seen {
		indegree[t] = g.inbound[t].Len()
	}

	var ready []*model.Task
	for t, deg := range indegree {
		if deg == 0 {
			ready = append(ready, t)
		}
	}

	order := make([]*model.Task, 0, len(g.seen))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i].Path() < ready[j].Path() })
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for succ := range g.forward[next] {
			indegree[succ]--
			if indegree[succ] == 0 {
				ready = append(ready, succ)
			}
		}
	}

	if len(order) != len(g.seen) {
		var remaining []*model.Task
		for t, deg := range indegree {
			if deg > 0 {
				remaining = append(remaining, t)
			}
		}
		sort.Slice(remaining, func(i, j int) bool { return remaining[i].Path() < remaining[j].Path() })
		g.logger.Error("cycle detected", "remaining", len(remaining))
		return nil, &CycleError{Remaining: remaining}
	}

	g.logger.Debug("computed task order", "tasks", len(order))
	return order, nil
}
