// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package graph_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/kahmi-build/kahmi/internal/graph"
	"github.com/kahmi-build/kahmi/internal/model"
)

func taskPaths(tasks []*model.Task) []string {
	paths := make([]string, len(tasks))
	for i, t := range tasks {
		paths[i] = t.Path()
	}
	return paths
}

func newProject(t *testing.T) *model.Project {
	t.Helper()
	env := model.NewEnvironment("root", t.TempDir())
	return env.RootProject
}

func mustTask(t *testing.T, p *model.Project, name string) *model.Task {
	t.Helper()
	task, err := p.Task(name)
	require.NoError(t, err)
	return task
}

func TestTasksInOrderRespectsDependencies(t *testing.T) {
	p := newProject(t)
	a := mustTask(t, p, "a")
	b := mustTask(t, p, "b")
	c := mustTask(t, p, "c")
	b.DependsOn(a)
	c.DependsOn(b)

	g := graph.New()
	g.AddProject(p)
	g.Select(c)

	order, err := g.TasksInOrder()
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"root:a", "root:b", "root:c"}, taskPaths(order)); diff != "" {
		t.Errorf("task order mismatch (-want +got):\n%s", diff)
	}
}

func TestTasksInOrderIsDeterministicAmongIndependentTasks(t *testing.T) {
	p := newProject(t)
	z := mustTask(t, p, "z")
	a := mustTask(t, p, "a")
	m := mustTask(t, p, "m")

	g := graph.New()
	g.AddProject(p)
	g.Select(z)
	g.Select(a)
	g.Select(m)

	order, err := g.TasksInOrder()
	require.NoError(t, err)
	require.Equal(t, []*model.Task{a, m, z}, order)
}

func TestTasksInOrderDetectsCycle(t *testing.T) {
	p := newProject(t)
	a := mustTask(t, p, "a")
	b := mustTask(t, p, "b")
	a.DependsOn(b)
	b.DependsOn(a)

	g := graph.New()
	g.AddProject(p)
	g.Select(a)
	g.Select(b)

	_, err := g.TasksInOrder()
	require.Error(t, err)
	var cycleErr *graph.CycleError
	require.ErrorAs(t, err, &cycleErr)
}

func TestFinalizerRunsAfterTask(t *testing.T) {
	p := newProject(t)
	main := mustTask(t, p, "main")
	cleanup := mustTask(t, p, "cleanup")
	main.FinalizedBy(cleanup)

	g := graph.New()
	g.AddProject(p)
	g.Select(main)

	order, err := g.TasksInOrder()
	require.NoError(t, err)
	require.Equal(t, []*model.Task{main, cleanup}, order)
}

func TestSelectDefaultsSelectsOnlyDefaultTasks(t *testing.T) {
	p := newProject(t)
	a := mustTask(t, p, "a")
	b := mustTask(t, p, "b")
	b.Default = false

	g := graph.New()
	g.AddProject(p)
	g.SelectDefaults()

	require.True(t, g.IsSelected(a))
	require.False(t, g.IsSelected(b))
}
