// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package model_test

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"

	"github.com/kahmi-build/kahmi/internal/model"
)

func TestTaskRejectsDuplicateName(t *testing.T) {
	env := model.NewEnvironment("root", t.TempDir())
	_, err := env.RootProject.Task("build")
	require.NoError(t, err)

	_, err = env.RootProject.Task("build")
	var dup *model.ErrDuplicateName
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "task", dup.Kind)
}

func TestNewChildRejectsDuplicateNameAndBuildsPath(t *testing.T) {
	env := model.NewEnvironment("root", t.TempDir())
	child, err := env.RootProject.NewChild("sub", t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "root:sub", child.Path())

	_, err = env.RootProject.NewChild("sub", t.TempDir())
	var dup *model.ErrDuplicateName
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "project", dup.Kind)
}

func TestIterAllTasksIncludesDescendants(t *testing.T) {
	env := model.NewEnvironment("root", t.TempDir())
	root := env.RootProject
	rootTask := newTask(t, root, "root-task")

	child, err := root.NewChild("sub", t.TempDir())
	require.NoError(t, err)
	childTask := newTask(t, child, "sub-task")

	require.ElementsMatch(t, []*model.Task{rootTask, childTask}, root.IterAllTasks())
}

func TestRegisterExtensionRejectsDuplicateName(t *testing.T) {
	env := model.NewEnvironment("root", t.TempDir())
	require.NoError(t, env.RootProject.RegisterExtension("thing", 1))

	err := env.RootProject.RegisterExtension("thing", 2)
	var dup *model.ErrDuplicateName
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "extension", dup.Kind)

	v, ok := env.RootProject.Extension("thing")
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestResolveTasksMatchesByGroupPathAndName(t *testing.T) {
	env := model.NewEnvironment("root", t.TempDir())
	root := env.RootProject
	build := newTask(t, root, "build")
	build.Group = "compile"

	child, err := root.NewChild("sub", t.TempDir())
	require.NoError(t, err)
	nested := newTask(t, child, "build")

	byGroup, err := root.ResolveTasks([]string{":compile"})
	require.NoError(t, err)
	require.Equal(t, []*model.Task{build}, byGroup)

	byPath, err := root.ResolveTasks([]string{"root:sub:build"})
	require.NoError(t, err)
	require.Equal(t, []*model.Task{nested}, byPath)

	byName, err := child.ResolveTasks([]string{"build"})
	require.NoError(t, err)
	require.ElementsMatch(t, []*model.Task{build, nested}, byName)
}

func TestResolveTasksDeduplicatesOverlappingSelectors(t *testing.T) {
	env := model.NewEnvironment("root", t.TempDir())
	root := env.RootProject
	build := newTask(t, root, "build")
	build.Group = "compile"

	selected, err := root.ResolveTasks([]string{":compile", "build"})
	require.NoError(t, err)
	require.Equal(t, []*model.Task{build}, selected)
}

func TestResolveTasksCollectsAllUnmatchedSelectorsInOneMultierror(t *testing.T) {
	env := model.NewEnvironment("root", t.TempDir())
	root := env.RootProject
	newTask(t, root, "build")

	_, err := root.ResolveTasks([]string{"missing-one", "missing-two"})
	require.Error(t, err)

	merr, ok := err.(*multierror.Error)
	require.True(t, ok, "expected a *multierror.Error, got %T", err)
	require.Len(t, merr.Errors, 2)

	var messages []string
	for _, e := range merr.Errors {
		var selErr *model.ErrSelectorNotMatched
		require.ErrorAs(t, e, &selErr)
		messages = append(messages, selErr.Selectors[0])
	}
	require.ElementsMatch(t, []string{"missing-one", "missing-two"}, messages)
}

func TestResolveTasksFromChildProjectStillResolvesAgainstRoot(t *testing.T) {
	env := model.NewEnvironment("root", t.TempDir())
	root := env.RootProject
	rootTask := newTask(t, root, "build")

	child, err := root.NewChild("sub", t.TempDir())
	require.NoError(t, err)

	selected, err := child.ResolveTasks([]string{"root:build"})
	require.NoError(t, err)
	require.Equal(t, []*model.Task{rootTask}, selected)
}
