// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package plugin_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kahmi-build/kahmi/internal/model"
	"github.com/kahmi-build/kahmi/internal/plugin"
)

func TestApplyResolvesLibraryNamespaceBeforeBareName(t *testing.T) {
	var libraryCalled, bareCalled bool
	plugin.Register("kahmi.build.lib.widgets", func(*model.Project) error {
		libraryCalled = true
		return nil
	})
	plugin.Register("widgets-bare-only", func(*model.Project) error {
		bareCalled = true
		return nil
	})

	env := model.NewEnvironment("root", t.TempDir())

	require.NoError(t, plugin.Apply("widgets", env.RootProject))
	require.True(t, libraryCalled)

	require.NoError(t, plugin.Apply("widgets-bare-only", env.RootProject))
	require.True(t, bareCalled)
}

func TestApplyUnknownPluginFails(t *testing.T) {
	env := model.NewEnvironment("root", t.TempDir())
	err := plugin.Apply("does-not-exist", env.RootProject)
	require.Error(t, err)
}

func TestTaskFactoryConfigureReusesDefaultTask(t *testing.T) {
	env := model.NewEnvironment("root", t.TempDir())
	constructed := 0
	factory := plugin.NewTaskFactory(env.RootProject, "compile", func(task *model.Task) error {
		constructed++
		task.Group = "build"
		return nil
	})

	task1, err := factory.Configure(func(task *model.Task) { task.Description = "first" })
	require.NoError(t, err)
	task2, err := factory.Configure(func(task *model.Task) { task.Description = "second" })
	require.NoError(t, err)

	require.Same(t, task1, task2)
	require.Equal(t, 1, constructed)
	require.Equal(t, "second", task2.Description)
}

func TestTaskFactoryNewCreatesNamedTask(t *testing.T) {
	env := model.NewEnvironment("root", t.TempDir())
	factory := plugin.NewTaskFactory(env.RootProject, "compile", func(task *model.Task) error {
		task.Group = "build"
		return nil
	})

	task, err := factory.New("compileDebug")
	require.NoError(t, err)
	require.Equal(t, "compileDebug", task.Name())
	require.Equal(t, "build", task.Group)
}
