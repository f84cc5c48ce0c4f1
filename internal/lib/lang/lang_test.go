// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package lang_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kahmi-build/kahmi/internal/action"
	"github.com/kahmi-build/kahmi/internal/lib/lang"
	"github.com/kahmi-build/kahmi/internal/model"
	"github.com/kahmi-build/kahmi/internal/plugin"
)

func TestOcamlApplicationRegistersBuildAndRunTasks(t *testing.T) {
	env := model.NewEnvironment("root", t.TempDir())
	require.NoError(t, plugin.Apply("lang.ocaml", env.RootProject))

	raw, ok := env.RootProject.Extension("ocamlApplication")
	require.True(t, ok)
	factory, ok := raw.(func(string, lang.OcamlOptions) (*model.Task, error))
	require.True(t, ok, "ocamlApplication extension has unexpected type")

	task, err := factory("app", lang.OcamlOptions{Srcs: []string{"main.ml"}, Standalone: true})
	require.NoError(t, err)
	require.Equal(t, "root:app", task.Path())

	actions := task.Actions()
	require.Len(t, actions, 2)
	require.IsType(t, &action.CreateDir{}, actions[0])
	require.IsType(t, &action.Command{}, actions[1])

	runTask := env.RootProject.Tasks.Get("appRun")
	require.NotNil(t, runTask)
	require.Equal(t, "run", runTask.Group)
	require.False(t, runTask.Default)
	require.Contains(t, runTask.Dependencies(), task)
}

func TestHaskellApplicationDefaultsProductNameToMain(t *testing.T) {
	env := model.NewEnvironment("root", t.TempDir())
	require.NoError(t, plugin.Apply("lang.haskell", env.RootProject))

	raw, ok := env.RootProject.Extension("haskellApplication")
	require.True(t, ok)
	factory, ok := raw.(func(string, lang.HaskellOptions) (*model.Task, error))
	require.True(t, ok, "haskellApplication extension has unexpected type")

	task, err := factory("app", lang.HaskellOptions{Srcs: []string{"Main.hs"}})
	require.NoError(t, err)

	cmd := task.Actions()[1].(*action.Command)
	require.Contains(t, cmd.Commands[0], "Main.hs")
	require.Contains(t, cmd.Commands[0][2], "app/main")
}
