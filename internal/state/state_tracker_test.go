// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package state_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kahmi-build/kahmi/internal/model"
	"github.com/kahmi-build/kahmi/internal/state"
)

func newTask(t *testing.T) *model.Task {
	t.Helper()
	env := model.NewEnvironment("root", t.TempDir())
	task, err := env.RootProject.Task("build")
	require.NoError(t, err)
	return task
}

func TestNoTrackerAlwaysChanged(t *testing.T) {
	task := newTask(t)
	tracker := state.NoTracker{}
	changed, err := tracker.TaskInputsChanged(task, model.TaskInputs{})
	require.NoError(t, err)
	require.True(t, changed)
}

func TestSqliteTrackerDetectsUnchangedInputs(t *testing.T) {
	task := newTask(t)
	path := filepath.Join(t.TempDir(), "build_state.db")
	tracker, err := state.OpenSqliteTracker(path)
	require.NoError(t, err)
	defer tracker.Close()

	inputs := model.TaskInputs{Values: map[string]any{"x": 1}}

	changed, err := tracker.TaskInputsChanged(task, inputs)
	require.NoError(t, err)
	require.True(t, changed, "no prior record should mean changed")

	require.NoError(t, tracker.TaskFinished(task, inputs))

	changed, err = tracker.TaskInputsChanged(task, inputs)
	require.NoError(t, err)
	require.False(t, changed, "identical inputs should be up to date")

	changed, err = tracker.TaskInputsChanged(task, model.TaskInputs{Values: map[string]any{"x": 2}})
	require.NoError(t, err)
	require.True(t, changed, "different inputs should be dirty")
}

func TestSqliteTrackerForcesRerunAfterFailure(t *testing.T) {
	task := newTask(t)
	path := filepath.Join(t.TempDir(), "build_state.db")
	tracker, err := state.OpenSqliteTracker(path)
	require.NoError(t, err)
	defer tracker.Close()

	inputs := model.TaskInputs{Values: map[string]any{"x": 1}}
	task.Err = fmt.Errorf("boom")
	require.NoError(t, tracker.TaskFinished(task, inputs))

	changed, err := tracker.TaskInputsChanged(task, inputs)
	require.NoError(t, err)
	require.True(t, changed, "a failed task must force a rerun regardless of inputs")
}
