// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package fileset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kahmi-build/kahmi/internal/fileset"
	"github.com/kahmi-build/kahmi/internal/model"
)

func TestFromAnyFlattensNestedLists(t *testing.T) {
	env := model.NewEnvironment("root", t.TempDir())
	task, err := env.RootProject.Task("generate")
	require.NoError(t, err)

	nested, err := fileset.FromAny([]any{"b.txt", task})
	require.NoError(t, err)

	fc, err := fileset.FromAny([]any{"a.txt", []any{"c.txt"}, nested})
	require.NoError(t, err)

	require.ElementsMatch(t, []string{"a.txt", "c.txt", "b.txt"}, fc.Files())
	require.Equal(t, []*model.Task{task}, fc.Tasks())
}

func TestFromAnyRejectsUnsupportedType(t *testing.T) {
	_, err := fileset.FromAny([]any{42})
	require.Error(t, err)
}

func TestNormalizeExpandsGlobsAndMakesAbsolute(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.txt"), []byte("x"), 0o644))

	fc, err := fileset.FromAny([]any{"*.txt", "plain.go"})
	require.NoError(t, err)
	require.NoError(t, fc.Normalize(dir))

	require.ElementsMatch(t, []string{
		filepath.Join(dir, "one.txt"),
		filepath.Join(dir, "two.txt"),
		filepath.Join(dir, "plain.go"),
	}, fc.Files())
}

func TestNormalizeRejectsRelativeDirectory(t *testing.T) {
	fc, err := fileset.FromAny([]any{"a.txt"})
	require.NoError(t, err)
	require.Error(t, fc.Normalize("relative/dir"))
}
