// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

// Package fileset flattens the heterogeneous file/task lists a build
// script can write (a path, a producing task, a nested list, or
// another collection) into a single ordered set of files and the
// tasks that produce them.
package fileset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kahmi-build/kahmi/internal/model"
)

// FileCollection is a flat list of file paths together with the tasks
// those files depend on.
type FileCollection struct {
	files []string
	tasks []*model.Task
}

// Files returns a copy of the collection's file paths.
func (fc *FileCollection) Files() []string {
	return append([]string(nil), fc.files...)
}

// Tasks returns a copy of the collection's producing tasks.
func (fc *FileCollection) Tasks() []*model.Task {
	return append([]*model.Task(nil), fc.tasks...)
}

func (fc *FileCollection) String() string {
	return fmt.Sprintf("FileCollection(files=%v, tasks=%v)", fc.files, fc.tasks)
}

// Normalize rewrites every relative file path to be absolute under
// directory and expands any glob pattern ('*') present in a path. It
// fails if directory is not itself absolute.
func (fc *FileCollection) Normalize(directory string) error {
	if !filepath.IsAbs(directory) {
		return fmt.Errorf("directory must be absolute: %q", directory)
	}

	var out []string
	for _, f := range fc.files {
		joined := filepath.Join(directory, f)
		if strings.Contains(joined, "*") {
			matches, err := filepath.Glob(joined)
			if err != nil {
				return fmt.Errorf("expand glob %q: %w", joined, err)
			}
			out = append(out, matches...)
			continue
		}
		out = append(out, joined)
	}
	fc.files = out
	return nil
}

// FromAny builds a FileCollection from a list of items that may be a
// string (a single file path), a *model.Task (treated as a producing
// task), a []any (flattened recursively), or another *FileCollection.
func FromAny(items []any) (*FileCollection, error) {
	result := &FileCollection{}
	for _, item := range items {
		switch v := item.(type) {
		case string:
			result.files = append(result.files, v)
		case *model.Task:
			result.tasks = append(result.tasks, v)
		case []any:
			nested, err := FromAny(v)
			if err != nil {
				return nil, err
			}
			result.files = append(result.files, nested.files...)
			result.tasks = append(result.tasks, nested.tasks...)
		case *FileCollection:
			result.files = append(result.files, v.files...)
			result.tasks = append(result.tasks, v.tasks...)
		default:
			return nil, fmt.Errorf("fileset: unexpected element of type %T", item)
		}
	}
	return result, nil
}
