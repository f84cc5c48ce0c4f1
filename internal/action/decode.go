// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package action

import (
	"fmt"

	"github.com/kahmi-build/kahmi/internal/model"
)

// Decode reconstructs a runnable Action from spec. It is the
// inverse of Specable.Spec, and is what a worker process calls after
// reading a task's actions back out of the request file written by
// internal/exec: Func actions cannot appear here since they have no
// ActionSpec to decode from.
func Decode(spec model.ActionSpec) (model.Action, error) {
	switch spec.Kind {
	case "command":
		if spec.Command == nil {
			return nil, fmt.Errorf("action kind %q missing command spec", spec.Kind)
		}
		return &Command{
			Commands:   spec.Command.Commands,
			WorkingDir: spec.Command.WorkingDir,
			Environ:    spec.Command.Environ,
		}, nil
	case "mkdir":
		if spec.MkDir == nil {
			return nil, fmt.Errorf("action kind %q missing mkdir spec", spec.Kind)
		}
		return &CreateDir{Directory: spec.MkDir.Directory}, nil
	case "builtin":
		if spec.Builtin == nil {
			return nil, fmt.Errorf("action kind %q missing builtin spec", spec.Kind)
		}
		return &Builtin{ID: spec.Builtin.ID, Params: spec.Builtin.Params}, nil
	default:
		return nil, fmt.Errorf("unknown action kind %q", spec.Kind)
	}
}

// DecodeAll decodes every spec in specs, stopping at the first error.
func DecodeAll(specs []model.ActionSpec) ([]model.Action, error) {
	actions := make([]model.Action, 0, len(specs))
	for _, spec := range specs {
		act, err := Decode(spec)
		if err != nil {
			return nil, err
		}
		actions = append(actions, act)
	}
	return actions, nil
}
