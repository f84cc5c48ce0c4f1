// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

// Package action implements the concrete Action kinds spec.md treats
// as external collaborators: running shell commands, creating
// directories, and invoking a named builtin function. These three are
// also the only kinds the worker protocol (internal/exec) can carry
// across a process boundary — see Decode and model.ActionSpec.
package action

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/kahmi-build/kahmi/internal/model"
)

// Command runs one or more commands, in order, within working_dir with
// environ merged over the current process environment. Each command's
// argv is executed directly; no shell is involved.
type Command struct {
	Commands   [][]string
	WorkingDir string
	Environ    map[string]string
}

var _ model.Action = (*Command)(nil)
var _ model.Specable = (*Command)(nil)

func (c *Command) Execute(ctx context.Context, task *model.Task) error {
	env := os.Environ()
	for k, v := range c.Environ {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	for _, args := range c.Commands {
		if len(args) == 0 {
			continue
		}
		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.Dir = c.WorkingDir
		cmd.Env = env
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("command %v: %w", args, err)
		}
	}

	task.DidWork = true
	return nil
}

func (c *Command) Spec() model.ActionSpec {
	return model.ActionSpec{
		Kind: "command",
		Command: &model.CommandSpec{
			Commands:   c.Commands,
			WorkingDir: c.WorkingDir,
			Environ:    c.Environ,
		},
	}
}
