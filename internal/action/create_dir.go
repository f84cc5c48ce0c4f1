// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package action

import (
	"context"
	"os"

	"github.com/kahmi-build/kahmi/internal/model"
)

// CreateDir creates Directory, including any missing parents. It is
// idempotent: an already-existing directory is not an error.
type CreateDir struct {
	Directory string
}

var _ model.Action = (*CreateDir)(nil)
var _ model.Specable = (*CreateDir)(nil)

func (c *CreateDir) Execute(ctx context.Context, task *model.Task) error {
	if err := os.MkdirAll(c.Directory, 0o755); err != nil {
		return err
	}
	task.DidWork = true
	return nil
}

func (c *CreateDir) Spec() model.ActionSpec {
	return model.ActionSpec{
		Kind:  "mkdir",
		MkDir: &model.MkDirSpec{Directory: c.Directory},
	}
}
