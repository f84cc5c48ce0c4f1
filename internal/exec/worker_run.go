// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package exec

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kahmi-build/kahmi/internal/action"
	"github.com/kahmi-build/kahmi/internal/model"
)

// RunWorkerProcess is the hidden worker subcommand's entry point. It
// reads a TaskSnapshot from requestPath, redirects stdout/stderr to
// the FIFO at fifoPath (opened for writing; the parent already holds
// the read end open), executes the task's actions, and writes a
// TaskResult to resultPath. cmd/kahmi's worker subcommand calls it, as
// does this package's test binary when it stands in for cmd/kahmi.
func RunWorkerProcess(ctx context.Context, requestPath, resultPath, fifoPath string) error {
	data, err := os.ReadFile(requestPath)
	if err != nil {
		return fmt.Errorf("read worker request: %w", err)
	}
	var snapshot TaskSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("decode worker request: %w", err)
	}

	if fifoPath != "" {
		restore, err := redirectStdStreamsToFIFO(fifoPath)
		if err != nil {
			return fmt.Errorf("redirect output to fifo: %w", err)
		}
		defer restore()
	}

	task := model.NewDetachedTask(snapshot.Path)
	task.Description = snapshot.Description
	task.Group = snapshot.Group
	task.Default = snapshot.Default
	task.Public = snapshot.Public
	task.SyncIO = snapshot.SyncIO

	actions, decodeErr := action.DecodeAll(snapshot.Actions)
	if decodeErr != nil {
		return fmt.Errorf("decode actions: %w", decodeErr)
	}
	for _, act := range actions {
		task.Performs(act)
	}

	if execErr := task.Execute(ctx); execErr != nil {
		task.Err = execErr
		task.Executed = true
	}

	result := TaskResult{
		Description: task.Description,
		Group:       task.Group,
		Default:     task.Default,
		Public:      task.Public,
		SyncIO:      task.SyncIO,
		Executed:    task.Executed,
		DidWork:     task.DidWork,
		Dirty:       task.Dirty,
	}
	if task.Err != nil {
		result.Err = task.Err.Error()
	}

	out, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode worker result: %w", err)
	}
	return os.WriteFile(resultPath, out, 0o644)
}
