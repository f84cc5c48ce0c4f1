// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package exec

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
)

// WorkerSubcommand is the hidden argv[1] cmd/kahmi recognizes to
// re-exec itself as a worker instead of running the CLI.
const WorkerSubcommand = "__kahmi_worker__"

// runInWorker executes snapshot in a subprocess re-exec of binaryPath,
// streaming its merged stdout/stderr and returning the decoded
// TaskResult once the worker exits.
func runInWorker(ctx context.Context, binaryPath, scratchDir string, snapshot TaskSnapshot) (TaskResult, string, error) {
	id := uuid.NewString()
	requestPath := filepath.Join(scratchDir, id+".request.json")
	resultPath := filepath.Join(scratchDir, id+".result.json")
	fifoPath := filepath.Join(scratchDir, id+".fifo")
	defer os.Remove(requestPath)
	defer os.Remove(resultPath)

	req, err := json.Marshal(snapshot)
	if err != nil {
		return TaskResult{}, "", fmt.Errorf("encode worker request: %w", err)
	}
	if err := os.WriteFile(requestPath, req, 0o644); err != nil {
		return TaskResult{}, "", fmt.Errorf("write worker request: %w", err)
	}

	capture, err := newOutputCapture(fifoPath)
	if err != nil {
		return TaskResult{}, "", err
	}

	args := append([]string{WorkerSubcommand, requestPath, resultPath}, capture.workerArgs()...)
	cmd := exec.CommandContext(ctx, binaryPath, args...)
	capture.prepare(cmd)

	if err := cmd.Start(); err != nil {
		return TaskResult{}, "", fmt.Errorf("start worker: %w", err)
	}

	waitErrCh := make(chan error, 1)
	go func() { waitErrCh <- cmd.Wait() }()

	output, streamErr := capture.stream(ctx)
	waitErr := <-waitErrCh

	if streamErr != nil {
		return TaskResult{}, output, fmt.Errorf("stream worker output: %w", streamErr)
	}

	resultData, readErr := os.ReadFile(resultPath)
	if readErr != nil {
		if waitErr != nil {
			return TaskResult{}, output, fmt.Errorf("worker exited without a result: %w", waitErr)
		}
		return TaskResult{}, output, fmt.Errorf("read worker result: %w", readErr)
	}

	var result TaskResult
	if err := json.Unmarshal(resultData, &result); err != nil {
		return TaskResult{}, output, fmt.Errorf("decode worker result: %w", err)
	}
	return result, output, nil
}
