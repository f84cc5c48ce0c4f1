// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package exec

import (
	"context"
	"io"
	"os"
	"os/exec"
)

// outputCapture is the portable fallback for platforms without named
// pipes: an anonymous os.Pipe wired directly to the worker's Stdout
// and Stderr. The wire semantics seen by the Listener are identical to
// the FIFO path; only the transport differs.
type outputCapture struct {
	read  *os.File
	write *os.File
}

func newOutputCapture(path string) (*outputCapture, error) {
	read, write, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	return &outputCapture{read: read, write: write}, nil
}

// workerArgs is empty here: the worker inherits its Stdout/Stderr from
// the exec.Cmd the parent configured, it needs no path argument.
func (c *outputCapture) workerArgs() []string { return nil }

func (c *outputCapture) prepare(cmd *exec.Cmd) {
	cmd.Stdout = c.write
	cmd.Stderr = c.write
}

func (c *outputCapture) stream(ctx context.Context) (string, error) {
	c.write.Close()
	defer c.read.Close()

	data, err := io.ReadAll(c.read)
	if err != nil {
		return string(data), err
	}
	return string(data), nil
}

func redirectStdStreamsToFIFO(path string) (restore func(), err error) {
	return func() {}, nil
}
