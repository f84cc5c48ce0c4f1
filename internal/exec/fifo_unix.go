// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

//go:build unix

package exec

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// fifoCreateTimeout is T_fifo from spec.md: the maximum time the parent
// waits for mkfifo to create the named pipe before it gives up and
// unblocks itself.
const fifoCreateTimeout = 5 * time.Second

// ErrFifoTimeout is raised when creating the named pipe does not
// complete within fifoCreateTimeout.
type ErrFifoTimeout struct {
	Path string
}

func (e *ErrFifoTimeout) Error() string {
	return fmt.Sprintf("timed out waiting for fifo %q to be created", e.Path)
}

// outputCapture streams a worker's merged stdout/stderr to the parent
// via a named pipe, per spec.md's worker protocol.
type outputCapture struct {
	path string
	read *os.File
}

// newOutputCapture creates the FIFO node at path and opens it for
// reading. FIFO creation runs on a helper goroutine guarded by
// fifoCreateTimeout: if it hasn't completed in time, the main
// goroutine unblocks the create by opening the path for writing itself,
// removes the path, and returns ErrFifoTimeout.
func newOutputCapture(path string) (*outputCapture, error) {
	created := make(chan error, 1)
	go func() { created <- unix.Mkfifo(path, 0o600) }()

	select {
	case err := <-created:
		if err != nil {
			return nil, fmt.Errorf("mkfifo %q: %w", path, err)
		}
	case <-time.After(fifoCreateTimeout):
		if f, openErr := os.OpenFile(path, os.O_WRONLY, 0); openErr == nil {
			f.Close()
		}
		os.Remove(path)
		return nil, &ErrFifoTimeout{Path: path}
	}

	read, err := os.OpenFile(path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("open fifo %q for reading: %w", path, err)
	}
	return &outputCapture{path: path, read: read}, nil
}

// workerArgs returns the extra arguments the worker subcommand needs
// to redirect its output into this capture's FIFO.
func (c *outputCapture) workerArgs() []string {
	return []string{c.path}
}

func (c *outputCapture) prepare(cmd *exec.Cmd) {}

// stream reads from the FIFO until EOF, polling with select() on a
// 10ms budget between non-blocking reads, per spec.md's suspension
// points. It returns the full captured output.
func (c *outputCapture) stream(ctx context.Context) (string, error) {
	defer c.read.Close()
	defer os.Remove(c.path)

	var out strings.Builder
	buf := make([]byte, 4096)
	fd := int(c.read.Fd())

	for {
		select {
		case <-ctx.Done():
			return out.String(), ctx.Err()
		default:
		}

		readFDs := &unix.FdSet{}
		setFd(readFDs, fd)
		timeout := unix.Timeval{Usec: 10_000}
		n, err := unix.Select(fd+1, readFDs, nil, nil, &timeout)
		if err != nil && err != unix.EINTR {
			return out.String(), fmt.Errorf("select on fifo: %w", err)
		}
		if n <= 0 {
			continue
		}

		read, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return out.String(), fmt.Errorf("read fifo: %w", err)
		}
		if read == 0 {
			return out.String(), nil
		}
		out.Write(buf[:read])
	}
}

func setFd(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}

// redirectStdStreamsToFIFO is called from inside the worker process
// (after re-exec) to send its own stdout/stderr into the FIFO the
// parent is reading from.
func redirectStdStreamsToFIFO(path string) (restore func(), err error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}

	savedStdout, _ := syscall.Dup(syscall.Stdout)
	savedStderr, _ := syscall.Dup(syscall.Stderr)

	if err := syscall.Dup2(int(f.Fd()), syscall.Stdout); err != nil {
		return nil, fmt.Errorf("dup2 stdout: %w", err)
	}
	if err := syscall.Dup2(int(f.Fd()), syscall.Stderr); err != nil {
		return nil, fmt.Errorf("dup2 stderr: %w", err)
	}

	return func() {
		syscall.Dup2(savedStdout, syscall.Stdout)
		syscall.Dup2(savedStderr, syscall.Stderr)
		syscall.Close(savedStdout)
		syscall.Close(savedStderr)
		f.Close()
	}, nil
}
