// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

// Package exec drives the incremental execution engine: it decides
// which tasks are dirty, runs them either in-process or in a worker
// subprocess pool, and reports progress to a Listener.
package exec

import (
	"fmt"
	"io"
	"strings"

	"github.com/mitchellh/colorstring"

	"github.com/kahmi-build/kahmi/internal/model"
)

// Listener receives progress notifications from an Executor.
type Listener interface {
	TaskExecuteBegin(task *model.Task)
	TaskExecuteEnd(task *model.Task, output string)
}

// CleanupListener is implemented by listeners that also want extra
// notifications around each task the Executor runs: TaskCleanupBegin
// just before TaskExecuteBegin, TaskCleanupEnd just after TaskExecuteEnd.
type CleanupListener interface {
	TaskCleanupBegin(task *model.Task)
	TaskCleanupEnd(task *model.Task)
}

func notifyCleanupBegin(l Listener, task *model.Task) {
	if cl, ok := l.(CleanupListener); ok {
		cl.TaskCleanupBegin(task)
	}
}

func notifyCleanupEnd(l Listener, task *model.Task) {
	if cl, ok := l.(CleanupListener); ok {
		cl.TaskCleanupEnd(task)
	}
}

// DefaultProgressPrinter prints one colorized line per task on begin,
// and indented captured output on end when the task warrants it.
type DefaultProgressPrinter struct {
	Out              io.Writer
	Colorize         *colorstring.Colorize
	AlwaysShowOutput bool
}

// NewDefaultProgressPrinter builds a printer writing to out, with
// color enabled or not per colorEnabled (typically the result of
// checking isatty on out).
func NewDefaultProgressPrinter(out io.Writer, colorEnabled bool) *DefaultProgressPrinter {
	return &DefaultProgressPrinter{
		Out: out,
		Colorize: &colorstring.Colorize{
			Colors:  colorstring.DefaultColors,
			Disable: !colorEnabled,
			Reset:   true,
		},
	}
}

var _ Listener = (*DefaultProgressPrinter)(nil)

func (p *DefaultProgressPrinter) TaskExecuteBegin(task *model.Task) {
	fmt.Fprintln(p.Out, p.Colorize.Color("[cyan]> "+task.Path()+"[reset]"))
}

func (p *DefaultProgressPrinter) TaskExecuteEnd(task *model.Task, output string) {
	show := p.AlwaysShowOutput || task.SyncIO || task.Group == "run" || task.Err != nil
	if !show || output == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		fmt.Fprintln(p.Out, "|  "+line)
	}
}
