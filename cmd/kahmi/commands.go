// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/cli"

	"github.com/kahmi-build/kahmi/internal/exec"
	"github.com/kahmi-build/kahmi/internal/graph"
	_ "github.com/kahmi-build/kahmi/internal/lib/lang"
	"github.com/kahmi-build/kahmi/internal/model"
	"github.com/kahmi-build/kahmi/internal/plugin"
	"github.com/kahmi-build/kahmi/internal/state"
)

// Ui is the cli.Ui used for communicating to the outside world.
var Ui cli.Ui

// commands is the mapping of all top-level kahmi commands.
var commands map[string]cli.CommandFactory

func initCommands(binaryPath string) {
	commands = map[string]cli.CommandFactory{
		"build": func() (cli.Command, error) {
			return &BuildCommand{BinaryPath: binaryPath}, nil
		},
	}
}

// BuildCommand is kahmi's only real subcommand: it loads a build
// definition, resolves selectors against it, and runs the resulting
// tasks to completion. Per SPEC_FULL.md the CLI surface is minimal,
// since the CLI itself is out of scope for the core engine.
type BuildCommand struct {
	BinaryPath string
}

func (c *BuildCommand) Synopsis() string {
	return "Run the default or named tasks of a build definition"
}

func (c *BuildCommand) Help() string {
	return strings.TrimSpace(`
Usage: kahmi build [options] [targets...]

  Loads a build definition and executes the selected tasks.

Options:

  -f, --file <path>     Build definition to load (default "build.kmi")
  -v, --verbose         Increase log verbosity (repeatable)
  -j, --jobs <N>        Parallelism (default 1)
  -s, --no-capture      Print every task's captured output, not only that of
                        failed, sync-IO and "run" tasks; output is still
                        printed when the task ends, not streamed
`)
}

func (c *BuildCommand) Run(args []string) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	file := fs.String("f", "build.kmi", "build definition to load")
	fs.StringVar(file, "file", "build.kmi", "build definition to load")
	jobs := fs.Int("j", 1, "parallelism")
	fs.IntVar(jobs, "jobs", 1, "parallelism")
	noCapture := fs.Bool("s", false, "print every task's captured output when it ends")
	fs.BoolVar(noCapture, "no-capture", false, "print every task's captured output when it ends")
	verbosity := 0
	fs.Func("v", "increase log verbosity (repeatable)", func(string) error { verbosity++; return nil })
	fs.Func("verbose", "increase log verbosity (repeatable)", func(string) error { verbosity++; return nil })

	if err := fs.Parse(args); err != nil {
		return 1
	}
	targets := fs.Args()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "kahmi",
		Level: verbosityToLevel(verbosity),
	})

	directory, err := workingDirectory()
	if err != nil {
		Ui.Error(err.Error())
		return 1
	}

	env := model.NewEnvironment("root", directory)

	pluginName := scriptHostPluginName(*file)
	if err := plugin.Apply(pluginName, env.RootProject); err != nil {
		Ui.Error(fmt.Sprintf("loading %s: %s", *file, err))
		return 1
	}

	g := graph.NewWithLogger(logger.Named("graph"))
	env.Graph = g
	g.AddProject(env.RootProject)

	if len(targets) == 0 {
		g.SelectDefaults()
	} else {
		selected, err := env.RootProject.ResolveTasks(targets)
		if err != nil {
			Ui.Error(err.Error())
			return 1
		}
		for _, task := range selected {
			g.Select(task)
		}
	}

	tracker, err := state.OpenSqliteTrackerWithLogger(state.DefaultStatePath(env.RootProject.Directory()), logger.Named("state"))
	if err != nil {
		Ui.Error(fmt.Sprintf("opening build state: %s", err))
		return 1
	}
	defer tracker.Close()
	env.StateTracker = tracker

	printer := exec.NewDefaultProgressPrinter(uiWriter{Ui}, isatty.IsTerminal(uintptr(1)))
	printer.AlwaysShowOutput = *noCapture

	logger.Debug("starting build", "jobs", *jobs, "targets", targets)

	executor := &exec.Executor{
		Parallelism:  *jobs,
		Tracker:      tracker,
		Listener:     printer,
		WorkerBinary: c.BinaryPath,
		Logger:       logger.Named("exec"),
	}
	if err := executor.Run(context.Background(), g); err != nil {
		Ui.Error(err.Error())
		return 1
	}

	return 0
}

// uiWriter adapts a cli.Ui into an io.Writer, one Output call per
// Write, so the progress printer can stay io.Writer-shaped without
// depending on an unverified helper type from mitchellh/cli.
type uiWriter struct {
	ui cli.Ui
}

func (w uiWriter) Write(p []byte) (int, error) {
	w.ui.Output(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// scriptHostPluginName derives the registered plugin name a build
// definition file resolves to: the Script Host language/parser is out
// of scope for the core (see SPEC_FULL.md), so a "script" here is just
// a Go package that registered itself under the file's base name.
func scriptHostPluginName(file string) string {
	base := file
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	return base
}

func verbosityToLevel(v int) hclog.Level {
	switch {
	case v >= 2:
		return hclog.Trace
	case v == 1:
		return hclog.Debug
	default:
		return hclog.Info
	}
}
