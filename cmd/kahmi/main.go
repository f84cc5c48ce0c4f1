// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/cli"

	kahmiexec "github.com/kahmi-build/kahmi/internal/exec"
)

// EnvCLIArgs lets a user prefix every invocation with extra flags,
// mirroring the teacher's TF_CLI_ARGS handling.
const EnvCLIArgs = "KAHMI_CLI_ARGS"

func init() {
	Ui = &cli.ColoredUi{
		Ui: &cli.BasicUi{
			Reader:      os.Stdin,
			Writer:      os.Stdout,
			ErrorWriter: os.Stderr,
		},
		OutputColor: cli.UiColorNone,
		ErrorColor:  cli.UiColorRed,
		WarnColor:   cli.UiColorYellow,
	}
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	args := os.Args[1:]

	// A worker subcommand never goes through cli.CLI: it is invoked
	// by internal/exec's worker pool, not by a human, and must keep a
	// minimal, stable argv contract.
	if len(args) >= 1 && args[0] == kahmiexec.WorkerSubcommand {
		return runWorker(args[1:])
	}

	initCommands(os.Args[0])

	args, err := mergeEnvArgs(EnvCLIArgs, args)
	if err != nil {
		Ui.Error(err.Error())
		return 1
	}

	runner := &cli.CLI{
		Name:     "kahmi",
		Args:     args,
		Commands: commands,
		HelpFunc: cli.BasicHelpFunc("kahmi"),
	}

	exitCode, err := runner.Run()
	if err != nil {
		Ui.Error(fmt.Sprintf("error executing CLI: %s", err))
		return 1
	}
	return exitCode
}

func runWorker(args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "kahmi worker: expected <request-path> <result-path> [fifo-path]")
		return 1
	}
	requestPath, resultPath := args[0], args[1]
	fifoPath := ""
	if len(args) >= 3 {
		fifoPath = args[2]
	}
	if err := kahmiexec.RunWorkerProcess(context.Background(), requestPath, resultPath, fifoPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func mergeEnvArgs(envName string, args []string) ([]string, error) {
	v := os.Getenv(envName)
	if v == "" {
		return args, nil
	}
	extra, err := shellwords.Parse(v)
	if err != nil {
		return nil, fmt.Errorf("parsing extra CLI args from %s: %w", envName, err)
	}
	return append(extra, args...), nil
}

func workingDirectory() (string, error) {
	return os.Getwd()
}
