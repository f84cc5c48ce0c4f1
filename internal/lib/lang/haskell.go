// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package lang

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/kahmi-build/kahmi/internal/action"
	"github.com/kahmi-build/kahmi/internal/model"
	"github.com/kahmi-build/kahmi/internal/plugin"
	"github.com/kahmi-build/kahmi/internal/property"
	"github.com/kahmi-build/kahmi/internal/provider"
)

// HaskellOptions configures a single HaskellApplication task, ported
// from HaskellApplication in lib/lang/haskell.py.
type HaskellOptions struct {
	Srcs          []string
	CompilerFlags []string
	ProductName   string
}

func applyHaskell(project *model.Project) error {
	return project.RegisterExtension("haskellApplication", func(name string, opts HaskellOptions) (*model.Task, error) {
		factory := plugin.NewTaskFactory(project, name, haskellConstructor(opts))
		return factory.New(name)
	})
}

func haskellConstructor(opts HaskellOptions) plugin.Constructor {
	return func(task *model.Task) error {
		if opts.ProductName == "" {
			opts.ProductName = "main"
		}

		srcs := task.DeclareListProperty("srcs", property.NewListProperty(property.InputFile))
		for _, s := range opts.Srcs {
			srcs.Add(s)
		}

		flags := task.DeclareListProperty("compilerFlags", property.NewListProperty())
		for _, f := range opts.CompilerFlags {
			flags.Add(f)
		}

		outputDirectory := task.DeclareProperty("outputDirectory", property.New())
		outputDirectory.SetDefaultFunc(func(property.Owner) any {
			return filepath.Join(task.Project().BuildDirectory(), "haskell", task.Name())
		})

		productName := task.DeclareProperty("productName", property.New())
		productName.SetDefault(opts.ProductName)

		suffix := ""
		if runtime.GOOS == "windows" {
			suffix = ".exe"
		}

		outputFile := task.DeclareProperty("outputFile", property.New(property.Output))
		outputFile.SetDefaultFunc(func(property.Owner) any {
			dir, _ := provider.Get[string](outputDirectory)
			name, _ := provider.Get[string](productName)
			return filepath.Join(dir, name+suffix)
		})

		of, err := outputFile.Finalize()
		if err != nil {
			return fmt.Errorf("haskellApplication %s: %w", task.Path(), err)
		}
		outputPath := of.(string)

		srcPaths, err := stringListValues(srcs)
		if err != nil {
			return err
		}
		flagValues, err := stringListValues(flags)
		if err != nil {
			return err
		}

		command := append([]string{"ghc", "-o", outputPath}, srcPaths...)
		command = append(command, flagValues...)

		task.Performs(&action.CreateDir{Directory: filepath.Dir(outputPath)})
		task.Performs(&action.Command{Commands: [][]string{command}})

		runTask, err := task.Project().Task(task.Name() + "Run")
		if err != nil {
			return fmt.Errorf("haskellApplication %s: %w", task.Path(), err)
		}
		runTask.Group = "run"
		runTask.Default = false
		runTask.DependsOn(task)
		runTask.Performs(&action.Command{Commands: [][]string{{outputPath}}})

		return nil
	}
}

func stringListValues(lp *property.ListProperty) ([]string, error) {
	v, err := lp.Get()
	if err != nil {
		return nil, nil
	}
	raw, _ := v.([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected string element, got %v", item)
		}
		out = append(out, s)
	}
	return out, nil
}
