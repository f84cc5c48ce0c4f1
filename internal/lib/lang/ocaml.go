// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

// Package lang registers a small set of example build-definition
// plugins (one per supported language) under the
// "kahmi.build.lib.lang.<name>" namespace, the Go counterpart of the
// Python original's kahmi/build/lib/lang/*.py modules. They exist to
// give cmd/kahmi's "build" command something real to resolve and
// exercise internal/plugin and the CreateDir and Command actions end
// to end.
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

func init() {
	plugin.Register("kahmi.build.lib.lang.ocaml", applyOcaml)
	plugin.Register("kahmi.build.lib.lang.haskell", applyHaskell)
}

// OcamlOptions configures a single OcamlApplication task. Ported from
// OcamlApplication in lib/lang/ocaml.py: since Go has no
// build-definition language to populate properties after construction,
// the equivalent of the Python closure is a plain options struct
// supplied up front.
type OcamlOptions struct {
	Srcs        []string
	Standalone  bool
	ProductName string
}

func applyOcaml(project *model.Project) error {
	return project.RegisterExtension("ocamlApplication", func(name string, opts OcamlOptions) (*model.Task, error) {
		factory := plugin.NewTaskFactory(project, name, ocamlConstructor(opts))
		return factory.New(name)
	})
}

func ocamlConstructor(opts OcamlOptions) plugin.Constructor {
	return func(task *model.Task) error {
		if opts.ProductName == "" {
			opts.ProductName = "main"
		}

		srcs := task.DeclareListProperty("srcs", property.NewListProperty(property.InputFile))
		for _, s := range opts.Srcs {
			srcs.Add(s)
		}

		outputDirectory := task.DeclareProperty("outputDirectory", property.New())
		outputDirectory.SetDefaultFunc(func(property.Owner) any {
			return filepath.Join(task.Project().BuildDirectory(), "ocaml", task.Name())
		})

		productName := task.DeclareProperty("productName", property.New())
		productName.SetDefault(opts.ProductName)

		suffix := ocamlSuffix(opts.Standalone)

		outputFile := task.DeclareProperty("outputFile", property.New(property.Output))
		outputFile.SetDefaultFunc(func(property.Owner) any {
			dir, _ := provider.Get[string](outputDirectory)
			name, _ := provider.Get[string](productName)
			return filepath.Join(dir, name+suffix)
		})

		of, err := outputFile.Finalize()
		if err != nil {
			return fmt.Errorf("ocamlApplication %s: %w", task.Path(), err)
		}
		outputPath := of.(string)

		srcPaths, err := stringListValues(srcs)
		if err != nil {
			return err
		}

		compiler := "ocamlc"
		if opts.Standalone {
			compiler = "ocamlopt"
		}
		command := append([]string{compiler, "-o", outputPath}, srcPaths...)

		task.Performs(&action.CreateDir{Directory: filepath.Dir(outputPath)})
		task.Performs(&action.Command{Commands: [][]string{command}})

		runTask, err := task.Project().Task(task.Name() + "Run")
		if err != nil {
			return fmt.Errorf("ocamlApplication %s: %w", task.Path(), err)
		}
		runTask.Group = "run"
		runTask.Default = false
		runTask.DependsOn(task)
		runTask.Performs(&action.Command{Commands: [][]string{{outputPath}}})

		return nil
	}
}

func ocamlSuffix(standalone bool) string {
	switch {
	case standalone && runtime.GOOS == "windows":
		return ".exe"
	case !standalone:
		return ".cma"
	default:
		return ""
	}
}

