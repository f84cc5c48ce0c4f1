// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package action

import (
	"context"
	"fmt"
	"sync"

	"github.com/kahmi-build/kahmi/internal/model"
)

// BuiltinFunc is a named, worker-crossable stand-in for the Python
// original's LambdaAction. Go has no transparent closure
// serialization, so per spec.md's Design Notes a lambda must be
// re-expressed as a registered builtin the worker process can look up
// by ID instead of shipping the closure itself.
type BuiltinFunc func(ctx context.Context, task *model.Task, params map[string]any) error

var (
	registryMu sync.RWMutex
	registry   = map[string]BuiltinFunc{}
)

// RegisterBuiltin makes fn available under id to both the main process
// and any worker process started from the same binary. Call it from
// an init() in the package that defines the builtin, the same way
// plugins register task factories (see internal/plugin).
func RegisterBuiltin(id string, fn BuiltinFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[id]; exists {
		panic(fmt.Sprintf("builtin action %q already registered", id))
	}
	registry[id] = fn
}

func lookupBuiltin(id string) (BuiltinFunc, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[id]
	return fn, ok
}

// Builtin invokes a previously registered BuiltinFunc by ID. Unlike
// Func, a Builtin survives the round trip into a worker process.
type Builtin struct {
	ID     string
	Params map[string]any
}

var _ model.Action = (*Builtin)(nil)
var _ model.Specable = (*Builtin)(nil)

func (b *Builtin) Execute(ctx context.Context, task *model.Task) error {
	fn, ok := lookupBuiltin(b.ID)
	if !ok {
		return fmt.Errorf("no builtin action registered under id %q", b.ID)
	}
	return fn(ctx, task, b.Params)
}

func (b *Builtin) Spec() model.ActionSpec {
	return model.ActionSpec{
		Kind:    "builtin",
		Builtin: &model.BuiltinSpec{ID: b.ID, Params: b.Params},
	}
}

// Func wraps an arbitrary closure as an Action for in-process use
// (tests, sequential execution). It does not implement Specable: a
// task performing a Func action can only run with parallelism 1,
// since the closure cannot cross into a worker process.
type Func struct {
	Fn func(ctx context.Context, task *model.Task) error
}

var _ model.Action = (*Func)(nil)

func (f *Func) Execute(ctx context.Context, task *model.Task) error {
	if err := f.Fn(ctx, task); err != nil {
		return err
	}
	task.DidWork = true
	return nil
}
