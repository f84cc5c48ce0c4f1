// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package exec

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/kahmi-build/kahmi/internal/graph"
	"github.com/kahmi-build/kahmi/internal/model"
	"github.com/kahmi-build/kahmi/internal/state"
)

// Executor runs a build graph's selected tasks to completion.
type Executor struct {
	// Parallelism is P from spec.md: 1 runs every task in-process in
	// strict topological order; >1 dispatches tasks to a worker-process
	// pool of this size as soon as their dependencies finish.
	Parallelism int

	Tracker  state.Tracker
	Listener Listener

	// WorkerBinary is the executable re-exec'd as a worker for
	// Parallelism > 1. Callers pass os.Args[0].
	WorkerBinary string

	// ScratchDir holds request/result/FIFO files exchanged with
	// workers. Defaults to os.TempDir() if empty.
	ScratchDir string

	// Logger receives per-task scheduling and dispatch events, normally
	// a logger.Named("exec") sub-logger of the process-wide logger.
	// Defaults to a null logger if unset.
	Logger hclog.Logger
}

func (e *Executor) logger() hclog.Logger {
	if e.Logger == nil {
		return hclog.NewNullLogger()
	}
	return e.Logger
}

// Run executes every task g selects, in dependency order, stopping
// dispatch of new tasks after the first failure but letting in-flight
// tasks finish, then returning the failure. In parallel mode every
// failure recorded before dispatch stopped is returned together in one
// multierror.Error.
func (e *Executor) Run(ctx context.Context, g *graph.BuildGraph) error {
	closure := g.SelectedClosure()
	order, err := closure.Order()
	if err != nil {
		return err
	}

	e.logger().Debug("running build", "tasks", len(order), "parallelism", e.Parallelism)

	if e.Parallelism <= 1 {
		return e.runSequential(ctx, order)
	}
	return e.runParallel(ctx, closure, order)
}

func (e *Executor) runSequential(ctx context.Context, order []*model.Task) error {
	for _, task := range order {
		if err := e.runOne(ctx, task); err != nil {
			return err
		}
		if task.Err != nil {
			return task.Err
		}
	}
	return nil
}

func (e *Executor) runParallel(ctx context.Context, closure *graph.BuildGraph, order []*model.Task) error {
	done := make(map[*model.Task]chan struct{}, len(order))
	for _, task := range order {
		done[task] = make(chan struct{})
	}

	var (
		mu     sync.Mutex
		errs   *multierror.Error
		failed bool
	)

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(e.Parallelism)

	for _, task := range order {
		task := task
		preds := closure.Predecessors(task)
		group.Go(func() error {
			defer close(done[task])
			for _, pred := range preds {
				select {
				case <-done[pred]:
				case <-gctx.Done():
					return gctx.Err()
				}
				if pred.Err != nil {
					task.Err = &model.ErrDependencyFailed{TaskPath: task.Path(), DepPath: pred.Path()}
					task.Executed = true
					mu.Lock()
					errs = multierror.Append(errs, task.Err)
					failed = true
					mu.Unlock()
					return nil
				}
			}

			mu.Lock()
			skip := failed
			mu.Unlock()
			if skip {
				return nil
			}

			if err := e.runOne(gctx, task); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				failed = true
				mu.Unlock()
				return nil
			}
			if task.Err != nil {
				mu.Lock()
				errs = multierror.Append(errs, task.Err)
				failed = true
				mu.Unlock()
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		mu.Lock()
		if errs == nil {
			errs = multierror.Append(errs, err)
		}
		mu.Unlock()
	}
	return errs.ErrorOrNil()
}

func (e *Executor) runOne(ctx context.Context, task *model.Task) error {
	inputs, err := task.GetTaskInputs()
	if err != nil {
		return fmt.Errorf("collect inputs for %s: %w", task.Path(), err)
	}

	changed := true
	if e.Tracker != nil {
		changed, err = e.Tracker.TaskInputsChanged(task, inputs)
		if err != nil {
			return err
		}
	}
	if inputs.Empty() {
		changed = true // force-always: an input-less task is never considered up to date
	}

	dirty := changed
	task.Dirty = &dirty

	if e.Listener != nil {
		notifyCleanupBegin(e.Listener, task)
		e.Listener.TaskExecuteBegin(task)
	}

	var output string
	if !changed {
		task.Executed = true
		e.logger().Debug("task up to date, skipping", "task", task.Path())
	} else if e.Parallelism <= 1 {
		e.logger().Debug("running task in-process", "task", task.Path())
		_ = task.Execute(ctx)
	} else {
		snapshot, snapErr := NewSnapshot(task)
		if snapErr != nil {
			task.Err = snapErr
			task.Executed = true
		} else {
			e.logger().Debug("dispatching task to worker", "task", task.Path())
			result, workerOutput, workerErr := runInWorker(ctx, e.WorkerBinary, e.scratchDir(), snapshot)
			output = workerOutput
			if workerErr != nil {
				task.Err = workerErr
				task.Executed = true
				e.logger().Error("worker dispatch failed", "task", task.Path(), "error", workerErr)
			} else {
				Reconcile(task, result)
			}
		}
	}

	if e.Listener != nil {
		e.Listener.TaskExecuteEnd(task, output)
		notifyCleanupEnd(e.Listener, task)
	}

	if e.Tracker != nil {
		if err := e.Tracker.TaskFinished(task, inputs); err != nil {
			return err
		}
	}

	return nil
}

func (e *Executor) scratchDir() string {
	if e.ScratchDir != "" {
		return e.ScratchDir
	}
	return os.TempDir()
}
