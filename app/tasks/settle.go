// Package tasks runs independent branches of work concurrently and reports
// one outcome per branch.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of one branch. Exactly one of Value or Err is
// meaningful.
type Outcome[T any] struct {
	Value T
	Err   error
}

func (o Outcome[T]) OK() bool {
	return o.Err == nil
}

// Settle runs every fn concurrently and waits for all of them. A failing or
// panicking branch never cancels its siblings. Outcomes keep the order of
// fns. limit bounds the number of branches in flight; 0 means unbounded.
func Settle[T any](ctx context.Context, limit int, fns ...func(context.Context) (T, error)) []Outcome[T] {
	outcomes := make([]Outcome[T], len(fns))
	if len(fns) == 0 {
		return outcomes
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	start := time.Now()
	for i, fn := range fns {
		g.Go(func() error {
			outcomes[i] = run(ctx, fn)
			return nil
		})
	}
	g.Wait()

	slog.Debug("Fan-out completed",
		"branches", len(fns),
		"failed", Failures(outcomes),
		"duration", time.Since(start))

	return outcomes
}

// SettleEach applies fn to every input concurrently, see Settle.
func SettleEach[In, T any](ctx context.Context, limit int, inputs []In, fn func(context.Context, In) (T, error)) []Outcome[T] {
	fns := make([]func(context.Context) (T, error), len(inputs))
	for i, input := range inputs {
		fns[i] = func(ctx context.Context) (T, error) {
			return fn(ctx, input)
		}
	}
	return Settle(ctx, limit, fns...)
}

// Failures counts failed outcomes.
func Failures[T any](outcomes []Outcome[T]) int {
	failed := 0
	for _, outcome := range outcomes {
		if !outcome.OK() {
			failed++
		}
	}
	return failed
}

func run[T any](ctx context.Context, fn func(context.Context) (T, error)) (outcome Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome[T]{Err: fmt.Errorf("branch panicked: %v", r)}
		}
	}()

	value, err := fn(ctx)
	if err != nil {
		return Outcome[T]{Err: err}
	}
	return Outcome[T]{Value: value}
}
