// Package worker runs closures on one owned goroutine. Callers hand work
// over and wait for it through futures, so state touched only from inside
// the closures needs no locking.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/elementsproject/lightning-integration/log"
)

var ErrStopped = errors.New("worker stopped")

type Func func(ctx context.Context) (interface{}, error)

type result struct {
	val interface{}
	err error
}

type job struct {
	ctx    context.Context
	fn     Func
	future *Future
}

type Worker struct {
	name string
	jobs chan *job
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// New starts a worker goroutine.
func New(name string) *Worker {
	w := &Worker{
		name: name,
		jobs: make(chan *job),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			return
		case j := <-w.jobs:
			j.future.resolve(w.run(j))
		}
	}
}

func (w *Worker) run(j *job) result {
	return runJob(w.name, j)
}

func runJob(name string, j *job) (res result) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("[%s] job panicked: %v", name, r)
			res = result{err: fmt.Errorf("%s: job panicked: %v", name, r)}
		}
	}()
	if err := j.ctx.Err(); err != nil {
		return result{err: err}
	}
	val, err := j.fn(j.ctx)
	return result{val: val, err: err}
}

// Future is the pending result of a submitted closure.
type Future struct {
	done chan struct{}
	res  result
}

func (f *Future) resolve(r result) {
	f.res = r
	close(f.done)
}

// Await blocks until the closure finished or ctx is done. The closure
// keeps running when ctx expires first; its result is then dropped.
func (f *Future) Await(ctx context.Context) (interface{}, error) {
	select {
	case <-f.done:
		return f.res.val, f.res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Submit queues fn. The returned future fails with ErrStopped if the
// worker is stopped before fn was picked up.
func (w *Worker) Submit(ctx context.Context, fn Func) *Future {
	f := &Future{done: make(chan struct{})}
	j := &job{ctx: ctx, fn: fn, future: f}
	select {
	case w.jobs <- j:
	case <-w.quit:
		f.resolve(result{err: ErrStopped})
	case <-ctx.Done():
		f.resolve(result{err: ctx.Err()})
	}
	return f
}

// Go runs fn on a goroutine of its own, outside of any worker. It is for
// calls that may block far longer than the bounded calls queued behind them.
func Go(ctx context.Context, fn Func) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		f.resolve(runJob("go", &job{ctx: ctx, fn: fn, future: f}))
	}()
	return f
}

// Do submits fn and waits for it.
func (w *Worker) Do(ctx context.Context, fn Func) (interface{}, error) {
	return w.Submit(ctx, fn).Await(ctx)
}

// Call is Do with a typed result.
func Call[T any](ctx context.Context, w *Worker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	val, err := w.Do(ctx, func(ctx context.Context) (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	return val.(T), nil
}

// Stop ends the loop after the running job. It is safe to call more than
// once.
func (w *Worker) Stop() {
	w.once.Do(func() { close(w.quit) })
	<-w.done
}
