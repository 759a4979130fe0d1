package scheduler

import (
	"context"
	"fmt"
)

// Work is a job body. ctx is cancelled by Future.Stop, the job timeout or Close.
type Work[T any] func(ctx context.Context) (T, error)

type Result[T any] struct {
	Data T
	Err  error
}

// Stats counts jobs by state. Completed and Failed only grow.
type Stats struct {
	Queued    int
	Running   int
	Completed int
	Failed    int
}

// Future is the pending outcome of one job.
type Future[T any] struct {
	input  chan T
	cancel context.CancelFunc
}

func NewFuture[T any](input chan T, cancel context.CancelFunc) *Future[T] {
	return &Future[T]{input: input, cancel: cancel}
}

// C delivers exactly one value.
func (f *Future[T]) C() chan T {
	return f.input
}

// Stop cancels the job. It does not wait for it.
func (f *Future[T]) Stop() {
	f.cancel()
}

// Await blocks until f resolves or ctx is done, in which case the job is stopped.
// The result data is asserted to T.
func Await[T any](ctx context.Context, f *Future[Result[any]]) (T, error) {
	var zero T
	select {
	case <-ctx.Done():
		f.Stop()
		return zero, ctx.Err()
	case r := <-f.C():
		if r.Err != nil {
			return zero, r.Err
		}
		if r.Data == nil {
			return zero, nil
		}
		v, ok := r.Data.(T)
		if !ok {
			return zero, fmt.Errorf("unexpected result type %T", r.Data)
		}
		return v, nil
	}
}
