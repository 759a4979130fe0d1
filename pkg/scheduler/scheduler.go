package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithJobTimeout bounds every job. Zero means jobs only stop on Stop or Close.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.jobTimeout = d
	}
}

// job is a submitted unit of work waiting for an idle slot.
type job struct {
	name   string
	fn     Work[any]
	ctx    context.Context
	cancel context.CancelFunc
	out    chan Result[any]
}

// Scheduler runs jobs on a bounded number of slots. Jobs beyond that wait in
// submission order.
type Scheduler struct {
	slots      int
	jobTimeout time.Duration

	submit   chan job
	finished chan struct{}
	close    chan struct{}
	stopped  chan struct{}

	mainCtx    context.Context
	mainCancel context.CancelFunc
	inflight   sync.WaitGroup
	once       sync.Once

	queued    atomic.Int64
	running   atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// NewScheduler starts a pool running at most slots jobs at once.
func NewScheduler(slots int, opts ...Option) *Scheduler {
	if slots < 1 {
		slots = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		slots:      slots,
		submit:     make(chan job),
		finished:   make(chan struct{}, slots),
		close:      make(chan struct{}),
		stopped:    make(chan struct{}),
		mainCtx:    ctx,
		mainCancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.loop()
	return s
}

// AddWork submits fn under name and returns its Future right away. After Close
// the Future resolves with context.Canceled.
func (s *Scheduler) AddWork(name string, fn Work[any]) *Future[Result[any]] {
	out := make(chan Result[any], 1)

	var ctx context.Context
	var cancel context.CancelFunc
	if s.jobTimeout > 0 {
		ctx, cancel = context.WithTimeout(s.mainCtx, s.jobTimeout)
	} else {
		ctx, cancel = context.WithCancel(s.mainCtx)
	}

	s.queued.Add(1)
	select {
	case <-s.mainCtx.Done():
		s.queued.Add(-1)
		cancel()
		out <- Result[any]{Err: context.Canceled}
	case s.submit <- job{name: name, fn: fn, ctx: ctx, cancel: cancel, out: out}:
	}

	return NewFuture(out, cancel)
}

// Stats returns a snapshot of the pool counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Queued:    int(s.queued.Load()),
		Running:   int(s.running.Load()),
		Completed: int(s.completed.Load()),
		Failed:    int(s.failed.Load()),
	}
}

// Close cancels every job and returns once running jobs have returned.
// Calling it again is a no-op.
func (s *Scheduler) Close() {
	s.once.Do(func() {
		s.mainCancel()
		s.close <- struct{}{}
		<-s.stopped
	})
}

func (s *Scheduler) loop() {
	defer close(s.stopped)

	idle := s.slots
	var pending []job

	start := func() {
		for idle > 0 && len(pending) > 0 {
			j := pending[0]
			pending = pending[1:]
			idle--
			s.queued.Add(-1)
			s.running.Add(1)
			s.inflight.Add(1)
			go s.execute(j)
		}
	}

	for {
		select {
		case j := <-s.submit:
			pending = append(pending, j)
			start()
		case <-s.finished:
			idle++
			start()
		case <-s.close:
			for _, j := range pending {
				j.cancel()
				j.out <- Result[any]{Err: context.Canceled}
			}
			s.queued.Add(-int64(len(pending)))
			s.inflight.Wait()
			return
		}
	}
}

func (s *Scheduler) execute(j job) {
	log := zap.S().Named("scheduler")
	started := time.Now()

	var res Result[any]
	defer func() {
		if rec := recover(); rec != nil {
			log.Errorw("job panicked", "job", j.name, "panic", rec)
			res = Result[any]{Err: fmt.Errorf("job %q panicked: %v", j.name, rec)}
		}
		if res.Err != nil {
			s.failed.Add(1)
		} else {
			s.completed.Add(1)
		}
		s.running.Add(-1)
		j.cancel()
		log.Debugw("job finished", "job", j.name, "duration", time.Since(started), "error", res.Err)

		j.out <- res
		s.finished <- struct{}{}
		s.inflight.Done()
	}()

	v, err := j.fn(j.ctx)
	res = Result[any]{Data: v, Err: err}
}
