// Package scheduler runs named jobs on a bounded pool and hands back futures.
//
// The harness uses it to read routers, middlewares and services from the
// introspection API at the same time. Browser work never goes through it: the
// dashboard is driven from a single browsing context, one scenario at a time.
//
// # Layout
//
//	                 AddWork(name, fn)
//	                        │
//	                        ▼
//	┌───────────────────────────────────────────────────────┐
//	│ loop()                                                │
//	│                                                       │
//	│   pending: [list-routers] [list-services] ...         │
//	│                        │                              │
//	│              idle > 0 ?│ start()                      │
//	│                        ▼                              │
//	│   ┌──────────┐  ┌──────────┐        ┌──────────┐      │
//	│   │  slot 1  │  │  slot 2  │  ...   │  slot N  │      │
//	│   └────┬─────┘  └────┬─────┘        └────┬─────┘      │
//	│        └─────────────┴──── finished ─────┘            │
//	└───────────────────────────────────────────────────────┘
//
// A single goroutine owns the pending list and the idle slot count, so neither
// needs a lock. It reacts to three events:
//
//	event          effect
//	─────────────  ─────────────────────────────────────────────────
//	submit         append to pending, start as many jobs as slots allow
//	finished       one slot back to idle, start the next pending job
//	close          resolve pending jobs as canceled, wait for running ones
//
// Pending jobs start in submission order.
//
// # Jobs and futures
//
// AddWork never blocks on a busy pool. It returns a Future whose channel
// receives exactly one Result. Await is the usual way to consume it:
//
//	f := sched.AddWork("list-routers", func(ctx context.Context) (any, error) {
//	    return client.Routers(ctx)
//	})
//	routers, err := scheduler.Await[[]v1.Router](ctx, f)
//
// Await stops the job when ctx ends first, and fails with
// "unexpected result type" when the data is not a T.
//
// # Cancellation
//
//	trigger              scope
//	───────────────────  ──────────────────────────
//	Future.Stop()        that job
//	WithJobTimeout(d)    every job, d after submission
//	Close()              every running and pending job
//
// A job context is released as soon as the job returns.
//
// # Failures
//
// A job error is delivered as Result.Err and counted in Stats().Failed. A panic
// is logged under the "scheduler" logger and becomes the error
// `job "<name>" panicked: <value>`. The slot is reused either way.
//
// # Shutdown
//
// Close cancels the pool context, resolves the pending jobs with
// context.Canceled and returns once running jobs have returned. It is safe to
// call more than once. Work submitted after Close resolves with
// context.Canceled without running.
package scheduler
