package scheduler_test

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/david-garcia-garcia/traefik-with-plugins/pkg/scheduler"
)

// blockUntilDone is a job that only returns once its context is cancelled.
func blockUntilDone(ctx context.Context) (any, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

var _ = Describe("Scheduler", func() {
	var s *scheduler.Scheduler

	AfterEach(func() {
		if s != nil {
			s.Close()
		}
	})

	Context("AddWork", func() {
		// Given a pool with one slot
		// When a job is submitted
		// Then its future delivers the job data
		It("resolves the future with the job data", func() {
			// Arrange
			s = scheduler.NewScheduler(1)

			// Act
			future := s.AddWork("list-routers", func(ctx context.Context) (any, error) {
				return "done", nil
			})

			// Assert
			var result scheduler.Result[any]
			Eventually(future.C(), 2*time.Second).Should(Receive(&result))
			Expect(result.Data).To(Equal("done"))
			Expect(result.Err).NotTo(HaveOccurred())
		})

		// Given a pool with one slot and a running job
		// When two more jobs are submitted
		// Then they start in submission order once the slot frees up
		It("starts queued jobs in submission order", func() {
			// Arrange
			s = scheduler.NewScheduler(1)
			release := make(chan struct{})
			s.AddWork("blocker", func(ctx context.Context) (any, error) {
				<-release
				return nil, nil
			})

			var mu sync.Mutex
			var order []string
			record := func(name string) scheduler.Work[any] {
				return func(ctx context.Context) (any, error) {
					mu.Lock()
					defer mu.Unlock()
					order = append(order, name)
					return name, nil
				}
			}

			// Act
			first := s.AddWork("routers", record("routers"))
			second := s.AddWork("services", record("services"))
			Eventually(func() int { return s.Stats().Queued }, time.Second).Should(Equal(2))
			close(release)

			// Assert
			Eventually(first.C(), time.Second).Should(Receive())
			Eventually(second.C(), time.Second).Should(Receive())
			mu.Lock()
			defer mu.Unlock()
			Expect(order).To(Equal([]string{"routers", "services"}))
		})

		// Given a pool with two slots
		// When four blocking jobs are submitted
		// Then only two run at once
		It("never runs more jobs than slots", func() {
			// Arrange
			s = scheduler.NewScheduler(2)

			// Act
			for _, name := range []string{"a", "b", "c", "d"} {
				s.AddWork(name, blockUntilDone)
			}

			// Assert
			Eventually(func() int { return s.Stats().Running }, time.Second).Should(Equal(2))
			Consistently(func() int { return s.Stats().Running }, 200*time.Millisecond).Should(Equal(2))
			Expect(s.Stats().Queued).To(Equal(2))
		})
	})

	Context("Cancellation", func() {
		// Given a running job
		// When its future is stopped
		// Then the job context is cancelled
		It("cancels one job through Future.Stop", func() {
			// Arrange
			s = scheduler.NewScheduler(1)
			cancelled := make(chan struct{})
			future := s.AddWork("slow", func(ctx context.Context) (any, error) {
				<-ctx.Done()
				close(cancelled)
				return nil, ctx.Err()
			})
			Eventually(func() int { return s.Stats().Running }, time.Second).Should(Equal(1))

			// Act
			future.Stop()

			// Assert
			Eventually(cancelled, 2*time.Second).Should(BeClosed())
		})

		// Given a pool with a job timeout
		// When a job outlives it
		// Then the job sees a deadline and counts as failed
		It("bounds jobs with the job timeout", func() {
			// Arrange
			s = scheduler.NewScheduler(1, scheduler.WithJobTimeout(50*time.Millisecond))

			// Act
			future := s.AddWork("hung", blockUntilDone)

			// Assert
			_, err := scheduler.Await[string](context.Background(), future)
			Expect(err).To(MatchError(context.DeadlineExceeded))
			Eventually(func() int { return s.Stats().Failed }, time.Second).Should(Equal(1))
		})

		// Given a running job and a queued one
		// When the pool is closed
		// Then the running job is cancelled and the queued one resolves as canceled
		It("cancels running and queued jobs on Close", func() {
			// Arrange
			s = scheduler.NewScheduler(1)
			cancelled := make(chan struct{})
			s.AddWork("running", func(ctx context.Context) (any, error) {
				<-ctx.Done()
				close(cancelled)
				return nil, ctx.Err()
			})
			queued := s.AddWork("queued", func(ctx context.Context) (any, error) {
				return "never", nil
			})
			Eventually(func() int { return s.Stats().Queued }, time.Second).Should(Equal(1))

			// Act
			s.Close()
			s = nil

			// Assert
			Eventually(cancelled, 2*time.Second).Should(BeClosed())
			var result scheduler.Result[any]
			Eventually(queued.C(), time.Second).Should(Receive(&result))
			Expect(result.Err).To(MatchError(context.Canceled))
		})
	})

	Context("Close", func() {
		It("resolves work submitted after Close as canceled", func() {
			s = scheduler.NewScheduler(1)
			s.Close()

			future := s.AddWork("late", func(ctx context.Context) (any, error) {
				return "done", nil
			})

			var result scheduler.Result[any]
			Eventually(future.C(), time.Second).Should(Receive(&result))
			Expect(result.Err).To(MatchError(context.Canceled))
		})

		It("waits for running jobs to return", func() {
			s = scheduler.NewScheduler(1)
			started := make(chan struct{})
			unblock := make(chan struct{})
			s.AddWork("stubborn", func(ctx context.Context) (any, error) {
				close(started)
				<-unblock
				return "done", nil
			})
			Eventually(started, time.Second).Should(BeClosed())

			closeDone := make(chan struct{})
			go func() {
				s.Close()
				close(closeDone)
			}()

			Consistently(closeDone, 200*time.Millisecond).ShouldNot(BeClosed())
			close(unblock)
			Eventually(closeDone, time.Second).Should(BeClosed())
			s = nil
		})

		It("does not leak goroutines under load", func() {
			base := runtime.NumGoroutine()
			s = scheduler.NewScheduler(4)

			for i := 0; i < 200; i++ {
				s.AddWork("load", blockUntilDone)
			}
			time.Sleep(100 * time.Millisecond)
			s.Close()
			s = nil

			Eventually(runtime.NumGoroutine, 5*time.Second, 100*time.Millisecond).Should(BeNumerically("<=", base+10))
		})
	})

	Context("Stats", func() {
		It("counts completed and failed jobs", func() {
			s = scheduler.NewScheduler(2)

			ok := s.AddWork("ok", func(ctx context.Context) (any, error) { return 1, nil })
			ko := s.AddWork("ko", func(ctx context.Context) (any, error) { return nil, errors.New("boom") })
			Eventually(ok.C(), time.Second).Should(Receive())
			Eventually(ko.C(), time.Second).Should(Receive())

			Eventually(s.Stats, time.Second).Should(Equal(scheduler.Stats{Completed: 1, Failed: 1}))
		})
	})

	Context("Await", func() {
		It("returns typed data", func() {
			s = scheduler.NewScheduler(2)

			future := s.AddWork("ids", func(ctx context.Context) (any, error) {
				return []string{"waf@docker", "geoblock@docker"}, nil
			})

			ids, err := scheduler.Await[[]string](context.Background(), future)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf("waf@docker", "geoblock@docker"))
		})

		It("surfaces the job error", func() {
			s = scheduler.NewScheduler(1)
			boom := errors.New("listing failed")

			future := s.AddWork("ko", func(ctx context.Context) (any, error) {
				return nil, boom
			})

			_, err := scheduler.Await[[]string](context.Background(), future)
			Expect(err).To(MatchError(boom))
		})

		It("rejects data of another type", func() {
			s = scheduler.NewScheduler(1)

			future := s.AddWork("int", func(ctx context.Context) (any, error) {
				return 42, nil
			})

			_, err := scheduler.Await[string](context.Background(), future)
			Expect(err).To(MatchError(ContainSubstring("unexpected result type int")))
		})

		It("stops the job when the caller gives up", func() {
			s = scheduler.NewScheduler(1)
			stopped := make(chan struct{})

			future := s.AddWork("slow", func(ctx context.Context) (any, error) {
				<-ctx.Done()
				close(stopped)
				return nil, ctx.Err()
			})

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			_, err := scheduler.Await[string](ctx, future)
			Expect(err).To(MatchError(context.DeadlineExceeded))
			Eventually(stopped, time.Second).Should(BeClosed())
		})

		It("reports panics as errors naming the job", func() {
			s = scheduler.NewScheduler(1)

			future := s.AddWork("list-services", func(ctx context.Context) (any, error) {
				panic("nil map")
			})

			_, err := scheduler.Await[string](context.Background(), future)
			Expect(err).To(MatchError(`job "list-services" panicked: nil map`))
		})
	})
})
