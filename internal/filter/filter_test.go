package filter_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/filter"
	srvErrors "github.com/david-garcia-garcia/traefik-with-plugins/pkg/errors"
)

const hubButtonMessage = `NotSupportedError: Failed to execute 'define' on 'CustomElementRegistry': the name "hub-button-app" has already been used with this registry`

var _ = Describe("Filter", func() {
	var f *filter.Filter

	BeforeEach(func() {
		f = filter.New(filter.DefaultRules()...)
	})

	Context("Handle", func() {
		// Given the default rules
		// When the hub button registration error is raised
		// Then it should be suppressed and the filter should stay armed
		It("should suppress the hub button error", func() {
			// Act
			err := f.Handle(hubButtonMessage)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(f.State()).To(Equal(filter.StateArmed))
			Expect(f.Err()).To(BeNil())
			Expect(f.Suppressed()).To(ConsistOf(hubButtonMessage))
		})

		// Given the default rules
		// When an unrelated error is raised
		// Then it should propagate as an UnhandledPageError
		It("should propagate errors no rule matches", func() {
			// Act
			err := f.Handle("TypeError: cannot read properties of undefined")

			// Assert
			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsUnhandledPageError(err)).To(BeTrue())
			Expect(f.State()).To(Equal(filter.StateTriggered))
			Expect(f.Err()).To(MatchError(err))
		})

		// Given a filter that already propagated an error
		// When a second error propagates
		// Then the first error should be kept as the scenario error
		It("should keep the first propagated error", func() {
			// Arrange
			first := f.Handle("first failure")

			// Act
			second := f.Handle("second failure")

			// Assert
			Expect(second).To(HaveOccurred())
			Expect(f.Err()).To(Equal(first))
		})

		// Given a rule with a propagate verdict ahead of a suppress rule
		// When an error matches both
		// Then the first matching rule should win
		It("should apply the first matching rule", func() {
			// Arrange
			f = filter.New(
				filter.Rule{Name: "strict", Contains: "hub-button", Verdict: filter.VerdictPropagate},
				filter.HubButtonRule,
			)

			// Act
			verdict, rule := f.Evaluate(hubButtonMessage)

			// Assert
			Expect(verdict).To(Equal(filter.VerdictPropagate))
			Expect(rule).To(Equal("strict"))
		})

		It("should propagate when there are no rules", func() {
			f = filter.New()

			verdict, rule := f.Evaluate(hubButtonMessage)

			Expect(verdict).To(Equal(filter.VerdictPropagate))
			Expect(rule).To(BeEmpty())
		})
	})

	Context("OnTrigger", func() {
		// Given a registered trigger callback
		// When two errors propagate
		// Then the callback should run only once
		It("should call the callback on the first propagated error only", func() {
			// Arrange
			var calls []error
			f.OnTrigger(func(err error) { calls = append(calls, err) })

			// Act
			Expect(f.Handle(hubButtonMessage)).To(Succeed())
			_ = f.Handle("boom")
			_ = f.Handle("boom again")

			// Assert
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].Error()).To(ContainSubstring("boom"))
		})
	})

	Context("Reset", func() {
		// Given a triggered filter with a scenario-only rule
		// When the filter is reset
		// Then it should be armed again with the default rules only
		It("should restore the armed state and the default rules", func() {
			// Arrange
			f.Add(filter.Rule{Name: "extra", Contains: "flaky", Verdict: filter.VerdictSuppress})
			_ = f.Handle("boom")
			Expect(f.Rules()).To(HaveLen(2))

			// Act
			f.Reset()

			// Assert
			Expect(f.State()).To(Equal(filter.StateArmed))
			Expect(f.Err()).To(BeNil())
			Expect(f.Suppressed()).To(BeEmpty())
			Expect(f.Rules()).To(Equal(filter.DefaultRules()))
		})
	})

	Context("Concurrent events", func() {
		It("should record exactly one scenario error", func() {
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_ = f.Handle("boom")
					_ = f.Handle(hubButtonMessage)
				}()
			}
			wg.Wait()

			Expect(f.State()).To(Equal(filter.StateTriggered))
			Expect(f.Suppressed()).To(HaveLen(50))
		})
	})

	Describe("ParseVerdict", func() {
		It("should reject unknown verdicts", func() {
			_, err := filter.ParseVerdict("ignore")
			Expect(err).To(HaveOccurred())

			v, err := filter.ParseVerdict("suppress")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(filter.VerdictSuppress))
		})
	})
})
