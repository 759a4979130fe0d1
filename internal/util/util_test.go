package util_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/util"
)

var _ = Describe("Util", func() {
	DescribeTable("SanitizeFileName",
		func(in, expected string) {
			Expect(util.SanitizeFileName(in)).To(Equal(expected))
		},
		Entry("spaces and case", "Loads The Root", "loads-the-root"),
		Entry("entity identifiers", "opens waf@docker details", "opens-waf-docker-details"),
		Entry("repeated separators", "a  /  b", "a-b"),
		Entry("group prefix kept", "Routers_lists all", "routers_lists-all"),
		Entry("trailing punctuation", "done!", "done"),
		Entry("nothing usable", "???", "unnamed"),
	)

	DescribeTable("Truncate",
		func(in string, n int, expected string) {
			Expect(util.Truncate(in, n)).To(Equal(expected))
		},
		Entry("short enough", "abc", 5, "abc"),
		Entry("cut with marker", "Internal Server Error", 11, "Internal..."),
		Entry("tiny limit", "abcdef", 2, "ab"),
	)

	It("should find strings in a slice", func() {
		Expect(util.Contains([]string{"a", "b"}, "b")).To(BeTrue())
		Expect(util.Contains(nil, "b")).To(BeFalse())
	})
})
