package logging_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap/zapcore"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/logging"
)

var _ = Describe("New", func() {
	It("should honor the level", func() {
		logger, err := logging.New("warn", "json")
		Expect(err).NotTo(HaveOccurred())

		Expect(logger.Core().Enabled(zapcore.InfoLevel)).To(BeFalse())
		Expect(logger.Core().Enabled(zapcore.WarnLevel)).To(BeTrue())
	})

	It("should reject unknown levels and formats", func() {
		_, err := logging.New("loud", "console")
		Expect(err).To(HaveOccurred())

		_, err = logging.New("info", "xml")
		Expect(err).To(HaveOccurred())
	})
})
