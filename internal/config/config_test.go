package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/config"
)

var _ = Describe("Configuration", func() {
	var fs *pflag.FlagSet

	BeforeEach(func() {
		fs = pflag.NewFlagSet("test", pflag.ContinueOnError)
		config.RegisterFlags(fs, config.NewConfigurationWithDefaults())
	})

	Context("Defaults", func() {
		It("should apply the documented defaults", func() {
			cfg := config.NewConfigurationWithDefaults()

			Expect(cfg.BaseURL).To(Equal("http://localhost:8080"))
			Expect(cfg.DashboardPath).To(Equal("/dashboard/"))
			Expect(cfg.DefaultCommandTimeout).To(Equal(10 * time.Second))
			Expect(cfg.ResponseTimeout).To(Equal(10 * time.Second))
			Expect(cfg.Video).To(BeFalse())
			Expect(cfg.ScreenshotOnRunFailure).To(BeTrue())
			Expect(cfg.SettleDelay).To(Equal(2 * time.Second))
			Expect(cfg.InteractionDelay).To(Equal(500 * time.Millisecond))
			Expect(cfg.Target).To(Equal(config.TargetExternal))
			Expect(cfg.Browser.Headless).To(BeTrue())
			Expect(cfg.Workers).To(Equal(3))
			Expect(cfg.Validate()).To(Succeed())
		})
	})

	Context("Load", func() {
		// Given no file, environment or flags
		// When the configuration is loaded
		// Then the defaults should be kept
		It("should keep defaults when nothing is set", func() {
			// Act
			cfg, err := config.Load(viper.New(), fs)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.NewConfigurationWithDefaults()))
		})

		// Given a configuration file and a flag setting the same key
		// When the configuration is loaded
		// Then the flag should win and the other file values should apply
		It("should let flags override the configuration file", func() {
			// Arrange
			path := filepath.Join(GinkgoT().TempDir(), "e2e.yaml")
			Expect(os.WriteFile(path, []byte(`
baseUrl: http://traefik:8080
settleDelay: 3s
browser:
  remoteUrl: ws://chrome:9222/devtools/browser/abc
report:
  junit: out/junit.xml
`), 0o600)).To(Succeed())
			Expect(fs.Parse([]string{"--config", path, "--settle-delay", "1s", "--target", "stub"})).To(Succeed())

			// Act
			cfg, err := config.Load(viper.New(), fs)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.BaseURL).To(Equal("http://traefik:8080"))
			Expect(cfg.SettleDelay).To(Equal(time.Second))
			Expect(cfg.Target).To(Equal(config.TargetStub))
			Expect(cfg.Browser.RemoteURL).To(Equal("ws://chrome:9222/devtools/browser/abc"))
			Expect(cfg.Browser.Width).To(Equal(1280))
			Expect(cfg.Report.JUnit).To(Equal("out/junit.xml"))
		})

		It("should fail on a missing configuration file", func() {
			Expect(fs.Parse([]string{"--config", filepath.Join(GinkgoT().TempDir(), "absent.yaml")})).To(Succeed())

			_, err := config.Load(viper.New(), fs)

			Expect(err).To(HaveOccurred())
		})

		It("should reject an invalid target", func() {
			Expect(fs.Parse([]string{"--target", "container"})).To(Succeed())

			_, err := config.Load(viper.New(), fs)

			Expect(err).To(MatchError(ContainSubstring("invalid target")))
		})
	})

	Context("Validate", func() {
		DescribeTable("should reject invalid values",
			func(mutate func(*config.Configuration), msg string) {
				cfg := config.NewConfigurationWithDefaults()
				mutate(cfg)
				Expect(cfg.Validate()).To(MatchError(ContainSubstring(msg)))
			},
			Entry("relative base url", func(c *config.Configuration) { c.BaseURL = "localhost" }, "invalid baseUrl"),
			Entry("dashboard path", func(c *config.Configuration) { c.DashboardPath = "dashboard" }, "must start with /"),
			Entry("zero timeout", func(c *config.Configuration) { c.ResponseTimeout = 0 }, "responseTimeout must be positive"),
			Entry("negative delay", func(c *config.Configuration) { c.SettleDelay = -time.Second }, "cannot be negative"),
			Entry("no workers", func(c *config.Configuration) { c.Workers = 0 }, "workers"),
			Entry("log format", func(c *config.Configuration) { c.LogFormat = "xml" }, "invalid logFormat"),
		)
	})

	Context("DebugMap", func() {
		It("should expose nested sections by configuration key", func() {
			m := config.NewConfigurationWithDefaults().DebugMap()

			Expect(m).To(HaveKeyWithValue("baseUrl", "http://localhost:8080"))
			Expect(m).To(HaveKeyWithValue("settleDelay", "2s"))
			Expect(m["browser"]).To(HaveKeyWithValue("headless", true))
			Expect(m["stub"]).To(HaveKeyWithValue("httpPort", 8080))
		})

		// Given every field of the configuration
		// When the debug map is built
		// Then each field appears under its configuration key
		It("should list every configuration key", func() {
			m := config.NewConfigurationWithDefaults().DebugMap()

			Expect(m).To(HaveLen(22))
			Expect(m["report"]).To(HaveLen(4))
			Expect(m["stub"]).To(HaveLen(7))
			Expect(m["browser"]).To(HaveLen(5))
		})

		It("should redact the query of the browser remote URL", func() {
			cfg := config.NewConfigurationWithDefaults()
			cfg.Browser.RemoteURL = "ws://127.0.0.1:9222/devtools/browser?token=secret"

			m := cfg.DebugMap()

			Expect(m["browser"]).To(HaveKeyWithValue("remoteUrl", "ws://127.0.0.1:9222/devtools/browser?redacted"))
		})
	})
})
