package main

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/browser"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/locator"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/navigator"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/services"
	srvErrors "github.com/david-garcia-garcia/traefik-with-plugins/pkg/errors"
)

const (
	entryErrorKind  = "error_kind"
	entryScreenshot = "screenshot"
	entryFailedCall = "failed_api_call"
)

var (
	page     browser.Page
	sessions *services.SessionFactory
	session  *services.Session
)

var _ = BeforeSuite(func() {
	By("starting the " + targetManager.Name() + " target system")
	Expect(targetManager.Start(context.Background())).To(Succeed())

	By("starting the browser")
	var err error
	page, err = browser.NewChromePage(context.Background(), browser.Options{
		RemoteURL: cfg.Browser.RemoteURL,
		ExecPath:  cfg.Browser.ExecPath,
		Headless:  cfg.Browser.Headless,
		Width:     cfg.Browser.Width,
		Height:    cfg.Browser.Height,
	})
	Expect(err).NotTo(HaveOccurred())

	sessions = services.NewSessionFactory(page, targetManager.BaseURL(), cat,
		services.WithScenarioTimeout(cfg.ScenarioTimeout),
		services.WithCommandTimeout(cfg.DefaultCommandTimeout),
		services.WithPollInterval(cfg.PollInterval),
		services.WithArtifactsDir(artifactsDir),
		services.WithVideo(cfg.Video),
		services.WithNavigatorOptions(
			navigator.WithResponseTimeout(cfg.ResponseTimeout),
			navigator.WithSettleDelay(cfg.SettleDelay),
			navigator.WithDashboardPath(cfg.DashboardPath),
		),
		services.WithLocatorOptions(locator.WithInteractionDelay(cfg.InteractionDelay)),
	)
	zap.S().Named("e2e").Infow("suite ready", "url", targetManager.BaseURL())
})

var _ = AfterSuite(func() {
	if page != nil {
		Expect(page.Close()).To(Succeed())
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	Expect(targetManager.Stop(ctx)).To(Succeed())
})

// startScenario opens a session named after the running scenario.
func startScenario() {
	spec := CurrentSpecReport()
	session = sessions.New(context.Background(), groupOf(spec.ContainerHierarchyTexts), spec.LeafNodeText)
}

// finishScenario captures a screenshot of failed scenarios and closes the session.
// A page error that no assertion observed fails the scenario here.
func finishScenario() {
	spec := CurrentSpecReport()
	late := session.Err()
	if (spec.Failed() || late != nil) && cfg.ScreenshotOnRunFailure {
		path, err := session.Screenshot(spec.LeafNodeText)
		if err != nil {
			zap.S().Named("e2e").Warnw("failed to capture screenshot", "scenario", spec.LeafNodeText, "error", err)
		} else {
			AddReportEntry(entryScreenshot, path)
		}
	}
	err := session.Close()
	if !spec.Failed() {
		must(err)
	}
}

// must fails the scenario on err and records its kind for the run report.
func must(err error) {
	GinkgoHelper()
	if err != nil {
		AddReportEntry(entryErrorKind, string(srvErrors.KindOf(err)))
	}
	Expect(err).NotTo(HaveOccurred())
}

func groupOf(hierarchy []string) string {
	if len(hierarchy) == 0 {
		return "suite"
	}
	return hierarchy[len(hierarchy)-1]
}
