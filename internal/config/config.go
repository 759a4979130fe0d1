package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "DASHBOARD_E2E"

const (
	TargetExternal = "external"
	TargetStub     = "stub"
)

type Configuration struct {
	BaseURL                string        `mapstructure:"baseUrl" default:"http://localhost:8080"`
	DashboardPath          string        `mapstructure:"dashboardPath" default:"/dashboard/"`
	DefaultCommandTimeout  time.Duration `mapstructure:"defaultCommandTimeout" default:"10s"`
	RequestTimeout         time.Duration `mapstructure:"requestTimeout" default:"10s"`
	ResponseTimeout        time.Duration `mapstructure:"responseTimeout" default:"10s"`
	Video                  bool          `mapstructure:"video" default:"false"`
	ScreenshotOnRunFailure bool          `mapstructure:"screenshotOnRunFailure" default:"true"`
	ScenarioTimeout        time.Duration `mapstructure:"scenarioTimeout" default:"60s"`
	SettleDelay            time.Duration `mapstructure:"settleDelay" default:"2s"`
	InteractionDelay       time.Duration `mapstructure:"interactionDelay" default:"500ms"`
	PollInterval           time.Duration `mapstructure:"pollInterval" default:"250ms"`
	ReadyTimeout           time.Duration `mapstructure:"readyTimeout" default:"60s"`
	Target                 string        `mapstructure:"target" default:"external"`
	CatalogFile            string        `mapstructure:"catalogFile"`
	ArtifactsFolder        string        `mapstructure:"artifactsFolder" default:"artifacts"`
	LabelFilter            string        `mapstructure:"labelFilter"`
	Workers                int           `mapstructure:"workers" default:"3"`
	Browser                Browser       `mapstructure:"browser"`
	Report                 Report        `mapstructure:"report"`
	Stub                   Stub          `mapstructure:"stub"`
	LogLevel               string        `mapstructure:"logLevel" default:"info"`
	LogFormat              string        `mapstructure:"logFormat" default:"console"`
}

type Browser struct {
	RemoteURL string `mapstructure:"remoteUrl"`
	ExecPath  string `mapstructure:"execPath"`
	Headless  bool   `mapstructure:"headless" default:"true"`
	Width     int    `mapstructure:"width" default:"1280"`
	Height    int    `mapstructure:"height" default:"720"`
}

type Report struct {
	JUnit     string `mapstructure:"junit"`
	Textfile  string `mapstructure:"textfile"`
	Workbook  string `mapstructure:"workbook"`
	ResultsDB string `mapstructure:"resultsDb"`
}

// Stub configures the in-process Target System and cmd/dashboard-stub.
type Stub struct {
	ServerMode     string   `mapstructure:"serverMode" default:"dev"`
	HTTPPort       int      `mapstructure:"httpPort" default:"8080"`
	Placeholder    bool     `mapstructure:"placeholder"`
	UnknownPlugin  bool     `mapstructure:"unknownPlugin"`
	HubButtonError bool     `mapstructure:"hubButtonError"`
	APIError       bool     `mapstructure:"apiError"`
	Drop           []string `mapstructure:"drop"`
}

// NewConfigurationWithDefaults returns a configuration populated from the default tags.
func NewConfigurationWithDefaults() *Configuration {
	cfg := &Configuration{}
	if err := defaults.Set(cfg); err != nil {
		panic(fmt.Sprintf("invalid configuration defaults: %v", err))
	}
	return cfg
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"base-url":                  "baseUrl",
	"dashboard-path":            "dashboardPath",
	"default-command-timeout":   "defaultCommandTimeout",
	"request-timeout":           "requestTimeout",
	"response-timeout":          "responseTimeout",
	"video":                     "video",
	"screenshot-on-run-failure": "screenshotOnRunFailure",
	"scenario-timeout":          "scenarioTimeout",
	"settle-delay":              "settleDelay",
	"interaction-delay":         "interactionDelay",
	"poll-interval":             "pollInterval",
	"ready-timeout":             "readyTimeout",
	"target":                    "target",
	"catalog-file":              "catalogFile",
	"artifacts-folder":          "artifactsFolder",
	"label-filter":              "labelFilter",
	"workers":                   "workers",
	"browser-remote-url":        "browser.remoteUrl",
	"browser-exec-path":         "browser.execPath",
	"browser-headless":          "browser.headless",
	"browser-width":             "browser.width",
	"browser-height":            "browser.height",
	"report-junit":              "report.junit",
	"report-textfile":           "report.textfile",
	"report-workbook":           "report.workbook",
	"report-results-db":         "report.resultsDb",
	"stub-placeholder":          "stub.placeholder",
	"stub-unknown-plugin":       "stub.unknownPlugin",
	"stub-hub-button-error":     "stub.hubButtonError",
	"stub-api-error":            "stub.apiError",
	"stub-drop":                 "stub.drop",
	"log-level":                 "logLevel",
	"log-format":                "logFormat",
}

// RegisterFlags declares the harness flags, using cfg values as flag defaults.
func RegisterFlags(fs *pflag.FlagSet, cfg *Configuration) {
	fs.String("config", "", "Optional YAML configuration file")
	fs.String("base-url", cfg.BaseURL, "Base URL of the Target System")
	fs.String("dashboard-path", cfg.DashboardPath, "Path the dashboard is served from")
	fs.Duration("default-command-timeout", cfg.DefaultCommandTimeout, "Maximum wait for an assertion to hold")
	fs.Duration("request-timeout", cfg.RequestTimeout, "Timeout of introspection API requests")
	fs.Duration("response-timeout", cfg.ResponseTimeout, "Maximum wait for a page load")
	fs.Bool("video", cfg.Video, "Capture a filmstrip frame after each navigation")
	fs.Bool("screenshot-on-run-failure", cfg.ScreenshotOnRunFailure, "Capture a screenshot when a scenario fails")
	fs.Duration("scenario-timeout", cfg.ScenarioTimeout, "Time budget of one scenario")
	fs.Duration("settle-delay", cfg.SettleDelay, "Wait after each page load")
	fs.Duration("interaction-delay", cfg.InteractionDelay, "Wait after each click")
	fs.Duration("poll-interval", cfg.PollInterval, "Interval between assertion attempts")
	fs.Duration("ready-timeout", cfg.ReadyTimeout, "Maximum wait for the Target System API to answer")
	fs.String("target", cfg.Target, "Target System: 'external' (already running) or 'stub' (in-process fake)")
	fs.String("catalog-file", cfg.CatalogFile, "YAML file overriding the expected entity catalog")
	fs.String("artifacts-folder", cfg.ArtifactsFolder, "Folder receiving screenshots and reports")
	fs.String("label-filter", cfg.LabelFilter, "Ginkgo label filter selecting scenarios")
	fs.Int("workers", cfg.Workers, "Number of concurrent introspection API fetches")
	fs.String("browser-remote-url", cfg.Browser.RemoteURL, "DevTools websocket URL of a running browser")
	fs.String("browser-exec-path", cfg.Browser.ExecPath, "Path of the browser to start")
	fs.Bool("browser-headless", cfg.Browser.Headless, "Run the started browser headless")
	fs.Int("browser-width", cfg.Browser.Width, "Viewport width")
	fs.Int("browser-height", cfg.Browser.Height, "Viewport height")
	fs.String("report-junit", cfg.Report.JUnit, "JUnit XML report path")
	fs.String("report-textfile", cfg.Report.Textfile, "Prometheus textfile path")
	fs.String("report-workbook", cfg.Report.Workbook, "XLSX workbook path")
	fs.String("report-results-db", cfg.Report.ResultsDB, "DuckDB run ledger path")
	fs.Bool("stub-placeholder", cfg.Stub.Placeholder, "Stub target: serve the embedded-version placeholder page")
	fs.Bool("stub-unknown-plugin", cfg.Stub.UnknownPlugin, "Stub target: report plugin middlewares as unknown plugin types")
	fs.Bool("stub-hub-button-error", cfg.Stub.HubButtonError, "Stub target: raise the hub button registration error")
	fs.Bool("stub-api-error", cfg.Stub.APIError, "Stub target: answer /api/http requests with 500")
	fs.StringSlice("stub-drop", cfg.Stub.Drop, "Stub target: entities omitted from the API")
	fs.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.String("log-format", cfg.LogFormat, "Log format: console or json")
}

// Load merges, from lowest to highest precedence, the defaults, the optional
// configuration file, the DASHBOARD_E2E_* environment and the flags.
func Load(v *viper.Viper, fs *pflag.FlagSet) (*Configuration, error) {
	cfg := NewConfigurationWithDefaults()

	if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
		v.SetConfigFile(f.Value.String())
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for flag, key := range flagKeys {
		f := fs.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c *Configuration) Validate() error {
	var errs []error
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid baseUrl %q", c.BaseURL))
	}
	if !strings.HasPrefix(c.DashboardPath, "/") {
		errs = append(errs, fmt.Errorf("dashboardPath %q must start with /", c.DashboardPath))
	}
	if c.Target != TargetExternal && c.Target != TargetStub {
		errs = append(errs, fmt.Errorf("invalid target %q: must be '%s' or '%s'", c.Target, TargetExternal, TargetStub))
	}
	for name, d := range map[string]time.Duration{
		"defaultCommandTimeout": c.DefaultCommandTimeout,
		"requestTimeout":        c.RequestTimeout,
		"responseTimeout":       c.ResponseTimeout,
		"scenarioTimeout":       c.ScenarioTimeout,
		"pollInterval":          c.PollInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.SettleDelay < 0 || c.InteractionDelay < 0 {
		errs = append(errs, errors.New("settle and interaction delays cannot be negative"))
	}
	if c.Workers < 1 {
		errs = append(errs, errors.New("workers must be at least 1"))
	}
	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		errs = append(errs, errors.New("browser viewport must be positive"))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid logFormat %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// DebugMap returns the configuration keyed by configuration key, for logging.
func (c Configuration) DebugMap() map[string]any {
	debugMap := map[string]any{}
	debugMap["baseUrl"] = c.BaseURL
	debugMap["dashboardPath"] = c.DashboardPath
	debugMap["defaultCommandTimeout"] = c.DefaultCommandTimeout.String()
	debugMap["requestTimeout"] = c.RequestTimeout.String()
	debugMap["responseTimeout"] = c.ResponseTimeout.String()
	debugMap["video"] = c.Video
	debugMap["screenshotOnRunFailure"] = c.ScreenshotOnRunFailure
	debugMap["scenarioTimeout"] = c.ScenarioTimeout.String()
	debugMap["settleDelay"] = c.SettleDelay.String()
	debugMap["interactionDelay"] = c.InteractionDelay.String()
	debugMap["pollInterval"] = c.PollInterval.String()
	debugMap["readyTimeout"] = c.ReadyTimeout.String()
	debugMap["target"] = c.Target
	debugMap["catalogFile"] = c.CatalogFile
	debugMap["artifactsFolder"] = c.ArtifactsFolder
	debugMap["labelFilter"] = c.LabelFilter
	debugMap["workers"] = c.Workers
	debugMap["browser"] = c.Browser.DebugMap()
	debugMap["report"] = c.Report.DebugMap()
	debugMap["stub"] = c.Stub.DebugMap()
	debugMap["logLevel"] = c.LogLevel
	debugMap["logFormat"] = c.LogFormat
	return debugMap
}

// DebugMap hides the query of RemoteURL, which may carry a DevTools token.
func (b Browser) DebugMap() map[string]any {
	debugMap := map[string]any{}
	debugMap["remoteUrl"] = redactQuery(b.RemoteURL)
	debugMap["execPath"] = b.ExecPath
	debugMap["headless"] = b.Headless
	debugMap["width"] = b.Width
	debugMap["height"] = b.Height
	return debugMap
}

func (r Report) DebugMap() map[string]any {
	debugMap := map[string]any{}
	debugMap["junit"] = r.JUnit
	debugMap["textfile"] = r.Textfile
	debugMap["workbook"] = r.Workbook
	debugMap["resultsDb"] = r.ResultsDB
	return debugMap
}

func (s Stub) DebugMap() map[string]any {
	debugMap := map[string]any{}
	debugMap["serverMode"] = s.ServerMode
	debugMap["httpPort"] = s.HTTPPort
	debugMap["placeholder"] = s.Placeholder
	debugMap["unknownPlugin"] = s.UnknownPlugin
	debugMap["hubButtonError"] = s.HubButtonError
	debugMap["apiError"] = s.APIError
	debugMap["drop"] = append([]string(nil), s.Drop...)
	return debugMap
}

func redactQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw
	}
	u.RawQuery = "redacted"
	return u.String()
}
