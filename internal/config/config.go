package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// PlaceholderBaseURL is the value shipped in sample configuration. A run
// configured with it has never been pointed at a real deployment.
const PlaceholderBaseURL = "https://your-domain.com"

// ErrPlaceholderURL is returned by Validate when target.base_url is unset or
// still the placeholder.
var ErrPlaceholderURL = errors.New("target.base_url is not configured")

// Engine names accepted by browser.engine.
const (
	EngineChromedp   = "chromedp"
	EnginePlaywright = "playwright"
)

// Config is the root configuration for a courier run.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Target   TargetConfig   `mapstructure:"target" yaml:"target"`
	Input    InputConfig    `mapstructure:"input" yaml:"input"`
	Browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	Retry    RetryConfig    `mapstructure:"retry" yaml:"retry"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Search   SearchConfig   `mapstructure:"search" yaml:"search"`
	Debug    DebugConfig    `mapstructure:"debug" yaml:"debug"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Report   ReportConfig   `mapstructure:"report" yaml:"report"`
	// Run holds per-invocation overrides set from CLI flags.
	Run RunConfig `mapstructure:"-" yaml:"-"`
}

// LoggerConfig defines all the settings for the logging system.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// TargetConfig points at the web application being driven.
type TargetConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// InputConfig describes the document folder and how filenames map to
// identifiers.
type InputConfig struct {
	Folder     string   `mapstructure:"folder" yaml:"folder"`
	DoneDir    string   `mapstructure:"done_dir" yaml:"done_dir"`
	FailDir    string   `mapstructure:"fail_dir" yaml:"fail_dir"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	Delimiter  string   `mapstructure:"delimiter" yaml:"delimiter"`
}

// BrowserConfig holds settings for the automated browser session.
type BrowserConfig struct {
	Engine     string        `mapstructure:"engine" yaml:"engine"`
	Headless   bool          `mapstructure:"headless" yaml:"headless"`
	SlowMo     time.Duration `mapstructure:"slow_mo" yaml:"slow_mo"`
	Args       []string      `mapstructure:"args" yaml:"args"`
	ChromePath string        `mapstructure:"chrome_path" yaml:"chrome_path"`
	// DefaultTimeout bounds every interaction wait.
	DefaultTimeout time.Duration `mapstructure:"default_timeout" yaml:"default_timeout"`
	// ResolveTimeout bounds a single selector resolution call.
	ResolveTimeout time.Duration `mapstructure:"resolve_timeout" yaml:"resolve_timeout"`
	// CloseTimeout is the hard ceiling on session teardown.
	CloseTimeout  time.Duration `mapstructure:"close_timeout" yaml:"close_timeout"`
	SettleQuiet   time.Duration `mapstructure:"settle_quiet" yaml:"settle_quiet"`
	SettleTimeout time.Duration `mapstructure:"settle_timeout" yaml:"settle_timeout"`
	StateDir      string        `mapstructure:"state_dir" yaml:"state_dir"`
}

// RetryConfig governs the retried authenticate and navigate phase.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay" yaml:"delay"`
}

// AuthConfig holds optional login credentials.
type AuthConfig struct {
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"-"`
}

// Configured reports whether both credentials are present.
func (a AuthConfig) Configured() bool {
	return a.Username != "" && a.Password != ""
}

// SearchConfig holds fixed search criteria.
type SearchConfig struct {
	Year string `mapstructure:"year" yaml:"year"`
}

// DebugConfig controls diagnostic capture.
type DebugConfig struct {
	Screenshots   bool   `mapstructure:"screenshots" yaml:"screenshots"`
	ScreenshotDir string `mapstructure:"screenshot_dir" yaml:"screenshot_dir"`
}

// DatabaseConfig holds the optional run ledger connection.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// ReportConfig controls the optional machine-readable run report.
type ReportConfig struct {
	Output string `mapstructure:"output" yaml:"output"`
	Format string `mapstructure:"format" yaml:"format"`
}

// RunConfig gets its values from CLI flags, not the config file.
type RunConfig struct {
	// Rehearsal drives a visible, slowed run that stops before committing
	// anything and leaves documents in place.
	Rehearsal bool
}

// NewDefaultConfig returns a configuration populated only with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "courier")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Target --
	v.SetDefault("target.base_url", PlaceholderBaseURL)

	// -- Input --
	v.SetDefault("input.folder", "./pdfs")
	v.SetDefault("input.done_dir", "done")
	v.SetDefault("input.fail_dir", "fail")
	v.SetDefault("input.extensions", []string{".pdf"})
	v.SetDefault("input.delimiter", ",")

	// -- Browser --
	v.SetDefault("browser.engine", EngineChromedp)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.slow_mo", "500ms")
	v.SetDefault("browser.default_timeout", "30s")
	v.SetDefault("browser.resolve_timeout", "5s")
	v.SetDefault("browser.close_timeout", "3s")
	v.SetDefault("browser.settle_quiet", "500ms")
	v.SetDefault("browser.settle_timeout", "30s")
	v.SetDefault("browser.state_dir", "~/.courier")

	// -- Retry --
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.delay", "2s")

	// -- Search --
	v.SetDefault("search.year", "2025")

	// -- Debug --
	v.SetDefault("debug.screenshots", false)
	v.SetDefault("debug.screenshot_dir", "logs")

	// -- Report --
	v.SetDefault("report.format", "json")
}

// legacyEnv maps configuration keys to the unprefixed environment variables
// used by existing deployments.
var legacyEnv = map[string]string{
	"target.base_url":         "TA_SUMMARY_URL",
	"input.folder":            "PDF_FOLDER",
	"browser.headless":        "HEADLESS_MODE",
	"browser.slow_mo":         "BROWSER_SLOW_MO",
	"browser.default_timeout": "DEFAULT_TIMEOUT",
	"retry.max_attempts":      "MAX_RETRY_ATTEMPTS",
	"retry.delay":             "RETRY_DELAY_MS",
	"debug.screenshots":       "ENABLE_SCREENSHOTS",
	"auth.username":           "USERNAME",
	"auth.password":           "PASSWORD",
	"search.year":             "TA_YEAR",
}

// msKeys are durations whose legacy environment variables are plain
// millisecond counts.
var msKeys = []string{"browser.slow_mo", "browser.default_timeout", "retry.delay"}

// NewConfigFromViper unmarshals, normalizes, and validates configuration.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	for key, env := range legacyEnv {
		// The prefixed variable still wins since BindEnv checks names in order.
		if err := v.BindEnv(key, envName(key), env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}
	for _, key := range msKeys {
		if raw := v.GetString(key); isDigits(raw) {
			v.Set(key, raw+"ms")
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.ExpandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func envName(key string) string {
	return "COURIER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ExpandPaths resolves a leading ~ in every path-valued setting.
func (c *Config) ExpandPaths() error {
	for _, p := range []*string{&c.Input.Folder, &c.Browser.StateDir, &c.Debug.ScreenshotDir, &c.Report.Output, &c.Logger.LogFile} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expanding path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	base := strings.TrimRight(strings.TrimSpace(c.Target.BaseURL), "/")
	if base == "" || base == PlaceholderBaseURL {
		return ErrPlaceholderURL
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry.max_attempts must be a positive integer")
	}
	if c.Retry.Delay < 0 {
		return fmt.Errorf("retry.delay must not be negative")
	}
	if err := c.Browser.Validate(); err != nil {
		return fmt.Errorf("browser configuration invalid: %w", err)
	}
	if err := c.Input.Validate(); err != nil {
		return fmt.Errorf("input configuration invalid: %w", err)
	}
	switch c.Report.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("report.format must be json or yaml, got %q", c.Report.Format)
	}
	return nil
}

// Validate checks the browser settings.
func (b *BrowserConfig) Validate() error {
	switch b.Engine {
	case EngineChromedp, EnginePlaywright:
	default:
		return fmt.Errorf("unknown engine %q", b.Engine)
	}
	if b.DefaultTimeout <= 0 || b.ResolveTimeout <= 0 || b.CloseTimeout <= 0 || b.SettleTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if b.SlowMo < 0 || b.SettleQuiet < 0 {
		return fmt.Errorf("slow_mo and settle_quiet must not be negative")
	}
	if b.StateDir == "" {
		return fmt.Errorf("state_dir is required")
	}
	return nil
}

// Validate checks the input folder settings.
func (i *InputConfig) Validate() error {
	if i.Folder == "" {
		return fmt.Errorf("folder is required")
	}
	if len(i.Extensions) == 0 {
		return fmt.Errorf("at least one extension is required")
	}
	if i.Delimiter == "" {
		return fmt.Errorf("delimiter is required")
	}
	if i.DoneDir == "" || i.FailDir == "" || i.DoneDir == i.FailDir {
		return fmt.Errorf("done_dir and fail_dir must be set and distinct")
	}
	return nil
}

// ApplyRehearsal forces the visible, slowed, non-committal run mode.
func (c *Config) ApplyRehearsal() {
	c.Run.Rehearsal = true
	c.Browser.Headless = false
	c.Browser.SlowMo = time.Second
}
