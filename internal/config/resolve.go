package config

import (
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Option customises Resolve.
type Option func(*options)

type options struct {
	installDir string
	logger     *zap.Logger
	reporter   Reporter
}

// Reporter is told about every value that did not resolve as written.
type Reporter interface {
	Fallback(key string)
	Clamped(key string)
}

type nopReporter struct{}

func (nopReporter) Fallback(string) {}
func (nopReporter) Clamped(string)  {}

// WithInstallDir anchors logging.dirname at dir instead of the directory of
// the running executable.
func WithInstallDir(dir string) Option {
	return func(o *options) {
		o.installDir = dir
	}
}

// WithLogger receives a debug entry for every value that fell back to its
// default or was clamped.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithReporter counts fallbacks and clamps, typically into metrics.
func WithReporter(reporter Reporter) Option {
	return func(o *options) {
		if reporter != nil {
			o.reporter = reporter
		}
	}
}

// Resolve builds the configuration record from compiled-in defaults
// overridden by env. A nil env reads the process environment.
//
// The only error Resolve returns is a *LoadError for a TLS file that is
// referenced but unreadable; every other problem degrades to a default.
func Resolve(env Env, opts ...Option) (*Config, error) {
	o := options{logger: zap.NewNop(), reporter: nopReporter{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.installDir == "" {
		o.installDir = executableDir()
	}
	if env == nil {
		env = OSEnv{}
	}

	r := &resolver{env: env, logger: o.logger, reporter: o.reporter}
	cfg := defaultConfig(o.installDir)
	r.apply(&cfg)

	if err := r.ldapTLSMaterial(&cfg.LDAP.Server.TLS); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (r *resolver) apply(cfg *Config) {
	r.setInt(&cfg.Server.Port, "PORT")
	r.setString(&cfg.Server.Host, "HOST")
	r.setString(&cfg.Server.NodeEnv, "NODE_ENV")
	r.setTrueIf(&cfg.Server.TrustProxy, "TRUST_PROXY", "true")

	r.setString(&cfg.Security.JWTSecret, "JWT_SECRET")
	r.setMillis(&cfg.Security.AdminSessionTimeout, "ADMIN_SESSION_TIMEOUT")
	r.setString(&cfg.Security.APIKeyPrefix, "API_KEY_PREFIX")
	r.setString(&cfg.Security.EncryptionKey, "ENCRYPTION_KEY")

	r.setString(&cfg.Redis.Host, "REDIS_HOST")
	r.setInt(&cfg.Redis.Port, "REDIS_PORT")
	r.setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	r.setInt(&cfg.Redis.DB, "REDIS_DB")
	r.setTrueIf(&cfg.Redis.EnableTLS, "REDIS_ENABLE_TLS", "true")

	r.setFloat(&cfg.Session.StickyTTLHours, "STICKY_SESSION_TTL_HOURS")
	r.setInt(&cfg.Session.RenewalThresholdMinutes, "STICKY_SESSION_RENEWAL_THRESHOLD_MINUTES")

	r.setString(&cfg.Claude.APIURL, "CLAUDE_API_URL")
	r.setString(&cfg.Claude.APIVersion, "CLAUDE_API_VERSION")
	r.setString(&cfg.Claude.BetaHeader, "CLAUDE_BETA_HEADER")
	r.setInt(&cfg.Claude.OverloadHandling.Minutes, "CLAUDE_OVERLOAD_HANDLING_MINUTES")
	r.clampInt(&cfg.Claude.OverloadHandling.Minutes, "CLAUDE_OVERLOAD_HANDLING_MINUTES", 0, MaxOverloadMinutes)

	r.setTrueIf(&cfg.Bedrock.Enabled, "CLAUDE_CODE_USE_BEDROCK", "1")
	r.setString(&cfg.Bedrock.DefaultRegion, "AWS_REGION")
	r.setString(&cfg.Bedrock.SmallFastModelRegion, "ANTHROPIC_SMALL_FAST_MODEL_AWS_REGION")
	r.setString(&cfg.Bedrock.DefaultModel, "ANTHROPIC_MODEL")
	r.setString(&cfg.Bedrock.SmallFastModel, "ANTHROPIC_SMALL_FAST_MODEL")
	r.setInt(&cfg.Bedrock.MaxOutputTokens, "CLAUDE_CODE_MAX_OUTPUT_TOKENS")
	r.setInt(&cfg.Bedrock.MaxThinkingTokens, "MAX_THINKING_TOKENS")
	r.setFalseIf(&cfg.Bedrock.EnablePromptCaching, "DISABLE_PROMPT_CACHING", "1")

	r.setMillis(&cfg.Proxy.Timeout, "DEFAULT_PROXY_TIMEOUT")
	r.setInt(&cfg.Proxy.MaxRetries, "MAX_PROXY_RETRIES")
	r.setFalseIf(&cfg.Proxy.UseIPv4, "PROXY_USE_IPV4", "false")

	r.setMillis(&cfg.RequestTimeout, "REQUEST_TIMEOUT")

	r.setInt(&cfg.Limits.DefaultTokenLimit, "DEFAULT_TOKEN_LIMIT")

	r.setPositiveFloat(&cfg.Billing.CostMultiplier, "COST_MULTIPLIER")

	r.setString(&cfg.Logging.Level, "LOG_LEVEL")
	r.setString(&cfg.Logging.MaxSize, "LOG_MAX_SIZE")
	r.setInt(&cfg.Logging.MaxFiles, "LOG_MAX_FILES")

	r.setMillis(&cfg.System.CleanupInterval, "CLEANUP_INTERVAL")
	r.setMillis(&cfg.System.TokenUsageRetention, "TOKEN_USAGE_RETENTION")
	r.setMillis(&cfg.System.HealthCheckInterval, "HEALTH_CHECK_INTERVAL")
	r.setString(&cfg.System.Timezone, "SYSTEM_TIMEZONE")
	r.setInt(&cfg.System.TimezoneOffset, "TIMEZONE_OFFSET")

	r.setString(&cfg.Web.Title, "WEB_TITLE")
	r.setString(&cfg.Web.Description, "WEB_DESCRIPTION")
	r.setString(&cfg.Web.LogoURL, "WEB_LOGO_URL")
	r.setTrueIf(&cfg.Web.EnableCORS, "ENABLE_CORS", "true")
	r.setString(&cfg.Web.SessionSecret, "WEB_SESSION_SECRET")

	r.setTrueIf(&cfg.LDAP.Enabled, "LDAP_ENABLED", "true")
	r.setString(&cfg.LDAP.Server.URL, "LDAP_URL")
	r.setString(&cfg.LDAP.Server.BindDN, "LDAP_BIND_DN")
	r.setString(&cfg.LDAP.Server.BindCredentials, "LDAP_BIND_PASSWORD")
	r.setString(&cfg.LDAP.Server.SearchBase, "LDAP_SEARCH_BASE")
	r.setString(&cfg.LDAP.Server.SearchFilter, "LDAP_SEARCH_FILTER")
	r.setList(&cfg.LDAP.Server.SearchAttributes, "LDAP_SEARCH_ATTRIBUTES")
	r.setMillis(&cfg.LDAP.Server.Timeout, "LDAP_TIMEOUT")
	r.setMillis(&cfg.LDAP.Server.ConnectTimeout, "LDAP_CONNECT_TIMEOUT")
	r.setFalseIf(&cfg.LDAP.Server.TLS.RejectUnauthorized, "LDAP_TLS_REJECT_UNAUTHORIZED", "false")
	r.setString(&cfg.LDAP.Server.TLS.ServerName, "LDAP_TLS_SERVERNAME")
	r.setString(&cfg.LDAP.UserMapping.Username, "LDAP_USER_ATTR_USERNAME")
	r.setString(&cfg.LDAP.UserMapping.DisplayName, "LDAP_USER_ATTR_DISPLAY_NAME")
	r.setString(&cfg.LDAP.UserMapping.Email, "LDAP_USER_ATTR_EMAIL")
	r.setString(&cfg.LDAP.UserMapping.FirstName, "LDAP_USER_ATTR_FIRST_NAME")
	r.setString(&cfg.LDAP.UserMapping.LastName, "LDAP_USER_ATTR_LAST_NAME")

	r.setTrueIf(&cfg.UserManagement.Enabled, "USER_MANAGEMENT_ENABLED", "true")
	r.setString(&cfg.UserManagement.DefaultUserRole, "DEFAULT_USER_ROLE")
	r.setMillis(&cfg.UserManagement.UserSessionTimeout, "USER_SESSION_TIMEOUT")
	r.setInt(&cfg.UserManagement.MaxAPIKeysPerUser, "MAX_API_KEYS_PER_USER")
	r.setTrueIf(&cfg.UserManagement.AllowUserDeleteAPIKeys, "ALLOW_USER_DELETE_API_KEYS", "true")

	r.setFalseIf(&cfg.Webhook.Enabled, "WEBHOOK_ENABLED", "false")
	r.setList(&cfg.Webhook.URLs, "WEBHOOK_URLS")
	r.setMillis(&cfg.Webhook.Timeout, "WEBHOOK_TIMEOUT")
	r.setInt(&cfg.Webhook.Retries, "WEBHOOK_RETRIES")

	r.setTrueIf(&cfg.Development.Debug, "DEBUG", "true")
	r.setTrueIf(&cfg.Development.HotReload, "HOT_RELOAD", "true")
}

type resolver struct {
	env      Env
	logger   *zap.Logger
	reporter Reporter
}

// lookup treats an empty value the same as an unset key.
func (r *resolver) lookup(key string) (string, bool) {
	v, ok := r.env.Lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (r *resolver) setString(dst *string, key string) {
	if v, ok := r.lookup(key); ok {
		*dst = v
	}
}

func (r *resolver) setInt(dst *int, key string) {
	raw, ok := r.lookup(key)
	if !ok {
		return
	}
	v, err := strconv.Atoi(leadingInt(raw))
	if err != nil {
		r.fallback(key, raw)
		return
	}
	*dst = v
}

// setMillis reads an integer number of milliseconds. Trailing units such as
// "30000ms" are ignored like any other trailing text.
func (r *resolver) setMillis(dst *time.Duration, key string) {
	raw, ok := r.lookup(key)
	if !ok {
		return
	}
	v, err := strconv.ParseInt(leadingInt(raw), 10, 64)
	if err != nil || v > math.MaxInt64/int64(time.Millisecond) || v < math.MinInt64/int64(time.Millisecond) {
		r.fallback(key, raw)
		return
	}
	*dst = time.Duration(v) * time.Millisecond
}

func (r *resolver) setFloat(dst *float64, key string) {
	raw, ok := r.lookup(key)
	if !ok {
		return
	}
	v, ok := parseFinite(raw)
	if !ok {
		r.fallback(key, raw)
		return
	}
	*dst = v
}

func (r *resolver) setPositiveFloat(dst *float64, key string) {
	raw, ok := r.lookup(key)
	if !ok {
		return
	}
	v, ok := parseFinite(raw)
	if !ok || v <= 0 {
		r.fallback(key, raw)
		return
	}
	*dst = v
}

// setTrueIf sets dst to true only when the raw value equals literal exactly.
func (r *resolver) setTrueIf(dst *bool, key, literal string) {
	if v, ok := r.lookup(key); ok {
		*dst = v == literal
	}
}

// setFalseIf sets dst to false only when the raw value equals literal
// exactly; any other value keeps the flag on.
func (r *resolver) setFalseIf(dst *bool, key, literal string) {
	if v, ok := r.lookup(key); ok {
		*dst = v != literal
	}
}

// setList splits on commas, trims each element and drops empty ones. Input
// with no remaining elements keeps the default.
func (r *resolver) setList(dst *[]string, key string) {
	raw, ok := r.lookup(key)
	if !ok {
		return
	}
	items := splitList(raw)
	if len(items) == 0 {
		r.fallback(key, raw)
		return
	}
	*dst = items
}

func (r *resolver) clampInt(dst *int, key string, lo, hi int) {
	v := min(max(*dst, lo), hi)
	if v != *dst {
		r.logger.Debug("clamped configuration value",
			zap.String("key", key),
			zap.Int("value", *dst),
			zap.Int("min", lo),
			zap.Int("max", hi),
		)
		r.reporter.Clamped(key)
		*dst = v
	}
}

func (r *resolver) fallback(key, raw string) {
	r.logger.Debug("ignoring malformed configuration value",
		zap.String("key", key),
		zap.String("value", raw),
	)
	r.reporter.Fallback(key)
}

var (
	leadingIntPattern   = regexp.MustCompile(`^[+-]?[0-9]+`)
	leadingFloatPattern = regexp.MustCompile(`^[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?`)
)

// leadingInt returns the longest signed decimal integer prefix of raw after
// trimming spaces, so "8080abc" and "8080.5" both read as "8080". The result
// is empty when no digit leads the value.
func leadingInt(raw string) string {
	return leadingIntPattern.FindString(strings.TrimSpace(raw))
}

// parseFinite reads the longest decimal float prefix of raw. Values with no
// leading number, or that are not finite, are rejected.
func parseFinite(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(leadingFloatPattern.FindString(strings.TrimSpace(raw)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
