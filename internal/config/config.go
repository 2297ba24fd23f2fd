package config

import (
	"fmt"
	"time"
)

// Config is the resolved configuration record. Each external component
// reads only its own section.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Security       SecurityConfig       `yaml:"security"`
	Redis          RedisConfig          `yaml:"redis"`
	Session        SessionConfig        `yaml:"session"`
	Claude         ClaudeConfig         `yaml:"claude"`
	Bedrock        BedrockConfig        `yaml:"bedrock"`
	Proxy          ProxyConfig          `yaml:"proxy"`
	RequestTimeout time.Duration        `yaml:"requestTimeout"`
	Limits         LimitsConfig         `yaml:"limits"`
	Billing        BillingConfig        `yaml:"billing"`
	Logging        LoggingConfig        `yaml:"logging"`
	System         SystemConfig         `yaml:"system"`
	Web            WebConfig            `yaml:"web"`
	LDAP           LDAPConfig           `yaml:"ldap"`
	UserManagement UserManagementConfig `yaml:"userManagement"`
	Webhook        WebhookConfig        `yaml:"webhook"`
	Development    DevelopmentConfig    `yaml:"development"`
}

// ServerConfig holds the listener settings of the relay.
type ServerConfig struct {
	Port       int    `yaml:"port"`
	Host       string `yaml:"host"`
	NodeEnv    string `yaml:"nodeEnv"`
	TrustProxy bool   `yaml:"trustProxy"`
}

// SecurityConfig holds signing and encryption secrets.
type SecurityConfig struct {
	JWTSecret           string        `yaml:"jwtSecret"`
	AdminSessionTimeout time.Duration `yaml:"adminSessionTimeout"`
	APIKeyPrefix        string        `yaml:"apiKeyPrefix"`
	EncryptionKey       string        `yaml:"encryptionKey"`
}

// RedisConfig describes the Redis connection. Only the address, credentials,
// database and TLS switch are read from the environment; the timing and
// retry knobs are fixed.
type RedisConfig struct {
	Host                 string        `yaml:"host"`
	Port                 int           `yaml:"port"`
	Password             string        `yaml:"password"`
	DB                   int           `yaml:"db"`
	ConnectTimeout       time.Duration `yaml:"connectTimeout"`
	CommandTimeout       time.Duration `yaml:"commandTimeout"`
	RetryDelayOnFailover time.Duration `yaml:"retryDelayOnFailover"`
	MaxRetriesPerRequest int           `yaml:"maxRetriesPerRequest"`
	LazyConnect          bool          `yaml:"lazyConnect"`
	EnableTLS            bool          `yaml:"enableTLS"`
}

// Addr returns the host:port pair of the Redis server.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// SessionConfig controls sticky session lifetime.
type SessionConfig struct {
	StickyTTLHours float64 `yaml:"stickyTtlHours"`
	// RenewalThresholdMinutes of 0 disables renewal.
	RenewalThresholdMinutes int `yaml:"renewalThresholdMinutes"`
}

// StickyTTL converts StickyTTLHours into a Duration.
func (s SessionConfig) StickyTTL() time.Duration {
	return time.Duration(s.StickyTTLHours * float64(time.Hour))
}

// ClaudeConfig holds upstream API settings.
type ClaudeConfig struct {
	APIURL           string                 `yaml:"apiUrl"`
	APIVersion       string                 `yaml:"apiVersion"`
	BetaHeader       string                 `yaml:"betaHeader"`
	OverloadHandling OverloadHandlingConfig `yaml:"overloadHandling"`
}

// OverloadHandlingConfig is the window, in minutes, during which an account
// that answered with an overload error is kept out of rotation. The value is
// always within [0, MaxOverloadMinutes].
type OverloadHandlingConfig struct {
	Minutes int `yaml:"minutes"`
}

// Enabled reports whether overload handling is active.
func (o OverloadHandlingConfig) Enabled() bool {
	return o.Minutes > 0
}

// Window returns the overload window as a Duration.
func (o OverloadHandlingConfig) Window() time.Duration {
	return time.Duration(o.Minutes) * time.Minute
}

// BedrockConfig holds the AWS Bedrock settings.
type BedrockConfig struct {
	Enabled              bool   `yaml:"enabled"`
	DefaultRegion        string `yaml:"defaultRegion"`
	SmallFastModelRegion string `yaml:"smallFastModelRegion,omitempty"`
	DefaultModel         string `yaml:"defaultModel"`
	SmallFastModel       string `yaml:"smallFastModel"`
	MaxOutputTokens      int    `yaml:"maxOutputTokens"`
	MaxThinkingTokens    int    `yaml:"maxThinkingTokens"`
	EnablePromptCaching  bool   `yaml:"enablePromptCaching"`
}

// ProxyConfig controls outbound proxying of upstream requests.
type ProxyConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"maxRetries"`
	// UseIPv4 selects the IPv4 address family; false means IPv6.
	UseIPv4 bool `yaml:"useIPv4"`
}

// LimitsConfig holds usage limits applied to new API keys.
type LimitsConfig struct {
	DefaultTokenLimit int `yaml:"defaultTokenLimit"`
}

// BillingConfig carries the cost multiplier. The billing engine applies it
// to user-visible cost and token figures alike, so the unit price is kept;
// account scheduling works on unmultiplied figures. The multiplier is
// always positive.
type BillingConfig struct {
	CostMultiplier float64 `yaml:"costMultiplier"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	// Dirname is derived from the install location and cannot be set
	// through the environment.
	Dirname  string `yaml:"dirname"`
	MaxSize  string `yaml:"maxSize"`
	MaxFiles int    `yaml:"maxFiles"`
}

// SystemConfig holds housekeeping intervals and the reporting timezone.
type SystemConfig struct {
	CleanupInterval     time.Duration `yaml:"cleanupInterval"`
	TokenUsageRetention time.Duration `yaml:"tokenUsageRetention"`
	HealthCheckInterval time.Duration `yaml:"healthCheckInterval"`
	Timezone            string        `yaml:"timezone"`
	TimezoneOffset      int           `yaml:"timezoneOffset"`
}

// WebConfig holds the management UI settings.
type WebConfig struct {
	Title         string `yaml:"title"`
	Description   string `yaml:"description"`
	LogoURL       string `yaml:"logoUrl"`
	EnableCORS    bool   `yaml:"enableCors"`
	SessionSecret string `yaml:"sessionSecret"`
}

// LDAPConfig configures directory authentication.
type LDAPConfig struct {
	Enabled     bool             `yaml:"enabled"`
	Server      LDAPServerConfig `yaml:"server"`
	UserMapping LDAPUserMapping  `yaml:"userMapping"`
}

// LDAPServerConfig describes the directory server and the user search.
type LDAPServerConfig struct {
	URL              string        `yaml:"url"`
	BindDN           string        `yaml:"bindDN"`
	BindCredentials  string        `yaml:"bindCredentials"`
	SearchBase       string        `yaml:"searchBase"`
	SearchFilter     string        `yaml:"searchFilter"`
	SearchAttributes []string      `yaml:"searchAttributes"`
	Timeout          time.Duration `yaml:"timeout"`
	ConnectTimeout   time.Duration `yaml:"connectTimeout"`
	TLS              LDAPTLSConfig `yaml:"tls"`
}

// LDAPTLSConfig holds TLS material for the directory connection. CA, Cert
// and Key are either the full contents of the referenced file or nil.
type LDAPTLSConfig struct {
	RejectUnauthorized bool   `yaml:"rejectUnauthorized"`
	CA                 PEM    `yaml:"ca"`
	Cert               PEM    `yaml:"cert"`
	Key                PEM    `yaml:"key"`
	ServerName         string `yaml:"servername,omitempty"`
}

// LDAPUserMapping maps directory attributes onto user profile fields.
type LDAPUserMapping struct {
	Username    string `yaml:"username"`
	DisplayName string `yaml:"displayName"`
	Email       string `yaml:"email"`
	FirstName   string `yaml:"firstName"`
	LastName    string `yaml:"lastName"`
}

// UserManagementConfig controls self-service user accounts.
type UserManagementConfig struct {
	Enabled                bool          `yaml:"enabled"`
	DefaultUserRole        string        `yaml:"defaultUserRole"`
	UserSessionTimeout     time.Duration `yaml:"userSessionTimeout"`
	MaxAPIKeysPerUser      int           `yaml:"maxApiKeysPerUser"`
	AllowUserDeleteAPIKeys bool          `yaml:"allowUserDeleteApiKeys"`
}

// WebhookConfig configures outbound notifications.
type WebhookConfig struct {
	Enabled bool          `yaml:"enabled"`
	URLs    []string      `yaml:"urls"`
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"`
}

// DevelopmentConfig holds developer switches.
type DevelopmentConfig struct {
	Debug     bool `yaml:"debug"`
	HotReload bool `yaml:"hotReload"`
}

// PEM is file-backed key or certificate material. It renders as a size
// summary so that dumps never contain the material itself.
type PEM []byte

// MarshalYAML implements yaml.Marshaler.
func (p PEM) MarshalYAML() (any, error) {
	switch {
	case p == nil:
		return nil, nil
	case string(p) == redacted:
		return redacted, nil
	}
	return fmt.Sprintf("<%d bytes>", len(p)), nil
}
