package config

import (
	"path/filepath"
	"time"
)

const (
	// MaxOverloadMinutes caps the overload handling window at 24 hours.
	MaxOverloadMinutes = 1440

	defaultJWTSecret     = "CHANGE-THIS-JWT-SECRET-IN-PRODUCTION"
	defaultEncryptionKey = "CHANGE-THIS-32-CHARACTER-KEY-NOW"
	defaultSessionSecret = "CHANGE-THIS-SESSION-SECRET"

	defaultBetaHeader = "claude-code-20250219,oauth-2025-04-20,interleaved-thinking-2025-05-14,fine-grained-tool-streaming-2025-05-14"

	defaultCostMultiplier = 1.0

	logDirName = "logs"
)

func defaultSearchAttributes() []string {
	return []string{"dn", "uid", "cn", "mail", "givenName", "sn"}
}

// defaultConfig returns the compiled-in record. installDir anchors the
// derived log directory.
func defaultConfig(installDir string) Config {
	return Config{
		Server: ServerConfig{
			Port:    3000,
			Host:    "0.0.0.0",
			NodeEnv: "development",
		},
		Security: SecurityConfig{
			JWTSecret:           defaultJWTSecret,
			AdminSessionTimeout: 24 * time.Hour,
			APIKeyPrefix:        "cr_",
			EncryptionKey:       defaultEncryptionKey,
		},
		Redis: RedisConfig{
			Host:                 "127.0.0.1",
			Port:                 6379,
			ConnectTimeout:       10 * time.Second,
			CommandTimeout:       5 * time.Second,
			RetryDelayOnFailover: 100 * time.Millisecond,
			MaxRetriesPerRequest: 3,
			LazyConnect:          true,
		},
		Session: SessionConfig{
			StickyTTLHours: 1,
		},
		Claude: ClaudeConfig{
			APIURL:     "https://api.anthropic.com/v1/messages",
			APIVersion: "2023-06-01",
			BetaHeader: defaultBetaHeader,
		},
		Bedrock: BedrockConfig{
			DefaultRegion:       "us-east-1",
			DefaultModel:        "us.anthropic.claude-sonnet-4-20250514-v1:0",
			SmallFastModel:      "us.anthropic.claude-3-5-haiku-20241022-v1:0",
			MaxOutputTokens:     4096,
			MaxThinkingTokens:   1024,
			EnablePromptCaching: true,
		},
		Proxy: ProxyConfig{
			Timeout:    10 * time.Minute,
			MaxRetries: 3,
			UseIPv4:    true,
		},
		RequestTimeout: 10 * time.Minute,
		Limits: LimitsConfig{
			DefaultTokenLimit: 1000000,
		},
		Billing: BillingConfig{
			CostMultiplier: defaultCostMultiplier,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Dirname:  filepath.Join(installDir, logDirName),
			MaxSize:  "10m",
			MaxFiles: 5,
		},
		System: SystemConfig{
			CleanupInterval:     time.Hour,
			TokenUsageRetention: 30 * 24 * time.Hour,
			HealthCheckInterval: time.Minute,
			Timezone:            "Asia/Shanghai",
			TimezoneOffset:      8,
		},
		Web: WebConfig{
			Title:         "Claude Relay Service",
			Description:   "Multi-account Claude API relay service with beautiful management interface",
			LogoURL:       "/assets/logo.png",
			SessionSecret: defaultSessionSecret,
		},
		LDAP: LDAPConfig{
			Server: LDAPServerConfig{
				URL:              "ldap://localhost:389",
				BindDN:           "cn=admin,dc=example,dc=com",
				BindCredentials:  "admin",
				SearchBase:       "dc=example,dc=com",
				SearchFilter:     "(uid={{username}})",
				SearchAttributes: defaultSearchAttributes(),
				Timeout:          5 * time.Second,
				ConnectTimeout:   10 * time.Second,
				TLS: LDAPTLSConfig{
					RejectUnauthorized: true,
				},
			},
			UserMapping: LDAPUserMapping{
				Username:    "uid",
				DisplayName: "cn",
				Email:       "mail",
				FirstName:   "givenName",
				LastName:    "sn",
			},
		},
		UserManagement: UserManagementConfig{
			DefaultUserRole:    "user",
			UserSessionTimeout: 24 * time.Hour,
			MaxAPIKeysPerUser:  1,
		},
		Webhook: WebhookConfig{
			Enabled: true,
			URLs:    []string{},
			Timeout: 10 * time.Second,
			Retries: 3,
		},
	}
}
