package config

import (
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

const redacted = "[REDACTED]"

// Redacted returns a deep copy with secrets masked. The TLS private key is
// replaced by a marker; CA and certificate buffers are copied.
func (c *Config) Redacted() *Config {
	out := *c
	out.Security.JWTSecret = mask(out.Security.JWTSecret)
	out.Security.EncryptionKey = mask(out.Security.EncryptionKey)
	out.Redis.Password = mask(out.Redis.Password)
	out.Web.SessionSecret = mask(out.Web.SessionSecret)
	out.LDAP.Server.BindCredentials = mask(out.LDAP.Server.BindCredentials)

	out.LDAP.Server.SearchAttributes = slices.Clone(c.LDAP.Server.SearchAttributes)
	out.LDAP.Server.TLS.CA = PEM(slices.Clone([]byte(c.LDAP.Server.TLS.CA)))
	out.LDAP.Server.TLS.Cert = PEM(slices.Clone([]byte(c.LDAP.Server.TLS.Cert)))
	out.LDAP.Server.TLS.Key = maskPEM(c.LDAP.Server.TLS.Key)
	out.Webhook.URLs = slices.Clone(c.Webhook.URLs)
	return &out
}

// WriteYAML writes the redacted record to w.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c.Redacted()); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// Warnings lists settings that resolve fine but should not reach
// production as they are.
func (c *Config) Warnings() []string {
	var out []string
	if c.Security.JWTSecret == defaultJWTSecret {
		out = append(out, "security.jwtSecret uses the placeholder default; set JWT_SECRET")
	}
	if c.Security.EncryptionKey == defaultEncryptionKey {
		out = append(out, "security.encryptionKey uses the placeholder default; set ENCRYPTION_KEY")
	} else if len(c.Security.EncryptionKey) != 32 {
		out = append(out, fmt.Sprintf("security.encryptionKey is %d characters, expected 32", len(c.Security.EncryptionKey)))
	}
	if c.Web.SessionSecret == defaultSessionSecret {
		out = append(out, "web.sessionSecret uses the placeholder default; set WEB_SESSION_SECRET")
	}

	tls := c.LDAP.Server.TLS
	if (tls.Cert == nil) != (tls.Key == nil) {
		out = append(out, "ldap.server.tls: client certificate and key must be set together")
	}
	if c.LDAP.Enabled && !tls.RejectUnauthorized {
		out = append(out, "ldap.server.tls.rejectUnauthorized is false; server certificates are not verified")
	}
	return out
}

func maskPEM(p PEM) PEM {
	if len(p) == 0 {
		return p
	}
	return PEM(redacted)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return redacted
}
