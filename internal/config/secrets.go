package config

import (
	"fmt"
	"os"
)

// LoadError reports a TLS file that was referenced by path but could not be
// read. It aborts resolution.
type LoadError struct {
	Field string
	Path  string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s from %q: %v", e.Field, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// loadSecret reads the file named by the env key. It returns nil when the
// key is unset.
func (r *resolver) loadSecret(field, key string) (PEM, error) {
	path, ok := r.lookup(key)
	if !ok {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Field: field, Path: path, Err: err}
	}
	return PEM(data), nil
}

func (r *resolver) ldapTLSMaterial(tls *LDAPTLSConfig) error {
	var err error
	if tls.CA, err = r.loadSecret("ldap.server.tls.ca", "LDAP_TLS_CA_FILE"); err != nil {
		return err
	}
	if tls.Cert, err = r.loadSecret("ldap.server.tls.cert", "LDAP_TLS_CERT_FILE"); err != nil {
		return err
	}
	if tls.Key, err = r.loadSecret("ldap.server.tls.key", "LDAP_TLS_KEY_FILE"); err != nil {
		return err
	}
	return nil
}
