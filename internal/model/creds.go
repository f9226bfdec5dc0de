package model

import "fmt"

// CredentialRecord is the canonical, fully resolved set of SMTP
// connection and authentication fields handed to the dispatch step.
// A record is rebuilt on every resolution call and never cached beyond
// a single send.
type CredentialRecord struct {
	// Sender is the display name used in the From header. May be empty.
	Sender string

	// Host is the SMTP server hostname.
	Host string

	// Port is the SMTP server port (1-65535).
	Port int

	// User is the account login name.
	User string

	// Password is the account secret. It must never appear in logs or
	// error messages; String below exists to keep %v/%s output safe.
	Password string

	// UseSSL selects an implicit-TLS connection.
	UseSSL bool

	// UseTLS selects STARTTLS on a plain connection.
	UseTLS bool

	// Authenticate controls whether SMTP AUTH is performed.
	Authenticate bool
}

// String returns a loggable summary of the record with the password
// omitted.
func (r CredentialRecord) String() string {
	return fmt.Sprintf(
		"%s@%s:%d (ssl=%t tls=%t auth=%t)",
		r.User, r.Host, r.Port, r.UseSSL, r.UseTLS, r.Authenticate,
	)
}
