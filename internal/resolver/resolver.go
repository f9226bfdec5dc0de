// Package resolver selects and validates SMTP credentials from one of
// four mutually exclusive sources: a persisted credentials file,
// explicit caller-supplied values, a provider preset, or the system
// keyring. Explicit values always override stored or derived ones, so
// the sources are tried in a fixed order and the first applicable one
// wins; there is no fallback between sources once one is selected.
package resolver

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/nhle/mailkit/internal/credential"
	"github.com/nhle/mailkit/internal/credfile"
	"github.com/nhle/mailkit/internal/model"
	"github.com/nhle/mailkit/internal/provider"
)

var (
	// ErrNoCredentials is returned when none of the four sources is
	// identifiable from the supplied options.
	ErrNoCredentials = errors.New("no credentials resolvable from the supplied arguments")

	// ErrIncompleteCredentials is returned when a required field is
	// missing or out of range after source selection.
	ErrIncompleteCredentials = errors.New("incomplete credentials")

	// ErrInvalidFlagValue is returned when a boolean-typed option
	// holds a value that does not parse as a boolean.
	ErrInvalidFlagValue = errors.New("invalid flag value")
)

// Options is the full set of optional arguments a send call may carry.
// The boolean connection flags are tri-state strings ("" means unset)
// because they arrive from CLI flags and config files as text.
type Options struct {
	CredsFile string
	Provider  string
	KeyName   string

	Sender   string
	Host     string
	Port     int
	User     string
	Password string

	UseSSL       string
	UseTLS       string
	Authenticate string
}

// Resolver builds one canonical credential record per call. Keys may
// be pre-opened (tests inject an in-memory keyring); when nil, the
// platform keyring is opened lazily and only if the keyring source is
// actually selected.
type Resolver struct {
	Keys *credential.KeyStore
}

// Resolve decides which source applies, builds the record, and
// validates it. No partial record is ever returned: every failure
// surfaces before the transport step sees anything.
func (r *Resolver) Resolve(opts Options) (model.CredentialRecord, error) {
	flags, err := parseFlags(opts)
	if err != nil {
		return model.CredentialRecord{}, err
	}

	rec, err := r.selectSource(opts, flags)
	if err != nil {
		return model.CredentialRecord{}, err
	}

	if err := validate(rec); err != nil {
		return model.CredentialRecord{}, err
	}

	return rec, nil
}

// triState holds the parsed connection flags; nil means unset.
type triState struct {
	useSSL       *bool
	useTLS       *bool
	authenticate *bool
}

func parseFlags(opts Options) (triState, error) {
	var flags triState
	for _, f := range []struct {
		name string
		raw  string
		dst  **bool
	}{
		{"use_ssl", opts.UseSSL, &flags.useSSL},
		{"use_tls", opts.UseTLS, &flags.useTLS},
		{"authenticate", opts.Authenticate, &flags.authenticate},
	} {
		if f.raw == "" {
			continue
		}
		val, err := strconv.ParseBool(f.raw)
		if err != nil {
			return triState{}, fmt.Errorf("%w: %s=%q", ErrInvalidFlagValue, f.name, f.raw)
		}
		*f.dst = &val
	}
	return flags, nil
}

func (r *Resolver) selectSource(opts Options, flags triState) (model.CredentialRecord, error) {
	switch {
	case opts.CredsFile != "":
		// A persisted file is used verbatim, with no further defaulting.
		return credfile.Read(opts.CredsFile)

	case opts.Host != "" || opts.User != "" || opts.Password != "":
		return fromExplicit(opts, flags), nil

	case opts.KeyName != "" || opts.Provider != "":
		return r.fromKeyring(opts)
	}

	return model.CredentialRecord{}, ErrNoCredentials
}

// fromExplicit builds a record from caller-supplied values, filling
// gaps from a provider preset only when a provider name is also given.
func fromExplicit(opts Options, flags triState) model.CredentialRecord {
	rec := model.CredentialRecord{
		Sender:   opts.Sender,
		Host:     opts.Host,
		Port:     opts.Port,
		User:     opts.User,
		Password: opts.Password,
	}

	if preset, ok := provider.Lookup(opts.Provider); ok {
		if rec.Host == "" {
			rec.Host = preset.Server
		}
		if rec.Port == 0 {
			rec.Port = preset.Port
		}
		rec.UseSSL = preset.UseSSL
		rec.UseTLS = preset.UseTLS
		rec.Authenticate = preset.Authenticate
	} else {
		// Without a preset, supplying a password implies SMTP AUTH.
		rec.Authenticate = opts.Password != ""
	}

	// Explicit flags override preset defaults.
	if flags.useSSL != nil {
		rec.UseSSL = *flags.useSSL
	}
	if flags.useTLS != nil {
		rec.UseTLS = *flags.useTLS
	}
	if flags.authenticate != nil {
		rec.Authenticate = *flags.authenticate
	}

	return rec
}

// fromKeyring reconstructs a record from a stored keyring entry. The
// key name defaults to the provider short name, so a key created for
// "gmail" resolves without repeating it.
func (r *Resolver) fromKeyring(opts Options) (model.CredentialRecord, error) {
	keyName := opts.KeyName
	if keyName == "" {
		keyName = opts.Provider
	}

	keys, err := r.keyStore()
	if err != nil {
		return model.CredentialRecord{}, err
	}

	id, username, secret, err := keys.ResolveKey(keyName)
	if err != nil {
		return model.CredentialRecord{}, err
	}

	rec := model.CredentialRecord{
		Sender:       id.Sender,
		Host:         id.Host,
		Port:         id.Port,
		User:         username,
		Password:     secret,
		UseSSL:       id.UseSSL,
		Authenticate: true,
	}

	// The identifier stores only the SSL flag; recover the remaining
	// connection flags from the preset when one matches.
	if preset, ok := provider.Lookup(opts.Provider); ok {
		rec.UseTLS = preset.UseTLS
		rec.Authenticate = preset.Authenticate
	}

	return rec, nil
}

func (r *Resolver) keyStore() (*credential.KeyStore, error) {
	if r.Keys != nil {
		return r.Keys, nil
	}
	return credential.OpenKeyStore()
}

// validate runs after source selection regardless of which source was
// used. Error messages never contain the password.
func validate(rec model.CredentialRecord) error {
	if rec.Host == "" {
		return fmt.Errorf("%w: host is required", ErrIncompleteCredentials)
	}
	if rec.Port < 1 || rec.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrIncompleteCredentials, rec.Port)
	}
	if rec.Authenticate && rec.User == "" {
		return fmt.Errorf("%w: username required when authenticating", ErrIncompleteCredentials)
	}
	if rec.Authenticate && rec.Password == "" {
		return fmt.Errorf("%w: password required when authenticating", ErrIncompleteCredentials)
	}
	return nil
}
