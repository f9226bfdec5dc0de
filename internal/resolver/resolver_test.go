package resolver

import (
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailkit/internal/credential"
	"github.com/nhle/mailkit/internal/credfile"
	"github.com/nhle/mailkit/internal/model"
)

// stubPrompter returns a fixed secret without operator interaction.
type stubPrompter struct {
	secret string
}

func (p stubPrompter) Secret(string) (string, error) {
	return p.secret, nil
}

func TestResolveExplicitWithProviderPreset(t *testing.T) {
	r := &Resolver{}

	rec, err := r.Resolve(Options{
		Provider: "gmail",
		User:     "a@gmail.com",
		Password: "x",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.gmail.com", rec.Host)
	assert.Equal(t, 465, rec.Port)
	assert.True(t, rec.UseSSL)
	assert.False(t, rec.UseTLS)
	assert.True(t, rec.Authenticate)
	assert.Equal(t, "a@gmail.com", rec.User)
	assert.Equal(t, "x", rec.Password)
}

func TestResolveExplicitFlagsOverridePreset(t *testing.T) {
	r := &Resolver{}

	rec, err := r.Resolve(Options{
		Provider: "gmail",
		User:     "a@gmail.com",
		Password: "x",
		Port:     587,
		UseSSL:   "false",
		UseTLS:   "true",
	})
	require.NoError(t, err)

	assert.Equal(t, 587, rec.Port)
	assert.False(t, rec.UseSSL)
	assert.True(t, rec.UseTLS)
}

func TestResolveCredsFileWinsOverExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds")
	fileRec := model.CredentialRecord{
		Host:         "file.example.com",
		Port:         2525,
		User:         "file-user",
		Password:     "file-pass",
		UseTLS:       true,
		Authenticate: true,
	}
	_, err := credfile.Write(fileRec, path)
	require.NoError(t, err)

	r := &Resolver{}
	rec, err := r.Resolve(Options{
		CredsFile: path,
		Host:      "flag.example.com",
		User:      "flag-user",
		Password:  "flag-pass",
	})
	require.NoError(t, err)

	assert.Equal(t, fileRec, rec)
}

func TestResolveFromKeyring(t *testing.T) {
	keys := credential.NewKeyStore(keyring.NewArrayKeyring(nil))
	_, err := keys.CreateKey(stubPrompter{secret: "hunter2"}, credential.KeyID{
		KeyName: "work",
		Sender:  "Jane",
		Host:    "smtp.example.com",
		Port:    587,
		UseSSL:  true,
	}, "jane@example.com")
	require.NoError(t, err)

	r := &Resolver{Keys: keys}
	rec, err := r.Resolve(Options{KeyName: "work"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com", rec.Host)
	assert.Equal(t, 587, rec.Port)
	assert.Equal(t, "Jane", rec.Sender)
	assert.Equal(t, "jane@example.com", rec.User)
	assert.Equal(t, "hunter2", rec.Password)
	assert.True(t, rec.UseSSL)
	assert.True(t, rec.Authenticate)
}

func TestResolveKeyNameDefaultsToProvider(t *testing.T) {
	keys := credential.NewKeyStore(keyring.NewArrayKeyring(nil))
	_, err := keys.CreateKey(stubPrompter{secret: "s"}, credential.KeyID{
		KeyName: "gmail",
		Host:    "smtp.gmail.com",
		Port:    465,
		UseSSL:  true,
	}, "a@gmail.com")
	require.NoError(t, err)

	r := &Resolver{Keys: keys}
	rec, err := r.Resolve(Options{Provider: "gmail"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.gmail.com", rec.Host)
	assert.False(t, rec.UseTLS)
	assert.True(t, rec.Authenticate)
}

func TestResolveNoSource(t *testing.T) {
	r := &Resolver{}

	_, err := r.Resolve(Options{Sender: "Jane"})
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestResolveInvalidFlagValue(t *testing.T) {
	r := &Resolver{}

	_, err := r.Resolve(Options{
		Host:     "smtp.example.com",
		Port:     587,
		User:     "jane",
		Password: "x",
		UseSSL:   "yes",
	})
	assert.ErrorIs(t, err, ErrInvalidFlagValue)
}

func TestResolveIncomplete(t *testing.T) {
	r := &Resolver{}

	// User given but no host and no preset to fill it.
	_, err := r.Resolve(Options{User: "jane", Password: "x"})
	assert.ErrorIs(t, err, ErrIncompleteCredentials)

	// Port out of range.
	_, err = r.Resolve(Options{
		Host: "smtp.example.com", Port: 70000, User: "jane", Password: "x",
	})
	assert.ErrorIs(t, err, ErrIncompleteCredentials)

	// Authenticating without a password.
	_, err = r.Resolve(Options{
		Host: "smtp.example.com", Port: 587, User: "jane", Authenticate: "true",
	})
	assert.ErrorIs(t, err, ErrIncompleteCredentials)
}

func TestResolveErrorsNeverContainPassword(t *testing.T) {
	r := &Resolver{}

	_, err := r.Resolve(Options{User: "jane", Password: "s3cretvalue"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "s3cretvalue")
}
