// Package credfile persists a resolved credential record as a plain
// YAML artifact on disk. The file is not encrypted; filesystem
// permissions are the only protection, which is a deliberate scope
// limit. Keep these files out of version control.
package credfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/nhle/mailkit/internal/model"
)

// ErrUnreadableFile is returned when a credentials file is missing or
// not a valid serialized record.
var ErrUnreadableFile = errors.New("credentials file missing or unreadable")

const filePrefix = ".mailkit_creds"

// DefaultPath derives a hidden, host-scoped filename so credentials
// for several hosts can coexist in one directory. Dots in the host are
// replaced so the name has no extension-like suffix. The derivation is
// one-way: reads always take an explicit path.
func DefaultPath(host string) string {
	return filePrefix + "_" + strings.ReplaceAll(host, ".", "_")
}

// Write serializes rec to a YAML file at path, creating or overwriting
// it. When path is empty the default host-scoped name is used. All
// fields are stored as strings so the artifact round-trips through
// plain string conversion. Returns the path written.
func Write(rec model.CredentialRecord, path string) (string, error) {
	if path == "" {
		path = DefaultPath(rec.Host)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("sender", rec.Sender)
	v.Set("host", rec.Host)
	v.Set("port", strconv.Itoa(rec.Port))
	v.Set("user", rec.User)
	v.Set("password", rec.Password)
	v.Set("use_ssl", strconv.FormatBool(rec.UseSSL))
	v.Set("use_tls", strconv.FormatBool(rec.UseTLS))
	v.Set("authenticate", strconv.FormatBool(rec.Authenticate))

	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("writing credentials file %s: %w", path, err)
	}

	// The artifact holds a cleartext password; restrict it to the owner.
	if err := os.Chmod(path, 0o600); err != nil {
		return "", fmt.Errorf("restricting credentials file %s: %w", path, err)
	}

	return path, nil
}

// Read loads the record previously serialized at path.
func Read(path string) (model.CredentialRecord, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return model.CredentialRecord{}, fmt.Errorf(
			"reading credentials file %s: %v: %w", path, err, ErrUnreadableFile,
		)
	}

	port, err := strconv.Atoi(v.GetString("port"))
	if err != nil {
		return model.CredentialRecord{}, fmt.Errorf(
			"credentials file %s: bad port %q: %w", path, v.GetString("port"), ErrUnreadableFile,
		)
	}

	rec := model.CredentialRecord{
		Sender:   v.GetString("sender"),
		Host:     v.GetString("host"),
		Port:     port,
		User:     v.GetString("user"),
		Password: v.GetString("password"),
	}

	for _, field := range []struct {
		name string
		dst  *bool
	}{
		{"use_ssl", &rec.UseSSL},
		{"use_tls", &rec.UseTLS},
		{"authenticate", &rec.Authenticate},
	} {
		val, err := strconv.ParseBool(v.GetString(field.name))
		if err != nil {
			return model.CredentialRecord{}, fmt.Errorf(
				"credentials file %s: bad %s value: %w", path, field.name, ErrUnreadableFile,
			)
		}
		*field.dst = val
	}

	return rec, nil
}
