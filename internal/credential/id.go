// Package credential stores SMTP secrets in the system keyring and
// packs connection metadata into the keyring's single lookup key.
//
// The keyring indexes entries by one opaque string plus an account
// label, so the key name, sender, host, port, and SSL flag are
// flattened into the identifier itself rather than stored as a
// separate value.
package credential

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// namespace prefixes every identifier written by this package.
	namespace = "mailkit"

	// CurrentVersion is the identifier layout version written by
	// Encode. Older versions remain readable through ListKeys.
	CurrentVersion = 2

	// idDelim separates the identifier segments. Field values that
	// contain it are rejected at encode time; splitting on it during
	// decode would otherwise silently misalign the fields.
	idDelim = " :: "
)

// ErrMalformedIdentifier is returned when an identifier does not match
// the expected version tag or segment layout.
var ErrMalformedIdentifier = errors.New("malformed credential identifier")

// KeyID is the structured metadata packed into one keyring identifier.
type KeyID struct {
	KeyName string
	Sender  string
	Host    string
	Port    int
	UseSSL  bool
}

// Encode packs id into a single identifier string of the form
//
//	mailkit-v2(work) :: Jane :: smtp.example.com :: 587 :: true
//
// It fails if any field value contains the delimiter sequence, since
// such an identifier could not be decoded unambiguously.
func Encode(id KeyID) (string, error) {
	for _, field := range []string{id.KeyName, id.Sender, id.Host} {
		if strings.Contains(field, idDelim) {
			return "", fmt.Errorf(
				"field %q contains the reserved delimiter %q", field, idDelim,
			)
		}
	}

	head := fmt.Sprintf("%s-v%d(%s)", namespace, CurrentVersion, id.KeyName)
	segments := []string{
		head,
		id.Sender,
		id.Host,
		strconv.Itoa(id.Port),
		strconv.FormatBool(id.UseSSL),
	}
	return strings.Join(segments, idDelim), nil
}

// Decode is the exact inverse of Encode for identifiers written under
// CurrentVersion.
func Decode(identifier string) (KeyID, error) {
	return decodeVersion(identifier, CurrentVersion)
}

// decodeVersion reconstructs a KeyID from an identifier written under
// the given layout version.
func decodeVersion(identifier string, version int) (KeyID, error) {
	segments := strings.Split(identifier, idDelim)
	if len(segments) != 5 {
		return KeyID{}, fmt.Errorf(
			"%w: expected 5 segments, got %d", ErrMalformedIdentifier, len(segments),
		)
	}

	prefix := versionPrefix(version)
	head := segments[0]
	if !strings.HasPrefix(head, prefix) || !strings.HasSuffix(head, ")") {
		return KeyID{}, fmt.Errorf(
			"%w: missing %s(...) tag", ErrMalformedIdentifier, strings.TrimSuffix(prefix, "("),
		)
	}
	keyName := head[len(prefix) : len(head)-1]

	port, err := strconv.Atoi(segments[3])
	if err != nil {
		return KeyID{}, fmt.Errorf("%w: bad port segment %q", ErrMalformedIdentifier, segments[3])
	}

	useSSL, err := strconv.ParseBool(segments[4])
	if err != nil {
		return KeyID{}, fmt.Errorf("%w: bad ssl segment %q", ErrMalformedIdentifier, segments[4])
	}

	return KeyID{
		KeyName: keyName,
		Sender:  segments[1],
		Host:    segments[2],
		Port:    port,
		UseSSL:  useSSL,
	}, nil
}

// versionPrefix returns the namespace prefix for identifiers of the
// given layout version, up to and including the opening bracket.
func versionPrefix(version int) string {
	return fmt.Sprintf("%s-v%d(", namespace, version)
}
