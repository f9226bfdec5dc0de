// Package provider holds the static table of well-known SMTP provider
// presets. The table is immutable; lookups have no side effects.
package provider

import "sort"

// Preset is a named bundle of connection defaults for a well-known
// SMTP service.
type Preset struct {
	ShortName    string
	Server       string
	Port         int
	UseSSL       bool
	UseTLS       bool
	Authenticate bool
}

var presets = map[string]Preset{
	"gmail": {
		ShortName:    "gmail",
		Server:       "smtp.gmail.com",
		Port:         465,
		UseSSL:       true,
		UseTLS:       false,
		Authenticate: true,
	},
	"outlook": {
		ShortName:    "outlook",
		Server:       "smtp-mail.outlook.com",
		Port:         587,
		UseSSL:       false,
		UseTLS:       true,
		Authenticate: true,
	},
	"office365": {
		ShortName:    "office365",
		Server:       "smtp.office365.com",
		Port:         587,
		UseSSL:       false,
		UseTLS:       true,
		Authenticate: true,
	},
}

// Lookup returns the preset registered under shortName. An unknown
// name is not an error; the second return value reports whether a
// preset exists, and the resolver falls back to caller-supplied
// values when it does not.
func Lookup(shortName string) (Preset, bool) {
	p, ok := presets[shortName]
	return p, ok
}

// Names returns the registered provider short names in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
