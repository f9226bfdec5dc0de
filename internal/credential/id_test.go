package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ids := []KeyID{
		{KeyName: "work", Sender: "Jane", Host: "smtp.example.com", Port: 587, UseSSL: true},
		{KeyName: "gmail", Sender: "", Host: "smtp.gmail.com", Port: 465, UseSSL: true},
		{KeyName: "plain", Sender: "Ops Team", Host: "mail.corp.io", Port: 25, UseSSL: false},
	}

	for _, id := range ids {
		identifier, err := Encode(id)
		require.NoError(t, err)

		decoded, err := Decode(identifier)
		require.NoError(t, err)
		assert.Equal(t, id, decoded)
	}
}

func TestEncodeIdentifierShape(t *testing.T) {
	identifier, err := Encode(KeyID{
		KeyName: "work", Sender: "Jane", Host: "smtp.example.com", Port: 587, UseSSL: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "mailkit-v2(work) :: Jane :: smtp.example.com :: 587 :: true", identifier)
}

func TestEncodeRejectsDelimiterInFields(t *testing.T) {
	_, err := Encode(KeyID{
		KeyName: "bad :: name", Host: "smtp.example.com", Port: 587,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved delimiter")
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"wrong segment count": "mailkit-v2(work) :: Jane :: smtp.example.com",
		"wrong version":       "mailkit-v1(work) :: Jane :: smtp.example.com :: 587 :: true",
		"wrong namespace":     "other-v2(work) :: Jane :: smtp.example.com :: 587 :: true",
		"missing bracket":     "mailkit-v2-work :: Jane :: smtp.example.com :: 587 :: true",
		"bad port":            "mailkit-v2(work) :: Jane :: smtp.example.com :: abc :: true",
		"bad ssl flag":        "mailkit-v2(work) :: Jane :: smtp.example.com :: 587 :: maybe",
	}

	for name, identifier := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(identifier)
			assert.ErrorIs(t, err, ErrMalformedIdentifier)
		})
	}
}
