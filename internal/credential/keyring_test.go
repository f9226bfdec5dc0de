package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPrompter returns a fixed secret without operator interaction.
type stubPrompter struct {
	secret string
}

func (p stubPrompter) Secret(string) (string, error) {
	return p.secret, nil
}

func newTestKeyStore() *KeyStore {
	return NewKeyStore(keyring.NewArrayKeyring(nil))
}

func TestCreateKeyAndRetrieve(t *testing.T) {
	keys := newTestKeyStore()

	id := KeyID{KeyName: "work", Sender: "Jane", Host: "smtp.example.com", Port: 587, UseSSL: true}
	identifier, err := keys.CreateKey(stubPrompter{secret: "hunter2"}, id, "jane@example.com")
	require.NoError(t, err)

	secret, err := keys.Retrieve(identifier)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", secret)
}

func TestRetrieveMissing(t *testing.T) {
	keys := newTestKeyStore()

	_, err := keys.Retrieve("mailkit-v2(nope) :: x :: h :: 25 :: false")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestResolveKey(t *testing.T) {
	keys := newTestKeyStore()

	id := KeyID{KeyName: "work", Sender: "Jane", Host: "smtp.example.com", Port: 587, UseSSL: true}
	_, err := keys.CreateKey(stubPrompter{secret: "hunter2"}, id, "jane@example.com")
	require.NoError(t, err)

	decoded, username, secret, err := keys.ResolveKey("work")
	require.NoError(t, err)
	assert.Equal(t, id, decoded)
	assert.Equal(t, "jane@example.com", username)
	assert.Equal(t, "hunter2", secret)

	_, _, _, err = keys.ResolveKey("personal")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestListKeysFiltersVersionAndMalformed(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	keys := NewKeyStore(ring)

	_, err := keys.CreateKey(stubPrompter{secret: "s1"},
		KeyID{KeyName: "work", Host: "smtp.example.com", Port: 587}, "jane")
	require.NoError(t, err)
	_, err = keys.CreateKey(stubPrompter{secret: "s2"},
		KeyID{KeyName: "home", Host: "mail.home.net", Port: 465, UseSSL: true}, "jane")
	require.NoError(t, err)

	// A previous-version entry and two stray, manually created ones.
	for _, key := range []string{
		"mailkit-v1(old) ::  :: legacy.example.com :: 25 :: false",
		"unrelated-entry",
		"mailkit-v2(broken) :: missing-segments",
	} {
		require.NoError(t, ring.Set(keyring.Item{Key: key, Data: []byte("x")}))
	}

	ids, err := keys.ListKeys(CurrentVersion)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	names := []string{ids[0].KeyName, ids[1].KeyName}
	assert.ElementsMatch(t, []string{"work", "home"}, names)

	// The v1 entry is only visible when listing version 1.
	v1, err := keys.ListKeys(1)
	require.NoError(t, err)
	require.Len(t, v1, 1)
	assert.Equal(t, "old", v1[0].KeyName)
}

func TestDeleteKey(t *testing.T) {
	keys := newTestKeyStore()

	_, err := keys.CreateKey(stubPrompter{secret: "s"},
		KeyID{KeyName: "work", Host: "smtp.example.com", Port: 587}, "jane")
	require.NoError(t, err)

	require.NoError(t, keys.DeleteKey("work"))

	_, _, _, err = keys.ResolveKey("work")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	assert.ErrorIs(t, keys.DeleteKey("work"), ErrSecretNotFound)
}
