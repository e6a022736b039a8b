package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	require.NoError(t, err)
	assert.Len(t, salt1, SaltSize)

	salt2, err := GenerateSalt()
	require.NoError(t, err)
	assert.NotEqual(t, salt1, salt2, "salts must be random")
}

func TestDeriveNodeKeys(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	keys, err := DeriveNodeKeys("cluster-secret-value", "store-harare-01", salt)
	require.NoError(t, err)

	assert.Len(t, keys.AuthKey, Argon2KeyLen)
	assert.Len(t, keys.SealKey, Argon2KeyLen)
	assert.NotEqual(t, keys.AuthKey, keys.SealKey, "keys must be independent")

	// Деривация детерминирована
	again, err := DeriveNodeKeys("cluster-secret-value", "store-harare-01", salt)
	require.NoError(t, err)
	assert.Equal(t, keys.AuthKey, again.AuthKey)
	assert.Equal(t, keys.SealKey, again.SealKey)

	// Другой узел получает другие ключи
	other, err := DeriveNodeKeys("cluster-secret-value", "store-bulawayo-02", salt)
	require.NoError(t, err)
	assert.NotEqual(t, keys.AuthKey, other.AuthKey)
}

func TestDeriveNodeKeys_Validation(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	_, err = DeriveNodeKeys("", "store-01", salt)
	assert.Error(t, err)

	_, err = DeriveNodeKeys("secret-secret-secret", "", salt)
	assert.Error(t, err)

	_, err = DeriveNodeKeys("secret-secret-secret", "store-01", []byte("short"))
	assert.Error(t, err)
}

func TestHashAuthKey(t *testing.T) {
	hash, err := HashAuthKey([]byte("some-auth-key-material"))
	require.NoError(t, err)
	assert.Len(t, hash, 64, "hex-encoded SHA256")

	require.NoError(t, VerifyAuthKey([]byte("some-auth-key-material"), hash))
	assert.Error(t, VerifyAuthKey([]byte("wrong-key"), hash))

	_, err = HashAuthKey(nil)
	assert.Error(t, err)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}

	plaintext := []byte(`{"access_token":"secret"}`)

	sealed, err := Seal(plaintext, key)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, sealed)

	opened, err := Open(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestOpen_TamperedData(t *testing.T) {
	key := make([]byte, KeySize)
	sealed, err := Seal([]byte("payload"), key)
	require.NoError(t, err)

	// Порча ciphertext должна ломать GCM аутентификацию
	sealed[len(sealed)-1] ^= 0xFF
	_, err = Open(sealed, key)
	assert.Error(t, err)
}

func TestOpen_WrongKey(t *testing.T) {
	key := make([]byte, KeySize)
	sealed, err := Seal([]byte("payload"), key)
	require.NoError(t, err)

	wrongKey := make([]byte, KeySize)
	wrongKey[0] = 1
	_, err = Open(sealed, wrongKey)
	assert.Error(t, err)
}

func TestSeal_Validation(t *testing.T) {
	key := make([]byte, KeySize)

	_, err := Seal(nil, key)
	assert.Error(t, err)

	_, err = Seal([]byte("data"), []byte("short-key"))
	assert.Error(t, err)

	_, err = Open([]byte("tiny"), key)
	assert.Error(t, err)
}
