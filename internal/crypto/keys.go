package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// NodeKeys содержит производные ключи узла:
// AuthKey для аутентификации на peer-узлах, SealKey для шифрования
// локально хранимых credentials.
type NodeKeys struct {
	AuthKey []byte // ключ аутентификации (32 bytes)
	SealKey []byte // ключ шифрования локального хранилища (32 bytes)
}

// Параметры Argon2id
const (
	// Argon2Time - количество итераций (time cost)
	Argon2Time = 1
	// Argon2Memory - объем памяти в KB (64MB)
	Argon2Memory = 64 * 1024
	// Argon2Threads - количество параллельных потоков
	Argon2Threads = 4
	// Argon2KeyLen - длина выходного ключа в байтах
	Argon2KeyLen = 32
	// SaltSize - размер соли в байтах
	SaltSize = 32
)

// GenerateSalt генерирует криптографически случайную соль
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// GenerateSaltBase64 генерирует соль и возвращает ее в Base64
func GenerateSaltBase64() (string, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// DeriveNodeKeys выводит два независимых ключа из cluster secret и имени узла.
// Разные context strings гарантируют независимость AuthKey и SealKey:
// компрометация одного не раскрывает второй.
func DeriveNodeKeys(clusterSecret, nodeName string, salt []byte) (*NodeKeys, error) {
	if clusterSecret == "" {
		return nil, fmt.Errorf("cluster secret cannot be empty")
	}
	if nodeName == "" {
		return nil, fmt.Errorf("node name cannot be empty")
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt must be %d bytes, got %d", SaltSize, len(salt))
	}

	base := []byte(clusterSecret + nodeName)

	authKey := argon2.IDKey(append(base, []byte("auth")...), salt,
		Argon2Time, Argon2Memory, Argon2Threads, Argon2KeyLen)
	sealKey := argon2.IDKey(append(base, []byte("seal")...), salt,
		Argon2Time, Argon2Memory, Argon2Threads, Argon2KeyLen)

	return &NodeKeys{
		AuthKey: authKey,
		SealKey: sealKey,
	}, nil
}

// DeriveNodeKeysFromBase64Salt выводит ключи из Base64-кодированной соли
func DeriveNodeKeysFromBase64Salt(clusterSecret, nodeName, saltBase64 string) (*NodeKeys, error) {
	salt, err := base64.StdEncoding.DecodeString(saltBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	return DeriveNodeKeys(clusterSecret, nodeName, salt)
}

// HashAuthKey хеширует auth_key через SHA256.
// Сервер хранит только этот хеш; auth_key уже защищен Argon2id.
func HashAuthKey(authKey []byte) (string, error) {
	if len(authKey) == 0 {
		return "", fmt.Errorf("auth key cannot be empty")
	}

	hash := sha256.Sum256(authKey)
	return hex.EncodeToString(hash[:]), nil
}

// VerifyAuthKey проверяет auth_key против сохраненного хеша
func VerifyAuthKey(authKey []byte, hashedAuthKey string) error {
	if hashedAuthKey == "" {
		return fmt.Errorf("hashed auth key cannot be empty")
	}

	computed, err := HashAuthKey(authKey)
	if err != nil {
		return fmt.Errorf("failed to compute auth key hash: %w", err)
	}

	if computed != hashedAuthKey {
		return fmt.Errorf("invalid auth key")
	}

	return nil
}
