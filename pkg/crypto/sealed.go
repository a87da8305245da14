package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize = 16
	keySize  = 32
)

var (
	// PBKDF2Iterations is the key stretching work factor for sealed secrets
	PBKDF2Iterations = 100_000

	randomRead = rand.Read

	ErrMalformedCiphertext = errors.New("malformed sealed value")
	ErrDecryptFailed       = errors.New("sealed value could not be opened")
	ErrInvalidKey          = errors.New("encryption key must be 32 bytes")
)

// Seal encrypts plaintext under a password. The result is hex of
// salt || nonce || AES-GCM ciphertext.
func Seal(plaintext, password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := randomRead(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return "", err
	}
	out, err := sealGCM(gcm, salt, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(out), nil
}

// Open reverses Seal
func Open(sealed, password string) (string, error) {
	raw, err := hex.DecodeString(sealed)
	if err != nil || len(raw) < saltSize {
		return "", ErrMalformedCiphertext
	}

	gcm, err := newGCM(password, raw[:saltSize])
	if err != nil {
		return "", err
	}
	plaintext, err := openGCM(gcm, raw[saltSize:])
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// SealWithKey encrypts under a raw 32-byte key. The result is hex of
// nonce || AES-GCM ciphertext.
func SealWithKey(plaintext, key []byte) (string, error) {
	gcm, err := keyGCM(key)
	if err != nil {
		return "", err
	}
	out, err := sealGCM(gcm, nil, plaintext)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(out), nil
}

// OpenWithKey reverses SealWithKey
func OpenWithKey(sealed string, key []byte) ([]byte, error) {
	raw, err := hex.DecodeString(sealed)
	if err != nil {
		return nil, ErrMalformedCiphertext
	}
	gcm, err := keyGCM(key)
	if err != nil {
		return nil, err
	}
	return openGCM(gcm, raw)
}

func sealGCM(gcm cipher.AEAD, prefix, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, gcm.NonceSize())
	if _, err := randomRead(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	out := make([]byte, 0, len(prefix)+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, prefix...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

func openGCM(gcm cipher.AEAD, raw []byte) ([]byte, error) {
	if len(raw) < gcm.NonceSize()+gcm.Overhead() {
		return nil, ErrMalformedCiphertext
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

func keyGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != keySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// GenerateRandomToken generates a random token of specified length
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := randomRead(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
