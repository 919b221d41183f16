// Package vault derives the symmetric key from the access PIN and
// encrypts/decrypts the budget document payload with AES-256-GCM.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrDecryptFailed covers wrong keys and corrupted ciphertext alike. Callers
// must treat it as a hard failure, never as an empty document.
var ErrDecryptFailed = errors.New("vault: decrypt failed")

// Key is the 32-byte AES key derived from the PIN.
type Key [sha256.Size]byte

// DeriveKey hashes pin+salt with SHA-256. The salt is a fixed deployment
// constant, not a per-document value.
func DeriveKey(pin, salt string) Key {
	return sha256.Sum256([]byte(pin + salt))
}

// Encrypt seals the plaintext with AES-256-GCM and returns
// base64(nonce || ciphertext).
func Encrypt(key Key, plaintext []byte) (string, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("new gcm: %w", err)
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	sealed := aesgcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any structural or authentication failure comes
// back wrapped in ErrDecryptFailed.
func Decrypt(key Key, encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", ErrDecryptFailed, err)
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	ns := aesgcm.NonceSize()
	if len(data) < ns {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecryptFailed)
	}
	nonce, ciphertext := data[:ns], data[ns:]

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}
	return plaintext, nil
}
