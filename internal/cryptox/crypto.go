// Package cryptox seals small values for the local secure store.
//
// Keys are derived with argon2id from a configured secret and a random
// per-database salt. Values are sealed with AES-256-GCM using a fresh
// 12-byte nonce on every call.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
)

// KeySize is the AES-256 key length produced by DeriveKey.
const KeySize = 32

// SaltSize is the recommended salt length for DeriveKey.
const SaltSize = 16

// ErrOpen is returned when a sealed value fails authentication.
var ErrOpen = errors.New("cryptox: cannot open sealed value")

// DeriveKey stretches secret with argon2id (1 pass, 64 MiB, 4 lanes).
// The same (secret, salt) pair always yields the same key.
func DeriveKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, KeySize)
}

// Seal encrypts plaintext with key and returns the ciphertext and the
// randomly generated nonce. The nonce must be stored next to the ciphertext.
func Seal(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	return aesgcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Open reverses Seal. A wrong key, nonce or tampered ciphertext yields ErrOpen.
func Open(ciphertext, nonce, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesgcm.NonceSize() {
		return nil, ErrOpen
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrOpen
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
