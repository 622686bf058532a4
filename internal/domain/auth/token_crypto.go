package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

var errSealedTokenShort = errors.New("sealed token shorter than nonce")

// sealer encrypts provider refresh tokens at rest with AES-GCM.
type sealer struct {
	aead cipher.AEAD
}

func newSealer(key string) (sealer, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return sealer{}, errors.New("token encryption key must be 16, 24, or 32 bytes")
	}
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return sealer{}, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return sealer{}, err
	}
	return sealer{aead: aead}, nil
}

// seal returns nonce||ciphertext, base64url encoded. Empty input stays empty.
func (s sealer) seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (s sealer) open(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	n := s.aead.NonceSize()
	if len(payload) < n {
		return "", errSealedTokenShort
	}
	plain, err := s.aead.Open(nil, payload[:n], payload[n:], nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
