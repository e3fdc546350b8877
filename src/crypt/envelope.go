package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// Envelope modes. ModeCTR produces envelopes compatible with data written by
// earlier releases; ModeAEAD adds integrity at the cost of compatibility.
const (
	ModeCTR  = "ctr"
	ModeAEAD = "aead"
)

const ivSize = 16

// Envelope encrypts and decrypts string values with a fixed 32-byte key. An
// encrypted value is a single string of the form "ivHex:cipherHex".
type Envelope struct {
	key  []byte
	mode string
}

// NewEnvelope creates an Envelope for the given key. The key must be exactly
// 32 characters. An empty mode selects CTR.
func NewEnvelope(key string, mode string) (*Envelope, error) {
	if len(key) != 32 {
		return nil, ErrInvalidKeySize
	}

	switch mode {
	case "", ModeCTR:
		mode = ModeCTR
	case ModeAEAD:
	default:
		return nil, fmt.Errorf("unknown envelope mode %q", mode)
	}

	return &Envelope{key: []byte(key), mode: mode}, nil
}

// Encrypt seals a plaintext string into an "ivHex:cipherHex" envelope.
func (e *Envelope) Encrypt(plain string) (string, error) {
	if e.mode == ModeAEAD {
		return e.encryptAEAD(plain)
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailure, err)
	}

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailure, err)
	}

	ciphertext := make([]byte, len(plain))
	cipher.NewCTR(block, iv).XORKeyStream(ciphertext, []byte(plain))

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt opens an envelope produced by Encrypt. A string that does not have
// the "ivHex:cipherHex" shape fails with ErrDecryptionFailure.
func (e *Envelope) Decrypt(envelope string) (string, error) {
	iv, ciphertext, err := splitEnvelope(envelope)
	if err != nil {
		return "", err
	}

	if e.mode == ModeAEAD {
		return e.decryptAEAD(iv, ciphertext)
	}

	if len(iv) != ivSize {
		return "", fmt.Errorf("%w: bad iv length %d", ErrDecryptionFailure, len(iv))
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailure, err)
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCTR(block, iv).XORKeyStream(plain, ciphertext)

	return string(plain), nil
}

func (e *Envelope) encryptAEAD(plain string) (string, error) {
	aead, err := chacha20poly1305.New(e.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailure, err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailure, err)
	}

	sealed := aead.Seal(nil, nonce, []byte(plain), nil)

	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(sealed), nil
}

func (e *Envelope) decryptAEAD(nonce, sealed []byte) (string, error) {
	aead, err := chacha20poly1305.New(e.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailure, err)
	}

	if len(nonce) != aead.NonceSize() {
		return "", fmt.Errorf("%w: bad nonce length %d", ErrDecryptionFailure, len(nonce))
	}

	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailure, err)
	}

	return string(plain), nil
}

func splitEnvelope(envelope string) ([]byte, []byte, error) {
	ivHex, cipherHex, found := strings.Cut(envelope, ":")
	if !found || ivHex == "" {
		return nil, nil, fmt.Errorf("%w: value is not an iv:ciphertext envelope", ErrDecryptionFailure)
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDecryptionFailure, err)
	}

	ciphertext, err := hex.DecodeString(cipherHex)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDecryptionFailure, err)
	}

	return iv, ciphertext, nil
}
