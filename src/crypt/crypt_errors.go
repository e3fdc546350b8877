package crypt

import "errors"

// ErrInvalidKeySize is returned when the configured key is not 32 bytes long.
var ErrInvalidKeySize = errors.New("encryption key must be exactly 32 characters")

// ErrEncryptionFailure is returned when a value could not be sealed.
var ErrEncryptionFailure = errors.New("failed to encrypt value")

// ErrDecryptionFailure is returned when an envelope is malformed or its
// ciphertext could not be recovered.
var ErrDecryptionFailure = errors.New("failed to decrypt value")
