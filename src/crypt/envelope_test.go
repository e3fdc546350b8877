package crypt

import (
	"errors"
	"strings"
	"testing"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestKeySizeValidation(t *testing.T) {
	for _, key := range []string{"", "short", strings.Repeat("x", 31), strings.Repeat("x", 33)} {
		if _, err := NewEnvelope(key, ModeCTR); !errors.Is(err, ErrInvalidKeySize) {
			t.Errorf("NewEnvelope(len %d) = %v, want ErrInvalidKeySize", len(key), err)
		}
	}

	if _, err := NewEnvelope(testKey, ""); err != nil {
		t.Errorf("NewEnvelope with empty mode = %v, want nil", err)
	}
	if _, err := NewEnvelope(testKey, "rot13"); err == nil {
		t.Error("NewEnvelope accepted an unknown mode")
	}
}

func TestRoundTrip(t *testing.T) {
	plaintexts := []string{
		"",
		"hello",
		"hunter2",
		strings.Repeat("long ", 1000),
		"unicode: héllo wörld — 你好",
		"contains:colons:and \"quotes\"",
	}

	for _, mode := range []string{ModeCTR, ModeAEAD} {
		t.Run(mode, func(t *testing.T) {
			envelope, err := NewEnvelope(testKey, mode)
			if err != nil {
				t.Fatalf("NewEnvelope failed: %v", err)
			}

			for _, plain := range plaintexts {
				sealed, err := envelope.Encrypt(plain)
				if err != nil {
					t.Fatalf("Encrypt(%q) failed: %v", plain, err)
				}
				if !strings.Contains(sealed, ":") {
					t.Errorf("Encrypt(%q) = %q, want an iv:ciphertext envelope", plain, sealed)
				}

				opened, err := envelope.Decrypt(sealed)
				if err != nil {
					t.Fatalf("Decrypt failed: %v", err)
				}
				if opened != plain {
					t.Errorf("round trip of %q yielded %q", plain, opened)
				}
			}
		})
	}
}

func TestEnvelopesAreSalted(t *testing.T) {
	envelope, err := NewEnvelope(testKey, ModeCTR)
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}

	first, err := envelope.Encrypt("same value")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	second, err := envelope.Encrypt("same value")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if first == second {
		t.Error("two envelopes of the same plaintext are identical")
	}
}

func TestDecryptMalformedEnvelopes(t *testing.T) {
	envelope, err := NewEnvelope(testKey, ModeCTR)
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}

	malformed := []string{
		"",
		"no-colon",
		":missing-iv",
		"zz:00",     // bad iv hex
		"00ff:zz",   // bad cipher hex
		"00ff:00ff", // iv too short
		"plain text that was never sealed",
	}

	for _, input := range malformed {
		if _, err := envelope.Decrypt(input); !errors.Is(err, ErrDecryptionFailure) {
			t.Errorf("Decrypt(%q) = %v, want ErrDecryptionFailure", input, err)
		}
	}
}

func TestAEADDetectsTampering(t *testing.T) {
	envelope, err := NewEnvelope(testKey, ModeAEAD)
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}

	sealed, err := envelope.Encrypt("important")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// Flip one hex digit of the ciphertext.
	last := sealed[len(sealed)-1]
	flipped := byte('0')
	if last == '0' {
		flipped = '1'
	}
	tampered := sealed[:len(sealed)-1] + string(flipped)

	if _, err := envelope.Decrypt(tampered); !errors.Is(err, ErrDecryptionFailure) {
		t.Errorf("Decrypt(tampered) = %v, want ErrDecryptionFailure", err)
	}
}

func TestModesAreNotInterchangeable(t *testing.T) {
	ctr, err := NewEnvelope(testKey, ModeCTR)
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}
	aead, err := NewEnvelope(testKey, ModeAEAD)
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}

	sealed, err := ctr.Encrypt("value")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := aead.Decrypt(sealed); !errors.Is(err, ErrDecryptionFailure) {
		t.Errorf("AEAD Decrypt of a CTR envelope = %v, want ErrDecryptionFailure", err)
	}
}
