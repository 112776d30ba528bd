// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingCredential = errors.New("missing bearer credential")
	ErrInvalidCredential = errors.New("invalid bearer credential")
	ErrNotConfigured     = errors.New("admin token not configured")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ParseBearer extracts the credential from an Authorization header value.
// The scheme is case-insensitive.
func ParseBearer(header string) (string, bool) {
	scheme, credential, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	credential = strings.TrimSpace(credential)
	return credential, credential != ""
}

// ValidateBearer checks an Authorization header against the admin secret.
func ValidateBearer(header, secret string) error {
	if secret == "" {
		return ErrNotConfigured
	}
	credential, ok := ParseBearer(header)
	if !ok {
		return ErrMissingCredential
	}
	if !SecretEqual(credential, secret) {
		return ErrInvalidCredential
	}
	return nil
}

// SecretEqual compares two secrets in constant time. Both sides are hashed
// first so the comparison does not leak the secret's length either.
func SecretEqual(given, expected string) bool {
	g := sha256.Sum256([]byte(given))
	e := sha256.Sum256([]byte(expected))
	return hmac.Equal(g[:], e[:])
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	return Fingerprint(ip, salt)
}

// Fingerprint returns a salted, truncated HMAC of value for log lines.
// Participant tokens are logged this way so the logs never hold a working
// survey link.
func Fingerprint(value, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(value))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for correlating log lines
	return hex.EncodeToString(sum[:8])
}
