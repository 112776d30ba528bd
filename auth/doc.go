// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides the credential checks and ID generation helpers.

# Admin Bearer Credential

Admin endpoints are guarded by one shared secret (ADMIN_TOKEN):

	err := auth.ValidateBearer(r.Header.Get("Authorization"), cfg.AdminToken)

The header must read "Bearer <secret>". The comparison is constant time
(SecretEqual hashes both sides with SHA-256 and compares with hmac.Equal),
so neither the content nor the length of the secret leaks through timing.
An empty configured secret rejects everything.

# Participant Tokens

Participant tokens are not checked here: a token is valid exactly when the
participant registry knows it. See package store.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

For logging submissions without storing addresses:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
