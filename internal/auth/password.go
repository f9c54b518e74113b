// Package auth — password hashing utilities.
//
// WHY ARGON2ID?
// argon2id is a memory-hard password hashing function: cracking it requires
// not just CPU time but large amounts of RAM per guess, which makes
// GPU/ASIC brute-forcing expensive. It won the Password Hashing Competition
// and is the current OWASP recommendation for new applications.
//
// Each call generates a fresh random salt and embeds it — along with the
// tuning parameters — in the output string, so no separate salt column is
// needed and parameters can be raised later without breaking old hashes.
//
// Hash format (PHC string):
//
//	$argon2id$v=19$m=65536,t=3,p=2$<base64 salt>$<base64 hash>
//
// NEVER store passwords in plain text or with fast hashes (MD5, SHA-256) —
// those fall to GPU rainbow tables in minutes.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// argon2Params are the tuning knobs for argon2id.
//
// TUNING RULE OF THUMB:
// Pick memory/time so that hashing takes ~100-300ms on production hardware.
// 64 MiB with 3 passes is the commonly recommended baseline (2024).
type argon2Params struct {
	memory      uint32 // KiB
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
}

var defaultParams = argon2Params{
	memory:      64 * 1024, // 64 MiB
	iterations:  3,
	parallelism: 2,
	saltLength:  16,
	keyLength:   32,
}

// PasswordHasher provides argon2id hashing and verification.
//
// It's a struct (not free functions) so the parameters can be injected in
// tests — a tiny memory/iteration setting makes tests fast without changing
// the logic under test.
type PasswordHasher struct {
	params argon2Params
}

// NewPasswordHasher creates a PasswordHasher with production parameters.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{params: defaultParams}
}

// NewPasswordHasherForTest creates a PasswordHasher with deliberately weak
// parameters (8 MiB, 1 pass). Hashing drops from ~150ms to ~10ms per call.
//
// Do NOT use in production.
func NewPasswordHasherForTest() *PasswordHasher {
	return &PasswordHasher{params: argon2Params{
		memory:      8 * 1024,
		iterations:  1,
		parallelism: 1,
		saltLength:  16,
		keyLength:   32,
	}}
}

// Hash hashes the given plaintext password with argon2id.
//
// The output is a self-contained PHC string — store it directly in the
// database. It includes the salt and parameters, so Verify knows how to
// recompute the hash.
func (p *PasswordHasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, p.params.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: generating salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(plaintext),
		salt,
		p.params.iterations,
		p.params.memory,
		p.params.parallelism,
		p.params.keyLength,
	)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.params.memory,
		p.params.iterations,
		p.params.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify reports whether plaintext matches a stored argon2id hash.
//
// TIMING SAFETY:
// The final comparison uses subtle.ConstantTimeCompare, so response time
// doesn't reveal where a mismatch occurs.
//
// A malformed stored hash is treated as "does not match" rather than an
// error — from the caller's perspective a record it can't verify against is
// simply a failed login, not a server fault.
func (p *PasswordHasher) Verify(encoded, plaintext string) bool {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false
	}

	otherKey := argon2.IDKey(
		[]byte(plaintext),
		salt,
		params.iterations,
		params.memory,
		params.parallelism,
		params.keyLength,
	)

	return subtle.ConstantTimeCompare(key, otherKey) == 1
}

// decodeHash parses a PHC-format argon2id string back into its parameters,
// salt, and derived key. All verification parameters come from the stored
// hash itself, not from the hasher's current configuration — that is what
// lets us raise the defaults without invalidating existing credentials.
func decodeHash(encoded string) (argon2Params, []byte, []byte, error) {
	var params argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return params, nil, nil, fmt.Errorf("auth: malformed password hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, fmt.Errorf("auth: malformed hash version: %w", err)
	}
	if version != argon2.Version {
		return params, nil, nil, fmt.Errorf("auth: incompatible argon2 version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.memory, &params.iterations, &params.parallelism); err != nil {
		return params, nil, nil, fmt.Errorf("auth: malformed hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, fmt.Errorf("auth: malformed hash salt: %w", err)
	}
	params.saltLength = uint32(len(salt))

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, fmt.Errorf("auth: malformed hash key: %w", err)
	}
	params.keyLength = uint32(len(key))

	return params, salt, key, nil
}
