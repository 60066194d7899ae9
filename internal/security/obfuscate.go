// Package security holds the admin-credential obfuscation helpers.
//
// This is obfuscation, NOT encryption: it only keeps the shared password
// from appearing as plain text in the persisted snapshot and in remote
// payloads. It offers no protection against anyone who reads this source.
package security

import "crypto/subtle"

// obfuscationKey is XORed byte-wise over the password.
const obfuscationKey = 0x42

// defaultPassword is the out-of-the-box admin password, held as byte
// values rather than a string literal so it can't be found with a plain
// text search.
var defaultPassword = []byte{0x31, 0x39, 0x39, 0x38}

// Obfuscate XOR-masks a password for storage.
// PRE: none
// POST: Returns the masked form; empty input stays empty
func Obfuscate(password string) string {
	if password == "" {
		return ""
	}
	b := []byte(password)
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = c ^ obfuscationKey
	}
	return string(out)
}

// Deobfuscate reverses Obfuscate.
// PRE: obfuscated was produced by Obfuscate
// POST: Returns the original password; empty input stays empty
func Deobfuscate(obfuscated string) string {
	return Obfuscate(obfuscated)
}

// DefaultPassword returns the out-of-the-box admin password in clear form.
// INVARIANT: callers must not log the returned value
func DefaultPassword() string {
	return string(defaultPassword)
}

// DefaultObfuscated returns the out-of-the-box admin password in stored form.
func DefaultObfuscated() string {
	return Obfuscate(string(defaultPassword))
}

// SecureCompare reports whether two strings are equal in constant time.
// PRE: none
// POST: Returns false when either side is empty
func SecureCompare(input, stored string) bool {
	if input == "" || stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(input), []byte(stored)) == 1
}
