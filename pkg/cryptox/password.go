package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters, following the OWASP minimum recommendation.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16

	// maxMemory caps the m parameter accepted from a stored hash, so a
	// corrupt record cannot make verification allocate gigabytes.
	maxMemory = 4 * 1024 * 1024 // KiB (4 GiB)
)

// ErrMalformedHash reports a stored hash that cannot be parsed. A failed
// verification of a well-formed hash is NOT an error; a hash we cannot even
// read means the record is corrupt and the caller should treat it as such.
var ErrMalformedHash = errors.New("cryptox: malformed password hash")

// HashPassword derives a PHC-format Argon2id hash of the password, mixing in
// the configured pepper (see SetPepperPath). Every call draws a fresh salt,
// so hashing the same password twice yields different strings that both
// verify.
func HashPassword(password string) (string, error) {
	pepper, err := loadPepper()
	if err != nil {
		return "", err
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey(
		[]byte(password+pepper),
		salt,
		iterations,
		memory,
		parallelism,
		keyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword compares a plaintext password against a PHC-style Argon2id
// hash using a constant-time comparison. It returns (false, nil) when the
// password simply does not match and ErrMalformedHash when the stored hash
// is unreadable.
func VerifyPassword(password, encodedHash string) (bool, error) {
	// Expected shape: ["", "argon2id", "v=19", "m=X,t=Y,p=Z", salt, hash]
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" {
		return false, fmt.Errorf("%w: expected 6 '$'-delimited parts", ErrMalformedHash)
	}
	if parts[1] != "argon2id" {
		return false, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedHash, parts[1])
	}
	if parts[2] != "v=19" {
		return false, fmt.Errorf("%w: unsupported version %q", ErrMalformedHash, parts[2])
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return false, fmt.Errorf("%w: unparseable parameters: %v", ErrMalformedHash, err)
	}
	// argon2.IDKey panics on out-of-range parameters, so reject them here:
	// a corrupt record must read as corrupt, not crash the process.
	if iters < 1 || par < 1 {
		return false, fmt.Errorf("%w: parameters out of range (%s)", ErrMalformedHash, parts[3])
	}
	if mem < 8*uint32(par) || mem > maxMemory {
		return false, fmt.Errorf("%w: memory parameter out of range (%s)", ErrMalformedHash, parts[3])
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: undecodable salt: %v", ErrMalformedHash, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: undecodable digest: %v", ErrMalformedHash, err)
	}
	if len(want) == 0 {
		return false, fmt.Errorf("%w: empty digest", ErrMalformedHash)
	}

	pepper, err := loadPepper()
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey(
		[]byte(password+pepper),
		salt,
		iters,
		mem,
		par,
		uint32(len(want)), // #nosec G115 - digest length is bounded by the encoding above
	)

	return subtle.ConstantTimeCompare(computed, want) == 1, nil
}
