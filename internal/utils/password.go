package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2Params are the tunable cost parameters for argon2id hashing.
// Memory is in KiB. Defaults come from configuration (65536 KiB, 3
// iterations, parallelism 4).
type Argon2Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
}

const (
	saltLen = 16
	keyLen  = 32
)

// Argon2Hasher produces and verifies salted argon2id hashes in the
// standard encoded form "$argon2id$v=19$m=..,t=..,p=..$salt$hash".
type Argon2Hasher struct {
	params Argon2Params
}

func NewArgon2Hasher(p Argon2Params) *Argon2Hasher {
	return &Argon2Hasher{params: p}
}

// Hash derives an argon2id digest of plain under a fresh random salt and
// returns the encoded hash string.
func (h *Argon2Hasher) Hash(plain string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(plain), salt, h.params.Time, h.params.Memory, h.params.Parallelism, keyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Time, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Verify reports whether plain matches the encoded hash. The digest
// comparison is constant-time. A malformed or truncated stored hash is
// treated as a non-match rather than an error, so a corrupt row behaves
// like a wrong password in the login flow.
func (h *Argon2Hasher) Verify(encoded, plain string) bool {
	p, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false
	}
	derived := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, derived) == 1
}

// decodeHash splits an encoded argon2id string back into its parameters,
// salt and digest. The cost parameters embedded in the hash are used for
// verification so old hashes stay valid after config changes.
func decodeHash(encoded string) (Argon2Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Argon2Params{}, nil, nil, errors.New("malformed argon2 hash")
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Argon2Params{}, nil, nil, errors.New("unsupported argon2 version")
	}
	var p Argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Parallelism); err != nil {
		return Argon2Params{}, nil, nil, errors.New("malformed argon2 parameters")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Argon2Params{}, nil, nil, err
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Argon2Params{}, nil, nil, err
	}
	if len(key) == 0 {
		return Argon2Params{}, nil, nil, errors.New("empty argon2 digest")
	}
	return p, salt, key, nil
}
