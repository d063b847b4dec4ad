package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PasswordHasher hashes passwords and checks them against stored digests.
type PasswordHasher interface {
	// Hash returns a self-describing digest of the plaintext.
	Hash(password string) (string, error)

	// Verify reports whether password matches digest. Any malformed or
	// unsupported digest yields false.
	Verify(digest, password string) bool
}

// Argon2Params holds the argon2id cost parameters.
type Argon2Params struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultArgon2Params matches the parameters used for stored digests.
var DefaultArgon2Params = Argon2Params{
	Memory:  64 * 1024,
	Time:    3,
	Threads: 2,
	SaltLen: 16,
	KeyLen:  32,
}

// maxVerifyMemory caps the memory cost accepted from a stored digest (1 GiB).
const maxVerifyMemory = 1024 * 1024

// Argon2Hasher implements PasswordHasher with argon2id digests in PHC string
// format: $argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>.
type Argon2Hasher struct {
	params Argon2Params
}

var _ PasswordHasher = (*Argon2Hasher)(nil)

// NewArgon2Hasher creates a hasher using DefaultArgon2Params.
func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{params: DefaultArgon2Params}
}

// NewArgon2HasherWithParams creates a hasher with custom costs. Tests use it
// to keep hashing fast.
func NewArgon2HasherWithParams(p Argon2Params) *Argon2Hasher {
	return &Argon2Hasher{params: p}
}

// Hash implements PasswordHasher.
func (h *Argon2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify implements PasswordHasher. Parameters are read from the digest,
// not from the hasher.
func (h *Argon2Hasher) Verify(digest, password string) bool {
	p, salt, key, ok := decodeDigest(digest)
	if !ok {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1
}

func decodeDigest(digest string) (Argon2Params, []byte, []byte, bool) {
	var p Argon2Params

	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, false
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return p, nil, nil, false
	}
	if memory == 0 || memory > maxVerifyMemory || iterations == 0 || threads == 0 || threads > 255 {
		return p, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, false
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, false
	}

	p.Memory = memory
	p.Time = iterations
	p.Threads = uint8(threads)
	return p, salt, key, true
}
