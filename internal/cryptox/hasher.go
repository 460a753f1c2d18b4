// Package cryptox holds the two secret-handling strategies used for stored
// credentials: a one-way adaptive hash for passwords and verify tokens, and
// a reversible cipher for API tokens.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const argon2ID = "argon2id"

var (
	ErrInvalidHash       = errors.New("invalid hash format")
	ErrUnsupportedHash   = errors.New("unsupported hash algorithm")
	ErrInvalidParameters = errors.New("invalid hash parameters")
)

// Hasher turns secrets into salted one-way stored forms and checks
// candidates against them.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, stored string) (bool, error)
}

// Argon2Params tunes the work factor of new hashes. Existing hashes carry
// their own parameters and are verified with those.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultArgon2Params returns the production work factor.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32, SaltLen: 16}
}

// Argon2Hasher produces argon2id PHC strings:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// It also verifies bcrypt hashes ($2a$, $2b$, $2y$) left over from the
// previous system, but never produces them.
type Argon2Hasher struct {
	params Argon2Params
}

func NewArgon2Hasher(p Argon2Params) (*Argon2Hasher, error) {
	if p.Time < 1 || p.Memory < 8*1024 || p.Threads < 1 || p.KeyLen < 16 || p.SaltLen < 16 {
		return nil, ErrInvalidParameters
	}
	return &Argon2Hasher{params: p}, nil
}

func (h *Argon2Hasher) Hash(secret string) (string, error) {
	salt := common.GenerateRandByteArray(int(h.params.SaltLen))
	key := argon2.IDKey([]byte(secret), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2ID,
		argon2.Version,
		h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether secret matches stored. A malformed stored form is an
// error, never a match.
func (h *Argon2Hasher) Verify(secret, stored string) (bool, error) {
	if isBcrypt(stored) {
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(secret))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
		}
		return true, nil
	}

	phc, err := parsePHC(stored)
	if err != nil {
		return false, err
	}

	key := argon2.IDKey([]byte(secret), phc.salt, phc.time, phc.memory, phc.threads, uint32(len(phc.key)))
	return subtle.ConstantTimeCompare(key, phc.key) == 1, nil
}

func isBcrypt(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}

type phcHash struct {
	time    uint32
	memory  uint32
	threads uint8
	salt    []byte
	key     []byte
}

func parsePHC(stored string) (*phcHash, error) {
	parts := strings.Split(stored, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, ErrInvalidHash
	}
	if parts[1] != argon2ID {
		return nil, ErrUnsupportedHash
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return nil, ErrUnsupportedHash
	}

	var out phcHash
	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &out.memory, &out.time, &threads); err != nil {
		return nil, ErrInvalidParameters
	}
	if out.memory == 0 || out.time == 0 || threads == 0 || threads > 255 {
		return nil, ErrInvalidParameters
	}
	out.threads = uint8(threads)

	var err error
	if out.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(out.salt) == 0 {
		return nil, ErrInvalidHash
	}
	if out.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(out.key) == 0 {
		return nil, ErrInvalidHash
	}

	return &out, nil
}
