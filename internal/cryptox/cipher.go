package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"golang.org/x/crypto/hkdf"
)

// hkdfInfo binds derived keys to this use so the same passphrase used
// elsewhere yields an unrelated key.
const hkdfInfo = "credkeeper api-token v1"

var ErrEmptyCipherKey = errors.New("empty cipher key")

// Cipher seals values that must be recoverable in clear form later.
type Cipher interface {
	Encrypt(clear string) (string, error)
	Decrypt(sealed string) (string, error)
}

// AESCipher is AES-256-GCM keyed by HKDF-SHA256 over a deployment-wide
// passphrase. Sealed values are base64(nonce || ciphertext || tag).
type AESCipher struct {
	aead cipher.AEAD
}

func NewAESCipher(passphrase string) (*AESCipher, error) {
	if passphrase == "" {
		return nil, ErrEmptyCipherKey
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(passphrase), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &AESCipher{aead: aead}, nil
}

func (c *AESCipher) Encrypt(clear string) (string, error) {
	nonce := common.GenerateRandByteArray(c.aead.NonceSize())
	sealed := c.aead.Seal(nonce, nonce, []byte(clear), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Every failure, including a key that does not
// match the one used for sealing, wraps common.ErrCipherFailure.
func (c *AESCipher) Decrypt(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: decode: %v", common.ErrCipherFailure, err)
	}

	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return "", fmt.Errorf("%w: sealed value too short", common.ErrCipherFailure)
	}

	clear, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: open: %v", common.ErrCipherFailure, err)
	}

	return string(clear), nil
}
