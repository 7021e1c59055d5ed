package config

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Keys are the independent HMAC keys derived from SESSION_SECRET.  Rotating
// the secret invalidates both cookies at once.
type Keys struct {
	Session []byte
	Flash   []byte
}

// DeriveKeys expands secret into 32-byte keys with HKDF-SHA256, one per
// purpose label.
func DeriveKeys(secret string) (Keys, error) {
	if secret == "" {
		return Keys{}, fmt.Errorf("derive keys: empty secret")
	}
	var k Keys
	for _, p := range []struct {
		label string
		dst   *[]byte
	}{
		{"mabarin-web/session", &k.Session},
		{"mabarin-web/flash", &k.Flash},
	} {
		buf := make([]byte, 32)
		r := hkdf.New(sha256.New, []byte(secret), nil, []byte(p.label))
		if _, err := io.ReadFull(r, buf); err != nil {
			return Keys{}, fmt.Errorf("derive %s key: %w", p.label, err)
		}
		*p.dst = buf
	}
	return k, nil
}
