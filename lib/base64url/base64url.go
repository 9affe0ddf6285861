// Package base64url implements the unpadded, URL-safe base64 variant used
// by the signing request text carrier. Decoding tolerates the standard
// alphabet's "+" and "/" in place of "-" and "_", since some callers still
// produce those.
package base64url

import (
	"encoding/base64"
	"strings"
)

// Encode returns the unpadded, URL-safe base64 form of b.
func Encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode accepts both the URL-safe and standard alphabets, with or without
// padding.
func Decode(s string) ([]byte, error) {
	s = strings.NewReplacer("+", "-", "/", "_").Replace(s)
	if n := len(s) % 4; n != 0 {
		s += strings.Repeat("=", 4-n)
	}
	return base64.URLEncoding.DecodeString(s)
}
