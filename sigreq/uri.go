package sigreq

import (
	"fmt"
	"strings"
)

// Recognized URI scheme prefixes (spec §4.4, §6). Encoders emit "esr:" or
// "esr://"; decoders additionally accept the legacy "web+esr:" alias.
var uriPrefixes = []string{
	"esr://",
	"esr:",
	"web+esr://",
	"web+esr:",
}

// EncodeURI renders a frame as a text-carrier URI.
func EncodeURI(frameBytes []byte, slashes bool) string {
	scheme := "esr:"
	if slashes {
		scheme = "esr://"
	}
	return scheme + b64Encode(frameBytes)
}

// DecodeURI strips a recognized scheme prefix and base64u-decodes the
// body into frame bytes.
func DecodeURI(uri string) ([]byte, error) {
	for _, prefix := range uriPrefixes {
		if strings.HasPrefix(uri, prefix) {
			body := uri[len(prefix):]
			b, err := b64Decode(body)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidUri, err)
			}
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: unrecognized scheme in %q", ErrInvalidScheme, uri)
}
