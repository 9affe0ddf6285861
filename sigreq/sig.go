package sigreq

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v2"
	"golang.org/x/crypto/ripemd160"
)

// PublicKey is a compressed secp256k1 public key, textually rendered the
// same base58-plus-checksum way as Signature (grounded on
// anhnguyentrung-SimpleChain/crypto/signature.go's PublicKey handling).
type PublicKey struct {
	Content []byte
}

func (p PublicKey) String() string {
	return "PUB_K1_" + base58.Encode(append(append([]byte{}, p.Content...), checksum(p.Content)...))
}

func (p PublicKey) Equal(o PublicKey) bool {
	return bytes.Equal(p.Content, o.Content)
}

// Signature is a typed signature: a compact secp256k1 signature over a
// 32-byte digest. Verification (outside identity-proof recovery, which
// this package does implement per spec §4.8) is the caller's
// responsibility per spec §4.7.
type Signature struct {
	Content []byte // compact signature bytes
}

func NewCompactSignature(content []byte) Signature {
	return Signature{Content: content}
}

func (s Signature) String() string {
	return "SIG_K1_" + base58.Encode(append(append([]byte{}, s.Content...), checksum(s.Content)...))
}

// ParseSignature parses a Signature's textual form, as produced by
// String.
func ParseSignature(text string) (Signature, error) {
	const prefix = "SIG_K1_"
	if !strings.HasPrefix(text, prefix) {
		return Signature{}, fmt.Errorf("sigreq: signature must start with %s", prefix)
	}
	raw := base58.Decode(text[len(prefix):])
	if len(raw) < 4 {
		return Signature{}, fmt.Errorf("sigreq: signature too short")
	}
	content, sum := raw[:len(raw)-4], raw[len(raw)-4:]
	if !bytes.Equal(checksum(content), sum) {
		return Signature{}, fmt.Errorf("sigreq: signature checksum mismatch")
	}
	return Signature{Content: content}, nil
}

// checksum is EOSIO/wharfkit's K1 textual checksum: ripemd160(content +
// "K1")[:4], not a bare digest of content alone (the key-type suffix binds
// the checksum to the K1 curve so a K1 and an R1 key with the same bytes
// don't collide).
func checksum(b []byte) []byte {
	h := ripemd160.New()
	h.Write(b)
	h.Write([]byte("K1"))
	sum := h.Sum(nil)
	return sum[:4]
}

// Recover recovers the public key that produced sig over digest, using
// secp256k1 compact-signature recovery (grounded on
// modules/gateway/utils.go's RecoverPublicKey). This is the mechanism
// spec §4.8 calls "signature.recover(digest)".
func (s Signature) Recover(digest [32]byte) (PublicKey, error) {
	pub, _, err := secp256k1.RecoverCompact(s.Content, digest[:])
	if err != nil {
		return PublicKey{}, fmt.Errorf("sigreq: signature recovery failed: %w", err)
	}
	return PublicKey{Content: pub.SerializeCompressed()}, nil
}

// SignDigest signs digest with priv, producing a compact signature
// recoverable by Recover. It exists for tests and for SignatureProvider
// implementations built directly on a secp256k1 private key.
func SignDigest(priv *secp256k1.PrivateKey, digest [32]byte) Signature {
	sig, err := secp256k1.SignCompact(priv, digest[:], true)
	if err != nil {
		panic(err)
	}
	return Signature{Content: sig}
}
