package sigreq

import (
	"crypto/sha256"
	"encoding/hex"

	"sigreq/lib/base64url"
)

func b64Encode(b []byte) string { return base64url.Encode(b) }

func b64Decode(s string) ([]byte, error) { return base64url.Decode(s) }

// transactionDigest is the signing digest for a transaction: SHA-256 of
// its binary serialization, matching spec §4.6's "tx" callback key and
// the identity-proof digest of §4.8.
func transactionDigest(tx Transaction) [32]byte {
	e := newEncoder()
	tx.encode(e)
	return sha256.Sum256(e.Bytes())
}

// transactionID renders the digest as lowercase hex, spec §4.6's "tx" key.
func transactionID(tx Transaction) string {
	d := transactionDigest(tx)
	return hex.EncodeToString(d[:])
}

// SerializeTransaction returns the transaction's binary wire form.
func SerializeTransaction(tx Transaction) []byte {
	e := newEncoder()
	tx.encode(e)
	return e.Bytes()
}

// signaturePreimageTag is the literal 7-byte tag spec §4.7 mixes into the
// originator signature's preimage, ahead of the version byte's payload.
const signaturePreimageTag = "request"

// signaturePreimage builds version || "request" || payloadBytes, the
// exact bytes an originator signature signs over (spec §4.7).
func signaturePreimage(version byte, payloadBytes []byte) []byte {
	out := make([]byte, 0, 1+len(signaturePreimageTag)+len(payloadBytes))
	out = append(out, version)
	out = append(out, signaturePreimageTag...)
	out = append(out, payloadBytes...)
	return out
}

// originatorDigest hashes signaturePreimage's output, producing the
// digest a SignatureProvider signs and Signature.Recover verifies
// against for an originator signature.
func originatorDigest(version byte, payloadBytes []byte) [32]byte {
	return sha256.Sum256(signaturePreimage(version, payloadBytes))
}
