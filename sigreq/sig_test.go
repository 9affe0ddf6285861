package sigreq_test

import (
	"crypto/sha256"
	"testing"

	"sigreq/sigreq"

	"github.com/decred/dcrd/dcrec/secp256k1/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndRecoverRoundTrip(t *testing.T) {
	keyBytes := sha256.Sum256([]byte("test signing key"))
	priv, pub := secp256k1.PrivKeyFromBytes(keyBytes[:])
	digest := sha256.Sum256([]byte("hello signing request"))

	sig := sigreq.SignDigest(priv, digest)
	recovered, err := sig.Recover(digest)
	require.NoError(t, err)

	assert.True(t, recovered.Equal(sigreq.PublicKey{Content: pub.SerializeCompressed()}))
}

func TestSignatureStringRoundTrip(t *testing.T) {
	keyBytes := sha256.Sum256([]byte("another test signing key"))
	priv, _ := secp256k1.PrivKeyFromBytes(keyBytes[:])
	digest := sha256.Sum256([]byte("another digest"))
	sig := sigreq.SignDigest(priv, digest)

	text := sig.String()
	assert.Regexp(t, `^SIG_K1_`, text)

	parsed, err := sigreq.ParseSignature(text)
	require.NoError(t, err)
	assert.Equal(t, sig.Content, parsed.Content)
}

func TestParseSignatureRejectsBadChecksum(t *testing.T) {
	_, err := sigreq.ParseSignature("SIG_K1_111111111111111111111111111111111111111111111111")
	assert.Error(t, err)
}
