package sigreq_test

import (
	"crypto/sha256"
	"testing"
	"time"

	"sigreq/sigreq"
	"sigreq/sigreq/chainid"

	"github.com/decred/dcrd/dcrec/secp256k1/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityProofVerifyBeforeAndAfterExpiration(t *testing.T) {
	keyBytes := sha256.Sum256([]byte("identity proof test key"))
	priv, pub := secp256k1.PrivKeyFromBytes(keyBytes[:])

	signer := sigreq.PermissionLevel{Actor: sigreq.ParseName("alice"), Permission: sigreq.ParseName("active")}
	eos, err := chainid.FromAlias(chainid.EOS)
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	proof := sigreq.IdentityProof{
		ChainId:    eos,
		Scope:      sigreq.ParseName("myapp"),
		Expiration: uint32(now.Add(time.Minute).Unix()),
		Signer:     signer,
	}

	digest, err := proof.SigningDigest()
	require.NoError(t, err)
	proof.Signature = sigreq.SignDigest(priv, digest)

	authority := sigreq.Authority{
		Threshold: 1,
		Keys:      []sigreq.WeightedKey{{Key: sigreq.PublicKey{Content: pub.SerializeCompressed()}, Weight: 1}},
	}

	ok, err := proof.Verify(authority, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = proof.Verify(authority, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdentityProofStringRoundTrip(t *testing.T) {
	eos, err := chainid.FromAlias(chainid.EOS)
	require.NoError(t, err)

	proof := sigreq.IdentityProof{
		ChainId:    eos,
		Scope:      sigreq.ParseName("myapp"),
		Expiration: 12345,
		Signer:     sigreq.PermissionLevel{Actor: sigreq.ParseName("alice"), Permission: sigreq.ParseName("active")},
		Signature:  sigreq.Signature{Content: []byte{1, 2, 3, 4, 5}},
	}

	text, err := proof.String()
	require.NoError(t, err)
	assert.Regexp(t, `^EOSIO `, text)

	parsed, err := sigreq.ParseIdentityProof(text)
	require.NoError(t, err)
	assert.Equal(t, proof, parsed)
}

func TestIdentityBodyCodecRoundTrip(t *testing.T) {
	perm := sigreq.PermissionLevel{Actor: sigreq.ParseName("alice"), Permission: sigreq.ParseName("active")}

	v2 := sigreq.IdentityBodyV2{Permission: &perm}
	encodedV2, err := sigreq.EncodeIdentityBodyV2(v2)
	require.NoError(t, err)
	decodedV2, err := sigreq.DecodeIdentityBodyV2(encodedV2)
	require.NoError(t, err)
	assert.Equal(t, v2, decodedV2)

	v3 := sigreq.IdentityBodyV3{Scope: sigreq.ParseName("myscope"), Permission: &perm}
	encodedV3, err := sigreq.EncodeIdentityBodyV3(v3)
	require.NoError(t, err)
	decodedV3, err := sigreq.DecodeIdentityBodyV3(encodedV3)
	require.NoError(t, err)
	assert.Equal(t, v3, decodedV3)

	noPerm := sigreq.IdentityBodyV2{}
	encodedNoPerm, err := sigreq.EncodeIdentityBodyV2(noPerm)
	require.NoError(t, err)
	decodedNoPerm, err := sigreq.DecodeIdentityBodyV2(encodedNoPerm)
	require.NoError(t, err)
	assert.Nil(t, decodedNoPerm.Permission)
}
