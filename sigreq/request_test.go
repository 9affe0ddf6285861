package sigreq_test

import (
	"context"
	"crypto/sha256"
	"testing"

	"sigreq/sigreq"
	"sigreq/sigreq/chainid"

	"github.com/decred/dcrd/dcrec/secp256k1/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleRequest(t *testing.T) *sigreq.Request {
	t.Helper()
	req, err := sigreq.CreateSync(sigreq.Descriptor{
		ChainId: chainid.EOS,
		Action: &sigreq.ActionInput{
			Account:       sigreq.ParseName("eosio.token"),
			Name:          sigreq.ParseName("transfer"),
			Authorization: []sigreq.PermissionLevel{sigreq.PlaceholderAuth},
			Data:          []byte{1, 2, 3},
		},
		Broadcast: true,
		Callback:  "https://example.com/cb",
	})
	require.NoError(t, err)
	return req
}

func TestRequestCloneIsIndependent(t *testing.T) {
	req := buildSampleRequest(t)
	clone := req.Clone()

	clone.SetCallback("https://other.example.com/cb", true)
	clone.SetRawInfoKey("note", []byte("hi"))

	assert.Equal(t, "https://example.com/cb", req.Callback())
	_, ok := req.GetRawInfoKey("note")
	assert.False(t, ok)

	clonedActions := clone.GetRawActions()
	clonedActions[0].Data[0] = 99
	assert.Equal(t, byte(1), req.GetRawActions()[0].Data[0])
}

func TestRequestSignAndVerify(t *testing.T) {
	req := buildSampleRequest(t)
	keyBytes := sha256.Sum256([]byte("request signing test"))
	priv, pub := secp256k1.PrivKeyFromBytes(keyBytes[:])

	err := req.Sign(context.Background(), sigreq.SignatureProviderFunc(
		func(ctx context.Context, digest [32]byte) (sigreq.Name, sigreq.Signature, error) {
			return sigreq.ParseName("alice"), sigreq.SignDigest(priv, digest), nil
		}))
	require.NoError(t, err)

	data, err := req.Encode(nil)
	require.NoError(t, err)

	decoded, err := sigreq.FromData(data, nil)
	require.NoError(t, err)

	digest, err := decoded.GetSignatureDigest()
	require.NoError(t, err)

	assert.Equal(t, digest, mustDigest(t, req))

	// the caller can independently verify the attached signature against
	// the originator digest.
	frame, err := sigreq.DecodeFrame(data, nil)
	require.NoError(t, err)
	require.NotNil(t, frame.Signature)
	recoveredKey := mustRecover(t, frame.Signature.Signature, digest)
	assert.True(t, recoveredKey.Equal(sigreq.PublicKey{Content: pub.SerializeCompressed()}))
}

func mustDigest(t *testing.T, req *sigreq.Request) [32]byte {
	t.Helper()
	d, err := req.GetSignatureDigest()
	require.NoError(t, err)
	return d
}

func mustRecover(t *testing.T, sig sigreq.Signature, digest [32]byte) sigreq.PublicKey {
	t.Helper()
	pub, err := sig.Recover(digest)
	require.NoError(t, err)
	return pub
}

func TestRequestURIRoundTrip(t *testing.T) {
	req := buildSampleRequest(t)
	uri, err := req.EncodeURI(nil, false)
	require.NoError(t, err)

	decoded, err := sigreq.FromURI(uri, nil)
	require.NoError(t, err)
	assert.Equal(t, req.GetChainId(), decoded.GetChainId())
}

func TestFromDataRejectsBroadcastIdentity(t *testing.T) {
	req, err := sigreq.Identity(chainid.EOS, 0, nil)
	require.NoError(t, err)
	req.SetBroadcast(true)

	data, err := req.Encode(nil)
	require.NoError(t, err)

	_, err = sigreq.FromData(data, nil)
	assert.ErrorIs(t, err, sigreq.ErrIdentityBroadcast)
}
