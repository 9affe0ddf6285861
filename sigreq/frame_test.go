package sigreq_test

import (
	"bytes"
	"testing"

	"sigreq/sigreq"
	"sigreq/sigreq/chainid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayload(t *testing.T) sigreq.RequestPayload {
	t.Helper()
	eos, err := chainid.FromAlias(chainid.EOS)
	require.NoError(t, err)
	return sigreq.RequestPayload{
		ChainId: eos,
		Req: sigreq.RequestVariant{
			Kind:   sigreq.ReqKindAction,
			Action: sampleTransferAction(),
		},
		Flags:    sigreq.FlagBroadcast,
		Callback: "https://example.com/callback",
	}
}

func TestFrameRoundTripUncompressed(t *testing.T) {
	payload := samplePayload(t)
	data, err := sigreq.EncodeFrame(2, payload, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, byte(2), data[0])

	frame, err := sigreq.DecodeFrame(data, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, frame.Version)
	assert.Equal(t, payload.ChainId, frame.Payload.ChainId)
	assert.Nil(t, frame.Signature)
}

func TestFrameRoundTripCompressedOnlyWhenSmaller(t *testing.T) {
	payload := samplePayload(t)
	payload.Req.Action.Data = bytes.Repeat([]byte{0xAB}, 4096)

	data, err := sigreq.EncodeFrame(2, payload, nil, sigreq.FlateCompressor{})
	require.NoError(t, err)
	assert.NotEqual(t, byte(0), data[0]&0x80, "large repetitive payload should compress")

	frame, err := sigreq.DecodeFrame(data, sigreq.FlateCompressor{})
	require.NoError(t, err)
	assert.Equal(t, payload.Req.Action.Data, frame.Payload.Req.Action.Data)
}

func TestFrameWithOriginatorSignature(t *testing.T) {
	payload := samplePayload(t)
	sigContent := bytes.Repeat([]byte{0x1F}, 65) // a real K1 compact signature is always 65 bytes
	sig := sigreq.OriginatorSignature{
		Signer:    sigreq.ParseName("alice"),
		Signature: sigreq.Signature{Content: sigContent},
	}

	payloadOnly, err := sigreq.EncodeFrame(2, payload, nil, nil)
	require.NoError(t, err)

	data, err := sigreq.EncodeFrame(2, payload, &sig, nil)
	require.NoError(t, err)

	// trailer is exactly 8 (name) + 1 (scheme) + 65 (signature) bytes,
	// with no varuint length prefix.
	assert.Len(t, data, len(payloadOnly)+8+1+65)

	frame, err := sigreq.DecodeFrame(data, nil)
	require.NoError(t, err)
	require.NotNil(t, frame.Signature)
	assert.Equal(t, sig.Signer, frame.Signature.Signer)
	assert.Equal(t, sig.Signature.Content, frame.Signature.Signature.Content)
}

func TestDecodeFrameRequiresCompressorWhenCompressedBitSet(t *testing.T) {
	payload := samplePayload(t)
	payload.Req.Action.Data = bytes.Repeat([]byte{0xCD}, 4096)
	data, err := sigreq.EncodeFrame(2, payload, nil, sigreq.FlateCompressor{})
	require.NoError(t, err)
	require.NotEqual(t, byte(0), data[0]&0x80)

	_, err = sigreq.DecodeFrame(data, nil)
	assert.ErrorIs(t, err, sigreq.ErrMissingCompressor)
}

func TestURIRoundTrip(t *testing.T) {
	payload := samplePayload(t)
	data, err := sigreq.EncodeFrame(2, payload, nil, nil)
	require.NoError(t, err)

	uri := sigreq.EncodeURI(data, false)
	assert.Regexp(t, `^esr:`, uri)

	decoded, err := sigreq.DecodeURI(uri)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestURIAcceptsLegacyWebEsrScheme(t *testing.T) {
	payload := samplePayload(t)
	data, err := sigreq.EncodeFrame(2, payload, nil, nil)
	require.NoError(t, err)

	uri := "web+esr:" + sigreq.EncodeURI(data, false)[len("esr:"):]
	decoded, err := sigreq.DecodeURI(uri)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestURIRejectsUnknownScheme(t *testing.T) {
	_, err := sigreq.DecodeURI("bogus:abcd")
	assert.ErrorIs(t, err, sigreq.ErrInvalidScheme)
}
