package sigreq

import "fmt"

// versionMask/compressedBit carve up the 1-byte frame header (spec §3,
// §4.4): low 7 bits are the protocol version, the top bit is the
// compressed flag.
const (
	versionMask   byte = 0x7f
	compressedBit byte = 0x80
)

// OriginatorSignature is the optional frame trailer: the account that
// signed the request, and its signature over the request digest (spec
// §3, §4.7).
type OriginatorSignature struct {
	Signer    Name
	Signature Signature
}

const sigSchemeK1 byte = 0

// k1SignatureLen is the fixed width of a K1 compact signature on the
// wire (spec §3's trailer layout: 8-byte name, 1-byte scheme, 65 raw
// signature bytes -- no length prefix).
const k1SignatureLen = 65

func encodeOriginatorSignature(e *encoder, sig OriginatorSignature) {
	e.WriteName(sig.Signer)
	e.WriteU8(sigSchemeK1)
	e.WriteRawBytes(sig.Signature.Content)
}

func decodeOriginatorSignature(d *decoder) (OriginatorSignature, error) {
	signer, err := d.ReadName()
	if err != nil {
		return OriginatorSignature{}, err
	}
	scheme, err := d.ReadByte()
	if err != nil {
		return OriginatorSignature{}, err
	}
	if scheme != sigSchemeK1 {
		return OriginatorSignature{}, fmt.Errorf("%w: unknown signature scheme %d", ErrDecodeError, scheme)
	}
	content, err := d.ReadRawBytes(k1SignatureLen)
	if err != nil {
		return OriginatorSignature{}, err
	}
	return OriginatorSignature{Signer: signer, Signature: Signature{Content: content}}, nil
}

// Frame is the fully decoded on-wire envelope.
type Frame struct {
	Version   int
	Payload   RequestPayload
	Signature *OriginatorSignature
}

// EncodeFrame serializes payload (and sig, if present) and emits
// header_byte || body, compressing the body with compressor only when
// doing so makes it strictly smaller (spec §4.4's "compression is used
// only if it produces strictly fewer bytes than the input").
func EncodeFrame(version int, payload RequestPayload, sig *OriginatorSignature, compressor Compressor) ([]byte, error) {
	if version != 2 && version != 3 {
		return nil, ErrUnsupportedVersion
	}
	payloadBytes, err := encodeRequestPayload(version, payload)
	if err != nil {
		return nil, err
	}

	raw := payloadBytes
	if sig != nil {
		se := newEncoder()
		se.WriteRawBytes(payloadBytes)
		encodeOriginatorSignature(se, *sig)
		raw = se.Bytes()
	}

	header := byte(version)
	body := raw
	if compressor != nil {
		compressed, err := compressor.Compress(raw)
		if err == nil && len(compressed) < len(raw) {
			header |= compressedBit
			body = compressed
		}
	}

	out := make([]byte, 0, 1+len(body))
	out = append(out, header)
	out = append(out, body...)
	return out, nil
}

// DecodeFrame is the inverse of EncodeFrame.
func DecodeFrame(data []byte, compressor Compressor) (Frame, error) {
	if len(data) == 0 {
		return Frame{}, fmt.Errorf("%w: empty frame", ErrDecodeError)
	}
	header := data[0]
	version := int(header & versionMask)
	if version != 2 && version != 3 {
		return Frame{}, ErrUnsupportedVersion
	}

	body := data[1:]
	if header&compressedBit != 0 {
		if compressor == nil {
			return Frame{}, ErrMissingCompressor
		}
		decompressed, err := compressor.Decompress(body)
		if err != nil {
			return Frame{}, err
		}
		body = decompressed
	}

	payload, consumed, err := decodeRequestPayloadPrefix(version, body)
	if err != nil {
		return Frame{}, err
	}

	frame := Frame{Version: version, Payload: payload}
	if rest := body[consumed:]; len(rest) > 0 {
		d := newDecoder(rest)
		sig, err := decodeOriginatorSignature(d)
		if err != nil {
			return Frame{}, err
		}
		frame.Signature = &sig
	}
	return frame, nil
}

// decodeRequestPayloadPrefix decodes a RequestPayload from the start of
// body and reports how many bytes it consumed, so the caller can look for
// a trailing signature.
func decodeRequestPayloadPrefix(version int, body []byte) (RequestPayload, int, error) {
	d := newDecoder(body)
	p, err := decodeRequestPayloadFrom(version, d)
	if err != nil {
		return RequestPayload{}, 0, err
	}
	return p, d.pos, nil
}
