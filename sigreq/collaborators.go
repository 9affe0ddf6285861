package sigreq

import (
	"bytes"
	"compress/flate"
	"context"
	"fmt"
	"io"
)

// ABI is an opaque contract schema object, as fetched from an AbiProvider.
// Its concrete shape is owned by the ABI-aware action codec; this package
// never inspects it (spec §1, §6).
type ABI any

// AbiProvider fetches a contract's ABI given its account name. This is
// the one suspension point in the whole core (spec §5): callers may run
// it over the network, so it takes a context.
type AbiProvider interface {
	GetAbi(ctx context.Context, account Name) (ABI, error)
}

// AbiProviderFunc adapts a plain function to an AbiProvider.
type AbiProviderFunc func(ctx context.Context, account Name) (ABI, error)

func (f AbiProviderFunc) GetAbi(ctx context.Context, account Name) (ABI, error) {
	return f(ctx, account)
}

// ActionCodec encodes and decodes action data under a fetched ABI. It is
// the one place true polymorphism happens (spec §9's design notes); the
// rest of this package is monomorphic and only walks the resulting Value
// tree.
type ActionCodec interface {
	EncodeActionData(abi ABI, account, action Name, value Value) ([]byte, error)
	DecodeActionData(abi ABI, account, action Name, data []byte) (Value, error)
}

// ActionTypeChecker is an optional interface an ActionCodec may implement
// to let resolveAction distinguish "this action name is absent from the
// ABI" (spec §7's UnknownAction) from any other decode failure. Codecs
// that don't implement it are assumed to fail DecodeActionData only when
// the action type can't be found, which resolveAction still reports as
// ErrUnknownAction.
type ActionTypeChecker interface {
	HasAction(abi ABI, account, action Name) bool
}

// Compressor performs raw DEFLATE (no zlib wrapper, no checksum) on byte
// slices, per spec §4.4 and §6.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// FlateCompressor is the default Compressor, backed by stdlib
// compress/flate. flate.NewWriter/NewReader already produce the
// header-less, checksum-less DEFLATE stream the wire format requires,
// unlike compress/zlib (see DESIGN.md).
type FlateCompressor struct{}

func (FlateCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (FlateCompressor) Decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeError, err)
	}
	return out, nil
}

// SignatureProvider produces a signature over a 32-byte digest, returning
// the account doing the signing alongside the signature (spec §6).
type SignatureProvider interface {
	Sign(ctx context.Context, digest [32]byte) (signer Name, sig Signature, err error)
}

// SignatureProviderFunc adapts a plain function to a SignatureProvider.
type SignatureProviderFunc func(ctx context.Context, digest [32]byte) (Name, Signature, error)

func (f SignatureProviderFunc) Sign(ctx context.Context, digest [32]byte) (Name, Signature, error) {
	return f(ctx, digest)
}
