package sigreq

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/multiformats/go-varint"
)

// ErrDecodeError is returned whenever a binary payload is structurally
// invalid (truncated, an out-of-range tag, etc). It corresponds to spec
// §7 "DecodeError".
var ErrDecodeError = errors.New("sigreq: decode error")

// encoder is the low-level binary writer shared by every wire type in this
// package. It mirrors anhnguyentrung-SimpleChain's chain.Encoder in shape
// (typed Write* methods building up a byte buffer) but drops the
// reflection-based dispatch in favor of explicit calls, per spec §9's
// design note preferring an explicit discriminated encoding over runtime
// type lookup.
type encoder struct {
	buf bytes.Buffer
}

func newEncoder() *encoder { return &encoder{} }

func (e *encoder) Bytes() []byte { return e.buf.Bytes() }

func (e *encoder) WriteU8(b byte) { e.buf.WriteByte(b) }

func (e *encoder) WriteBool(b bool) {
	if b {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
}

func (e *encoder) WriteUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) WriteVarUint(v uint64) {
	e.buf.Write(varint.ToUvarint(v))
}

func (e *encoder) WriteRawBytes(b []byte) { e.buf.Write(b) }

func (e *encoder) WriteVarBytes(b []byte) {
	e.WriteVarUint(uint64(len(b)))
	e.buf.Write(b)
}

func (e *encoder) WriteString(s string) { e.WriteVarBytes([]byte(s)) }

func (e *encoder) WriteName(n Name) { e.WriteUint64(uint64(n)) }

// decoder is the matching cursor-based reader.
type decoder struct {
	b   []byte
	pos int
}

func newDecoder(b []byte) *decoder { return &decoder{b: b} }

func (d *decoder) Remaining() int { return len(d.b) - d.pos }

func (d *decoder) need(n int) error {
	if d.Remaining() < n {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrDecodeError, n, d.Remaining())
	}
	return nil
}

func (d *decoder) ReadByte() (byte, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	v := d.b[d.pos]
	d.pos++
	return v, nil
}

func (d *decoder) ReadBool() (bool, error) {
	v, err := d.ReadByte()
	return v != 0, err
}

func (d *decoder) ReadUint16() (uint16, error) {
	if err := d.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(d.b[d.pos:])
	d.pos += 2
	return v, nil
}

func (d *decoder) ReadUint32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(d.b[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *decoder) ReadUint64() (uint64, error) {
	if err := d.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(d.b[d.pos:])
	d.pos += 8
	return v, nil
}

func (d *decoder) ReadVarUint() (uint64, error) {
	v, n, err := varint.FromUvarint(d.b[d.pos:])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecodeError, err)
	}
	d.pos += n
	return v, nil
}

func (d *decoder) ReadRawBytes(n int) ([]byte, error) {
	if err := d.need(n); err != nil {
		return nil, err
	}
	v := d.b[d.pos : d.pos+n]
	d.pos += n
	return v, nil
}

func (d *decoder) ReadVarBytes() ([]byte, error) {
	n, err := d.ReadVarUint()
	if err != nil {
		return nil, err
	}
	return d.ReadRawBytes(int(n))
}

func (d *decoder) ReadString() (string, error) {
	b, err := d.ReadVarBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *decoder) ReadName() (Name, error) {
	v, err := d.ReadUint64()
	return Name(v), err
}
