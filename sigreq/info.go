package sigreq

import (
	"encoding/binary"
	"fmt"

	"sigreq/sigreq/chainid"
)

// InfoPair is a single key/value entry in a request's info list. Keys are
// not required to be unique on the wire; the typed setters below are
// last-wins (spec §3).
type InfoPair struct {
	Key   string
	Value []byte
}

func encodeInfoPairs(e *encoder, pairs []InfoPair) {
	e.WriteVarUint(uint64(len(pairs)))
	for _, p := range pairs {
		e.WriteString(p.Key)
		e.WriteVarBytes(p.Value)
	}
}

func decodeInfoPairs(d *decoder) ([]InfoPair, error) {
	n, err := d.ReadVarUint()
	if err != nil {
		return nil, err
	}
	out := make([]InfoPair, n)
	for i := range out {
		key, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		val, err := d.ReadVarBytes()
		if err != nil {
			return nil, err
		}
		out[i] = InfoPair{Key: key, Value: val}
	}
	return out, nil
}

// GetRawInfoKey returns the raw bytes for the first matching key, scanning
// in order (earlier entries win on read, matching an append-only log where
// setters overwrite by rewriting the slice -- see SetRawInfoKey).
func GetRawInfoKey(pairs []InfoPair, key string) ([]byte, bool) {
	for _, p := range pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// SetRawInfoKey returns pairs with key set to value, replacing an existing
// entry if present (last-wins by overwrite, not by duplication) or
// appending a new one otherwise.
func SetRawInfoKey(pairs []InfoPair, key string, value []byte) []InfoPair {
	for i, p := range pairs {
		if p.Key == key {
			out := append([]InfoPair(nil), pairs...)
			out[i] = InfoPair{Key: key, Value: value}
			return out
		}
	}
	return append(append([]InfoPair(nil), pairs...), InfoPair{Key: key, Value: value})
}

// InfoValueType selects how SetInfoKey/GetInfoKey interpret a value.
type InfoValueType int

const (
	InfoTypeRawUTF8 InfoValueType = iota
	InfoTypeBool
	InfoTypeUint64
	InfoTypeChainIdVariants
)

// SetInfoKey encodes value under typ and stores it, per spec §9's
// asymmetry note: plain strings are written as raw UTF-8 with no length
// prefix beyond the outer InfoPair framing; other types get a compact
// binary form.
func SetInfoKey(pairs []InfoPair, key string, typ InfoValueType, value any) ([]InfoPair, error) {
	encoded, err := encodeInfoValue(typ, value)
	if err != nil {
		return nil, err
	}
	return SetRawInfoKey(pairs, key, encoded), nil
}

// GetInfoKey decodes the first value stored under key as typ.
func GetInfoKey(pairs []InfoPair, key string, typ InfoValueType) (any, bool, error) {
	raw, ok := GetRawInfoKey(pairs, key)
	if !ok {
		return nil, false, nil
	}
	v, err := decodeInfoValue(typ, raw)
	if err != nil {
		return nil, true, err
	}
	return v, true, nil
}

func encodeInfoValue(typ InfoValueType, value any) ([]byte, error) {
	switch typ {
	case InfoTypeRawUTF8:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("sigreq: info value for raw-utf8 must be a string, got %T", value)
		}
		return []byte(s), nil
	case InfoTypeBool:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("sigreq: info value for bool must be a bool, got %T", value)
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case InfoTypeUint64:
		v, ok := value.(uint64)
		if !ok {
			return nil, fmt.Errorf("sigreq: info value for uint64 must be a uint64, got %T", value)
		}
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, v)
		return b, nil
	case InfoTypeChainIdVariants:
		ids, ok := value.([]chainid.ChainId)
		if !ok {
			return nil, fmt.Errorf("sigreq: info value for chain_ids must be []chainid.ChainId, got %T", value)
		}
		return EncodeChainIdVariants(ids), nil
	default:
		return nil, fmt.Errorf("sigreq: unknown info value type %d", typ)
	}
}

func decodeInfoValue(typ InfoValueType, raw []byte) (any, error) {
	switch typ {
	case InfoTypeRawUTF8:
		return string(raw), nil
	case InfoTypeBool:
		return len(raw) > 0 && raw[0] != 0, nil
	case InfoTypeUint64:
		if len(raw) != 8 {
			return nil, fmt.Errorf("sigreq: malformed uint64 info value")
		}
		return binary.LittleEndian.Uint64(raw), nil
	case InfoTypeChainIdVariants:
		return DecodeChainIdVariants(raw)
	default:
		return nil, fmt.Errorf("sigreq: unknown info value type %d", typ)
	}
}

// ChainIdsInfoKey is the well-known info key for the multi-chain
// restriction list (spec §9, "chain_ids info convention").
const ChainIdsInfoKey = "chain_ids"

// EncodeChainIdVariants encodes a non-empty sequence of chain ids as the
// wire form expected under the chain_ids info key.
func EncodeChainIdVariants(ids []chainid.ChainId) []byte {
	e := newEncoder()
	e.WriteVarUint(uint64(len(ids)))
	for _, id := range ids {
		encodeChainIdVariant(e, id)
	}
	return e.Bytes()
}

// DecodeChainIdVariants is the inverse of EncodeChainIdVariants.
func DecodeChainIdVariants(raw []byte) ([]chainid.ChainId, error) {
	d := newDecoder(raw)
	n, err := d.ReadVarUint()
	if err != nil {
		return nil, err
	}
	out := make([]chainid.ChainId, n)
	for i := range out {
		if out[i], err = decodeChainIdVariant(d); err != nil {
			return nil, err
		}
	}
	return out, nil
}
