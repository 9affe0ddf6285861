package sigreq

import (
	"fmt"

	"sigreq/sigreq/chainid"
)

// ReqKind tags which variant a request's body holds (spec §3, "Request
// body variant").
type ReqKind int

const (
	ReqKindAction ReqKind = iota
	ReqKindActions
	ReqKindTransaction
	ReqKindIdentity
)

// RequestVariant is the tagged union carried by a RequestPayload. Only the
// field matching Kind is meaningful; the identity body's shape (V2 vs V3)
// is chosen by the frame's protocol version, not by this struct, per spec
// §9's "two protocol versions coexist" design note.
type RequestVariant struct {
	Kind        ReqKind
	Action      Action
	Actions     []Action
	Transaction Transaction
	IdentityV2  IdentityBodyV2
	IdentityV3  IdentityBodyV3
}

// Flags bit positions (spec §3).
const (
	FlagBroadcast byte = 1 << 0
	FlagBackground byte = 1 << 1
)

// RequestPayload is the versioned container serialized inside a frame
// (spec §3, "Request payload").
type RequestPayload struct {
	ChainId  chainid.ChainId
	Req      RequestVariant
	Flags    byte
	Callback string
	Info     []InfoPair
}

func encodeChainIdVariant(e *encoder, id chainid.ChainId) {
	v := chainid.VariantOf(id)
	if v.IsAlias {
		e.WriteU8(0)
		e.WriteU8(byte(v.Alias))
	} else {
		e.WriteU8(1)
		e.WriteRawBytes(v.Raw.Bytes())
	}
}

func decodeChainIdVariant(d *decoder) (chainid.ChainId, error) {
	tag, err := d.ReadByte()
	if err != nil {
		return chainid.ChainId{}, err
	}
	switch tag {
	case 0:
		a, err := d.ReadByte()
		if err != nil {
			return chainid.ChainId{}, err
		}
		return chainid.FromAlias(chainid.Alias(a))
	case 1:
		raw, err := d.ReadRawBytes(32)
		if err != nil {
			return chainid.ChainId{}, err
		}
		return chainid.FromBytes(raw)
	default:
		return chainid.ChainId{}, fmt.Errorf("%w: bad chain id variant tag %d", ErrDecodeError, tag)
	}
}

func encodeRequestPayload(version int, p RequestPayload) ([]byte, error) {
	e := newEncoder()
	encodeChainIdVariant(e, p.ChainId)

	e.WriteU8(byte(p.Req.Kind))
	switch p.Req.Kind {
	case ReqKindAction:
		p.Req.Action.encode(e)
	case ReqKindActions:
		e.WriteVarUint(uint64(len(p.Req.Actions)))
		for _, a := range p.Req.Actions {
			a.encode(e)
		}
	case ReqKindTransaction:
		p.Req.Transaction.encode(e)
	case ReqKindIdentity:
		var data []byte
		var err error
		switch version {
		case 2:
			data, err = EncodeIdentityBodyV2(p.Req.IdentityV2)
		case 3:
			data, err = EncodeIdentityBodyV3(p.Req.IdentityV3)
		default:
			return nil, ErrUnsupportedVersion
		}
		if err != nil {
			return nil, err
		}
		e.WriteRawBytes(data)
	default:
		return nil, fmt.Errorf("sigreq: unknown request variant kind %d", p.Req.Kind)
	}

	e.WriteU8(p.Flags)
	e.WriteString(p.Callback)
	encodeInfoPairs(e, p.Info)
	return e.Bytes(), nil
}

func decodeRequestPayload(version int, raw []byte) (RequestPayload, error) {
	d := newDecoder(raw)
	return decodeRequestPayloadFrom(version, d)
}

func decodeRequestPayloadFrom(version int, d *decoder) (RequestPayload, error) {
	var p RequestPayload
	var err error

	if p.ChainId, err = decodeChainIdVariant(d); err != nil {
		return p, err
	}

	kind, err := d.ReadByte()
	if err != nil {
		return p, err
	}
	p.Req.Kind = ReqKind(kind)
	switch p.Req.Kind {
	case ReqKindAction:
		if p.Req.Action, err = decodeAction(d); err != nil {
			return p, err
		}
	case ReqKindActions:
		if p.Req.Actions, err = decodeActionSlice(d); err != nil {
			return p, err
		}
	case ReqKindTransaction:
		if p.Req.Transaction, err = decodeTransaction(d); err != nil {
			return p, err
		}
	case ReqKindIdentity:
		// identity body runs to the end of the structured identity
		// fields; since both layouts are fixed-shape (no trailing
		// variable section beyond what they themselves define) we can
		// decode directly off the remaining decoder cursor.
		switch version {
		case 2:
			body, n, err := decodeIdentityBodyV2At(d)
			if err != nil {
				return p, err
			}
			p.Req.IdentityV2 = body
			_ = n
		case 3:
			body, n, err := decodeIdentityBodyV3At(d)
			if err != nil {
				return p, err
			}
			p.Req.IdentityV3 = body
			_ = n
		default:
			return p, ErrUnsupportedVersion
		}
	default:
		return p, fmt.Errorf("%w: unknown request variant tag %d", ErrDecodeError, kind)
	}

	if p.Flags, err = d.ReadByte(); err != nil {
		return p, err
	}
	if p.Callback, err = d.ReadString(); err != nil {
		return p, err
	}
	if p.Info, err = decodeInfoPairs(d); err != nil {
		return p, err
	}
	return p, nil
}

// decodeIdentityBodyV2At/V3At decode directly from the shared decoder
// cursor (rather than via DecodeIdentityBodyV2/V3, which each take an
// independent byte slice) since the identity body is inlined into the
// payload stream, not length-prefixed.
func decodeIdentityBodyV2At(d *decoder) (IdentityBodyV2, int, error) {
	perm, err := decodeOptionalPermission(d)
	if err != nil {
		return IdentityBodyV2{}, 0, err
	}
	return IdentityBodyV2{Permission: perm}, 0, nil
}

func decodeIdentityBodyV3At(d *decoder) (IdentityBodyV3, int, error) {
	scope, err := d.ReadName()
	if err != nil {
		return IdentityBodyV3{}, 0, err
	}
	perm, err := decodeOptionalPermission(d)
	if err != nil {
		return IdentityBodyV3{}, 0, err
	}
	return IdentityBodyV3{Scope: scope, Permission: perm}, 0, nil
}

// ShouldBroadcast reports the broadcast flag.
func (p RequestPayload) ShouldBroadcast() bool { return p.Flags&FlagBroadcast != 0 }

// IsBackground reports the background flag.
func (p RequestPayload) IsBackground() bool { return p.Flags&FlagBackground != 0 }

// IsIdentity reports whether this payload carries an identity body.
func (p RequestPayload) IsIdentity() bool { return p.Req.Kind == ReqKindIdentity }

// IsMultiChain reports whether the chain id is the all-zero
// "unknown/multi-chain" placeholder (alias 0).
func (p RequestPayload) IsMultiChain() bool { return p.ChainId.IsZero() }
