package sigreq

import (
	"context"
	"encoding/json"
	"fmt"

	"sigreq/sigreq/chainid"
)

// Request is the immutable-except-for-mutable-fields container described
// in spec §3's "Lifecycles": structurally immutable apart from info
// pairs, callback URL, flag byte, and originator signature, all of which
// have dedicated setters below.
type Request struct {
	version   int
	payload   RequestPayload
	signature *OriginatorSignature
}

// Version reports the wire protocol version (2 or 3).
func (r *Request) Version() int { return r.version }

// Clone returns a deep, independently mutable copy (spec §5, §8 S6).
func (r *Request) Clone() *Request {
	out := &Request{version: r.version, payload: r.payload}
	out.payload.Info = append([]InfoPair(nil), r.payload.Info...)
	switch r.payload.Req.Kind {
	case ReqKindAction:
		out.payload.Req.Action = r.payload.Req.Action.Clone()
	case ReqKindActions:
		out.payload.Req.Actions = cloneActions(r.payload.Req.Actions)
	case ReqKindTransaction:
		out.payload.Req.Transaction = r.payload.Req.Transaction.Clone()
	}
	if r.signature != nil {
		sig := *r.signature
		sig.Signature.Content = append([]byte(nil), r.signature.Signature.Content...)
		out.signature = &sig
	}
	return out
}

// ---- Queries ----

func (r *Request) IsIdentity() bool    { return r.payload.IsIdentity() }
func (r *Request) IsMultiChain() bool  { return r.payload.IsMultiChain() }
func (r *Request) ShouldBroadcast() bool { return r.payload.ShouldBroadcast() }
func (r *Request) IsBackground() bool  { return r.payload.IsBackground() }
func (r *Request) Callback() string    { return r.payload.Callback }

// GetChainId returns the request's declared chain id (the zero value if
// this is a multi-chain request).
func (r *Request) GetChainId() chainid.ChainId { return r.payload.ChainId }

// GetChainIds returns the multi-chain restriction list declared under the
// chain_ids info key, or nil if none is present.
func (r *Request) GetChainIds() ([]chainid.ChainId, error) {
	raw, ok := GetRawInfoKey(r.payload.Info, ChainIdsInfoKey)
	if !ok {
		return nil, nil
	}
	return DecodeChainIdVariants(raw)
}

// GetIdentity returns the identity request's permission actor, if set and
// concrete (not a placeholder), per spec §3's invariant on getIdentity.
func (r *Request) GetIdentity() (Name, bool) {
	perm := r.identityPermission()
	if perm == nil || perm.Actor.IsPlaceholder() {
		return 0, false
	}
	return perm.Actor, true
}

// GetIdentityPermission mirrors GetIdentity for the permission field.
func (r *Request) GetIdentityPermission() (Name, bool) {
	perm := r.identityPermission()
	if perm == nil || perm.Permission.IsPlaceholder() {
		return 0, false
	}
	return perm.Permission, true
}

func (r *Request) identityPermission() *PermissionLevel {
	switch r.version {
	case 2:
		return r.payload.Req.IdentityV2.Permission
	case 3:
		return r.payload.Req.IdentityV3.Permission
	default:
		return nil
	}
}

// GetIdentityScope returns the v3 identity scope, or the zero Name for a
// v2 identity request (v2 has no scope field).
func (r *Request) GetIdentityScope() Name {
	if r.version == 3 {
		return r.payload.Req.IdentityV3.Scope
	}
	return 0
}

// GetRawActions returns the request's actions as declared (before
// resolution): the single action, the action list, or the transaction's
// actions, in all cases preserving order. Identity requests have no raw
// actions (the identity action is synthesized during resolution).
func (r *Request) GetRawActions() []Action {
	switch r.payload.Req.Kind {
	case ReqKindAction:
		return []Action{r.payload.Req.Action}
	case ReqKindActions:
		return r.payload.Req.Actions
	case ReqKindTransaction:
		return r.payload.Req.Transaction.Actions
	default:
		return nil
	}
}

// GetRawTransaction returns the request's transaction body if it carries
// one directly (ReqKindTransaction), and ok=false otherwise.
func (r *Request) GetRawTransaction() (Transaction, bool) {
	if r.payload.Req.Kind == ReqKindTransaction {
		return r.payload.Req.Transaction, true
	}
	return Transaction{}, false
}

// GetRequiredAbis returns the set of distinct accounts whose ABI must be
// fetched to resolve this request's non-raw action data. Accounts whose
// action Data is already encoded bytes still need no ABI to *resolve*
// placeholders if the caller doesn't need a decoded view, but spec §4.5
// step 4 always decodes before substitution, so every action's account is
// required except the built-in identity action.
func (r *Request) GetRequiredAbis() []Name {
	seen := map[Name]bool{}
	var out []Name
	for _, a := range r.GetRawActions() {
		if seen[a.Account] {
			continue
		}
		seen[a.Account] = true
		out = append(out, a.Account)
	}
	return out
}

// RequiresTapos reports whether resolution will need a TransactionContext
// to fill a null header (spec §4.5 step 2): true for action/actions/
// transaction-with-null-header requests, false for identity requests and
// for transactions that already carry a concrete header.
func (r *Request) RequiresTapos() bool {
	switch r.payload.Req.Kind {
	case ReqKindIdentity:
		return false
	case ReqKindTransaction:
		return r.payload.Req.Transaction.TransactionHeader.IsNull()
	default:
		return true
	}
}

// GetRawInfo returns the info list as stored.
func (r *Request) GetRawInfo() []InfoPair { return r.payload.Info }

// GetRawInfoKey returns the raw bytes under key.
func (r *Request) GetRawInfoKey(key string) ([]byte, bool) {
	return GetRawInfoKey(r.payload.Info, key)
}

// GetInfoKey decodes the value under key as typ.
func (r *Request) GetInfoKey(key string, typ InfoValueType) (any, bool, error) {
	return GetInfoKey(r.payload.Info, key, typ)
}

// GetInfo decodes every info entry as raw UTF-8 strings, keyed by name.
// Values are converted byte for byte with no UTF-8 validation, so an
// entry whose value isn't valid UTF-8 text is still included; use
// GetRawInfo for the byte-exact view.
func (r *Request) GetInfo() map[string]string {
	out := map[string]string{}
	for _, p := range r.payload.Info {
		out[p.Key] = string(p.Value)
	}
	return out
}

// ---- Mutations ----

// SetCallback replaces the callback URL and background flag.
func (r *Request) SetCallback(url string, background bool) {
	r.payload.Callback = url
	if background {
		r.payload.Flags |= FlagBackground
	} else {
		r.payload.Flags &^= FlagBackground
	}
}

// SetBroadcast sets or clears the broadcast flag. Per spec §3's
// invariant, this is never a no-op validator: the builder and decoder
// independently reject an identity request with broadcast set, but a
// caller may still toggle this flag in place afterward, at their own
// risk, exactly as the wire format allows bare byte mutation.
func (r *Request) SetBroadcast(b bool) {
	if b {
		r.payload.Flags |= FlagBroadcast
	} else {
		r.payload.Flags &^= FlagBroadcast
	}
}

// SetRawInfoKey stores value verbatim under key.
func (r *Request) SetRawInfoKey(key string, value []byte) {
	r.payload.Info = SetRawInfoKey(r.payload.Info, key, value)
}

// SetInfoKey encodes value under typ and stores it under key.
func (r *Request) SetInfoKey(key string, typ InfoValueType, value any) error {
	pairs, err := SetInfoKey(r.payload.Info, key, typ, value)
	if err != nil {
		return err
	}
	r.payload.Info = pairs
	return nil
}

// SetChainIds rewrites the multi-chain restriction list.
func (r *Request) SetChainIds(ids []chainid.ChainId) {
	r.SetRawInfoKey(ChainIdsInfoKey, EncodeChainIdVariants(ids))
}

// SetSignature attaches or replaces the originator signature.
func (r *Request) SetSignature(signer Name, sig Signature) {
	r.signature = &OriginatorSignature{Signer: signer, Signature: sig}
}

// ---- Signing ----

// GetSignatureDigest returns the digest an originator signature must sign
// (spec §4.7): SHA-256 of version || "request" || payload bytes.
func (r *Request) GetSignatureDigest() ([32]byte, error) {
	return r.signatureDigest()
}

func (r *Request) signatureDigest() ([32]byte, error) {
	payloadBytes, err := encodeRequestPayload(r.version, r.payload)
	if err != nil {
		return [32]byte{}, err
	}
	return originatorDigest(byte(r.version), payloadBytes), nil
}

// GetData returns the raw, uncompressed payload bytes (no signature, no
// header) -- the same bytes GetSignatureDigest hashes.
func (r *Request) GetData() ([]byte, error) {
	return encodeRequestPayload(r.version, r.payload)
}

// GetSignatureData returns version || "request" || payload, the exact
// preimage hashed by GetSignatureDigest.
func (r *Request) GetSignatureData() ([]byte, error) {
	payloadBytes, err := r.GetData()
	if err != nil {
		return nil, err
	}
	return signaturePreimage(byte(r.version), payloadBytes), nil
}

// Sign invokes provider over the signature digest and attaches the
// result in place.
func (r *Request) Sign(ctx context.Context, provider SignatureProvider) error {
	digest, err := r.signatureDigest()
	if err != nil {
		return err
	}
	signer, sig, err := provider.Sign(ctx, digest)
	if err != nil {
		return err
	}
	r.SetSignature(signer, sig)
	return nil
}

// ---- Serialization ----

// Encode renders the request as a frame byte slice.
func (r *Request) Encode(compressor Compressor) ([]byte, error) {
	return EncodeFrame(r.version, r.payload, r.signature, compressor)
}

// EncodeURI renders the request as an "esr:" text-carrier URI.
func (r *Request) EncodeURI(compressor Compressor, slashes bool) (string, error) {
	frameBytes, err := r.Encode(compressor)
	if err != nil {
		return "", err
	}
	return EncodeURI(frameBytes, slashes), nil
}

// String implements fmt.Stringer by encoding with no compressor and no
// slashes.
func (r *Request) String() string {
	s, err := r.EncodeURI(nil, false)
	if err != nil {
		return fmt.Sprintf("<sigreq: encode error: %v>", err)
	}
	return s
}

// requestJSON is the JSON projection used by ToJSON/MarshalJSON.
type requestJSON struct {
	Version  int      `json:"version"`
	ChainId  string   `json:"chain_id"`
	Flags    byte     `json:"flags"`
	Callback string   `json:"callback"`
	Info     []infoJSON `json:"info"`
}

type infoJSON struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ToJSON returns a JSON-serializable summary of the request's payload
// (not a wire-compatible encoding -- spec §6 lists toJSON as a debug
// convenience alongside the binary/text carriers, not a third wire form).
func (r *Request) ToJSON() ([]byte, error) {
	out := requestJSON{
		Version:  r.version,
		ChainId:  r.payload.ChainId.Hex(),
		Flags:    r.payload.Flags,
		Callback: r.payload.Callback,
	}
	for _, p := range r.payload.Info {
		out.Info = append(out.Info, infoJSON{Key: p.Key, Value: b64Encode(p.Value)})
	}
	return json.Marshal(out)
}

// FromData decodes a request directly from frame bytes (spec §6,
// "fromData").
func FromData(data []byte, compressor Compressor) (*Request, error) {
	frame, err := DecodeFrame(data, compressor)
	if err != nil {
		return nil, err
	}
	return fromFrame(frame)
}

// FromURI decodes a request from its text-carrier form (spec §6, "from").
func FromURI(uri string, compressor Compressor) (*Request, error) {
	data, err := DecodeURI(uri)
	if err != nil {
		return nil, err
	}
	return FromData(data, compressor)
}

func fromFrame(frame Frame) (*Request, error) {
	if frame.Payload.IsIdentity() && frame.Payload.ShouldBroadcast() {
		return nil, ErrIdentityBroadcast
	}
	return &Request{version: frame.Version, payload: frame.Payload, signature: frame.Signature}, nil
}
