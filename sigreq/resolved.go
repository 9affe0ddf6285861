package sigreq

import (
	"fmt"
	"strconv"
	"time"

	"sigreq/sigreq/chainid"
)

// ResolvedRequest is the output of Resolve: a concrete, placeholder-free
// transaction ready to sign, alongside the context used to produce it
// (spec §4.5, §4.6).
type ResolvedRequest struct {
	request *Request
	Signer  PermissionLevel

	// ChainId is the chain this result resolved against: the request's
	// own declared chain id, or the caller's ResolveOptions.SelectedChainId
	// when the request was multi-chain.
	ChainId chainid.ChainId

	Transaction Transaction
	Actions     []DecodedAction // empty for identity requests

	// Expiration and Scope are only meaningful for identity requests:
	// Expiration is the proof's expiration (0 for protocol v2, which
	// never expires), and Scope is the v3 scope (0 for v2).
	Expiration uint32
	Scope      Name
}

// Request returns the request this result resolved.
func (r *ResolvedRequest) Request() *Request { return r.request }

// SerializedTransaction returns the resolved transaction's binary wire
// form -- the bytes a wallet actually signs and broadcasts.
func (r *ResolvedRequest) SerializedTransaction() []byte {
	return SerializeTransaction(r.Transaction)
}

// SigningDigest returns the digest a wallet key signs to authorize this
// resolved request's transaction.
func (r *ResolvedRequest) SigningDigest() [32]byte {
	return transactionDigest(r.Transaction)
}

// TransactionID returns the lowercase-hex transaction id (spec §4.6's
// "tx" callback key).
func (r *ResolvedRequest) TransactionID() string {
	return transactionID(r.Transaction)
}

// GetIdentityProof builds the IdentityProof for this resolved identity
// request, given the signature a wallet produced over SigningDigest. It
// returns an error if this result did not resolve an identity request.
func (r *ResolvedRequest) GetIdentityProof(sig Signature) (IdentityProof, error) {
	if !r.request.IsIdentity() {
		return IdentityProof{}, fmt.Errorf("sigreq: GetIdentityProof called on a non-identity resolved request")
	}
	return IdentityProof{
		ChainId:    r.ChainId,
		Scope:      r.Scope,
		Expiration: r.Expiration,
		Signer:     r.Signer,
		Signature:  sig,
	}, nil
}

// ReceivedCallback holds a callback's {{key}} values exactly as a wallet
// or application receives them -- as strings, whether they arrived on a
// query string or in a background-callback JSON body (spec §4.6's
// table). Unlike CallbackPayload (which a requester fills in to render a
// callback URL), this is what the *receiver* of that URL or JSON body
// has to parse back out.
type ReceivedCallback struct {
	Signatures       []string // "sig" first, then "sig0", "sig1", ... in order
	TransactionId    string   // "tx"
	RefBlockNum      string   // "rbn"
	RefBlockPrefix   string   // "rid"
	Expiration       string   // "ex"
	RequestURI       string   // "req"
	SignerActor      string   // "sa"
	SignerPermission string   // "sp"
	ChainId          string   // "cid"
	BlockNum         string   // "bn", optional
}

// ResolvedFromCallbackPayload reconstructs a ResolvedRequest from a
// received callback payload (spec §6's "fromPayload"), without needing
// to re-run Resolve against a live chain connection. It works by
// decoding the original request back out of the payload's "req" field
// and replaying the same resolution rules (spec §4.5) against the TAPoS
// values the payload itself reports, rather than trusting any field
// blindly: the reconstructed transaction's id is checked against the
// payload's "tx" field, so a tampered or mismatched payload is rejected
// with an error instead of silently returning a wrong result.
func ResolvedFromCallbackPayload(received ReceivedCallback, compressor Compressor) (*ResolvedRequest, []Signature, error) {
	if received.RequestURI == "" {
		return nil, nil, fmt.Errorf("sigreq: callback payload has no req field to reconstruct the original request from")
	}
	req, err := FromURI(received.RequestURI, compressor)
	if err != nil {
		return nil, nil, fmt.Errorf("sigreq: decoding callback's req field: %w", err)
	}

	signer := PermissionLevel{Actor: ParseName(received.SignerActor), Permission: ParseName(received.SignerPermission)}

	var selectedChainId any
	if received.ChainId != "" {
		id, err := chainid.FromHex(received.ChainId)
		if err != nil {
			return nil, nil, fmt.Errorf("sigreq: parsing callback's cid field: %w", err)
		}
		selectedChainId = id
	}
	chosenChainId, err := resolveChainId(req, ResolveOptions{SelectedChainId: selectedChainId})
	if err != nil {
		return nil, nil, err
	}

	rbn, err := parseCallbackUint(received.RefBlockNum, 16)
	if err != nil {
		return nil, nil, fmt.Errorf("sigreq: parsing callback's rbn field: %w", err)
	}
	rid, err := parseCallbackUint(received.RefBlockPrefix, 32)
	if err != nil {
		return nil, nil, fmt.Errorf("sigreq: parsing callback's rid field: %w", err)
	}
	ex, err := parseCallbackUint(received.Expiration, 32)
	if err != nil {
		return nil, nil, fmt.Errorf("sigreq: parsing callback's ex field: %w", err)
	}
	taposCtx := NewDirectTaposContext(time.Unix(int64(ex), 0), uint16(rbn), uint32(rid))

	signatures := make([]Signature, 0, len(received.Signatures))
	for _, s := range received.Signatures {
		if s == "" {
			continue
		}
		sig, err := ParseSignature(s)
		if err != nil {
			return nil, nil, fmt.Errorf("sigreq: parsing callback signature: %w", err)
		}
		signatures = append(signatures, sig)
	}

	result := ResolvedRequest{request: req, Signer: signer, ChainId: chosenChainId}
	if req.IsIdentity() {
		tx, exp, scope, err := resolveIdentity(req, signer, taposCtx, time.Now())
		if err != nil {
			return nil, nil, err
		}
		result.Transaction, result.Expiration, result.Scope = tx, exp, scope
	} else {
		tx, decoded, err := ResolveTransaction(req, signer, taposCtx, nil, nil)
		if err != nil {
			return nil, nil, err
		}
		result.Transaction, result.Actions = tx, decoded
	}

	if received.TransactionId != "" {
		if got := result.TransactionID(); got != received.TransactionId {
			return nil, nil, fmt.Errorf("sigreq: reconstructed transaction id %s does not match callback's tx field %s", got, received.TransactionId)
		}
	}

	return &result, signatures, nil
}

func parseCallbackUint(s string, bitSize int) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, bitSize)
}
