package sigreq

import (
	"fmt"
	"time"

	"sigreq/sigreq/chainid"
)

// IdentityProof is the off-chain attestation of account control produced
// from a resolved identity request (spec §4.8).
type IdentityProof struct {
	ChainId    chainid.ChainId
	Scope      Name
	Expiration uint32 // seconds since epoch
	Signer     PermissionLevel
	Signature  Signature
}

// identityProofTransaction builds the synthetic transaction used both to
// compute the proof's signing digest and to verify a received proof
// (spec §4.8, "Transaction used as the signing object"): ref_block_num=0,
// ref_block_prefix=0, a single identity action over the v3 identity ABI.
func identityProofTransaction(proof IdentityProof) (Transaction, error) {
	data, err := EncodeIdentityBodyV3(IdentityBodyV3{
		Scope:      proof.Scope,
		Permission: &proof.Signer,
	})
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		TransactionHeader: TransactionHeader{Expiration: proof.Expiration},
		Actions: []Action{{
			Account:       0,
			Name:          identityActionName,
			Authorization: []PermissionLevel{proof.Signer},
			Data:          data,
		}},
	}, nil
}

// SigningDigest returns the digest that IdentityProof.Signature must sign.
func (proof IdentityProof) SigningDigest() ([32]byte, error) {
	tx, err := identityProofTransaction(proof)
	if err != nil {
		return [32]byte{}, err
	}
	return transactionDigest(tx), nil
}

// Verify checks that the proof has not expired at now and that the
// recovered public key is accepted by authority (spec §4.8, property 8
// of §8).
func (proof IdentityProof) Verify(authority Authority, now time.Time) (bool, error) {
	if uint32(now.Unix()) >= proof.Expiration {
		return false, nil
	}
	digest, err := proof.SigningDigest()
	if err != nil {
		return false, err
	}
	pub, err := proof.Signature.Recover(digest)
	if err != nil {
		return false, err
	}
	return authority.Accepts(pub), nil
}

// Authority is a weighted set of keys with a threshold, grounded on
// lib/dids/vsc.go's VscDID (members + weightMap + threshold): a signature
// from any single key whose own weight meets the threshold is accepted.
type Authority struct {
	Threshold uint32
	Keys      []WeightedKey
}

// WeightedKey pairs a public key with its authority weight.
type WeightedKey struct {
	Key    PublicKey
	Weight uint32
}

// Accepts reports whether pub alone carries enough weight to meet the
// authority's threshold.
func (a Authority) Accepts(pub PublicKey) bool {
	for _, wk := range a.Keys {
		if wk.Key.Equal(pub) && wk.Weight >= a.Threshold {
			return true
		}
	}
	return false
}

// String renders the proof per spec §4.8: "EOSIO " + base64u(encode(proof)).
func (proof IdentityProof) String() (string, error) {
	b, err := encodeIdentityProof(proof)
	if err != nil {
		return "", err
	}
	return "EOSIO " + b64Encode(b), nil
}

// ParseIdentityProof is the inverse of String.
func ParseIdentityProof(text string) (IdentityProof, error) {
	const prefix = "EOSIO "
	if len(text) <= len(prefix) || text[:len(prefix)] != prefix {
		return IdentityProof{}, fmt.Errorf("%w: missing EOSIO prefix", ErrBadProof)
	}
	raw, err := b64Decode(text[len(prefix):])
	if err != nil {
		return IdentityProof{}, fmt.Errorf("%w: %v", ErrBadProof, err)
	}
	proof, err := decodeIdentityProof(raw)
	if err != nil {
		return IdentityProof{}, fmt.Errorf("%w: %v", ErrBadProof, err)
	}
	return proof, nil
}

func encodeIdentityProof(proof IdentityProof) ([]byte, error) {
	e := newEncoder()
	e.WriteRawBytes(proof.ChainId.Bytes())
	e.WriteName(proof.Scope)
	e.WriteUint32(proof.Expiration)
	proof.Signer.encode(e)
	e.WriteVarBytes(proof.Signature.Content)
	return e.Bytes(), nil
}

func decodeIdentityProof(b []byte) (IdentityProof, error) {
	d := newDecoder(b)
	raw, err := d.ReadRawBytes(32)
	if err != nil {
		return IdentityProof{}, err
	}
	chainId, err := chainid.FromBytes(raw)
	if err != nil {
		return IdentityProof{}, err
	}
	scope, err := d.ReadName()
	if err != nil {
		return IdentityProof{}, err
	}
	exp, err := d.ReadUint32()
	if err != nil {
		return IdentityProof{}, err
	}
	signer, err := decodePermissionLevel(d)
	if err != nil {
		return IdentityProof{}, err
	}
	sigBytes, err := d.ReadVarBytes()
	if err != nil {
		return IdentityProof{}, err
	}
	return IdentityProof{
		ChainId:    chainId,
		Scope:      scope,
		Expiration: exp,
		Signer:     signer,
		Signature:  Signature{Content: sigBytes},
	}, nil
}
