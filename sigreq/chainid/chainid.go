// Package chainid models the chain identifier tagged union: a compact
// numeric alias for a well-known chain, or a raw 32-byte chain id.
package chainid

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/multiformats/go-multibase"
)

// ErrUnknownAlias is returned when an alias outside the built-in table is
// requested.
var ErrUnknownAlias = errors.New("chainid: unknown alias")

// Alias is a compact numeric chain identifier.
type Alias uint8

const (
	UNKNOWN  Alias = 0
	EOS      Alias = 1
	TELOS    Alias = 2
	JUNGLE   Alias = 3
	KYLIN    Alias = 4
	WORBLI   Alias = 5
	BOS      Alias = 6
	MEETONE  Alias = 7
	INSIGHTS Alias = 8
	BEOS     Alias = 9
	WAX      Alias = 10
	PROTON   Alias = 11
	FIO      Alias = 12
)

type aliasRow struct {
	alias Alias
	name  string
	hex   string
}

// aliasTable is bit-exact with spec §4.2.
var aliasTable = []aliasRow{
	{EOS, "EOS", "aca376f206b8fc25a6ed44dbdc66547c36c6c33e3a119ffbeaef943642f0e906"},
	{TELOS, "TELOS", "4667b205c6838ef70ff7988f6e8257e8be0e1284a2f59699054a018f743b1d11"},
	{JUNGLE, "JUNGLE", "e70aaab8997e1dfce58fbfac80cbbb8fecec7b99cf982a9444273cbc64c41473"},
	{KYLIN, "KYLIN", "5fff1dae8dc8e2fc4d5b23b2c7665c97f9e9d8edf2b6485a86ba311c25639191"},
	{WORBLI, "WORBLI", "73647cde120091e0a4b85bced2f3cfdb3041e266cbbe95cee59b73235a1b3b6f"},
	{BOS, "BOS", "d5a3d18fbb3c084e3b1f3fa98c21014b5f3db536cc15d08f9f6479517c6a3d86"},
	{MEETONE, "MEETONE", "cfe6486a83bad4962f232d48003b1824ab5665c36778141034d75e57b956e422"},
	{INSIGHTS, "INSIGHTS", "b042025541e25a472bffde2d62edd457b7e70cee943412b1ea0f044f88591664"},
	{BEOS, "BEOS", "b912d19a6abd2b1b05611ae5be473355d64d95aeff0c09bedc8c166cd6468fe4"},
	{WAX, "WAX", "1064487b3cd1a897ce03ae5b6a865651747e2e152090f99c1d19d44e01aea5a4"},
	{PROTON, "PROTON", "384da888112027f0321850a169f737c33e53b388aad48b5adace4bab97f437e0"},
	{FIO, "FIO", "21dcae42c0182200e93f954a074011f9048a7624c6fe81d3c9541a614a88bd1c"},
}

func init() {
	for _, row := range aliasTable {
		if len(row.hex) != 64 {
			panic(fmt.Sprintf("chainid: malformed alias table entry %q", row.name))
		}
	}
}

// ChainId is a 32-byte chain identifier.
type ChainId [32]byte

// FromAlias resolves a known alias to its raw chain id.
func FromAlias(a Alias) (ChainId, error) {
	if a == UNKNOWN {
		return ChainId{}, nil
	}
	for _, row := range aliasTable {
		if row.alias == a {
			return FromHex(row.hex)
		}
	}
	return ChainId{}, fmt.Errorf("%w: %d", ErrUnknownAlias, a)
}

// FromHex parses a 64-character lowercase hex string into a ChainId.
func FromHex(s string) (ChainId, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ChainId{}, fmt.Errorf("chainid: bad hex: %w", err)
	}
	return FromBytes(b)
}

// FromBytes copies a 32-byte buffer into a ChainId.
func FromBytes(b []byte) (ChainId, error) {
	if len(b) != 32 {
		return ChainId{}, fmt.Errorf("chainid: raw id must be 32 bytes, got %d", len(b))
	}
	var c ChainId
	copy(c[:], b)
	return c, nil
}

// From accepts an Alias, a 64-character hex string, a 32-byte buffer, or
// another ChainId, and normalizes it to a ChainId. This mirrors spec
// §4.2's "ChainId.from(v)".
func From(v any) (ChainId, error) {
	switch t := v.(type) {
	case ChainId:
		return t, nil
	case Alias:
		return FromAlias(t)
	case int:
		return FromAlias(Alias(t))
	case string:
		return FromHex(t)
	case []byte:
		return FromBytes(t)
	default:
		return ChainId{}, fmt.Errorf("chainid: unsupported value of type %T", v)
	}
}

// Hex returns the lowercase hex rendering of the 32-byte id. This is the
// wire textual form spec §4.2 uses (info keys, callback "cid"); it is
// not the same string Multibase produces.
func (c ChainId) Hex() string {
	return hex.EncodeToString(c[:])
}

// Multibase renders the id as a self-describing multibase string
// (base58btc, matching lib/dids/key.go's DID key encoding), for host
// applications that want to display or exchange chain ids alongside
// other multiformats-based identifiers (DIDs, CIDs) rather than as bare
// hex. This has no role in the wire protocol itself.
func (c ChainId) Multibase() (string, error) {
	return multibase.Encode(multibase.Base58BTC, c[:])
}

// FromMultibase parses a string produced by Multibase back into a
// ChainId.
func FromMultibase(s string) (ChainId, error) {
	_, data, err := multibase.Decode(s)
	if err != nil {
		return ChainId{}, fmt.Errorf("chainid: bad multibase string: %w", err)
	}
	return FromBytes(data)
}

// Bytes returns the raw 32-byte id.
func (c ChainId) Bytes() []byte {
	return c[:]
}

// IsZero reports whether this is the all-zero "unknown/multi-chain" id.
func (c ChainId) IsZero() bool {
	return c == ChainId{}
}

// Alias returns the known alias for this chain id, or UNKNOWN if it is not
// present in the built-in table.
func (c ChainId) Alias() Alias {
	for _, row := range aliasTable {
		candidate, err := FromHex(row.hex)
		if err == nil && candidate == c {
			return row.alias
		}
	}
	return UNKNOWN
}

// Name returns the human-readable chain name, or "UNKNOWN".
func (c ChainId) Name() string {
	a := c.Alias()
	if a == UNKNOWN {
		return "UNKNOWN"
	}
	for _, row := range aliasTable {
		if row.alias == a {
			return row.name
		}
	}
	return "UNKNOWN"
}

// Variant is the wire tagged union: tag 0 carries a compact alias, tag 1
// carries the raw 32-byte id.
type Variant struct {
	IsAlias bool
	Alias   Alias
	Raw     ChainId
}

// VariantOf prefers the compact alias form when the chain id has a known
// alias, matching spec §4.2's "chainVariant". The zero id is itself a known
// alias (UNKNOWN, tag 0) rather than an unrecognized raw id: a request with
// no declared chain, or a multi-chain request resolved against none of its
// candidates, must round-trip through the compact tag=0/alias=0 wire form,
// not a raw 32-zero-byte tag=1 form.
func VariantOf(c ChainId) Variant {
	if c.IsZero() {
		return Variant{IsAlias: true, Alias: UNKNOWN}
	}
	if a := c.Alias(); a != UNKNOWN {
		return Variant{IsAlias: true, Alias: a}
	}
	return Variant{IsAlias: false, Raw: c}
}

// ChainId resolves the variant back to a concrete 32-byte id. Resolving an
// alias-0 (UNKNOWN) variant yields the zero id, representing
// "unknown/multi-chain" per spec §3.
func (v Variant) ChainId() (ChainId, error) {
	if v.IsAlias {
		return FromAlias(v.Alias)
	}
	return v.Raw, nil
}
