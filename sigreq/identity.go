package sigreq

// identityActionName is the built-in, synthetic action name used for
// identity requests and identity proofs (spec §4.5 step 1, §4.8).
var identityActionName = ParseName("identity")

// IdentityBodyV2 is the protocol-v2 identity request body: just an
// optional permission (spec §3).
type IdentityBodyV2 struct {
	Permission *PermissionLevel
}

// IdentityBodyV3 is the protocol-v3 identity request body: a scope name
// plus an optional permission (spec §3).
type IdentityBodyV3 struct {
	Scope      Name
	Permission *PermissionLevel
}

func EncodeIdentityBodyV2(b IdentityBodyV2) ([]byte, error) {
	e := newEncoder()
	encodeOptionalPermission(e, b.Permission)
	return e.Bytes(), nil
}

func DecodeIdentityBodyV2(data []byte) (IdentityBodyV2, error) {
	d := newDecoder(data)
	perm, err := decodeOptionalPermission(d)
	if err != nil {
		return IdentityBodyV2{}, err
	}
	return IdentityBodyV2{Permission: perm}, nil
}

func EncodeIdentityBodyV3(b IdentityBodyV3) ([]byte, error) {
	e := newEncoder()
	e.WriteName(b.Scope)
	encodeOptionalPermission(e, b.Permission)
	return e.Bytes(), nil
}

func DecodeIdentityBodyV3(data []byte) (IdentityBodyV3, error) {
	d := newDecoder(data)
	scope, err := d.ReadName()
	if err != nil {
		return IdentityBodyV3{}, err
	}
	perm, err := decodeOptionalPermission(d)
	if err != nil {
		return IdentityBodyV3{}, err
	}
	return IdentityBodyV3{Scope: scope, Permission: perm}, nil
}

func encodeOptionalPermission(e *encoder, p *PermissionLevel) {
	e.WriteBool(p != nil)
	if p != nil {
		p.encode(e)
	}
}

func decodeOptionalPermission(d *decoder) (*PermissionLevel, error) {
	present, err := d.ReadBool()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	p, err := decodePermissionLevel(d)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PlaceholderAuth is the authorization used for an identity action when
// no signer is yet known (spec §4.5 step 1: "authorization = [signer or
// PlaceholderAuth]").
var PlaceholderAuth = PermissionLevel{
	Actor:      PlaceholderSignerActor,
	Permission: PlaceholderSignerPermission,
}
