package sigreq

import "fmt"

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindName ValueKind = iota
	KindBytes
	KindInt
	KindString
	KindArray
	KindRecord
)

// Value is the generic, discriminated value tree used for decoded action
// data. Spec §9's design notes recommend this shape over runtime
// reflection: "Name | Bytes | Int | String | Array | Record".
type Value struct {
	Kind ValueKind

	name   Name
	bytes  []byte
	intVal int64
	str    string
	array  []Value
	record map[string]Value
	// keys preserves field insertion order for Record values, since
	// re-encoding must walk fields in the order the ABI defines them.
	keys []string
}

func NameValue(n Name) Value           { return Value{Kind: KindName, name: n} }
func BytesValue(b []byte) Value        { return Value{Kind: KindBytes, bytes: b} }
func IntValue(i int64) Value           { return Value{Kind: KindInt, intVal: i} }
func StringValue(s string) Value       { return Value{Kind: KindString, str: s} }
func ArrayValue(items []Value) Value   { return Value{Kind: KindArray, array: items} }

// RecordValue builds a record from ordered (key, value) pairs, preserving
// field order.
func RecordValue(keys []string, fields map[string]Value) Value {
	return Value{Kind: KindRecord, keys: append([]string(nil), keys...), record: fields}
}

func (v Value) Name() Name               { return v.name }
func (v Value) Bytes() []byte            { return v.bytes }
func (v Value) Int() int64               { return v.intVal }
func (v Value) Str() string              { return v.str }
func (v Value) Array() []Value           { return v.array }
func (v Value) RecordKeys() []string     { return v.keys }
func (v Value) Field(key string) (Value, bool) {
	f, ok := v.record[key]
	return f, ok
}

// maxPlaceholderDepth bounds the recursive substitution walk, per spec
// §3's invariant ("a sensible recursion bound (>=100) is required").
const maxPlaceholderDepth = 128

// SubstitutePlaceholders recursively replaces PlaceholderSignerActor and
// PlaceholderSignerPermission Name values anywhere in v with the
// corresponding field of signer (spec §4.5 step 4).
func SubstitutePlaceholders(v Value, signer PermissionLevel) (Value, error) {
	return substitutePlaceholders(v, signer, 0)
}

func substitutePlaceholders(v Value, signer PermissionLevel, depth int) (Value, error) {
	if depth > maxPlaceholderDepth {
		return Value{}, fmt.Errorf("sigreq: placeholder substitution exceeded depth %d", maxPlaceholderDepth)
	}
	switch v.Kind {
	case KindName:
		switch v.name {
		case PlaceholderSignerActor:
			return NameValue(signer.Actor), nil
		case PlaceholderSignerPermission:
			return NameValue(signer.Permission), nil
		default:
			return v, nil
		}
	case KindArray:
		out := make([]Value, len(v.array))
		for i, item := range v.array {
			sub, err := substitutePlaceholders(item, signer, depth+1)
			if err != nil {
				return Value{}, err
			}
			out[i] = sub
		}
		return ArrayValue(out), nil
	case KindRecord:
		fields := make(map[string]Value, len(v.record))
		for _, k := range v.keys {
			sub, err := substitutePlaceholders(v.record[k], signer, depth+1)
			if err != nil {
				return Value{}, err
			}
			fields[k] = sub
		}
		return RecordValue(v.keys, fields), nil
	default:
		return v, nil
	}
}

// SubstitutePlaceholdersInAuthorization applies the backwards-compat rule
// from spec §4.5 step 4: in a permission level, PlaceholderSignerActor in
// the *permission* slot also resolves to the signer permission, not just
// PlaceholderSignerPermission.
func SubstitutePlaceholdersInAuthorization(auth PermissionLevel, signer PermissionLevel) PermissionLevel {
	out := auth
	switch auth.Actor {
	case PlaceholderSignerActor:
		out.Actor = signer.Actor
	case PlaceholderSignerPermission:
		out.Actor = signer.Permission
	}
	switch auth.Permission {
	case PlaceholderSignerActor, PlaceholderSignerPermission:
		out.Permission = signer.Permission
	}
	return out
}

// HasPlaceholder reports whether any Name in v (recursively) is still a
// placeholder. Used by tests asserting the "placeholder fixed point"
// property (spec §8, property 4).
func HasPlaceholder(v Value) bool {
	switch v.Kind {
	case KindName:
		return v.name.IsPlaceholder()
	case KindArray:
		for _, item := range v.array {
			if HasPlaceholder(item) {
				return true
			}
		}
		return false
	case KindRecord:
		for _, k := range v.keys {
			if HasPlaceholder(v.record[k]) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
