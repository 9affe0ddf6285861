package sigreq

import (
	"context"
	"fmt"

	"sigreq/sigreq/chainid"
)

// ActionInput describes one action to build. Exactly one of Data or
// Value should be set: Data for already-ABI-encoded bytes (used as-is),
// Value for a decoded record that Create will encode via an ActionCodec
// (spec §4.3, "actions may be supplied pre-encoded or as ABI values").
type ActionInput struct {
	Account       Name
	Name          Name
	Authorization []PermissionLevel
	Data          []byte
	Value         *Value
}

func (in ActionInput) toAction() Action {
	return Action{Account: in.Account, Name: in.Name, Authorization: in.Authorization, Data: in.Data}
}

// TransactionInput describes a full transaction to build, mirroring
// Transaction but with ActionInput in place of Action so its actions may
// also carry unencoded Values.
type TransactionInput struct {
	Header             TransactionHeader
	ContextFreeActions []ActionInput
	Actions            []ActionInput
	Extensions         []Extension
}

// IdentityDescriptor describes an identity request to build (spec §4.3).
// A non-zero Scope forces protocol v3, since v2 identity bodies have no
// scope field.
type IdentityDescriptor struct {
	Scope      Name
	Permission *PermissionLevel
}

// Descriptor is the single input to Create/CreateSync: exactly one of
// Action, Actions, Transaction, Identity must be set (spec §4.3's "a
// descriptor selects exactly one request body variant").
type Descriptor struct {
	// ChainId accepts anything chainid.From accepts (ChainId, Alias, int,
	// string, raw bytes), or nil/omitted for a multi-chain request (which
	// forces protocol v3, per spec §4.2's "alias 0 / unknown chain always
	// reads as multi-chain").
	ChainId any

	// ChainIds declares the multi-chain restriction list under the
	// chain_ids info key (spec §4.3, §9's "chain_ids info convention").
	// It is consulted only when ChainId is nil/omitted; a request that
	// already names a concrete chain has nothing to restrict, so ChainIds
	// is ignored when ChainId is set. Setting ChainIds with ChainId nil is
	// equivalent to building without it and then calling
	// Request.SetChainIds separately.
	ChainIds []chainid.ChainId

	Action      *ActionInput
	Actions     []ActionInput
	Transaction *TransactionInput
	Identity    *IdentityDescriptor

	// Broadcast sets the broadcast flag. It has no implicit default: a
	// Descriptor that leaves it false builds a request without the flag.
	// Identity requests never get the flag, regardless of this field
	// (spec §3's broadcast/identity invariant).
	Broadcast  bool
	Background bool
	Callback   string
	Info       []InfoPair
}

func (d Descriptor) countVariants() int {
	n := 0
	if d.Action != nil {
		n++
	}
	if d.Actions != nil {
		n++
	}
	if d.Transaction != nil {
		n++
	}
	if d.Identity != nil {
		n++
	}
	return n
}

// selectVersion applies spec §4.3's version-selection rule: protocol v2
// unless the request needs v3's widened shape -- a scoped identity
// request, or a multi-chain (nil ChainId) request.
func (d Descriptor) selectVersion() int {
	if d.Identity != nil && d.Identity.Scope != 0 {
		return 3
	}
	if d.ChainId == nil {
		return 3
	}
	return 2
}

// CreateSync builds a Request from a descriptor whose action data is
// already ABI-encoded (every ActionInput uses Data, not Value); it
// performs no ABI lookups and cannot fail on missing ABIs (spec §4.3,
// §6's "createSync").
func CreateSync(d Descriptor) (*Request, error) {
	return create(context.Background(), d, nil, nil)
}

// Create builds a Request from a descriptor, ABI-encoding any
// ActionInput that supplies Value instead of Data via provider and
// codec (spec §4.3, §6's "create"). provider/codec may be nil if no
// ActionInput in the descriptor uses Value.
func Create(ctx context.Context, d Descriptor, provider AbiProvider, codec ActionCodec) (*Request, error) {
	return create(ctx, d, provider, codec)
}

// Identity is a convenience wrapper building an identity-only descriptor
// (spec §6's "identity").
func Identity(chainId any, scope Name, permission *PermissionLevel) (*Request, error) {
	return CreateSync(Descriptor{
		ChainId:  chainId,
		Identity: &IdentityDescriptor{Scope: scope, Permission: permission},
	})
}

// FromTransaction is a convenience wrapper building a transaction-body
// descriptor from an already-assembled Transaction (spec §6's
// "fromTransaction"); its actions are taken as already-encoded.
func FromTransaction(chainId any, tx Transaction, opts Descriptor) (*Request, error) {
	opts.ChainId = chainId
	opts.Transaction = &TransactionInput{
		Header:             tx.TransactionHeader,
		ContextFreeActions: toActionInputs(tx.ContextFreeActions),
		Actions:            toActionInputs(tx.Actions),
		Extensions:         tx.TransactionExtensions,
	}
	return CreateSync(opts)
}

func toActionInputs(actions []Action) []ActionInput {
	out := make([]ActionInput, len(actions))
	for i, a := range actions {
		out[i] = ActionInput{Account: a.Account, Name: a.Name, Authorization: a.Authorization, Data: a.Data}
	}
	return out
}

func create(ctx context.Context, d Descriptor, provider AbiProvider, codec ActionCodec) (*Request, error) {
	if d.countVariants() != 1 {
		return nil, ErrInvalidDescriptor
	}

	version := d.selectVersion()

	var id chainid.ChainId
	if d.ChainId != nil {
		var err error
		id, err = chainid.From(d.ChainId)
		if err != nil {
			return nil, err
		}
	}

	variant, err := buildVariant(ctx, d, version, provider, codec)
	if err != nil {
		return nil, err
	}

	var flags byte
	switch {
	case d.Identity != nil:
		// broadcast is never set on an identity request, regardless of
		// the descriptor's Broadcast field.
	case d.Broadcast:
		flags |= FlagBroadcast
	}
	if d.Background {
		flags |= FlagBackground
	}

	payload := RequestPayload{
		ChainId:  id,
		Req:      variant,
		Flags:    flags,
		Callback: d.Callback,
		Info:     append([]InfoPair(nil), d.Info...),
	}
	req := &Request{version: version, payload: payload}
	if d.ChainId == nil && len(d.ChainIds) > 0 {
		req.SetChainIds(d.ChainIds)
	}
	return req, nil
}

func buildVariant(ctx context.Context, d Descriptor, version int, provider AbiProvider, codec ActionCodec) (RequestVariant, error) {
	switch {
	case d.Action != nil:
		a, err := encodeActionInput(ctx, *d.Action, provider, codec)
		if err != nil {
			return RequestVariant{}, err
		}
		return RequestVariant{Kind: ReqKindAction, Action: a}, nil

	case d.Actions != nil:
		as, err := encodeActionInputs(ctx, d.Actions, provider, codec)
		if err != nil {
			return RequestVariant{}, err
		}
		return RequestVariant{Kind: ReqKindActions, Actions: as}, nil

	case d.Transaction != nil:
		cfa, err := encodeActionInputs(ctx, d.Transaction.ContextFreeActions, provider, codec)
		if err != nil {
			return RequestVariant{}, err
		}
		as, err := encodeActionInputs(ctx, d.Transaction.Actions, provider, codec)
		if err != nil {
			return RequestVariant{}, err
		}
		tx := Transaction{
			TransactionHeader:    d.Transaction.Header,
			ContextFreeActions:   cfa,
			Actions:              as,
			TransactionExtensions: append([]Extension(nil), d.Transaction.Extensions...),
		}
		return RequestVariant{Kind: ReqKindTransaction, Transaction: tx}, nil

	case d.Identity != nil:
		perm := d.Identity.Permission
		if perm == nil {
			perm = &PlaceholderAuth
		}
		switch version {
		case 2:
			return RequestVariant{Kind: ReqKindIdentity, IdentityV2: IdentityBodyV2{Permission: perm}}, nil
		case 3:
			return RequestVariant{Kind: ReqKindIdentity, IdentityV3: IdentityBodyV3{Scope: d.Identity.Scope, Permission: perm}}, nil
		default:
			return RequestVariant{}, ErrUnsupportedVersion
		}

	default:
		return RequestVariant{}, ErrInvalidDescriptor
	}
}

func encodeActionInputs(ctx context.Context, ins []ActionInput, provider AbiProvider, codec ActionCodec) ([]Action, error) {
	out := make([]Action, len(ins))
	for i, in := range ins {
		a, err := encodeActionInput(ctx, in, provider, codec)
		if err != nil {
			return nil, fmt.Errorf("sigreq: building action %d (%s::%s): %w", i, in.Account, in.Name, err)
		}
		out[i] = a
	}
	return out, nil
}

func encodeActionInput(ctx context.Context, in ActionInput, provider AbiProvider, codec ActionCodec) (Action, error) {
	if in.Value == nil {
		return in.toAction(), nil
	}
	if provider == nil || codec == nil {
		return Action{}, ErrMissingAbiProvider
	}
	abi, err := provider.GetAbi(ctx, in.Account)
	if err != nil {
		return Action{}, err
	}
	data, err := codec.EncodeActionData(abi, in.Account, in.Name, *in.Value)
	if err != nil {
		return Action{}, err
	}
	out := in.toAction()
	out.Data = data
	return out, nil
}
