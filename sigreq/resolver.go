package sigreq

import (
	"context"
	"fmt"
	"time"

	"sigreq/sigreq/chainid"
)

// defaultExpireSeconds is used for the block-based TAPoS form when the
// caller supplies no explicit expire_seconds (spec §4.5 step 2).
const defaultExpireSeconds = 60

type taposForm int

// taposUnset is the zero value: a bare TransactionContext{} (no
// NewDirectTaposContext/NewBlockTaposContext call) carries no TAPoS data at
// all, and FillHeader must fail rather than silently deriving an expiration
// from a zero time.Time.
const (
	taposUnset taposForm = iota
	taposDirect
	taposBlock
)

// TransactionContext carries the chain head state resolution needs to
// fill a null transaction header (spec §4.5 step 2). Build one with
// NewDirectTaposContext when the caller already has concrete TAPoS
// fields, or NewBlockTaposContext when it only has a head block.
type TransactionContext struct {
	form taposForm

	expiration     time.Time
	refBlockNum    uint16
	refBlockPrefix uint32

	blockNum      uint32
	timestamp     time.Time
	expireSeconds uint32
}

// NewDirectTaposContext builds a TransactionContext from already-computed
// TAPoS fields.
func NewDirectTaposContext(expiration time.Time, refBlockNum uint16, refBlockPrefix uint32) TransactionContext {
	return TransactionContext{
		form:           taposDirect,
		expiration:     expiration,
		refBlockNum:    refBlockNum,
		refBlockPrefix: refBlockPrefix,
	}
}

// NewBlockTaposContext builds a TransactionContext from a head block
// number, its prefix, and its timestamp; ref_block_num is derived as
// block_num mod 2^16, and expiration as timestamp + expireSeconds
// (defaulting to 60 when expireSeconds is zero), per spec §4.5 step 2.
func NewBlockTaposContext(blockNum uint32, refBlockPrefix uint32, timestamp time.Time, expireSeconds uint32) TransactionContext {
	return TransactionContext{
		form:           taposBlock,
		blockNum:       blockNum,
		refBlockPrefix: refBlockPrefix,
		timestamp:      timestamp,
		expireSeconds:  expireSeconds,
	}
}

// FillHeader produces the concrete TransactionHeader this context
// describes, generalizing lib/hive's head-block TAPoS fill-in
// (expiration-from-timestamp-plus-expire-seconds,
// ref-block-num-from-head-block-mod-65536) to either input form. It fails
// with ErrMissingTaPoS when the context is the zero value: neither the
// direct fields nor the block-based fields were ever supplied.
func (c TransactionContext) FillHeader() (TransactionHeader, error) {
	switch c.form {
	case taposDirect:
		return TransactionHeader{
			Expiration:     uint32(c.expiration.Unix()),
			RefBlockNum:    c.refBlockNum,
			RefBlockPrefix: c.refBlockPrefix,
		}, nil
	case taposBlock:
		expireSeconds := c.expireSeconds
		if expireSeconds == 0 {
			expireSeconds = defaultExpireSeconds
		}
		return TransactionHeader{
			Expiration:     uint32(c.timestamp.Unix()) + expireSeconds,
			RefBlockNum:    uint16(c.blockNum % 65536),
			RefBlockPrefix: c.refBlockPrefix,
		}, nil
	default:
		return TransactionHeader{}, ErrMissingTaPoS
	}
}

// expirationTime returns the concrete wall-clock expiration this context
// implies, independent of ref_block fields; used by identity resolution,
// which needs an expiration but no TAPoS block reference. Unlike
// FillHeader, an unset context is not an error here: resolveIdentity falls
// back to now+defaultExpireSeconds, since identity proofs have no null
// header to reject.
func (c TransactionContext) expirationTime() time.Time {
	switch c.form {
	case taposDirect:
		return c.expiration
	case taposBlock:
		expireSeconds := c.expireSeconds
		if expireSeconds == 0 {
			expireSeconds = defaultExpireSeconds
		}
		return c.timestamp.Add(time.Duration(expireSeconds) * time.Second)
	default:
		return time.Time{}
	}
}

// FetchAbis retrieves the ABI for every account in accounts via provider,
// returning a map keyed by account. Accounts are fetched independently;
// a single failure aborts the whole resolution (spec §4.5 step 3, §5).
func FetchAbis(ctx context.Context, provider AbiProvider, accounts []Name) (map[Name]ABI, error) {
	if provider == nil {
		if len(accounts) == 0 {
			return nil, nil
		}
		return nil, ErrMissingAbiProvider
	}
	out := make(map[Name]ABI, len(accounts))
	for _, acct := range accounts {
		abi, err := provider.GetAbi(ctx, acct)
		if err != nil {
			return nil, fmt.Errorf("sigreq: fetching abi for %s: %w", acct, err)
		}
		out[acct] = abi
	}
	return out, nil
}

// ResolveActions decodes each raw action's data under its account's ABI,
// substitutes signer placeholders throughout the decoded value tree and
// the action's own authorization list, and re-encodes the result (spec
// §4.5 step 4). codec may be nil, in which case only authorization
// placeholders are substituted and Data is carried through unresolved --
// callers that never substitute into action data (no placeholders used
// there) can skip ABI resolution entirely this way.
func ResolveActions(raw []Action, signer PermissionLevel, abis map[Name]ABI, codec ActionCodec) ([]DecodedAction, error) {
	out := make([]DecodedAction, len(raw))
	for i, a := range raw {
		resolved, err := resolveAction(a, signer, abis, codec)
		if err != nil {
			return nil, fmt.Errorf("sigreq: resolving action %d (%s::%s): %w", i, a.Account, a.Name, err)
		}
		out[i] = resolved
	}
	return out, nil
}

func resolveAction(a Action, signer PermissionLevel, abis map[Name]ABI, codec ActionCodec) (DecodedAction, error) {
	auth := make([]PermissionLevel, len(a.Authorization))
	for i, lvl := range a.Authorization {
		auth[i] = SubstitutePlaceholdersInAuthorization(lvl, signer)
	}
	out := a
	out.Authorization = auth

	if codec == nil {
		return DecodedAction{Action: out}, nil
	}

	abi, ok := abis[a.Account]
	if !ok {
		return DecodedAction{}, fmt.Errorf("%w: %s", ErrMissingAbi, a.Account)
	}
	if checker, ok := codec.(ActionTypeChecker); ok && !checker.HasAction(abi, a.Account, a.Name) {
		return DecodedAction{}, fmt.Errorf("%w: %s::%s", ErrUnknownAction, a.Account, a.Name)
	}
	decoded, err := codec.DecodeActionData(abi, a.Account, a.Name, a.Data)
	if err != nil {
		return DecodedAction{}, fmt.Errorf("%w: %s::%s: %v", ErrUnknownAction, a.Account, a.Name, err)
	}
	substituted, err := SubstitutePlaceholders(decoded, signer)
	if err != nil {
		return DecodedAction{}, err
	}
	encoded, err := codec.EncodeActionData(abi, a.Account, a.Name, substituted)
	if err != nil {
		return DecodedAction{}, err
	}
	out.Data = encoded
	return DecodedAction{Action: out, Decoded: substituted}, nil
}

// ResolveTransaction builds the final, signable transaction for a
// request whose body is a single action, an action list, or a
// transaction (spec §4.5 steps 1-4); identity requests are resolved
// separately by resolveIdentity.
func ResolveTransaction(req *Request, signer PermissionLevel, taposCtx TransactionContext, abis map[Name]ABI, codec ActionCodec) (Transaction, []DecodedAction, error) {
	if req.payload.Req.Kind == ReqKindIdentity {
		return Transaction{}, nil, fmt.Errorf("sigreq: ResolveTransaction called on an identity request")
	}

	decoded, err := ResolveActions(req.GetRawActions(), signer, abis, codec)
	if err != nil {
		return Transaction{}, nil, err
	}
	actions := make([]Action, len(decoded))
	for i, d := range decoded {
		actions[i] = d.Action
	}

	var header TransactionHeader
	var contextFree []Action
	var extensions []Extension
	if tx, ok := req.GetRawTransaction(); ok {
		header = tx.TransactionHeader
		contextFree = tx.ContextFreeActions
		extensions = tx.TransactionExtensions
	}
	if header.IsNull() {
		header, err = taposCtx.FillHeader()
		if err != nil {
			return Transaction{}, nil, err
		}
	}

	return Transaction{
		TransactionHeader:    header,
		ContextFreeActions:   contextFree,
		Actions:              actions,
		TransactionExtensions: extensions,
	}, decoded, nil
}

// resolveIdentity builds the synthetic identity transaction and
// expiration for an identity request (spec §4.5 step 1, §4.8). Protocol
// v2 identity requests keep the null header (no expiration is ever
// signed); v3 requests get a concrete expiration from taposCtx, falling
// back to now+defaultExpireSeconds when taposCtx is the zero value.
func resolveIdentity(req *Request, signer PermissionLevel, taposCtx TransactionContext, now time.Time) (Transaction, uint32, Name, error) {
	scope := req.GetIdentityScope()
	perm := signer
	if req.version == 2 {
		if req.payload.Req.IdentityV2.Permission != nil {
			perm = SubstitutePlaceholdersInAuthorization(*req.payload.Req.IdentityV2.Permission, signer)
		}
		data, err := EncodeIdentityBodyV2(IdentityBodyV2{Permission: &perm})
		if err != nil {
			return Transaction{}, 0, 0, err
		}
		tx := Transaction{
			Actions: []Action{{
				Account:       0,
				Name:          identityActionName,
				Authorization: []PermissionLevel{perm},
				Data:          data,
			}},
		}
		return tx, 0, 0, nil
	}

	if req.payload.Req.IdentityV3.Permission != nil {
		perm = SubstitutePlaceholdersInAuthorization(*req.payload.Req.IdentityV3.Permission, signer)
	}
	exp := taposCtx.expirationTime()
	if exp.IsZero() {
		exp = now.Add(defaultExpireSeconds * time.Second)
	}
	proof := IdentityProof{Scope: scope, Expiration: uint32(exp.Unix()), Signer: perm}
	tx, err := identityProofTransaction(proof)
	if err != nil {
		return Transaction{}, 0, 0, err
	}
	return tx, uint32(exp.Unix()), scope, nil
}

// ResolveOptions bundles everything Resolve needs beyond the request
// itself.
type ResolveOptions struct {
	Signer       PermissionLevel
	TaposContext TransactionContext
	AbiProvider  AbiProvider
	ActionCodec  ActionCodec
	// SelectedChainId is required when the request is multi-chain (a
	// nil/alias-0 chain id): the wallet's choice of which chain to sign
	// for. Resolve rejects it with ErrBadChain unless the request declares
	// no chain_ids info key, or the selection is among the declared ids
	// (spec §4.5's "deciding among declared chain_ids"). Anything chainid.From
	// accepts is allowed.
	SelectedChainId any
	// Now defaults to time.Now when the zero value, used only as the
	// wall-clock fallback for identity expiration.
	Now time.Time
}

// resolveChainId determines the concrete chain a multi-chain request
// resolves against, enforcing spec §4.5's guard: the selection must
// appear in the request's declared chain_ids list, if one was declared.
func resolveChainId(req *Request, opts ResolveOptions) (chainid.ChainId, error) {
	if !req.IsMultiChain() {
		return req.GetChainId(), nil
	}
	if opts.SelectedChainId == nil {
		return chainid.ChainId{}, ErrBadChain
	}
	selected, err := chainid.From(opts.SelectedChainId)
	if err != nil {
		return chainid.ChainId{}, fmt.Errorf("%w: %v", ErrBadChain, err)
	}
	declared, err := req.GetChainIds()
	if err != nil {
		return chainid.ChainId{}, err
	}
	if declared == nil {
		return selected, nil
	}
	for _, id := range declared {
		if id == selected {
			return selected, nil
		}
	}
	return chainid.ChainId{}, ErrBadChain
}

// Resolve is the single entry point for turning a Request plus runtime
// context into a ResolvedRequest: it fetches ABIs, decodes and
// substitutes placeholders in every action (or builds the synthetic
// identity transaction), and fills TAPoS where needed (spec §4.5).
// Resolution is idempotent: resolving an already-concrete request (no
// placeholders, header already filled) returns it unchanged in
// substance, per spec §8 property 2.
func Resolve(ctx context.Context, req *Request, opts ResolveOptions) (*ResolvedRequest, error) {
	chosenChainId, err := resolveChainId(req, opts)
	if err != nil {
		return nil, err
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	if req.IsIdentity() {
		tx, exp, scope, err := resolveIdentity(req, opts.Signer, opts.TaposContext, now)
		if err != nil {
			return nil, err
		}
		return &ResolvedRequest{
			request:    req,
			Signer:     opts.Signer,
			ChainId:    chosenChainId,
			Transaction: tx,
			Expiration: exp,
			Scope:      scope,
		}, nil
	}

	var abis map[Name]ABI
	if opts.ActionCodec != nil {
		var err error
		abis, err = FetchAbis(ctx, opts.AbiProvider, req.GetRequiredAbis())
		if err != nil {
			return nil, err
		}
	}
	tx, decoded, err := ResolveTransaction(req, opts.Signer, opts.TaposContext, abis, opts.ActionCodec)
	if err != nil {
		return nil, err
	}
	return &ResolvedRequest{
		request:    req,
		Signer:     opts.Signer,
		ChainId:    chosenChainId,
		Transaction: tx,
		Actions:    decoded,
	}, nil
}
