package sigreq

import "errors"

// Error kinds from spec §7. Each is a sentinel; callers should use
// errors.Is against these, since the wrapping context (fmt.Errorf "%w")
// may add detail.
var (
	ErrInvalidScheme      = errors.New("sigreq: invalid scheme")
	ErrInvalidUri         = errors.New("sigreq: invalid uri")
	ErrUnsupportedVersion = errors.New("sigreq: unsupported protocol version")
	ErrMissingCompressor  = errors.New("sigreq: compressed frame but no compressor configured")
	ErrInvalidDescriptor  = errors.New("sigreq: descriptor must set exactly one of action, actions, transaction, identity")
	ErrMissingAbiProvider = errors.New("sigreq: action data is not raw bytes and no abi provider was configured")
	ErrMissingAbi         = errors.New("sigreq: no abi supplied for a required account")
	ErrUnknownAction      = errors.New("sigreq: action name absent from its abi")
	ErrMissingTaPoS       = errors.New("sigreq: resolution context cannot fill the null transaction header")
	ErrBadChain           = errors.New("sigreq: no chain chosen, or chosen chain not among declared chain_ids")
	ErrIdentityBroadcast  = errors.New("sigreq: identity requests must not set the broadcast flag")
	ErrNeedSignature      = errors.New("sigreq: callback requires at least one signature")
	ErrBadProof           = errors.New("sigreq: malformed identity proof string")
)
