package sigreq

import (
	"regexp"
	"strconv"
	"strings"

	"sigreq/sigreq/chainid"
)

// CallbackPayload is the set of values a callback URL's {{key}}
// placeholders are substituted from (spec §4.6).
type CallbackPayload struct {
	Signatures     []Signature
	TransactionId  string
	RefBlockNum    uint16
	RefBlockPrefix uint32
	Expiration     uint32
	ChainId        chainid.ChainId
	Signer         PermissionLevel
	BlockNum       *uint32
	RequestURI     string
}

var callbackPlaceholder = regexp.MustCompile(`\{\{([a-zA-Z0-9]+)\}\}`)

// applyCallbackTemplate substitutes every {{key}} occurrence in url per
// spec §4.6's table: sig for the first signature, sigN for the N-th of the
// signatures after the first (sig0 is the second signature), tx for the
// transaction id, rbn for ref_block_num, rid for ref_block_prefix, ex for
// expiration, req for the re-encoded request uri, sa/sp for the signer's
// actor and permission, cid for the chain id, and bn for the broadcast
// block number. A key with no value (an unknown key, a sigN past the last
// signature, or bn with no block number) becomes the empty string.
func applyCallbackTemplate(url string, p CallbackPayload) string {
	return callbackPlaceholder.ReplaceAllStringFunc(url, func(m string) string {
		key := m[2 : len(m)-2]
		switch {
		case key == "sig":
			if len(p.Signatures) > 0 {
				return p.Signatures[0].String()
			}
			return ""
		case strings.HasPrefix(key, "sig"):
			idx, err := strconv.Atoi(key[3:])
			if err != nil || idx < 0 || idx+1 >= len(p.Signatures) {
				return ""
			}
			return p.Signatures[idx+1].String()
		case key == "tx":
			return p.TransactionId
		case key == "rbn":
			return strconv.FormatUint(uint64(p.RefBlockNum), 10)
		case key == "rid":
			return strconv.FormatUint(uint64(p.RefBlockPrefix), 10)
		case key == "ex":
			return strconv.FormatUint(uint64(p.Expiration), 10)
		case key == "req":
			return p.RequestURI
		case key == "sa":
			return p.Signer.Actor.String()
		case key == "sp":
			return p.Signer.Permission.String()
		case key == "cid":
			return p.ChainId.Hex()
		case key == "bn":
			if p.BlockNum != nil {
				return strconv.FormatUint(uint64(*p.BlockNum), 10)
			}
			return ""
		default:
			return ""
		}
	})
}

// GetCallback renders this resolved request's callback URL, substituting
// signatures and resolution context into its {{key}} placeholders (spec
// §4.6). It returns ok=false when the request declared no callback.
// signatures must be non-empty; a callback always reports the result of
// signing, never an unsigned request.
func (r *ResolvedRequest) GetCallback(signatures []Signature, blockNum *uint32) (url string, background bool, ok bool, err error) {
	if r.request == nil || r.request.Callback() == "" {
		return "", false, false, nil
	}
	if len(signatures) == 0 {
		return "", false, false, ErrNeedSignature
	}

	reqURI, err := r.request.EncodeURI(FlateCompressor{}, false)
	if err != nil {
		return "", false, false, err
	}

	payload := CallbackPayload{
		Signatures:     signatures,
		TransactionId:  r.TransactionID(),
		RefBlockNum:    r.Transaction.RefBlockNum,
		RefBlockPrefix: r.Transaction.RefBlockPrefix,
		Expiration:     r.Transaction.Expiration,
		ChainId:        r.ChainId,
		Signer:         r.Signer,
		BlockNum:       blockNum,
		RequestURI:     reqURI,
	}
	if r.request.IsIdentity() {
		payload.Expiration = r.Expiration
	}

	return applyCallbackTemplate(r.request.Callback(), payload), r.request.IsBackground(), true, nil
}
