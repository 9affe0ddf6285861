package sigreq_test

import (
	"context"
	"testing"
	"time"

	"sigreq/sigreq"
	"sigreq/sigreq/chainid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCallbackSubstitutesPlaceholders(t *testing.T) {
	req, err := sigreq.CreateSync(sigreq.Descriptor{
		ChainId: chainid.EOS,
		Action: &sigreq.ActionInput{
			Account:       sigreq.ParseName("eosio.token"),
			Name:          sigreq.ParseName("transfer"),
			Authorization: []sigreq.PermissionLevel{{Actor: sigreq.ParseName("alice"), Permission: sigreq.ParseName("active")}},
			Data:          []byte{1, 2, 3},
		},
		Broadcast: true,
		Callback:  "https://example.com/cb?tx={{tx}}&sig={{sig}}&sa={{sa}}&sp={{sp}}&cid={{cid}}&rbn={{rbn}}&rid={{rid}}",
	})
	require.NoError(t, err)

	signer := sigreq.PermissionLevel{Actor: sigreq.ParseName("alice"), Permission: sigreq.ParseName("active")}
	ctx := sigreq.NewDirectTaposContext(time.Unix(1_700_000_000, 0), 100, 0xdeadbeef)
	resolved, err := sigreq.Resolve(context.Background(), req, sigreq.ResolveOptions{Signer: signer, TaposContext: ctx})
	require.NoError(t, err)

	sig := sigreq.Signature{Content: []byte{9, 9, 9}}
	url, background, ok, err := resolved.GetCallback([]sigreq.Signature{sig}, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, background)

	assert.Contains(t, url, resolved.TransactionID())
	assert.Contains(t, url, sig.String())
	assert.Contains(t, url, "sa=alice")
	assert.Contains(t, url, "sp=active")
	assert.Contains(t, url, "rbn=100")
	// rid is ref_block_prefix, decimal, the same value rbn's neighbor uses.
	assert.Contains(t, url, "rid=3735928559")

	eosId, err := chainid.FromAlias(chainid.EOS)
	require.NoError(t, err)
	assert.Contains(t, url, "cid="+eosId.Hex())
}

func TestGetCallbackRequiresSignature(t *testing.T) {
	req, err := sigreq.CreateSync(sigreq.Descriptor{
		ChainId:   chainid.EOS,
		Action:    &sigreq.ActionInput{Account: sigreq.ParseName("eosio.token"), Name: sigreq.ParseName("transfer")},
		Broadcast: true,
		Callback:  "https://example.com/cb?tx={{tx}}",
	})
	require.NoError(t, err)

	ctx := sigreq.NewDirectTaposContext(time.Unix(1_700_000_000, 0), 100, 0xdeadbeef)
	resolved, err := sigreq.Resolve(context.Background(), req, sigreq.ResolveOptions{TaposContext: ctx})
	require.NoError(t, err)

	_, _, _, err = resolved.GetCallback(nil, nil)
	assert.ErrorIs(t, err, sigreq.ErrNeedSignature)
}

func TestGetCallbackNoneDeclared(t *testing.T) {
	req, err := sigreq.CreateSync(sigreq.Descriptor{
		ChainId:   chainid.EOS,
		Action:    &sigreq.ActionInput{Account: sigreq.ParseName("eosio.token"), Name: sigreq.ParseName("transfer")},
		Broadcast: true,
	})
	require.NoError(t, err)

	ctx := sigreq.NewDirectTaposContext(time.Unix(1_700_000_000, 0), 100, 0xdeadbeef)
	resolved, err := sigreq.Resolve(context.Background(), req, sigreq.ResolveOptions{TaposContext: ctx})
	require.NoError(t, err)

	_, _, ok, err := resolved.GetCallback([]sigreq.Signature{{Content: []byte{1}}}, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
