package chainid_test

import (
	"testing"

	"sigreq/sigreq/chainid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliasTableRoundTrip(t *testing.T) {
	cases := []struct {
		alias chainid.Alias
		name  string
		hex   string
	}{
		{chainid.EOS, "EOS", "aca376f206b8fc25a6ed44dbdc66547c36c6c33e3a119ffbeaef943642f0e906"},
		{chainid.WAX, "WAX", "1064487b3cd1a897ce03ae5b6a865651747e2e152090f99c1d19d44e01aea5a4"},
		{chainid.FIO, "FIO", "21dcae42c0182200e93f954a074011f9048a7624c6fe81d3c9541a614a88bd1c"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			id, err := chainid.FromAlias(c.alias)
			require.NoError(t, err)
			assert.Equal(t, c.hex, id.Hex())
			assert.Equal(t, c.alias, id.Alias())
			assert.Equal(t, c.name, id.Name())

			variant := chainid.VariantOf(id)
			assert.True(t, variant.IsAlias)
			assert.Equal(t, c.alias, variant.Alias)
		})
	}
}

func TestUnknownAliasFails(t *testing.T) {
	_, err := chainid.FromAlias(99)
	assert.ErrorIs(t, err, chainid.ErrUnknownAlias)
}

func TestVariantOfUnknownChainUsesRawForm(t *testing.T) {
	id, err := chainid.FromBytes(make([]byte, 32))
	for i := range id {
		id[i] = byte(i)
	}
	require.NoError(t, err)

	variant := chainid.VariantOf(id)
	assert.False(t, variant.IsAlias)
	assert.Equal(t, id, variant.Raw)
}

func TestVariantOfZeroIdUsesCompactUnknownAlias(t *testing.T) {
	variant := chainid.VariantOf(chainid.ChainId{})
	assert.True(t, variant.IsAlias)
	assert.Equal(t, chainid.UNKNOWN, variant.Alias)

	back, err := variant.ChainId()
	require.NoError(t, err)
	assert.True(t, back.IsZero())
}

func TestFromAcceptsManyForms(t *testing.T) {
	want, err := chainid.FromAlias(chainid.EOS)
	require.NoError(t, err)

	fromAlias, err := chainid.From(chainid.EOS)
	require.NoError(t, err)
	assert.Equal(t, want, fromAlias)

	fromHex, err := chainid.From(want.Hex())
	require.NoError(t, err)
	assert.Equal(t, want, fromHex)

	fromBytes, err := chainid.From(want.Bytes())
	require.NoError(t, err)
	assert.Equal(t, want, fromBytes)

	fromSelf, err := chainid.From(want)
	require.NoError(t, err)
	assert.Equal(t, want, fromSelf)
}

func TestMultibaseRoundTrip(t *testing.T) {
	want, err := chainid.FromAlias(chainid.WAX)
	require.NoError(t, err)

	mb, err := want.Multibase()
	require.NoError(t, err)
	assert.NotEqual(t, want.Hex(), mb)

	got, err := chainid.FromMultibase(mb)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFromMultibaseRejectsBadString(t *testing.T) {
	_, err := chainid.FromMultibase("not a multibase string")
	assert.Error(t, err)
}
