package sigreqcfg_test

import (
	"os"
	"testing"

	"sigreq/sigreq/sigreqcfg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestInitCreatesFileWithDefault(t *testing.T) {
	chdirTemp(t)

	c := sigreqcfg.New(sigreqcfg.DefaultSettings)
	require.NoError(t, c.Init())
	assert.Equal(t, sigreqcfg.DefaultSettings, c.Get())

	b, err := os.ReadFile("data/config/Settings.json")
	require.NoError(t, err)
	assert.Contains(t, string(b), `"expire_seconds": 60`)
}

func TestInitLoadsExistingFile(t *testing.T) {
	chdirTemp(t)

	first := sigreqcfg.New(sigreqcfg.DefaultSettings)
	require.NoError(t, first.Init())
	require.NoError(t, first.Update(func(s *sigreqcfg.Settings) {
		s.ExpireSeconds = 120
		s.DefaultChainIdsHex = []string{"aca376f206b8fc25a6ed44dbdc66547c36c6c33e3a119ffbeaef943642f0e906"}
	}))

	second := sigreqcfg.New(sigreqcfg.DefaultSettings)
	require.NoError(t, second.Init())
	assert.Equal(t, uint32(120), second.Get().ExpireSeconds)
	assert.Equal(t, []string{"aca376f206b8fc25a6ed44dbdc66547c36c6c33e3a119ffbeaef943642f0e906"}, second.Get().DefaultChainIdsHex)

	ids := second.ChainIds()
	require.Len(t, ids, 1)
	assert.Equal(t, "aca376f206b8fc25a6ed44dbdc66547c36c6c33e3a119ffbeaef943642f0e906", ids[0].Hex())
}

func TestUpdateRejectsExpireSecondsTooLow(t *testing.T) {
	chdirTemp(t)

	c := sigreqcfg.New(sigreqcfg.DefaultSettings)
	require.NoError(t, c.Init())

	err := c.Update(func(s *sigreqcfg.Settings) { s.ExpireSeconds = 1 })
	assert.Error(t, err)
	assert.Equal(t, sigreqcfg.DefaultSettings, c.Get(), "a rejected update must not swap in the invalid value")
}

func TestUpdateRejectsMalformedChainId(t *testing.T) {
	chdirTemp(t)

	c := sigreqcfg.New(sigreqcfg.DefaultSettings)
	require.NoError(t, c.Init())

	err := c.Update(func(s *sigreqcfg.Settings) { s.DefaultChainIdsHex = []string{"not-hex"} })
	assert.Error(t, err)
}

func TestUpdatePersistsBeforeSwap(t *testing.T) {
	chdirTemp(t)

	c := sigreqcfg.New(sigreqcfg.Settings{ExpireSeconds: 60})
	require.NoError(t, c.Init())
	require.NoError(t, c.Update(func(s *sigreqcfg.Settings) { s.ExpireSeconds = 90 }))

	reloaded := sigreqcfg.New(sigreqcfg.Settings{ExpireSeconds: 60})
	require.NoError(t, reloaded.Init())
	assert.Equal(t, uint32(90), reloaded.Get().ExpireSeconds)
}
