// ======================================
// File: internal/config/config_test.go
// ======================================
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `{"owner": "admin"}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "admin", cfg.Owner)
	assert.Equal(t, "treasury", cfg.Treasury)
	assert.Equal(t, uint64(DefaultVirtualBase), cfg.VirtualBase)
	assert.Equal(t, uint64(DefaultVirtualTokens), cfg.VirtualTokens)
	assert.Equal(t, uint64(DefaultBondingSupply), cfg.BondingSupply)
	assert.Equal(t, uint64(DefaultGraduationTarget), cfg.GraduationTarget)
	assert.Equal(t, uint64(DefaultBuyFeeBps), cfg.BuyFeeBps)
	assert.Equal(t, uint64(DefaultCreationFee), cfg.CreationFee)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `{
		"owner": "admin",
		"treasury": "vault",
		"buy_fee_bps": 250,
		"graduation_target": 75000000,
		"database_path": "state.db",
		"workers": 8
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "vault", cfg.Treasury)
	assert.Equal(t, uint64(250), cfg.BuyFeeBps)
	assert.Equal(t, uint64(75_000_000), cfg.GraduationTarget)
	assert.Equal(t, "state.db", cfg.DatabasePath)
	assert.Equal(t, 8, cfg.Workers)
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing owner", `{}`},
		{"fee above cap", `{"owner": "a", "buy_fee_bps": 501}`},
		{"allocation overflow", `{"owner": "a", "burn_bps": 5000, "liquidity_bps": 5000, "creator_bps": 1}`},
		{"zero virtual base", `{"owner": "a", "virtual_base": 0}`},
		{"bonding supply above virtual tokens", `{"owner": "a", "bonding_supply": 250000000}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
