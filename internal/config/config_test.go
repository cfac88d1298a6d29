package config

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load("../../config/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, StoreMutex, cfg.Store.Kind)
	assert.Equal(t, SeedFromConfig, cfg.Seed.Source)
	assert.Equal(t, []SeedAccount{{ID: "1", Balance: "15.000"}, {ID: "2", Balance: "20.000"}}, cfg.Seed.Accounts)
	assert.Equal(t, 5*time.Minute, cfg.MySQL.ConnMaxLifetime)
	assert.Equal(t, "accounts.notifications", cfg.Notifier.NATS.Subject)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, ":50051", cfg.GRPC.Addr)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Equal(t, StoreMutex, cfg.Store.Kind)
	assert.Equal(t, 1000, cfg.Store.QueueSize)
	assert.Equal(t, SeedFromConfig, cfg.Seed.Source)
	assert.Equal(t, NotifierLog, cfg.Notifier.Kind)
	assert.Equal(t, 1024, cfg.Notifier.QueueSize)
	assert.Equal(t, 4, cfg.Notifier.Workers)
	assert.Equal(t, "accounts.notifications", cfg.Notifier.NATS.Subject)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Tracing.Endpoint)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown store", "store: {kind: lmax}"},
		{"unknown notifier", "notifier: {kind: email}"},
		{"unknown seed source", "seed: {source: redis}"},
		{"malformed balance", `seed: {accounts: [{id: "1", balance: "abc"}]}`},
		{"negative balance", `seed: {accounts: [{id: "1", balance: "-1"}]}`},
		{"unbounded scale", `seed: {accounts: [{id: "1", balance: "1e-2000000"}]}`},
		{"too large balance", `seed: {accounts: [{id: "1", balance: "1e21"}]}`},
		{"empty id", `seed: {accounts: [{id: "", balance: "1"}]}`},
		{"duplicated id", `seed: {accounts: [{id: "1", balance: "1"}, {id: "1", balance: "2"}]}`},
		{"mysql without host", "seed: {source: mysql}"},
		{"not yaml", "store: [kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_MySQLSeedFillsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("seed: {source: mysql}\nmysql: {host: db, db_name: ledger}"))
	require.NoError(t, err)

	assert.Equal(t, 3306, cfg.MySQL.Port)
	assert.Equal(t, 10, cfg.MySQL.MaxRetries)
}

func TestSeedLoader(t *testing.T) {
	loader := NewSeedLoader(SeedConfig{Accounts: []SeedAccount{
		{ID: "1", Balance: "15.000"},
		{ID: "2", Balance: "0"},
	}})

	accounts, err := loader.LoadAllAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "1", accounts[0].ID)
	assert.True(t, decimal.RequireFromString("15").Equal(accounts[0].Balance))
	assert.Equal(t, "15.000", accounts[0].Balance.StringFixed(3))
	assert.True(t, accounts[1].Balance.IsZero())

	_, err = NewSeedLoader(SeedConfig{Accounts: []SeedAccount{{ID: "x", Balance: "n/a"}}}).
		LoadAllAccounts(context.Background())
	assert.Error(t, err)
}
