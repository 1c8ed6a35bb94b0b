package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfmotta/cargobot/core"
)

// backends runs the shared contract tests against both implementations.
func backends(t *testing.T) map[string]interface {
	core.CustomerStore
	core.RecruitingStore
	core.SupplierStore
} {
	t.Helper()

	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "cargobot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]interface {
		core.CustomerStore
		core.RecruitingStore
		core.SupplierStore
	}{
		"memory": NewInMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestGetOrCreateCustomerIdempotent(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first, err := s.GetOrCreateCustomer(ctx, "+5511999990000")
			require.NoError(t, err)
			second, err := s.GetOrCreateCustomer(ctx, "+5511999990000")
			require.NoError(t, err)
			assert.Equal(t, first, second)

			other, err := s.GetOrCreateCustomer(ctx, "+5511888880000")
			require.NoError(t, err)
			assert.NotEqual(t, first, other)
		})
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := s.GetOrCreateCustomer(ctx, "+5511999990000")
			require.NoError(t, err)

			require.NoError(t, s.AppendHistory(ctx, id, core.RoleUser, "oi"))
			require.NoError(t, s.AppendHistory(ctx, id, core.RoleAssistant, "olá!"))
			require.NoError(t, s.AppendHistory(ctx, id, core.RoleUser, "cadê meu pedido?"))

			entries, err := s.GetRecentHistory(ctx, id, 50)
			require.NoError(t, err)
			require.Len(t, entries, 3)
			assert.Equal(t, "oi", entries[0].Text)
			assert.Equal(t, core.RoleAssistant, entries[1].Role)
			assert.Equal(t, "cadê meu pedido?", entries[2].Text)

			entries, err = s.GetRecentHistory(ctx, id, 2)
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, "olá!", entries[0].Text)
			assert.Equal(t, "cadê meu pedido?", entries[1].Text)
		})
	}
}

func TestCustomerProfileBranch(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := s.GetOrCreateCustomer(ctx, "+5541999990000")
			require.NoError(t, err)

			profile, err := s.GetCustomerProfile(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, id, profile.ID)
			assert.Empty(t, profile.Branch)

			require.NoError(t, s.UpdateCustomerBranch(ctx, id, "Curitiba/PR"))
			profile, err = s.GetCustomerProfile(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "Curitiba/PR", profile.Branch)

			_, err = s.GetCustomerProfile(ctx, 9999)
			assert.ErrorIs(t, err, core.ErrNotFound)
			assert.ErrorIs(t, s.UpdateCustomerBranch(ctx, 9999, "x"), core.ErrNotFound)
		})
	}
}

func TestApplications(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			record := core.Application{Protocol: "RH123456", Name: "João", City: "Curitiba", Area: "Logística"}

			protocol, err := s.SaveApplication(ctx, record)
			require.NoError(t, err)
			assert.Equal(t, "RH123456", protocol)
		})
	}
}

func TestSuppliers(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := s.GetOrCreateCustomer(ctx, "+5511999990000")
			require.NoError(t, err)

			record := core.SupplierRecord{
				Protocol:    "FOR12345678",
				CompanyName: "ACME Ltda",
				TaxID:       "12345678000195",
				Category:    "Embalagens",
				Cities:      "São Paulo, Osasco",
				Contact:     "Maria - maria@acme.com",
			}
			saved, err := s.SaveSupplier(ctx, id, record)
			require.NoError(t, err)
			assert.Equal(t, record, saved)
		})
	}
}

func TestSQLiteSupplierLookup(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "cargobot.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	id, err := s.GetOrCreateCustomer(ctx, "+5511999990000")
	require.NoError(t, err)

	record := core.SupplierRecord{Protocol: "FOR00000001", CompanyName: "ACME"}
	_, err = s.SaveSupplier(ctx, id, record)
	require.NoError(t, err)

	got, err := s.GetSupplier(ctx, "FOR00000001")
	require.NoError(t, err)
	assert.Equal(t, "ACME", got.CompanyName)

	_, err = s.GetSupplier(ctx, "FOR99999999")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteOpenings(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "cargobot.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	_, err = s.AddOpening(ctx, core.Opening{Title: "Motorista", City: "Curitiba/PR", Requirements: "CNH E"})
	require.NoError(t, err)
	_, err = s.AddOpening(ctx, core.Opening{Title: "Auxiliar", City: "São Paulo/SP"})
	require.NoError(t, err)

	openings, err := s.ListOpenings(ctx)
	require.NoError(t, err)
	require.Len(t, openings, 2)
	assert.Equal(t, "Motorista", openings[0].Title)
	assert.Equal(t, "Auxiliar", openings[1].Title)
}
