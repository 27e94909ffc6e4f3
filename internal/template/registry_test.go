package template

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrejuh/upiwatch/internal/model"
	"github.com/hrejuh/upiwatch/internal/service"
)

func TestNewRegistry_OrdersByPriority(t *testing.T) {
	registry, err := NewRegistry([]model.BankTemplate{
		{BankName: "Low", EmailDomainFilter: "*", AmountPattern: `(\d+)`, Priority: 10},
		{BankName: "High", EmailDomainFilter: "*", AmountPattern: `(\d+)`, Priority: 100},
		{BankName: "Mid", EmailDomainFilter: "*", AmountPattern: `(\d+)`, Priority: 50},
	})
	require.NoError(t, err)

	templates := registry.Templates()
	require.Len(t, templates, 3)
	assert.Equal(t, "High", templates[0].BankName)
	assert.Equal(t, "Mid", templates[1].BankName)
	assert.Equal(t, "Low", templates[2].BankName)
}

func TestNewRegistry_StableForEqualPriority(t *testing.T) {
	registry, err := NewRegistry([]model.BankTemplate{
		{BankName: "First", EmailDomainFilter: "*", AmountPattern: `(\d+)`, Priority: 50},
		{BankName: "Second", EmailDomainFilter: "*", AmountPattern: `(\d+)`, Priority: 50},
		{BankName: "Third", EmailDomainFilter: "*", AmountPattern: `(\d+)`, Priority: 50},
	})
	require.NoError(t, err)

	templates := registry.Templates()
	assert.Equal(t, "First", templates[0].BankName)
	assert.Equal(t, "Second", templates[1].BankName)
	assert.Equal(t, "Third", templates[2].BankName)
}

func TestNewRegistry_RejectsMalformedTemplates(t *testing.T) {
	tests := []struct {
		name     string
		template model.BankTemplate
	}{
		{
			name:     "missing bank name",
			template: model.BankTemplate{EmailDomainFilter: "*", AmountPattern: `(\d+)`},
		},
		{
			name:     "missing domain filter",
			template: model.BankTemplate{BankName: "X", AmountPattern: `(\d+)`},
		},
		{
			name:     "missing amount pattern",
			template: model.BankTemplate{BankName: "X", EmailDomainFilter: "*"},
		},
		{
			name:     "invalid amount pattern",
			template: model.BankTemplate{BankName: "X", EmailDomainFilter: "*", AmountPattern: `([`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry([]model.BankTemplate{tt.template})
			assert.Error(t, err)
		})
	}
}

// stubStore only answers GetBankTemplates; Load touches nothing else.
type stubStore struct {
	service.Storage
	templates []model.BankTemplate
	err       error
}

func (s *stubStore) GetBankTemplates(context.Context) ([]model.BankTemplate, error) {
	return s.templates, s.err
}

func TestLoad_UsesPersistedTemplates(t *testing.T) {
	store := &stubStore{templates: []model.BankTemplate{
		{BankName: "Custom", EmailDomainFilter: "custom.bank", AmountPattern: `(\d+)`, Priority: 42},
	}}

	registry, err := Load(context.Background(), store)
	require.NoError(t, err)
	require.Equal(t, 1, registry.Len())
	assert.Equal(t, "Custom", registry.Templates()[0].BankName)
}

func TestLoad_FallsBackToDefaults(t *testing.T) {
	registry, err := Load(context.Background(), &stubStore{})
	require.NoError(t, err)
	assert.Equal(t, len(Defaults()), registry.Len())
}

func TestLoad_PropagatesStorageError(t *testing.T) {
	storeErr := errors.New("db locked")
	_, err := Load(context.Background(), &stubStore{err: storeErr})
	assert.ErrorIs(t, err, storeErr)
}

func TestDefaults_AreValid(t *testing.T) {
	registry, err := NewRegistry(Defaults())
	require.NoError(t, err)
	assert.Greater(t, registry.Len(), 0)

	// The generic fallback must sort last
	templates := registry.Templates()
	assert.Equal(t, "Generic UPI", templates[len(templates)-1].BankName)
	assert.Equal(t, model.WildcardDomain, templates[len(templates)-1].EmailDomainFilter)
}
