package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfmotta/cargobot/core"
)

func testBranches() []core.Branch {
	return []core.Branch{
		{
			Name:        "São Paulo",
			UF:          "SP",
			City:        "São Paulo",
			Cities:      []string{"Guarulhos", "Osasco", "Barueri"},
			CEPPrefixes: []string{"010", "011", "013", "060", "070"},
			Phones:      []string{"(11) 4000-0000"},
			Email:       "sp@cargobot.com.br",
		},
		{
			Name:        "Curitiba",
			UF:          "PR",
			City:        "Curitiba",
			Cities:      []string{"São José dos Pinhais", "Colombo"},
			CEPPrefixes: []string{"800", "810", "830"},
			Phones:      []string{"(41) 3000-0000"},
			Email:       "ctba@cargobot.com.br",
		},
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "sao paulo sp", Normalize("São Paulo / SP"))
	assert.Equal(t, "sao jose dos pinhais", Normalize("São José dos Pinhais"))
	assert.Equal(t, "", Normalize("  ...  "))
}

func TestByPostalCode(t *testing.T) {
	r := NewResolver(testBranches())

	b := r.ByPostalCode("01310-100")
	require.NotNil(t, b)
	assert.Equal(t, "São Paulo", b.Name)

	b = r.ByPostalCode("83010000")
	require.NotNil(t, b)
	assert.Equal(t, "Curitiba", b.Name)

	assert.Nil(t, r.ByPostalCode("99999-000"))
	assert.Nil(t, r.ByPostalCode("1"))
	assert.Nil(t, r.ByPostalCode("abc"))
}

func TestByCityText(t *testing.T) {
	r := NewResolver(testBranches())

	tests := []struct {
		text string
		want string
	}{
		{"São Paulo", "São Paulo"},
		{"sao paulo", "São Paulo"},
		{"Guarulhos - SP", "São Paulo"},
		{"moro em são josé dos pinhais", "Curitiba"},
		{"Colombo/PR", "Curitiba"},
	}
	for _, tt := range tests {
		b := r.ByCityText(tt.text)
		require.NotNil(t, b, "text %q", tt.text)
		assert.Equal(t, tt.want, b.Name)
	}

	assert.Nil(t, r.ByCityText("Manaus"))
	assert.Nil(t, r.ByCityText(""))
}

func TestByName(t *testing.T) {
	r := NewResolver(testBranches())

	b := r.ByName("São Paulo")
	require.NotNil(t, b)
	assert.Equal(t, "SP", b.UF)

	b = r.ByName("sao paulo")
	require.NotNil(t, b)
	assert.Equal(t, "São Paulo", b.Name)

	assert.Nil(t, r.ByName("Manaus"))
	assert.Nil(t, r.ByName(""))
}

func TestExtractPostalCode(t *testing.T) {
	assert.Equal(t, "80010-100", ExtractPostalCode("meu cep é 80010-100, pode verificar?"))
	assert.Equal(t, "01310100", ExtractPostalCode("endereço 01310100 centro"))
	assert.Equal(t, "", ExtractPostalCode("preciso de uma cotação"))
	assert.Equal(t, "", ExtractPostalCode("nota fiscal 1234"))
}

func TestResolvePrefersPostalCode(t *testing.T) {
	r := NewResolver(testBranches())

	b := r.Resolve("Curitiba", "01310-100")
	require.NotNil(t, b)
	assert.Equal(t, "São Paulo", b.Name)

	b = r.Resolve("Curitiba", "99999-000")
	require.NotNil(t, b)
	assert.Equal(t, "Curitiba", b.Name)
}

func TestTransferMessage(t *testing.T) {
	branches := testBranches()

	msg := TransferMessage(TransferQuote, &branches[0])
	assert.Contains(t, msg, "São Paulo/SP")
	assert.Contains(t, msg, "(11) 4000-0000")
	assert.Contains(t, msg, "sp@cargobot.com.br")

	msg = TransferMessage(TransferPickup, nil)
	assert.Contains(t, msg, "COLETA")
	assert.Contains(t, msg, fallbackPhone)

	msg = TransferMessage(TransferAttendant, &branches[1])
	assert.Contains(t, msg, "ATENDENTE")
	assert.Contains(t, msg, "Curitiba/PR")
}
