package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCoins(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "0c"},
		{"7", "7c"},
		{"99", "99c"},
		{"100", "1s00c"},
		{"9999", "99s99c"},
		{"10000", "1g00s00c"},
		{"12345678", "1,234g56s78c"},
		{"1000000000", "100,000g00s00c"},
		{"90071992547409930000", "9,007,199,254,740,993g00s00c"},
	}
	for _, tc := range cases {
		v, ok := new(big.Int).SetString(tc.in, 10)
		assert.True(t, ok)
		assert.Equal(t, tc.want, FormatCoins(v), "input %s", tc.in)
	}
}

func TestFormatCoinsMarkup(t *testing.T) {
	v := big.NewInt(12345678)
	got := FormatCoinsMarkup(v)
	assert.Equal(t,
		`<font color="#ffb033">1,234g</font>`+
			`<font color="#d7d7d7">56s</font>`+
			`<font color="#c87551">78c</font>`,
		got)

	// Copper-only amounts carry no gold or silver spans.
	assert.Equal(t, `<font color="#c87551">42c</font>`, FormatCoinsMarkup(big.NewInt(42)))
}

func TestDealKeyString(t *testing.T) {
	k := DealKey{PartyID: 17, ListingID: 912}
	assert.Equal(t, "17-912", k.String())
}

func TestContractTypeRecognized(t *testing.T) {
	assert.True(t, ContractNegotiationPending.Recognized())
	assert.True(t, ContractNegotiation.Recognized())
	assert.False(t, ContractType(0).Recognized())
	assert.False(t, ContractType(9).Recognized())
}
