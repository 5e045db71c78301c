package symbolRegistry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSupported_CaseInsensitive(t *testing.T) {
	r := New()

	for _, e := range r.Entries() {
		assert.True(t, r.IsSupported(e.Symbol), e.Symbol)
		assert.True(t, r.IsSupported(strings.ToLower(e.Symbol)), e.Symbol)
	}

	assert.False(t, r.IsSupported("NOTACOIN"))
	assert.False(t, r.IsSupported(""))
}

func TestSearch_EmptyQuery(t *testing.T) {
	r := New()

	assert.Empty(t, r.Search(""))
	assert.Empty(t, r.Search("   "))
}

func TestSearch_LimitAndMatch(t *testing.T) {
	r := New()

	for _, q := range []string{"a", "B", "coin", "eth", "TO", "x"} {
		res := r.Search(q)
		assert.LessOrEqual(t, len(res), 5, q)
		for _, e := range res {
			lq := strings.ToLower(q)
			matched := strings.Contains(strings.ToLower(e.Symbol), lq) || strings.Contains(strings.ToLower(e.Name), lq)
			assert.True(t, matched, "query %q returned %s", q, e.Symbol)
		}
	}
}

func TestSearch_TableOrder(t *testing.T) {
	r := NewWithEntries([]Entry{
		{Symbol: "AAA", Name: "First", OracleID: "aaa"},
		{Symbol: "BBB", Name: "Second", OracleID: "bbb"},
		{Symbol: "CCC", Name: "Third aaa", OracleID: "ccc"},
	})

	res := r.Search("aaa")
	require.Len(t, res, 2)
	assert.Equal(t, "AAA", res[0].Symbol)
	assert.Equal(t, "CCC", res[1].Symbol)
}

func TestSearch_ByName(t *testing.T) {
	r := New()

	res := r.Search("bitcoin")
	require.NotEmpty(t, res)
	assert.Equal(t, "BTC", res[0].Symbol)
}

func TestResolveOracleID(t *testing.T) {
	r := New()

	assert.Equal(t, "bitcoin", r.ResolveOracleID("BTC"))
	assert.Equal(t, "bitcoin", r.ResolveOracleID("btc"))
	assert.Equal(t, "avalanche-2", r.ResolveOracleID("AVAX"))
	// незарегистрированный символ отдается как есть в нижнем регистре
	assert.Equal(t, "notacoin", r.ResolveOracleID("NOTACOIN"))
}
