package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrency(t *testing.T) {
	t.Run("IsValid returns true for supported currencies", func(t *testing.T) {
		assert.True(t, TRY.IsValid())
		assert.True(t, USD.IsValid())
		assert.True(t, EUR.IsValid())
	})

	t.Run("IsValid returns false for unsupported currencies", func(t *testing.T) {
		assert.False(t, Currency("GBP").IsValid())
		assert.False(t, Currency("").IsValid())
	})

	t.Run("IsBase is true only for the reporting currency", func(t *testing.T) {
		assert.True(t, TRY.IsBase())
		assert.False(t, USD.IsBase())
		assert.False(t, EUR.IsBase())
	})
}

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), USD)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
		assert.Equal(t, USD, m.Currency())
	})

	t.Run("rejects unsupported currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), Currency("XXX"))
		assert.Error(t, err)
	})

	t.Run("parses from string", func(t *testing.T) {
		m, err := NewMoneyFromString("1234.56", TRY)
		require.NoError(t, err)
		assert.Equal(t, "1234.56 TRY", m.String())
	})

	t.Run("rejects malformed string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", TRY)
		assert.Error(t, err)
	})
}

func TestMoneyArithmetic(t *testing.T) {
	t.Run("Add sums same-currency amounts", func(t *testing.T) {
		a := NewMoneyTRYFromFloat(100.50)
		b := NewMoneyTRYFromFloat(49.50)
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(150)))
	})

	t.Run("Add rejects currency mismatch", func(t *testing.T) {
		a := NewMoneyTRYFromFloat(100)
		b, _ := NewMoneyFromFloat(10, USD)
		_, err := a.Add(b)
		assert.Error(t, err)
	})

	t.Run("Sub subtracts same-currency amounts", func(t *testing.T) {
		a := NewMoneyTRYFromFloat(100)
		b := NewMoneyTRYFromFloat(40)
		diff, err := a.Sub(b)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(60)))
	})

	t.Run("Round2 rounds to cents", func(t *testing.T) {
		m := NewMoneyTRYFromFloat(10.005)
		assert.Equal(t, "10.01", m.Round2().Amount().String())
	})
}

func TestMoneyToBase(t *testing.T) {
	t.Run("converts foreign currency at the locked rate", func(t *testing.T) {
		m, _ := NewMoneyFromFloat(100, USD)
		base, err := m.ToBase(decimal.NewFromFloat(32.5))
		require.NoError(t, err)
		assert.Equal(t, BaseCurrency, base.Currency())
		assert.Equal(t, "3250", base.Amount().String())
	})

	t.Run("rounds the converted amount to two decimals", func(t *testing.T) {
		m, _ := NewMoneyFromFloat(10.33, EUR)
		base, err := m.ToBase(decimal.NewFromFloat(35.117))
		require.NoError(t, err)
		assert.Equal(t, "362.76", base.Amount().StringFixed(2))
	})

	t.Run("base currency requires rate of one", func(t *testing.T) {
		m := NewMoneyTRYFromFloat(100)
		_, err := m.ToBase(decimal.NewFromFloat(2))
		assert.Error(t, err)

		base, err := m.ToBase(decimal.NewFromInt(1))
		require.NoError(t, err)
		assert.True(t, base.Amount().Equal(decimal.NewFromInt(100)))
	})

	t.Run("rejects non-positive rates", func(t *testing.T) {
		m, _ := NewMoneyFromFloat(100, USD)
		_, err := m.ToBase(decimal.Zero)
		assert.Error(t, err)
		_, err = m.ToBase(decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestMoneyJSON(t *testing.T) {
	t.Run("round-trips through JSON", func(t *testing.T) {
		m, _ := NewMoneyFromString("99.90", EUR)
		data, err := json.Marshal(m)
		require.NoError(t, err)

		var decoded Money
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, m.Equal(decoded))
	})
}
