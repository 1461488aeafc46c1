package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	TRY Currency = "TRY" // Turkish Lira (base/reporting currency)
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
)

// BaseCurrency is the reporting currency all amounts are normalized to.
const BaseCurrency = TRY

// IsValid checks if the currency is one of the supported codes
func (c Currency) IsValid() bool {
	switch c {
	case TRY, USD, EUR:
		return true
	}
	return false
}

// IsBase reports whether the currency is the reporting currency
func (c Currency) IsBase() bool {
	return c == BaseCurrency
}

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// AllCurrencies returns all supported currency codes
func AllCurrencies() []Currency {
	return []Currency{TRY, USD, EUR}
}

// Money is a value object representing monetary amounts
// It is immutable - all operations return new Money instances
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if !currency.IsValid() {
		return Money{}, fmt.Errorf("unsupported currency: %q", currency)
	}
	return Money{
		amount:   amount,
		currency: currency,
	}, nil
}

// NewMoneyFromFloat creates Money from a float64 value
func NewMoneyFromFloat(amount float64, currency Currency) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// NewMoneyFromString creates Money from a string representation
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// NewMoneyTRY creates Money in the base currency
func NewMoneyTRY(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: TRY}
}

// NewMoneyTRYFromFloat creates Money in the base currency from float64
func NewMoneyTRYFromFloat(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount), currency: TRY}
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// ZeroTRY returns a zero-value Money in the base currency
func ZeroTRY() Money {
	return Zero(TRY)
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero checks if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive checks if the amount is greater than zero
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative checks if the amount is less than zero
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Equal checks if two Money values are equal (same amount and currency)
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Add returns a new Money with the sum of both amounts.
// Both operands must share the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add %s to %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub returns a new Money with the difference of both amounts.
// Both operands must share the same currency.
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract %s from %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Round2 returns the amount rounded to two decimal places, the precision all
// persisted ledger amounts carry.
func (m Money) Round2() Money {
	return Money{amount: m.amount.Round(2), currency: m.currency}
}

// ToBase converts the amount to the base currency using the given exchange
// rate, rounded to two decimal places. The rate must be positive; base
// currency amounts must carry a rate of exactly 1.
func (m Money) ToBase(rate decimal.Decimal) (Money, error) {
	if !rate.IsPositive() {
		return Money{}, errors.New("exchange rate must be positive")
	}
	if m.currency.IsBase() && !rate.Equal(decimal.NewFromInt(1)) {
		return Money{}, errors.New("base currency amounts must use exchange rate 1")
	}
	return Money{amount: m.amount.Mul(rate).Round(2), currency: BaseCurrency}, nil
}

// String returns a human-readable representation
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

// moneyJSON is the wire representation of Money
type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:   m.amount.String(),
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Money) UnmarshalJSON(data []byte) error {
	var wire moneyJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	parsed, err := NewMoneyFromString(wire.Amount, wire.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer for database storage (amount only)
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan implements sql.Scanner; the stored value carries the base currency
func (m *Money) Scan(value any) error {
	if value == nil {
		*m = ZeroTRY()
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("failed to scan money amount: %w", err)
	}
	*m = Money{amount: d, currency: BaseCurrency}
	return nil
}
