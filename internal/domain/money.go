package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// DefaultCurrency is adopted by carts that have no items yet.
const DefaultCurrency = "USD"

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Money is an exact, non-negative count of minor currency units (cents for
// USD) with an uppercase ISO currency code. Price math never touches
// floating point; on the wire the amount travels as a decimal string.
type Money struct {
	Amount   int64
	Currency string
}

// NewMoney validates and builds a Money value.
func NewMoney(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, fmt.Errorf("negative amount %d", amount)
	}
	if !ValidCurrency(currency) {
		return Money{}, fmt.Errorf("invalid currency %q", currency)
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// ValidCurrency reports whether code is a well-formed uppercase 3-letter
// currency code.
func ValidCurrency(code string) bool {
	return currencyPattern.MatchString(code)
}

// ParseAmount reads an integer minor-unit amount from its decimal string
// wire form.
func ParseAmount(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative amount %q", s)
	}
	return v, nil
}

// Add returns the exact sum of two amounts in the same currency.
func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	sum := m.Amount + o.Amount
	if sum < 0 {
		// Both operands are non-negative, so a negative sum is overflow.
		panic(fmt.Sprintf("money overflow: %d + %d", m.Amount, o.Amount))
	}
	return Money{Amount: sum, Currency: m.Currency}, nil
}

// Multiply scales the amount by an integer quantity. A negative quantity
// or an overflowing product is a programming error, not a recoverable
// condition.
func (m Money) Multiply(qty int) Money {
	if qty < 0 {
		panic(fmt.Sprintf("negative quantity %d", qty))
	}
	prod := m.Amount * int64(qty)
	if m.Amount != 0 && (prod/m.Amount != int64(qty) || prod < 0) {
		panic(fmt.Sprintf("money overflow: %d * %d", m.Amount, qty))
	}
	return Money{Amount: prod, Currency: m.Currency}
}

// SumMoney adds a list of amounts, failing on any currency mismatch. An
// empty list sums to zero in the default currency.
func SumMoney(values []Money) (Money, error) {
	if len(values) == 0 {
		return Money{Amount: 0, Currency: DefaultCurrency}, nil
	}
	total := values[0]
	for _, v := range values[1:] {
		next, err := total.Add(v)
		if err != nil {
			return Money{}, err
		}
		total = next
	}
	return total, nil
}

// Display renders the amount with two fraction digits, e.g. "49.99 USD".
// Locale-aware formatting is a presentation concern left to callers.
func (m Money) Display() string {
	return fmt.Sprintf("%d.%02d %s", m.Amount/100, m.Amount%100, m.Currency)
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:   strconv.FormatInt(m.Amount, 10),
		Currency: m.Currency,
	})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amount, err := ParseAmount(raw.Amount)
	if err != nil {
		return err
	}
	if !ValidCurrency(raw.Currency) {
		return fmt.Errorf("invalid currency %q", raw.Currency)
	}
	m.Amount = amount
	m.Currency = raw.Currency
	return nil
}
