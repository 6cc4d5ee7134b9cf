package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Supported currencies.
const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyCOP = "COP"

	// DefaultCurrency is applied when a price is created without an explicit currency
	DefaultCurrency = CurrencyUSD
)

// Price amount bounds.
const (
	MinPriceAmount = 0
	MaxPriceAmount = 1_000_000
)

var supportedCurrencies = map[string]bool{
	CurrencyUSD: true,
	CurrencyEUR: true,
	CurrencyCOP: true,
}

// IsSupportedCurrency reports whether code is one of the currencies a Price
// can carry.
func IsSupportedCurrency(code string) bool {
	return supportedCurrencies[code]
}

// SupportedCurrencies returns the allowed currency codes.
func SupportedCurrencies() []string {
	return []string{CurrencyUSD, CurrencyEUR, CurrencyCOP}
}

var priceLocales = map[string]struct {
	tag    language.Tag
	symbol string
}{
	CurrencyUSD: {language.AmericanEnglish, "$"},
	CurrencyEUR: {language.EuropeanSpanish, "€"},
	CurrencyCOP: {language.MustParse("es-CO"), "$"},
}

// Price is an immutable monetary amount in a supported currency. Amounts are
// kept with two fractional digits; every operation returns a new Price and
// the zero value is never produced by the constructors.
type Price struct {
	amount   decimal.Decimal
	currency string
}

// NewPrice builds a Price from user-supplied values. An empty currency
// defaults to DefaultCurrency. The raw amount must lie within
// [MinPriceAmount, MaxPriceAmount] before rounding; it is then rounded
// half-up to two decimal places.
func NewPrice(amount float64, currency string) (Price, error) {
	return newPrice(amount, currency)
}

// PriceFromRecord rehydrates a Price from persisted primitives. It applies
// the same validation as NewPrice so corrupted rows cannot produce an
// invalid Price.
func PriceFromRecord(amount float64, currency string) (Price, error) {
	return newPrice(amount, currency)
}

func newPrice(amount float64, currency string) (Price, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Price{}, &ValidationError{Field: "amount", Message: "must be a finite number"}
	}
	if amount < MinPriceAmount {
		return Price{}, &ValidationError{Field: "amount", Message: "must not be negative"}
	}
	if amount > MaxPriceAmount {
		return Price{}, &ValidationError{Field: "amount", Message: fmt.Sprintf("must not exceed %d", MaxPriceAmount)}
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	if !supportedCurrencies[currency] {
		return Price{}, &ValidationError{Field: "currency", Message: fmt.Sprintf("unsupported currency %q", currency)}
	}
	// Round half-up on the cent boundary. Amounts are non-negative here, so
	// rounding half away from zero is the same thing.
	return Price{amount: decimal.NewFromFloat(amount).Round(2), currency: currency}, nil
}

// Amount returns the rounded amount as a float64.
func (p Price) Amount() float64 {
	f, _ := p.amount.Float64()
	return f
}

// Currency returns the ISO currency code.
func (p Price) Currency() string { return p.currency }

// Add sums two prices of the same currency.
func (p Price) Add(other Price) (Price, error) {
	if p.currency != other.currency {
		return Price{}, &ValidationError{
			Field:   "currency",
			Message: fmt.Sprintf("cannot add %s to %s", other.currency, p.currency),
		}
	}
	sum, _ := p.amount.Add(other.amount).Float64()
	return newPrice(sum, p.currency)
}

// Multiply scales the price by a positive integer factor.
func (p Price) Multiply(factor int) (Price, error) {
	if factor <= 0 {
		return Price{}, &ValidationError{Field: "factor", Message: "must be greater than zero"}
	}
	product, _ := p.amount.Mul(decimal.NewFromInt(int64(factor))).Float64()
	return newPrice(product, p.currency)
}

// ApplyDiscount returns the price reduced by a percentage in [0, 100].
func (p Price) ApplyDiscount(percentage float64) (Price, error) {
	if math.IsNaN(percentage) || percentage < 0 || percentage > 100 {
		return Price{}, &ValidationError{Field: "percentage", Message: "must be between 0 and 100"}
	}
	discounted, _ := p.amount.Mul(decimal.NewFromFloat(1 - percentage/100)).Float64()
	return newPrice(discounted, p.currency)
}

// CalculateTax returns the price with a non-negative tax rate applied,
// amount * (1 + rate/100).
func (p Price) CalculateTax(rate float64) (Price, error) {
	if math.IsNaN(rate) || rate < 0 {
		return Price{}, &ValidationError{Field: "rate", Message: "must not be negative"}
	}
	taxed, _ := p.amount.Mul(decimal.NewFromFloat(1 + rate/100)).Float64()
	return newPrice(taxed, p.currency)
}

// Equals reports whether both amount and currency match.
func (p Price) Equals(other Price) bool {
	return p.currency == other.currency && p.amount.Equal(other.amount)
}

// GreaterThan compares two prices of the same currency.
func (p Price) GreaterThan(other Price) (bool, error) {
	if p.currency != other.currency {
		return false, &ValidationError{
			Field:   "currency",
			Message: fmt.Sprintf("cannot compare %s to %s", p.currency, other.currency),
		}
	}
	return p.amount.GreaterThan(other.amount), nil
}

// LessThan compares two prices of the same currency.
func (p Price) LessThan(other Price) (bool, error) {
	if p.currency != other.currency {
		return false, &ValidationError{
			Field:   "currency",
			Message: fmt.Sprintf("cannot compare %s to %s", p.currency, other.currency),
		}
	}
	return p.amount.LessThan(other.amount), nil
}

// Format renders the price for display using the locale conventions of its
// currency, e.g. "$1,299.99" for USD and "€1.299,99" for EUR.
func (p Price) Format() string {
	loc := priceLocales[p.currency]
	formatted := message.NewPrinter(loc.tag).Sprint(number.Decimal(
		p.Amount(),
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
	return loc.symbol + formatted
}

// String renders the price for logs and errors, e.g. "1299.99 USD".
func (p Price) String() string {
	return p.amount.StringFixed(2) + " " + p.currency
}
