package currency

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

// exponents holds the decimal places per ISO currency code. Anything not
// listed uses the default of 2.
var exponents = map[string]int{
	"JPY": 0, "KRW": 0, "VND": 0, "XOF": 0, "XAF": 0, "XPF": 0, "CLP": 0,
	"MGA": 1,
	"BHD": 3, "JOD": 3, "KWD": 3, "OMR": 3, "TND": 3, "IQD": 3,
}

const defaultExponent = 2

var amountPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

func Exponent(code string) int {
	if exp, ok := exponents[strings.ToUpper(code)]; ok {
		return exp
	}
	return defaultExponent
}

// ToMinorUnits converts a decimal-string amount into the currency's integer
// minor units. Fractional digits beyond the currency exponent are rejected.
func ToMinorUnits(amount, code string) (int64, error) {
	if !amountPattern.MatchString(amount) {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidAmountFormat, amount)
	}

	exp := Exponent(code)
	whole, frac := amount, ""
	if i := strings.IndexByte(amount, '.'); i >= 0 {
		whole, frac = amount[:i], amount[i+1:]
	}
	if len(frac) > exp {
		// Trailing zeros beyond the exponent are harmless; real sub-minor
		// precision is not representable.
		extra := frac[exp:]
		if strings.Trim(extra, "0") != "" {
			return 0, fmt.Errorf("%w: %q has more than %d fractional digits for %s",
				domain.ErrInvalidAmountFormat, amount, exp, code)
		}
		frac = frac[:exp]
	}
	frac += strings.Repeat("0", exp-len(frac))

	minor, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidAmountFormat, amount)
	}
	return minor, nil
}

// FromMinorUnits renders minor units back into a decimal string with exactly
// the currency's exponent of fractional digits.
func FromMinorUnits(minor int64, code string) string {
	exp := Exponent(code)
	if exp == 0 {
		return strconv.FormatInt(minor, 10)
	}

	s := strconv.FormatInt(minor, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if len(s) <= exp {
		s = strings.Repeat("0", exp-len(s)+1) + s
	}
	out := s[:len(s)-exp] + "." + s[len(s)-exp:]
	if neg {
		out = "-" + out
	}
	return out
}

// Equal reports whether two amounts denote the same value in the same
// currency. It is the only sanctioned amount comparison: integer minor units,
// never floats.
func Equal(amountA, currencyA, amountB, currencyB string) (bool, error) {
	if !strings.EqualFold(currencyA, currencyB) {
		return false, nil
	}
	a, err := ToMinorUnits(amountA, currencyA)
	if err != nil {
		return false, err
	}
	b, err := ToMinorUnits(amountB, currencyB)
	if err != nil {
		return false, err
	}
	return a == b, nil
}
