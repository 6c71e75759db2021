package importer

// convert.go provides type coercion for raw CSV tokens.
//
// Two distinct fallback policies coexist on purpose:
//
//   - ParseIntToken / ParseDecimalToken return an invalid pgtype value on
//     malformed input, which maps to SQL NULL on load ("best effort, never
//     crash the batch").
//   - ShippingDays strips non-digit characters and falls back to 0 on a
//     failed parse, which is the filter input the product rules expect.
//
// Decimal tokens use invariant formatting: '.' as the decimal separator.

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// decimalRegex matches invariant-format decimal tokens.
var decimalRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// ParseIntToken converts a token to a nullable int.
// Malformed input yields Valid:false, never an error.
func ParseIntToken(s string) pgtype.Int4 {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Int4{}
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(n), Valid: true}
}

// ParseDecimalToken converts a token to a nullable decimal.
// Malformed input yields Valid:false, never an error.
func ParseDecimalToken(s string) pgtype.Numeric {
	s = strings.TrimSpace(s)
	if s == "" || !decimalRegex.MatchString(s) {
		return pgtype.Numeric{}
	}
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return pgtype.Numeric{}
	}
	return n
}

// ShippingDays extracts the numeric value from a shipping token by keeping
// digits only ("24 days" -> 24). An unparseable token yields 0.
func ShippingDays(s string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// CompareNumeric compares two valid numerics, returning -1, 0 or 1.
// Operands are scaled to a common exponent and compared as integers.
func CompareNumeric(a, b pgtype.Numeric) int {
	ai := new(big.Int).Set(a.Int)
	bi := new(big.Int).Set(b.Int)
	if diff := int(a.Exp) - int(b.Exp); diff > 0 {
		ai.Mul(ai, pow10(diff))
	} else if diff < 0 {
		bi.Mul(bi, pow10(-diff))
	}
	return ai.Cmp(bi)
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// NumericString renders a numeric as an invariant decimal string.
// Invalid values render as "".
func NumericString(n pgtype.Numeric) string {
	if !n.Valid || n.Int == nil {
		return ""
	}
	digits := new(big.Int).Abs(n.Int).String()
	exp := int(n.Exp)

	var out string
	switch {
	case exp >= 0:
		out = digits + strings.Repeat("0", exp)
	default:
		d := -exp
		if len(digits) <= d {
			digits = strings.Repeat("0", d-len(digits)+1) + digits
		}
		out = digits[:len(digits)-d] + "." + digits[len(digits)-d:]
	}

	if n.Int.Sign() < 0 {
		out = "-" + out
	}
	return out
}
