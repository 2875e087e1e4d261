package data

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ansel1/merry"
	"gopkg.in/yaml.v3"
)

const decimalScale = 2

// Decimal is a nullable fixed point number with two fractional digits,
// kept as an integer count of hundredths. The zero value is NULL.
type Decimal struct {
	hundredths int64
	valid      bool
}

func NewDecimal(hundredths int64) Decimal {
	return Decimal{hundredths: hundredths, valid: true}
}

// ParseDecimal parses "-12", "999.99", ".5". An empty string is NULL.
// More than two significant fractional digits is an error.
func ParseDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Decimal{}, nil
	}
	str := s
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return Decimal{}, merry.Errorf("invalid decimal %q", str)
	}
	fracPart = strings.TrimRight(fracPart, "0")
	if len(fracPart) > decimalScale {
		return Decimal{}, merry.Errorf("decimal %q has more than %d fractional digits", str, decimalScale)
	}
	fracPart += strings.Repeat("0", decimalScale-len(fracPart))
	if intPart == "" {
		intPart = "0"
	}
	n, err := strconv.ParseUint(intPart+fracPart, 10, 63)
	if err != nil {
		return Decimal{}, merry.Appendf(err, "invalid decimal %q", str)
	}
	x := int64(n)
	if neg {
		x = -x
	}
	return NewDecimal(x), nil
}

func MustParseDecimal(s string) Decimal {
	x, err := ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return x
}

func (x Decimal) Valid() bool { return x.valid }

func (x Decimal) Hundredths() int64 { return x.hundredths }

func (x Decimal) Float64() float64 { return float64(x.hundredths) / 100 }

// String formats a valid value with exactly two fractional digits and NULL as "".
func (x Decimal) String() string {
	if !x.valid {
		return ""
	}
	n := x.hundredths
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return fmt.Sprintf("%s%d.%02d", sign, n/100, n%100)
}

func (x Decimal) Value() (driver.Value, error) {
	if !x.valid {
		return nil, nil
	}
	return x.String(), nil
}

func (x *Decimal) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*x = Decimal{}
	case int64:
		*x = NewDecimal(v * 100)
	case float64:
		*x = NewDecimal(int64(math.Round(v * 100)))
	case []byte:
		return x.scanString(string(v))
	case string:
		return x.scanString(v)
	default:
		return merry.Errorf("can not scan %T into decimal", src)
	}
	return nil
}

func (x *Decimal) scanString(s string) error {
	v, err := ParseDecimal(s)
	if err != nil {
		return err
	}
	*x = v
	return nil
}

func (x Decimal) MarshalYAML() (interface{}, error) {
	if !x.valid {
		return nil, nil
	}
	return x.Float64(), nil
}

func (x *Decimal) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		*x = Decimal{}
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return merry.Errorf("line %d: decimal must be a scalar", value.Line)
	}
	v, err := ParseDecimal(value.Value)
	if err != nil {
		return merry.Prependf(err, "line %d", value.Line)
	}
	*x = v
	return nil
}
