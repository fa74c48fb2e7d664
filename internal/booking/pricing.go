package booking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Cents is a monetary amount in hundredths of a currency-agnostic unit.
// Prices are kept in integer cents end to end so financial amounts never
// touch floating point.  On the wire a Cents value is a 2-decimal string.
type Cents int64

// ErrBadPrice is returned when a decimal price string cannot be parsed.
var ErrBadPrice = errors.New("invalid price, expected a decimal with at most 2 fraction digits")

// ParseCents parses a decimal string such as "1500", "1500.5" or "1500.50"
// into cents.  More than two fraction digits are rejected rather than
// rounded; prices are stated exactly or not at all.
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" && frac == "" {
		return 0, ErrBadPrice
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, ErrBadPrice
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrBadPrice
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ErrBadPrice
	}
	c := w*100 + f
	if neg {
		c = -c
	}
	return Cents(c), nil
}

// String renders the amount as a plain decimal with two fraction digits.
func (c Cents) String() string {
	v := int64(c)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON emits the decimal form as a JSON string, mirroring how the
// rate and total_price fields are presented to clients.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// ComputePrice derives the total cost of the interval [start, end) at the
// given hourly rate: rate * minutes / 60 in exact integer arithmetic, with
// the remainder rounded half-up.  The function is pure; the result is
// stored on the booking at creation and never recomputed.
func ComputePrice(hourlyRate Cents, start, end TimeOfDay) Cents {
	minutes := int64(end) - int64(start)
	if minutes <= 0 {
		return 0
	}
	return Cents((int64(hourlyRate)*minutes + 30) / 60)
}
