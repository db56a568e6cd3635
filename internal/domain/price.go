package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Price is a fixed-point monetary amount stored as cents.
// The valid range mirrors a 5-digit, 2-decimal column: 0.00 to 999.99.
type Price int64

// MaxPrice is the largest representable price, in cents.
const MaxPrice Price = 99999

// ParsePrice parses a decimal string like "12.50" or "7" into a Price.
// At most two decimal places are accepted.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("price cannot be empty")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("price cannot be negative")
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	// Bound the units before converting to cents so huge inputs cannot
	// wrap around int64 and slip past the range check below.
	if units > int64(MaxPrice)/100 {
		return 0, fmt.Errorf("price %q exceeds maximum of %s", s, MaxPrice)
	}

	var cents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("price %q must have at most two decimal places", s)
		}
		// "5" after the point means 50 cents.
		frac += strings.Repeat("0", 2-len(frac))
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid price %q", s)
		}
	}

	p := Price(units*100 + cents)
	if p > MaxPrice {
		return 0, fmt.Errorf("price %q exceeds maximum of %s", s, MaxPrice)
	}
	return p, nil
}

// String formats the price with two decimal places, e.g. "12.50".
func (p Price) String() string {
	return fmt.Sprintf("%d.%02d", p/100, p%100)
}

// MarshalJSON encodes the price as a decimal string.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

// UnmarshalJSON accepts a quoted decimal string.
func (p *Price) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("price must be a string: %w", err)
	}
	parsed, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
