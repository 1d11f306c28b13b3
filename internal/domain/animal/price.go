package animal

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var priceInput = regexp.MustCompile(`^[0-9]+([.,][0-9]{0,2})?$`)

const maxPriceUnits = (math.MaxInt64 - 99) / 100

// ParsePriceCents converts user input such as "1200", "1200,5" or "1200.50"
// into cents. Empty input means no price.
func ParsePriceCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if !priceInput.MatchString(s) {
		return 0, fmt.Errorf("price must be digits with up to two decimal places")
	}
	whole, frac, _ := strings.Cut(strings.ReplaceAll(s, ",", "."), ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > maxPriceUnits {
		return 0, fmt.Errorf("price out of range")
	}
	for len(frac) < 2 {
		frac += "0"
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)
	return units*100 + cents, nil
}

// FormatPriceCents renders cents with a dot separator.
func FormatPriceCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
