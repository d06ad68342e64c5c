// Package cards holds the pure card-field checks used before a checkout is
// allowed to reach the payment gateway. Every function is total: bad input
// yields false or NetworkUnknown, never an error.
package cards

import (
	"strings"
	"time"
)

type Network string

const (
	NetworkVisa       Network = "visa"
	NetworkMastercard Network = "mastercard"
	NetworkAmex       Network = "amex"
	NetworkDiscover   Network = "discover"
	NetworkJCB        Network = "jcb"
	NetworkUnknown    Network = "unknown"
)

// stripSpaces removes spaces only; anything else that is not a digit makes
// the number invalid.
func stripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// LuhnValid reports whether number passes the mod-10 checksum. The input
// must be 13-19 ASCII digits after stripping spaces.
func LuhnValid(number string) bool {
	digits := stripSpaces(number)
	if len(digits) < 13 || len(digits) > 19 || !allDigits(digits) {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// Detect returns the card network from the IIN prefix.
func Detect(number string) Network {
	digits := stripSpaces(number)
	if !allDigits(digits) {
		return NetworkUnknown
	}

	switch {
	case strings.HasPrefix(digits, "4"):
		return NetworkVisa
	case len(digits) >= 2 && digits[0] == '5' && digits[1] >= '1' && digits[1] <= '5':
		return NetworkMastercard
	case strings.HasPrefix(digits, "34"), strings.HasPrefix(digits, "37"):
		return NetworkAmex
	case strings.HasPrefix(digits, "6011"), strings.HasPrefix(digits, "65"):
		return NetworkDiscover
	case strings.HasPrefix(digits, "35"):
		return NetworkJCB
	default:
		return NetworkUnknown
	}
}

// FormatGrouped strips non-digits and regroups the number into blocks of 4
// for display, capped at 19 characters.
func FormatGrouped(input string) string {
	var digits strings.Builder
	for i := 0; i < len(input); i++ {
		if input[i] >= '0' && input[i] <= '9' {
			digits.WriteByte(input[i])
		}
	}

	s := digits.String()
	var out strings.Builder
	for i, c := range s {
		if i > 0 && i%4 == 0 {
			out.WriteByte(' ')
		}
		out.WriteRune(c)
	}

	grouped := out.String()
	if len(grouped) > 19 {
		grouped = grouped[:19]
	}
	return grouped
}

// ExpiryValid reports whether month/year form a valid expiry that is not
// before the reference date. Two-digit years are interpreted as 20YY.
func ExpiryValid(month, year int, ref time.Time) bool {
	if month < 1 || month > 12 {
		return false
	}
	if year < 0 {
		return false
	}
	if year < 100 {
		year += 2000
	}
	if year > int(ref.Year())+50 {
		return false
	}

	if year < ref.Year() {
		return false
	}
	if year == ref.Year() && month < int(ref.Month()) {
		return false
	}
	return true
}

// CVCValid accepts 3 or 4 digit security codes.
func CVCValid(cvc string) bool {
	return (len(cvc) == 3 || len(cvc) == 4) && allDigits(cvc)
}
