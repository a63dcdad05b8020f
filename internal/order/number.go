// AngelaMos | 2026
// number.go

package order

import (
	"fmt"
	"strconv"
)

const (
	prefixLen   = 2
	numberWidth = 6
)

// Prefix is the first two characters of the truck name.
func Prefix(truckName string) string {
	r := []rune(truckName)
	if len(r) > prefixLen {
		r = r[:prefixLen]
	}
	return string(r)
}

// FormatNumber renders the n-th order of a prefix as "<prefix>-000123".
// Once n no longer fits the six digit width the bare number is returned
// without prefix. Existing order books depend on that format.
func FormatNumber(prefix string, n int64) string {
	digits := strconv.FormatInt(n, 10)
	if len(digits) < numberWidth {
		return fmt.Sprintf("%s-%0*d", prefix, numberWidth, n)
	}
	return digits
}
