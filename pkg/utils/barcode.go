package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var nonLetters = regexp.MustCompile("[^A-Z]")

// GenerateBarcode builds a printable product code: the first three letters of
// the name (padded with X) followed by eight digits derived from the id.
func GenerateBarcode(name string, id uuid.UUID) string {
	prefix := nonLetters.ReplaceAllString(strings.ToUpper(name), "")
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	prefix += strings.Repeat("X", 3-len(prefix))

	var n uint64
	for _, b := range id[:8] {
		n = n<<8 | uint64(b)
	}
	return fmt.Sprintf("%s%08d", prefix, n%100000000)
}

// GSTIN layout: 2-digit state code, PAN (5 letters, 4 digits, 1 letter),
// entity number, the letter Z, and a check character.
var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// ValidGSTIN reports whether s looks like an Indian GSTIN.
func ValidGSTIN(s string) bool {
	return gstinPattern.MatchString(strings.ToUpper(s))
}
