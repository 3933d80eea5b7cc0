package app

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// GenerateCode derives a human-readable property code from the address
// fields: CITY prefix, STATE prefix, house number, and a short SHA-1
// fingerprint of the canonicalized address. Fingerprint collisions are fine;
// uniqueness is enforced by the store's constraint, not by the hash.
func GenerateCode(houseNumber, street, city, state string) string {
	canonical := strings.ToLower(fmt.Sprintf("%s-%s-%s-%s", houseNumber, street, city, state))
	canonical = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, canonical)

	sum := sha1.Sum([]byte(canonical))
	fingerprint := strings.ToUpper(hex.EncodeToString(sum[:3]))

	return fmt.Sprintf("%s-%s-%s-%s", upperPrefix(city, 3), upperPrefix(state, 2), houseNumber, fingerprint)
}

// SuffixCode returns the nth candidate in the deterministic probe sequence:
// code, code-1, code-2, ...
func SuffixCode(code string, n int) string {
	if n == 0 {
		return code
	}
	return fmt.Sprintf("%s-%d", code, n)
}

// upperPrefix takes up to n runes and upper-cases them. Short inputs are
// used whole, no padding.
func upperPrefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return strings.ToUpper(string(r))
}
