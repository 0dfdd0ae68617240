// Package cpf converts Brazilian taxpayer ids into the canonical form used
// for storage and lookup.
package cpf

import "strings"

// Length is the number of digits in a canonical CPF.
const Length = 11

// Normalize strips every non-digit from s and returns the remaining digits
// when there are exactly Length of them. Check digits are not verified.
func Normalize(s string) (string, bool) {
	var b strings.Builder
	b.Grow(Length)
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			continue
		}
		n++
		if n > Length {
			return "", false
		}
		b.WriteByte(c)
	}
	if n != Length {
		return "", false
	}
	return b.String(), true
}

// Format renders a CPF as 000.000.000-00. Input that does not normalize is
// returned unchanged.
func Format(s string) string {
	d, ok := Normalize(s)
	if !ok {
		return s
	}
	return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
}
