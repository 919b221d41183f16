// Package core holds the pure budget domain: entities, the category
// taxonomy, and amount formatting. Amounts are integer won throughout;
// there is no fractional unit.
package core

import "strconv"

// FormatWon renders an integer won amount with thousands separators and the
// 원 suffix, e.g. 3000000 -> "3,000,000원".
func FormatWon(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		out = append([]byte{'-'}, out...)
	}
	return string(out) + "원"
}
