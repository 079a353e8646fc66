package domain

import (
	"math/big"
	"strings"
)

// Coin amounts are exact integers in copper units: the last two digits are
// copper, the two before those silver, and the remainder gold.

// FormatCoins renders an amount as "1,234g56s78c" for console output and
// logs. Amounts shorter than a full denomination omit the higher units.
func FormatCoins(v *big.Int) string {
	s := v.String()

	var b strings.Builder
	if len(s) > 4 {
		b.WriteString(groupThousands(s[:len(s)-4]))
		b.WriteString("g")
	}
	if len(s) > 2 {
		start := 0
		if len(s) > 4 {
			start = len(s) - 4
		}
		b.WriteString(s[start : len(s)-2])
		b.WriteString("s")
	}
	start := 0
	if len(s) > 2 {
		start = len(s) - 2
	}
	b.WriteString(s[start:])
	b.WriteString("c")
	return b.String()
}

// FormatCoinsMarkup renders an amount with the chat font colors the in-game
// client uses for gold, silver, and copper.
func FormatCoinsMarkup(v *big.Int) string {
	s := v.String()

	var b strings.Builder
	if len(s) > 4 {
		b.WriteString(`<font color="#ffb033">`)
		b.WriteString(groupThousands(s[:len(s)-4]))
		b.WriteString(`g</font>`)
	}
	if len(s) > 2 {
		start := 0
		if len(s) > 4 {
			start = len(s) - 4
		}
		b.WriteString(`<font color="#d7d7d7">`)
		b.WriteString(s[start : len(s)-2])
		b.WriteString(`s</font>`)
	}
	start := 0
	if len(s) > 2 {
		start = len(s) - 2
	}
	b.WriteString(`<font color="#c87551">`)
	b.WriteString(s[start:])
	b.WriteString(`c</font>`)
	return b.String()
}

// groupThousands inserts comma separators into a plain digit string.
func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
