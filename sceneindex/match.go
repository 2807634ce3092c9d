package sceneindex

import (
	"strconv"
	"strings"
	"unicode"
)

// Matcher reports whether a lowercased node name belongs to a rule.
type Matcher func(name string) bool

// Numbered matches "<prefix><digits>" exactly, e.g. switch3.
func Numbered(prefixes ...string) Matcher {
	return func(name string) bool {
		for _, p := range prefixes {
			if rest, ok := strings.CutPrefix(name, p); ok && rest != "" && allDigits(rest) {
				return true
			}
		}
		return false
	}
}

// Exact matches any of the given names.
func Exact(names ...string) Matcher {
	return func(name string) bool {
		for _, n := range names {
			if name == n {
				return true
			}
		}
		return false
	}
}

// Prefix matches names starting with any of the prefixes.
func Prefix(prefixes ...string) Matcher {
	return func(name string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(name, p) {
				return true
			}
		}
		return false
	}
}

// Any matches when one of the matchers does.
func Any(ms ...Matcher) Matcher {
	return func(name string) bool {
		for _, m := range ms {
			if m(name) {
				return true
			}
		}
		return false
	}
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// TrailingNumber returns the decimal number at the end of name, or -1.
func TrailingNumber(name string) int {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) {
		return -1
	}
	n, err := strconv.Atoi(name[i:])
	if err != nil {
		return -1
	}
	return n
}

// NaturalLess orders names case-insensitively with digit runs compared by
// value, so switch2 sorts before switch10.
func NaturalLess(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	for a != "" && b != "" {
		ca, cb := rune(a[0]), rune(b[0])
		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			na, ra := leadingDigits(a)
			nb, rb := leadingDigits(b)
			if va, vb := strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0"); va != vb {
				if len(va) != len(vb) {
					return len(va) < len(vb)
				}
				return va < vb
			}
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			a, b = ra, rb
			continue
		}
		if ca != cb {
			return ca < cb
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func leadingDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}
