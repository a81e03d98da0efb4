package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reID      = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reVarName = regexp.MustCompile(`^[A-Za-z0-9 _-]{1,32}$`)
	reVarOpt  = regexp.MustCompile(`^[A-Za-z0-9 ._/+-]{1,32}$`)
)

const maxVariants = 8

// ID validates a simple resource identifier (product/category ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Quantity parses a requested line quantity. Values below 1 are rejected and
// large ones clamped to avoid abuse.
func Quantity(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	if n > 99 {
		n = 99
	}
	return n, true
}

// Variants checks a variant selection's names and options for shape only;
// whether they belong to the product is checked by the cart.
func Variants(sel map[string]string) (map[string]string, bool) {
	if len(sel) > maxVariants {
		return nil, false
	}
	out := make(map[string]string, len(sel))
	for k, v := range sel {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !reVarName.MatchString(k) || !reVarOpt.MatchString(v) {
			return nil, false
		}
		out[k] = v
	}
	return out, true
}
