package manager

import (
	"regexp"
	"strconv"
	"strings"
)

// quantitySuffix matches an "x2"-style quantity marker.
var quantitySuffix = regexp.MustCompile(`^x(\d+)$`)

// ParseItemText splits free text into an item name and a quantity. The
// last whitespace-separated token is consumed as the quantity when it is a
// positive integer ("milk 2") or an x-prefixed one ("milk x2"); otherwise
// the whole text is the name and the quantity defaults to 1. A single
// token is always a name, so "/add 2" adds an item called "2".
//
// The name keeps its original casing for display; case-insensitive
// comparison happens in the store.
func ParseItemText(raw string) (name string, quantity int64) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", 1
	}
	if len(fields) == 1 {
		return fields[0], 1
	}

	last := fields[len(fields)-1]
	if matches := quantitySuffix.FindStringSubmatch(last); matches != nil {
		if n, err := strconv.ParseInt(matches[1], 10, 64); err == nil && n > 0 {
			return strings.Join(fields[:len(fields)-1], " "), n
		}
	}
	if n, err := strconv.ParseInt(last, 10, 64); err == nil && n > 0 {
		return strings.Join(fields[:len(fields)-1], " "), n
	}

	return strings.Join(fields, " "), 1
}
