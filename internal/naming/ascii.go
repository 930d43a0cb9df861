package naming

import "unicode/utf8"

// HasNonASCII reports whether name contains anything outside 7-bit ASCII.
// Bytes that are not valid UTF-8 count as non-ASCII. Pure-ASCII names are
// invariant under every normalization form and never need work.
func HasNonASCII(name string) bool {
	for i := 0; i < len(name); i++ {
		if name[i] >= utf8.RuneSelf {
			return true
		}
	}
	return false
}
