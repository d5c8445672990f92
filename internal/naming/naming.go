// Package naming derives short deterministic hashes for content annotations
// and cloud resource names.
package naming

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// DefaultLength is the hex length of hashes used in names and annotations.
const DefaultLength = 6

// ShortHash returns the first n hex digits of the SHA-1 of s, clamped to the digest size.
func ShortHash(s string, n int) string {
	sum := sha1.Sum([]byte(s))
	h := hex.EncodeToString(sum[:])
	return h[:min(max(n, 0), len(h))]
}

// Hash joins parts with NUL and hashes them with DefaultLength. Parts are
// delimited, so ("ab","c") and ("a","bc") differ.
func Hash(parts ...string) string {
	return ShortHash(strings.Join(parts, "\x00"), DefaultLength)
}

// StackHash returns the short hash identifying a cluster on a given driver.
func StackHash(driver, cluster string) string {
	return ShortHash(driver+":"+cluster, DefaultLength)
}
