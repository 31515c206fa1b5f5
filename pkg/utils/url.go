package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// HashKey creates a SHA256 hash of the joined parts.
// Roll numbers are stored and cached under this hash, never in clear.
func HashKey(parts ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}

// TermKey hashes a student's roll number together with a term selection.
func TermKey(rollNo string, year, semester int) string {
	return HashKey(rollNo, fmt.Sprint(year), fmt.Sprint(semester))
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base string, relative string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(relURL).String(), nil
}
