package checksum

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
)

// Calculator is an interface for computing file checksums.
// This abstraction allows for different checksum strategies and algorithms.
type Calculator interface {
	// CalculateRaw computes a checksum of the raw, unmodified content.
	CalculateRaw(content []byte) string

	// CalculateNormalized computes a checksum of normalized content.
	// Normalization makes checksums resilient to encoding artifacts.
	CalculateNormalized(content []byte) string
}

// SHA256 implements checksum calculation using SHA-256.
// Normalization neutralizes the artifacts that change a CSV file's bytes
// without changing its rows:
//  1. Strip a leading UTF-8 byte order mark
//  2. Convert CRLF and bare CR line endings to LF
//  3. Drop trailing blank lines
//
// SHA256 is a zero-size type and is safe for concurrent use by multiple goroutines.
// Using value semantics (pass by value) eliminates heap allocations.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
// Returns by value to avoid heap allocation (SHA256 is a zero-size type).
func New() SHA256 {
	return SHA256{}
}

// CalculateRaw computes SHA-256 of raw content.
func (c SHA256) CalculateRaw(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// CalculateNormalized computes SHA-256 of normalized content.
func (c SHA256) CalculateNormalized(content []byte) string {
	hash := sha256.Sum256(c.normalize(content))
	return hex.EncodeToString(hash[:])
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// normalize applies the normalization rules to content.
func (c SHA256) normalize(content []byte) []byte {
	content = bytes.TrimPrefix(content, utf8BOM)

	out := make([]byte, 0, len(content))
	for i := 0; i < len(content); i++ {
		ch := content[i]
		if ch == '\r' {
			if i+1 < len(content) && content[i+1] == '\n' {
				i++
			}
			out = append(out, '\n')
			continue
		}
		out = append(out, ch)
	}

	// Trailing blank lines carry no rows.
	for len(out) > 0 && (out[len(out)-1] == '\n' || out[len(out)-1] == ' ' || out[len(out)-1] == '\t') {
		out = out[:len(out)-1]
	}

	return out
}
