// Package fingerprint derives stable cache keys from a rent roll's identity
// and a sample of its content. The key is a lookup key, not a security
// boundary, so a fast non-cryptographic hash is deliberate.
package fingerprint

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// sampleLimit caps how many rows contribute to the content hash. Sheets that
// agree on their first rows, name, and size are treated as the same document.
const sampleLimit = 10

const (
	cellDelimiter = "|"
	rowDelimiter  = "\n"
)

// Key builds the fingerprint for a document. It is pure and deterministic:
// the same inputs produce the same key across process restarts.
func Key(name string, sizeBytes int64, sampleRows [][]string) string {
	rows := sampleRows
	if len(rows) > sampleLimit {
		rows = rows[:sampleLimit]
	}

	var content strings.Builder
	for i, row := range rows {
		if i > 0 {
			content.WriteString(rowDelimiter)
		}
		content.WriteString(strings.Join(row, cellDelimiter))
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(content.String()))

	return sanitize(fmt.Sprintf("%s_%d_%x", name, sizeBytes, h.Sum64()))
}

// sanitize maps every character outside [A-Za-z0-9_] to an underscore so the
// key is safe wherever storage keys are restricted.
func sanitize(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, key)
}
