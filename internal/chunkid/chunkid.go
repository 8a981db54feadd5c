// Package chunkid assigns deterministic, content-derived chunk identifiers.
package chunkid

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

const shortHashLen = 8

// TextHash returns the hex digest of the exact chunk text. Two chunks with
// identical text always produce the same hash; this is the de-duplication
// mechanism for bundles.
func TextHash(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ChunkID returns the deterministic id for a chunk:
// {class}_{subject}_{chapter}_{short text hash}. Same text and same
// (class, subject, chapter) always collapse to the same id.
func ChunkID(class int, subject string, chapter int, text string) string {
	subj := strings.ReplaceAll(strings.TrimSpace(subject), " ", "_")
	return fmt.Sprintf("%d_%s_%d_%s", class, subj, chapter, TextHash(text)[:shortHashLen])
}
