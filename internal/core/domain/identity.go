package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// IDLength is the number of hex characters of the content hash used as a document ID.
const IDLength = 16

// Identity is the content-addressed key of an uploaded document.
// Identical bytes always produce an identical Identity.
type Identity struct {
	// ID is the storage key (first IDLength hex characters of SHA256).
	ID string

	// SHA256 is the full lowercase hex digest of the raw bytes.
	SHA256 string
}

// IdentityOf hashes data and derives its Identity.
func IdentityOf(data []byte) Identity {
	sum := sha256.Sum256(data)
	full := hex.EncodeToString(sum[:])
	return Identity{ID: full[:IDLength], SHA256: full}
}

// ValidID reports whether id has the shape of a document ID.
// Used to reject path traversal in externally supplied IDs.
func ValidID(id string) bool {
	if len(id) != IDLength {
		return false
	}
	for _, r := range id {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
