// Package identity derives the deterministic job_uid used to deduplicate
// postings across runs.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
)

// nullID is how a missing source id is rendered in the hash input.
const nullID = "null"

// JobUID returns hex(sha256(source + ":" + sourceJobID)). A nil id hashes as
// the literal "null". Changing this function invalidates every stored uid.
func JobUID(source string, sourceJobID *string) string {
	id := nullID
	if sourceJobID != nil {
		id = *sourceJobID
	}
	sum := sha256.Sum256([]byte(source + ":" + id))
	return hex.EncodeToString(sum[:])
}
