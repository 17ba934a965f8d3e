package util

import (
	"crypto/sha1"
	"encoding/hex"
)

// HashID derives a stable hex identifier from an arbitrary string. Used as a
// fallback GUID for feed items that do not carry one.
func HashID(str string) string {
	hasher := sha1.New()
	hasher.Write([]byte(str))

	return hex.EncodeToString(hasher.Sum(nil))
}
