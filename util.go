package crdtlog

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// generateID produces a unique log identifier when the caller does not
// supply one: a nanosecond-resolution UTC timestamp plus a random suffix, so ids
// sort roughly chronologically without requiring coordination.
func generateID() string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return hex.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}

	return time.Now().UTC().Format("20060102150405.000000000") + "-" + hex.EncodeToString(suffix)
}
