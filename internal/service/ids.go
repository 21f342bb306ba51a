package service

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

func newID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func newToken() string {
	bytes := make([]byte, 20)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// newVersionID returns a ULID: time-ordered and collision-free under
// concurrent creation, unlike millisecond timestamps.
func newVersionID() string {
	return ulid.Make().String()
}

func newConflictID() string {
	return uuid.NewString()
}
