package id

import (
	"crypto/rand"
	"encoding/hex"
)

// Generator creates opaque identifiers. Short ids are used where the value
// appears inside user-facing payloads (question ids, context handles).
type Generator interface {
	New() string
	Short() string
}

type RandomHex struct{}

func (RandomHex) New() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func (RandomHex) Short() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
