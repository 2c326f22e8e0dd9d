// Package idgen generates run identifiers. IDs are used as a NATS subject
// token, so the alphabet excludes '.', '*' and '>'.
package idgen

import (
	"fmt"
	"strings"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// RunPrefix is prepended to every run ID.
const RunPrefix = "run-"

// Alphabet is the character set of the random part.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Length is the number of random characters (excluding the prefix).
const Length = 12

// NewRunID returns a fresh run identifier such as "run-4k2x9q0m1abc".
func NewRunID() (string, error) {
	return GenerateWithPrefix(RunPrefix)
}

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// IsRunID reports whether s has the shape produced by NewRunID.
func IsRunID(s string) bool {
	rest, ok := strings.CutPrefix(s, RunPrefix)
	if !ok || len(rest) != Length {
		return false
	}
	for _, r := range rest {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}
