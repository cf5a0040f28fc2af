// Package idgen generates the opaque, prefixed record ids used by every
// persisted entity.
package idgen

import (
	"fmt"
	"strings"

	nanoid "github.com/matoous/go-nanoid/v2"
)

const (
	PrefixTrainer           = "trn_"
	PrefixTrainerConfig     = "cfg_"
	PrefixEvaluationDataset = "eds_"
)

// Alphabet is the character set of the random part of an id.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters after the prefix.
const Length = 16

// New returns a fresh id carrying prefix.
func New(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// Valid reports whether id is a well-formed id for prefix.
func Valid(prefix, id string) bool {
	if !strings.HasPrefix(id, prefix) {
		return false
	}
	body := id[len(prefix):]
	if len(body) != Length {
		return false
	}
	for _, r := range body {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}
