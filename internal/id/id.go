// Package id generates prefixed identifiers for persisted records.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// TagPrefix prefixes every tag identifier.
const TagPrefix = "tag"

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "tag-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// NewTagID returns a fresh tag identifier.
func NewTagID() (string, error) {
	return Generate(TagPrefix)
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}
