// Package id generates prefixed identifiers for stored entities.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes.
const (
	PrefixUser     = "user"
	PrefixTrip     = "trip"
	PrefixBag      = "bag"
	PrefixCategory = "cat"
	PrefixMaster   = "master"
	PrefixItem     = "item"
	PrefixMove     = "move"
)

// Generate creates a prefixed NanoID, e.g. "bag-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if the system has no entropy.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
