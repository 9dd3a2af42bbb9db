package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix enables future algorithm migration.
const (
	HashDomainNode    = "runebound/node/v1"
	HashDomainContent = "runebound/content/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash computes the content-addressed fingerprint of a node tree.
// Equal trees hash equally regardless of how they were authored.
func Hash(n Node) (string, error) {
	canonical, err := MarshalCanonical(n)
	if err != nil {
		return "", fmt.Errorf("Hash: failed to marshal: %w", err)
	}
	return hashWithDomain(HashDomainNode, canonical), nil
}

// ContentHash fingerprints a content record in generic JSON form, as decoded
// from its source document.
func ContentHash(kind, key string, record any) (string, error) {
	canonical, err := MarshalCanonicalAny(map[string]any{
		"kind":       kind,
		"key":        key,
		"record":     record,
		"ir_version": IRVersion,
	})
	if err != nil {
		return "", fmt.Errorf("ContentHash: failed to marshal %s %q: %w", kind, key, err)
	}
	return hashWithDomain(HashDomainContent, canonical), nil
}

// MustHash is like Hash but panics on error.
// Use only in tests or when the tree is known to be finite.
func MustHash(n Node) string {
	h, err := Hash(n)
	if err != nil {
		panic(err)
	}
	return h
}
