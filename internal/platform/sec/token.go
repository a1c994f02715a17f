// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// MinTokenBytes is the smallest entropy accepted for single-use tokens.
const MinTokenBytes = 32

// GenerateSecureToken returns byteLength random bytes from crypto/rand encoded
// as unpadded URL-safe base64. Lengths below [MinTokenBytes] are raised to it.
//
// 32 bytes encode to 43 characters.
func GenerateSecureToken(byteLength int) (string, error) {
	if byteLength < MinTokenBytes {
		byteLength = MinTokenBytes
	}

	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to read random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

// HashToken returns the hex SHA-256 digest of token.
//
// Used where only the holder needs to present the token and the server never
// has to look it up by its plain value (session identifiers).
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
