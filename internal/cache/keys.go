package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// AudioDigest is the hex SHA-256 of an uploaded file; identical uploads share
// a transcript.
func AudioDigest(audio []byte) string {
	sum := sha256.Sum256(audio)
	return hex.EncodeToString(sum[:])
}

func TranscriptKey(audioDigest string) string {
	return fmt.Sprintf("transcript:%s", audioDigest)
}
