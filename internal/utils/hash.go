package utils

import (
	"encoding/hex"
	"encoding/json"

	"github.com/zeebo/blake3"
)

// HashBytes returns the hex BLAKE3 digest of data
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON fingerprints v by its JSON encoding
func HashJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}
