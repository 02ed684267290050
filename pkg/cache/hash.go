package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashValue returns the digest of the JSON encoding of v. Two layouts with
// the same items in the same order hash equally.
func HashValue(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}

// opKey renders "op:<name>:<digest>", where the digest covers the input
// hash and every option value that changes the result.
func opKey(op, inputHash string, opts OpKeyOpts) string {
	digest, err := HashValue(struct {
		Input string    `json:"input"`
		Opts  OpKeyOpts `json:"opts"`
	}{inputHash, opts})
	if err != nil {
		// Non-finite geometry does not encode as JSON.
		digest = Hash(fmt.Appendf(nil, "%s|%+v", inputHash, opts))
	}
	return "op:" + op + ":" + digest
}
