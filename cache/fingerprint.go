package cache

import (
	"crypto/sha256"
	"encoding/hex"

	json "github.com/goccy/go-json"
)

// Fingerprint derives a deterministic key from the given parts. Each part is
// serialized to canonical JSON (object keys sorted) and the concatenation is
// hashed. Parts that cannot be serialized make the whole input
// unfingerprintable; callers should treat that as "do not cache".
func Fingerprint(parts ...any) (string, error) {
	h := sha256.New()
	for _, p := range parts {
		b, err := json.Marshal(p)
		if err != nil {
			return "", err
		}
		h.Write(b)
		h.Write([]byte{0x1e}) // record separator between parts
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16]), nil
}
