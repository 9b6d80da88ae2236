package cache

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
)

// Fingerprint derives the canonical cache key for a set of request
// parameters. Parameters with an empty value are dropped and the rest are
// serialized sorted by name, so logically identical requests always map to
// the same key. The key is the canonical string itself, not a hash of it.
func Fingerprint(params url.Values) string {
	norm := make(url.Values, len(params))
	for name, values := range params {
		for _, v := range values {
			if v == "" {
				continue
			}
			norm.Add(name, v)
		}
	}
	return norm.Encode()
}

// HashKey shortens a canonical key to a fixed-width hex digest for stores
// that limit key length.
func HashKey(prefix, canonical string) string {
	sum := md5.Sum([]byte(prefix + ":" + canonical))
	return hex.EncodeToString(sum[:])
}
