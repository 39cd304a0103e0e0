package cache

import (
	"encoding/hex"
	"encoding/json"

	"github.com/zeebo/blake3"
)

// domainKey is a 32-byte BLAKE3 key. Each use of the hash gets its own
// key, so input digests and derived cache keys can never collide.
type domainKey [32]byte

var (
	inputDomainKey = newDomainKey("gifshuffle.cache.input")
	keyDomainKey   = newDomainKey("gifshuffle.cache.key")
)

// newDomainKey zero-pads name to 32 bytes.
func newDomainKey(name string) domainKey {
	var k domainKey
	if len(name) > len(k) {
		panic("cache: domain name too long: " + name)
	}
	copy(k[:], name)
	return k
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := keyedHash(keyDomainKey, data)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the 64-character hex BLAKE3 digest identifying an input.
func Hash(data []byte) string {
	sum := keyedHash(inputDomainKey, data)
	return hex.EncodeToString(sum[:])
}

func keyedHash(key domainKey, data []byte) [32]byte {
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("cache: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var sum [32]byte
	copy(sum[:], hasher.Sum(nil))
	return sum
}
