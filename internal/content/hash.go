package content

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"

	"github.com/vk/assetforge/internal/params"
)

// Variant names one parameter set taking part in a content hash.
type Variant struct {
	Name       string
	Parameters *params.Set
}

// Hash computes the content hash of an asset declaration.
//
// Fields are length-prefixed so that adjacent values cannot run together.
// Parameters are hashed in sorted key order; variants are hashed in the order
// given, since bundle order decides processing order.
func Hash(assetPath, processor string, variants ...Variant) string {
	h := sha256.New()
	writeField(h, assetPath)
	writeField(h, processor)
	writeCount(h, len(variants))
	for _, v := range variants {
		writeField(h, v.Name)
		keys := v.Parameters.SortedKeys()
		writeCount(h, len(keys))
		for _, k := range keys {
			val, _ := v.Parameters.Get(k)
			writeField(h, k)
			writeField(h, val)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeCount(h hash.Hash, n int) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(n))
	h.Write(buf[:])
}

func writeField(h hash.Hash, s string) {
	writeCount(h, len(s))
	h.Write([]byte(s))
}
