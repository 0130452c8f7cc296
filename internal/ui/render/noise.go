// Package render draws the purely decorative parts of the interface: image
// thumbnails derived from a locator hash and the grain/concrete texture
// overlay. Output is deterministic for a given input and tick.
package render

// fnv32aTriplet combines three inputs into a single hash for stable noise.
func fnv32aTriplet(a, b, c uint32) uint32 {
	hash := uint32(2166136261)
	inputs := [3]uint32{a, b, c}
	for _, val := range inputs {
		hash ^= val
		hash *= 16777619
	}
	return avalanche(hash)
}

// avalanche is the murmur3 finalizer; word-wise FNV leaves the high bits
// poorly mixed for sequential inputs.
func avalanche(h uint32) uint32 {
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

// hashString is FNV-1a over the bytes of s.
func hashString(s string) uint32 {
	hash := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}

// below reports whether h falls under the given fraction of the hash range.
func below(h uint32, fraction float64) bool {
	return float64(h) < fraction*0xFFFFFFFF
}
