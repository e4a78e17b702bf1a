package hashfmt

import "encoding/binary"

const (
	murmurM    = 0x5bd1e995
	murmurR    = 24
	murmurSeed = 1
)

// Fingerprint computes the CurseForge file fingerprint: murmur2 (32-bit,
// seed 1) over data with tab, LF, CR and space bytes removed.
func Fingerprint(data []byte) uint32 {
	norm := make([]byte, 0, len(data))
	for _, b := range data {
		switch b {
		case 0x09, 0x0a, 0x0d, 0x20:
			continue
		}
		norm = append(norm, b)
	}

	h := uint32(murmurSeed) ^ uint32(len(norm))
	for len(norm) >= 4 {
		k := binary.LittleEndian.Uint32(norm)
		k *= murmurM
		k ^= k >> murmurR
		k *= murmurM
		h *= murmurM
		h ^= k
		norm = norm[4:]
	}

	switch len(norm) {
	case 3:
		h ^= uint32(norm[2]) << 16
		fallthrough
	case 2:
		h ^= uint32(norm[1]) << 8
		fallthrough
	case 1:
		h ^= uint32(norm[0])
		h *= murmurM
	}

	h ^= h >> 13
	h *= murmurM
	h ^= h >> 15
	return h
}
