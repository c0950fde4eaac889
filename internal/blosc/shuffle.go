package blosc

// Shuffle kernels. Byte shuffle transposes the bytes of fixed-size elements
// so that all first bytes come first, then all second bytes, and so on:
//
//	[A0 A1 A2 A3] [B0 B1 B2 B3]  ->  [A0 B0] [A1 B1] [A2 B2] [A3 B3]
//
// Bit shuffle goes one level deeper and transposes bits within groups of
// eight elements. Both leave a trailing partial element untouched, and bit
// shuffle also leaves a trailing partial group of elements untouched, so the
// inverse kernels restore any input length exactly.

func shuffleBytes(dst, src []byte, typeSize int) {
	n := len(src)
	if typeSize <= 1 || n < typeSize {
		copy(dst, src)
		return
	}
	elems := n / typeSize
	for i := 0; i < elems; i++ {
		for j := 0; j < typeSize; j++ {
			dst[j*elems+i] = src[i*typeSize+j]
		}
	}
	copy(dst[elems*typeSize:], src[elems*typeSize:])
}

func unshuffleBytes(dst, src []byte, typeSize int) {
	n := len(src)
	if typeSize <= 1 || n < typeSize {
		copy(dst, src)
		return
	}
	elems := n / typeSize
	for i := 0; i < elems; i++ {
		for j := 0; j < typeSize; j++ {
			dst[i*typeSize+j] = src[j*elems+i]
		}
	}
	copy(dst[elems*typeSize:], src[elems*typeSize:])
}

func bitShuffleBytes(dst, src []byte, typeSize int) {
	n := len(src)
	if typeSize < 1 || n < 8*typeSize {
		copy(dst, src)
		return
	}
	elems := n / typeSize
	groups := elems / 8

	for g := 0; g < groups; g++ {
		base := g * 8 * typeSize
		for bytePos := 0; bytePos < typeSize; bytePos++ {
			// One byte from each of the 8 elements at this position.
			var in [8]byte
			for e := 0; e < 8; e++ {
				in[e] = src[base+e*typeSize+bytePos]
			}
			// Transpose: output byte b holds bit b of every input byte.
			for b := 0; b < 8; b++ {
				var out byte
				for e := 0; e < 8; e++ {
					if in[e]&(1<<(7-b)) != 0 {
						out |= 1 << (7 - e)
					}
				}
				dst[base+bytePos*8+b] = out
			}
		}
	}

	// Partial transposes are not reversible, so the tail is copied.
	copy(dst[groups*8*typeSize:], src[groups*8*typeSize:])
}

func bitUnshuffleBytes(dst, src []byte, typeSize int) {
	n := len(src)
	if typeSize < 1 || n < 8*typeSize {
		copy(dst, src)
		return
	}
	elems := n / typeSize
	groups := elems / 8

	for g := 0; g < groups; g++ {
		base := g * 8 * typeSize
		for bytePos := 0; bytePos < typeSize; bytePos++ {
			var in [8]byte
			for b := 0; b < 8; b++ {
				in[b] = src[base+bytePos*8+b]
			}
			for e := 0; e < 8; e++ {
				var out byte
				for b := 0; b < 8; b++ {
					if in[b]&(1<<(7-e)) != 0 {
						out |= 1 << (7 - b)
					}
				}
				dst[base+e*typeSize+bytePos] = out
			}
		}
	}

	copy(dst[groups*8*typeSize:], src[groups*8*typeSize:])
}

// applyShuffle returns src filtered by mode. The identity cases return src
// itself; filtered output is freshly allocated.
func applyShuffle(src []byte, mode Shuffle, typeSize int) []byte {
	switch mode {
	case ByteShuffle:
		if typeSize <= 1 || len(src) < typeSize {
			return src
		}
		dst := make([]byte, len(src))
		shuffleBytes(dst, src, typeSize)
		return dst
	case BitShuffle:
		if len(src) < 8*typeSize {
			return src
		}
		dst := make([]byte, len(src))
		bitShuffleBytes(dst, src, typeSize)
		return dst
	default:
		return src
	}
}

// undoShuffle writes the unfiltered form of src into dst. dst and src must
// not overlap and have equal length.
func undoShuffle(dst, src []byte, mode Shuffle, typeSize int) {
	switch mode {
	case ByteShuffle:
		unshuffleBytes(dst, src, typeSize)
	case BitShuffle:
		bitUnshuffleBytes(dst, src, typeSize)
	default:
		copy(dst, src)
	}
}

// ShuffleBuffer returns a byte-shuffled copy of src. A typeSize of one or
// an input shorter than one element comes back as a plain copy.
func ShuffleBuffer(src []byte, typeSize int) []byte {
	dst := make([]byte, len(src))
	shuffleBytes(dst, src, typeSize)
	return dst
}

// UnshuffleBuffer reverses ShuffleBuffer.
func UnshuffleBuffer(src []byte, typeSize int) []byte {
	dst := make([]byte, len(src))
	unshuffleBytes(dst, src, typeSize)
	return dst
}
