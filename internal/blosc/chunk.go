package blosc

import (
	"encoding/binary"
	"fmt"
	"sync"
)

// Blocked chunk payload layout, after the 16-byte header:
//
//	uint32 offset per block, relative to the start of the chunk,
//	then one record per block: uint32 csize followed by csize bytes.
//
// A record whose csize equals the block's raw length holds the shuffled
// bytes verbatim; compressed forms are only written when strictly smaller,
// so the two cases never collide. Stored (memcpy) chunks skip the index and
// carry the original bytes directly.

// automaticBlockSize picks a block size for inputs that did not request one.
// Higher levels get larger blocks, trading random-access granularity for
// compression ratio.
func automaticBlockSize(level, nbytes int) int {
	var size int
	switch {
	case level <= 3:
		size = 64 * 1024
	case level <= 6:
		size = 256 * 1024
	default:
		size = 1024 * 1024
	}
	if size > nbytes {
		size = nbytes
	}
	return size
}

// chooseBlockSize returns the effective block size: the requested size when
// given, otherwise the automatic one, aligned down to a whole number of
// shuffle elements.
func chooseBlockSize(requested, level, nbytes, typeSize int) int {
	size := requested
	if size <= 0 {
		size = automaticBlockSize(level, nbytes)
	}
	if size > nbytes {
		size = nbytes
	}
	size -= size % typeSize
	if size < typeSize {
		size = typeSize
	}
	return size
}

func compressChunk(src []byte, opts Options) ([]byte, error) {
	if opts.Level == 0 || len(src) == 0 {
		return storedChunk(src, opts), nil
	}

	backend := backends[opts.Compressor]
	blockSize := chooseBlockSize(opts.BlockSize, opts.Level, len(src), opts.TypeSize)
	nblocks := (len(src) + blockSize - 1) / blockSize

	compressed := make([][]byte, nblocks)
	err := forEachBlock(nblocks, func(i int) error {
		lo := i * blockSize
		hi := lo + blockSize
		if hi > len(src) {
			hi = len(src)
		}
		shuffled := applyShuffle(src[lo:hi], opts.Shuffle, opts.TypeSize)
		out, err := backend.compress(shuffled, opts.Level)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCompressionFailed, err)
		}
		if len(out) >= len(shuffled) {
			// Incompressible block, keep the shuffled bytes verbatim.
			out = shuffled
		}
		compressed[i] = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := HeaderSize + 4*nblocks
	for _, blk := range compressed {
		total += 4 + len(blk)
	}
	if total >= HeaderSize+len(src) {
		// The blocked form did not pay for itself; store instead.
		return storedChunk(src, opts), nil
	}

	h := Header{
		Version:    FormatVersion,
		Compressor: uint8(opts.Compressor),
		Flags:      shuffleFlags(opts.Shuffle),
		TypeSize:   uint8(opts.TypeSize),
		Nbytes:     uint32(len(src)),
		BlockSize:  uint32(blockSize),
		Cbytes:     uint32(total),
	}

	chunk := make([]byte, total)
	copy(chunk, h.Bytes())
	off := HeaderSize + 4*nblocks
	for i, blk := range compressed {
		binary.LittleEndian.PutUint32(chunk[HeaderSize+4*i:], uint32(off))
		binary.LittleEndian.PutUint32(chunk[off:], uint32(len(blk)))
		copy(chunk[off+4:], blk)
		off += 4 + len(blk)
	}
	return chunk, nil
}

// storedChunk writes a memcpy chunk: header plus the original bytes. No
// shuffle flags are set because the payload is unfiltered.
func storedChunk(src []byte, opts Options) []byte {
	h := Header{
		Version:    FormatVersion,
		Compressor: uint8(opts.Compressor),
		Flags:      flagMemcpy,
		TypeSize:   uint8(opts.TypeSize),
		Nbytes:     uint32(len(src)),
		BlockSize:  uint32(len(src)),
		Cbytes:     uint32(HeaderSize + len(src)),
	}
	chunk := make([]byte, HeaderSize+len(src))
	copy(chunk, h.Bytes())
	copy(chunk[HeaderSize:], src)
	return chunk
}

// chunkBounds validates the header's sizes against the actual buffer and
// returns the chunk trimmed to its recorded length.
func chunkBounds(src []byte, h Header) ([]byte, error) {
	if h.Cbytes < HeaderSize || int(h.Cbytes) > len(src) {
		return nil, ErrInvalidData
	}
	return src[:h.Cbytes], nil
}

func decompressChunk(dst, src []byte, h Header) error {
	chunk, err := chunkBounds(src, h)
	if err != nil {
		return err
	}
	if h.Nbytes == 0 {
		return nil
	}
	if h.IsStored() {
		if int(h.Cbytes) != HeaderSize+int(h.Nbytes) {
			return ErrInvalidData
		}
		copy(dst, chunk[HeaderSize:])
		return nil
	}
	if h.BlockSize == 0 {
		return ErrInvalidData
	}
	backend, ok := backends[CompressorID(h.Compressor)]
	if !ok {
		name, _ := CompressorName(h.Compressor)
		return fmt.Errorf("%w: %q (id %d)", ErrInvalidCodec, name, h.Compressor)
	}

	blockSize := int(h.BlockSize)
	nblocks := (int(h.Nbytes) + blockSize - 1) / blockSize
	if HeaderSize+4*nblocks > int(h.Cbytes) {
		return ErrInvalidData
	}
	return forEachBlock(nblocks, func(i int) error {
		lo := i * blockSize
		hi := lo + blockSize
		if hi > int(h.Nbytes) {
			hi = int(h.Nbytes)
		}
		return decodeBlock(dst[lo:hi], chunk, h, backend, i)
	})
}

// decodeBlock decompresses and unshuffles block i of a blocked chunk into
// out, whose length is the block's raw size.
func decodeBlock(out, chunk []byte, h Header, b backend, i int) error {
	idx := HeaderSize + 4*i
	off := int(binary.LittleEndian.Uint32(chunk[idx:]))
	if off < 0 || uint64(off)+4 > uint64(len(chunk)) {
		return ErrInvalidData
	}
	csize := int(binary.LittleEndian.Uint32(chunk[off:]))
	if uint64(off)+4+uint64(csize) > uint64(len(chunk)) {
		return ErrInvalidData
	}
	payload := chunk[off+4 : off+4+csize]

	var raw []byte
	if csize == len(out) {
		raw = payload
	} else {
		decoded, err := b.decompress(payload, len(out))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
		}
		if len(decoded) != len(out) {
			return fmt.Errorf("%w: block %d decoded to %d bytes, expected %d",
				ErrSizeMismatch, i, len(decoded), len(out))
		}
		raw = decoded
	}
	undoShuffle(out, raw, h.ShuffleMode(), int(h.TypeSize))
	return nil
}

// decompressRange fills dst with the bytes [byteOff, byteOff+len(dst)) of
// the chunk's uncompressed content, decoding only the blocks that overlap.
func decompressRange(dst, src []byte, h Header, byteOff, byteLen int) error {
	chunk, err := chunkBounds(src, h)
	if err != nil {
		return err
	}
	if byteLen == 0 {
		return nil
	}
	if h.IsStored() {
		if int(h.Cbytes) != HeaderSize+int(h.Nbytes) {
			return ErrInvalidData
		}
		copy(dst, chunk[HeaderSize+byteOff:])
		return nil
	}
	if h.BlockSize == 0 {
		return ErrInvalidData
	}
	backend, ok := backends[CompressorID(h.Compressor)]
	if !ok {
		name, _ := CompressorName(h.Compressor)
		return fmt.Errorf("%w: %q (id %d)", ErrInvalidCodec, name, h.Compressor)
	}

	blockSize := int(h.BlockSize)
	nblocks := (int(h.Nbytes) + blockSize - 1) / blockSize
	if HeaderSize+4*nblocks > int(h.Cbytes) {
		return ErrInvalidData
	}
	first := byteOff / blockSize
	last := (byteOff + byteLen - 1) / blockSize

	// Blocks fully inside the range decode straight into dst; the edge
	// blocks go through a scratch buffer and get trimmed.
	return forEachBlock(last-first+1, func(j int) error {
		i := first + j
		lo := i * blockSize
		hi := lo + blockSize
		if hi > int(h.Nbytes) {
			hi = int(h.Nbytes)
		}
		if lo >= byteOff && hi <= byteOff+byteLen {
			return decodeBlock(dst[lo-byteOff:hi-byteOff], chunk, h, backend, i)
		}
		buf := make([]byte, hi-lo)
		if err := decodeBlock(buf, chunk, h, backend, i); err != nil {
			return err
		}
		cutLo := byteOff
		if lo > cutLo {
			cutLo = lo
		}
		cutHi := byteOff + byteLen
		if hi < cutHi {
			cutHi = hi
		}
		copy(dst[cutLo-byteOff:cutHi-byteOff], buf[cutLo-lo:cutHi-lo])
		return nil
	})
}

// forEachBlock runs fn for every block index, fanning out across the
// process-wide worker count when it is greater than one. The first error
// wins; remaining workers drain their queue without further work.
func forEachBlock(nblocks int, fn func(i int) error) error {
	workers := NThreads()
	if workers > nblocks {
		workers = nblocks
	}
	if workers <= 1 {
		for i := 0; i < nblocks; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	indexes := make(chan int, nblocks)
	for i := 0; i < nblocks; i++ {
		indexes <- i
	}
	close(indexes)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				mu.Lock()
				failed := firstErr != nil
				mu.Unlock()
				if failed {
					continue
				}
				if err := fn(i); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}
