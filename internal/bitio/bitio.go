// Package bitio provides bit-level reading over a sequence of 64-bit
// ITkPix/RD53B blocks.
//
// Bits are addressed MSB-first within each 64-bit block. A read that spans
// two blocks must skip the 3-bit NS+CH framing prefix of the second block,
// since those bits are not part of any stream's logical payload. The cursor
// is expressed as a raw bit offset from the start of block 0 - it does not
// pre-subtract framing bits, so the arithmetic below only accounts for the
// skip at the point a read actually crosses a block boundary.
package bitio

import "fmt"

// blockBits is the width of one ITkPix block.
const blockBits = 64

// framingBits is the width of the NS+CH prefix skipped at the start of
// every block after the first one a read touches.
const framingBits = 3

// ErrCursorOverflow is returned when a read would advance the cursor past
// the end of the available blocks.
type ErrCursorOverflow struct {
	Cursor  uint
	Length  uint
	NBlocks int
}

func (e *ErrCursorOverflow) Error() string {
	return fmt.Sprintf("bitio: read of %d bits at cursor %d overflows %d blocks", e.Length, e.Cursor, e.NBlocks)
}

// Reader reads fixed-width fields from a slice of 64-bit blocks, advancing
// (or rewinding) a bit cursor measured from the start of block 0.
type Reader struct {
	blocks []uint64
	cursor uint
}

// NewReader creates a Reader over blocks, starting at cursor 0.
func NewReader(blocks []uint64) *Reader {
	return &Reader{blocks: blocks}
}

// Cursor returns the current bit cursor.
func (r *Reader) Cursor() uint {
	return r.cursor
}

// NBlocks returns the number of blocks backing this reader.
func (r *Reader) NBlocks() int {
	return len(r.blocks)
}

// Read reads n bits (1 <= n <= 32), MSB-first, advancing the cursor by n.
func (r *Reader) Read(n uint) (uint32, error) {
	if n < 1 || n > 32 {
		panic(fmt.Sprintf("bitio: read width %d out of range [1,32]", n))
	}
	start := r.cursor
	end := start + n
	if end > uint(len(r.blocks))*blockBits {
		return 0, &ErrCursorOverflow{Cursor: start, Length: n, NBlocks: len(r.blocks)}
	}

	idxStart := start / blockBits
	idxEnd := (end - 1) / blockBits

	var value uint32
	if idxEnd != idxStart {
		// Cross-block read: the first block contributes whatever bits
		// remain unread in it (always its low bits, since bits are
		// consumed MSB-first); the second block contributes its top
		// n_over bits below the 3-bit NS+CH prefix (i.e. below bit 60).
		nOver := end % blockBits
		lengthFirst := n - nOver
		maskFirst := uint64(1)<<lengthFirst - 1
		maskSecond := uint32(1)<<nOver - 1

		value0 := uint32(r.blocks[idxStart] & maskFirst)
		value1 := uint32(r.blocks[idxEnd]>>(blockBits-framingBits-1-(nOver-1))) & maskSecond
		value = (value0 << nOver) | value1
	} else {
		endInBlock := end - idxStart*blockBits
		mask := uint64(1)<<n - 1
		value = uint32((r.blocks[idxStart] >> (blockBits - endInBlock)) & mask)
	}

	r.cursor = end
	return value, nil
}

// Rewind moves the cursor back by n bits. It panics if that would move the
// cursor before the start of block 0 - callers only rewind by amounts the
// decode tables themselves reported as consumed, so this should never
// trigger on well-formed table data.
func (r *Reader) Rewind(n uint) {
	if n > r.cursor {
		panic(fmt.Sprintf("bitio: rewind of %d bits underflows cursor %d", n, r.cursor))
	}
	r.cursor -= n
}
