// Package hitmap resolves the 16-bit pixel hit map carried by each ITkPix
// hit record, either as a raw field or through the two-level compressed
// binary-tree code the chip uses to shrink sparse hit maps.
//
// The compressed code is a variable-length prefix code: decodetab's tables
// report both the decoded value and the number of bits the code actually
// consumed, so resolving it means reading a fixed-width field speculatively
// and then rewinding the cursor to land exactly on the next protocol field -
// a "decode, then correct the cursor" shape driven by table lookups instead
// of arithmetic renormalization.
package hitmap

import (
	"github.com/dantrim/itkpix-decode/internal/bitio"
	"github.com/dantrim/itkpix-decode/internal/decodetab"
)

// fieldWidth is the width, in bits, of both the plain and the compressed
// hit-map field read from the stream before any table lookup.
const fieldWidth = 16

// rowMapWidth is the width of the compressed code's row-map continuation
// field (§4.4).
const rowMapWidth = 14

// noPreRewind is the BinaryTreeHitMap rollback_bits sentinel meaning "read
// the row-map field immediately, no cursor correction first."
const noPreRewind = 0xFF

// Resolve decodes the hit map at the reader's current cursor position,
// leaving the cursor exactly on the next protocol field.
//
// When compressed is false, the 16 bits just read are the hit map itself.
// When compressed is true, the bits just read are an index into
// decodetab.BinaryTreeHitMap; depending on that entry's rollback_bits, the
// resolver may additionally consume a 14-bit row-map field and perform a
// second table lookup before the hit map is complete.
func Resolve(r *bitio.Reader, compressed bool) (uint16, error) {
	raw, err := r.Read(fieldWidth)
	if err != nil {
		return 0, err
	}
	if !compressed {
		return uint16(raw), nil
	}
	return resolveCompressed(r, uint16(raw))
}

func resolveCompressed(r *bitio.Reader, raw uint16) (uint16, error) {
	entry := decodetab.BinaryTreeHitMap[raw]
	hitmapLow := uint16(entry & 0xFFFF)
	advanceCost := uint8((entry >> 16) & 0xFF)
	rollbackBits := uint8((entry >> 24) & 0xFF)

	if rollbackBits == 0 {
		r.Rewind(uint(advanceCost))
		return hitmapLow, nil
	}

	if rollbackBits != noPreRewind {
		r.Rewind(uint(rollbackBits))
	}

	rowRaw, err := r.Read(rowMapWidth)
	if err != nil {
		return 0, err
	}
	rowEntry := decodetab.BinaryTreeRowHMap[uint16(rowRaw)]
	hitmap := hitmapLow | uint16(rowEntry&0xFF)<<8
	r.Rewind(uint((rowEntry >> 8) & 0xFF))
	return hitmap, nil
}
