// Package pixel projects decoded (ccol, qrow, hit-map slot) coordinates
// onto absolute chip-array positions.
//
// ITkPix/RD53B arranges its 400x384 pixel array as 50 core columns of 8
// pixels each; a (CCOL, qrow) cell covers an 8-wide by 2-tall block of 16
// pixel slots, indexed 0-based for normal hits and addressed through a
// separate, 1-based staging table for the precision ToT/ToA path (qrow
// >= 196). Both paths are pure functions: given the already-decoded
// fields, they either return a valid (col, row) or report the chip
// bounds violation the decode tables would otherwise mask.
package pixel

import (
	"github.com/dantrim/itkpix-decode/internal/decodeerr"
	"github.com/dantrim/itkpix-decode/internal/decodetab"
)

// NumCols and NumRows are the ITkPix/RD53B pixel array dimensions.
const (
	NumCols = 400
	NumRows = 384
)

// colsPerCore is the number of pixel columns one core column spans.
const colsPerCore = 8

// Normal projects a non-precision hit. packedColRow is one entry from
// decodetab.PlainHMapToColRow: (col_offset<<4)|row_offset. The returned
// col and row are 0-based.
func Normal(ccol, qrow uint8, packedColRow uint8) (col, row int, err error) {
	colOffset := int(packedColRow >> 4)
	rowOffset := int(packedColRow & 0xF)

	col = (int(ccol)-1)*colsPerCore + colOffset
	row = int(qrow)*2 + rowOffset

	if col < 0 || col >= NumCols || row < 0 || row >= NumRows {
		return 0, 0, decodeerr.OutOfBounds(ccol, qrow, col, row)
	}
	return col, row, nil
}

// Precision projects a precision ToT/ToA hit (qrow >= 196). step is the
// precision-path step counter: step%4 selects the staging row and step/2
// gives the row; the stream decoder always passes 0 (precisionStep in
// internal/stream). ibus is the 4-bit lane (0-3) the hit was read from. The returned col
// and row are 1-based, per §4.6.
func Precision(ccol, qrow uint8, step, ibus int) (col, row int, err error) {
	offset := int(decodetab.PToTMaskStaging[step%4][ibus])
	col = (int(ccol)-1)*colsPerCore + offset + 1
	row = step/2 + 1

	if col < 1 || col > NumCols || row < 1 || row > NumRows {
		return 0, 0, decodeerr.OutOfBounds(ccol, qrow, col, row)
	}
	return col, row, nil
}
