// Package decodeerr defines the structured, forensic error types returned
// by the ITkPix stream decoder. They are deliberately terminal values, not
// wrapped chains: a malformed stream is a fatal decoding error and the
// caller needs the raw context (CCOL, qrow, tag, hitmap, cursor) to do
// offline forensic analysis, not a stack of "while doing X" prose.
package decodeerr

import "fmt"

// Kind distinguishes the five decode error taxonomies from spec section 7.
type Kind int

const (
	// KindMalformedHeader: NS bit was not 1 at the start of a stream.
	KindMalformedHeader Kind = iota
	// KindNoTot: a hit map with population 0 reached the normal ToT path.
	KindNoTot
	// KindOutOfBounds: a projected pixel fell outside the 400x384 array.
	KindOutOfBounds
	// KindCursorOverflow: a read ran past the end of the stream's blocks.
	KindCursorOverflow
	// KindOddWordCount: the framer received an odd number of 32-bit words.
	KindOddWordCount
)

func (k Kind) String() string {
	switch k {
	case KindMalformedHeader:
		return "MalformedHeader"
	case KindNoTot:
		return "NoTot"
	case KindOutOfBounds:
		return "OutOfBounds"
	case KindCursorOverflow:
		return "CursorOverflow"
	case KindOddWordCount:
		return "OddWordCount"
	default:
		return "Unknown"
	}
}

// DecodeError carries a decode failure plus whichever forensic fields were
// known at the point of failure. Fields not relevant to Kind are zero.
type DecodeError struct {
	Kind Kind

	Channel uint8
	CCOL    uint8
	QRow    uint8
	Tag     uint16
	HitMap  uint16
	Col     int
	Row     int
	Cursor  uint
	NWords  int
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case KindMalformedHeader:
		return fmt.Sprintf("itkpix: malformed header on channel %d: NS bit was not set at stream start (cursor %d)", e.Channel, e.Cursor)
	case KindNoTot:
		return fmt.Sprintf("itkpix: no-ToT fragment: ccol=%d qrow=%d hitmap=%#04x (cursor %d)", e.CCOL, e.QRow, e.HitMap, e.Cursor)
	case KindOutOfBounds:
		return fmt.Sprintf("itkpix: pixel (col=%d, row=%d) out of bounds for ccol=%d qrow=%d", e.Col, e.Row, e.CCOL, e.QRow)
	case KindCursorOverflow:
		return fmt.Sprintf("itkpix: cursor overflow: read past end of stream at cursor %d", e.Cursor)
	case KindOddWordCount:
		return fmt.Sprintf("itkpix: odd 32-bit word count (%d words)", e.NWords)
	default:
		return "itkpix: decode error"
	}
}

// MalformedHeader reports a stream whose first block did not carry NS=1.
func MalformedHeader(channel uint8, cursor uint) *DecodeError {
	return &DecodeError{Kind: KindMalformedHeader, Channel: channel, Cursor: cursor}
}

// NoTot reports a zero-population hit map reaching the normal ToT path.
func NoTot(ccol, qrow uint8, hitmap uint16, cursor uint) *DecodeError {
	return &DecodeError{Kind: KindNoTot, CCOL: ccol, QRow: qrow, HitMap: hitmap, Cursor: cursor}
}

// OutOfBounds reports a projected pixel outside the 400x384 chip array.
func OutOfBounds(ccol, qrow uint8, col, row int) *DecodeError {
	return &DecodeError{Kind: KindOutOfBounds, CCOL: ccol, QRow: qrow, Col: col, Row: row}
}

// CursorOverflow reports a read that ran past the end of the stream.
func CursorOverflow(cursor uint) *DecodeError {
	return &DecodeError{Kind: KindCursorOverflow, Cursor: cursor}
}

// OddWordCount reports an odd number of 32-bit input words.
func OddWordCount(nWords int) *DecodeError {
	return &DecodeError{Kind: KindOddWordCount, NWords: nWords}
}
