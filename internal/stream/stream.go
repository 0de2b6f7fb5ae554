// Package stream walks one ITkPix channel's reassembled Stream and
// materializes its Events and Hits (§4.5).
//
// The state machine mirrors the protocol grammar directly: an outer loop
// reads CCOL fields and dispatches to end-of-stream, internal-tag escape,
// or a core-column's hit-record loop; the inner loop reads IS_LAST,
// IS_NEIGHBOR, qrow, and a hit map, then resolves either the normal ToT
// path or the precision ToT/ToA path before checking IS_LAST to decide
// whether to continue under the same core column.
package stream

import (
	"github.com/dantrim/itkpix-decode/internal/bitio"
	"github.com/dantrim/itkpix-decode/internal/decodeerr"
	"github.com/dantrim/itkpix-decode/internal/decodetab"
	"github.com/dantrim/itkpix-decode/internal/framer"
	"github.com/dantrim/itkpix-decode/internal/hitmap"
	"github.com/dantrim/itkpix-decode/internal/pixel"
)

// precisionQRow is the qrow threshold that switches a hit record from the
// normal ToT path to the precision ToT/ToA path.
const precisionQRow = 196

// CCOL field meanings: 0 terminates the stream, [1,55] selects a core
// column, anything >= 56 escapes into an 11-bit internal-tag continuation.
const ccolEscapeMin = 56

// Options configures decode-time behavior the chip's own configuration
// registers (out of this decoder's scope, §1) would otherwise drive.
type Options struct {
	// Compressed selects the two-level binary-tree hit-map code - the
	// chip's DataEnRaw register bit. False reads a plain 16-bit hit map.
	Compressed bool

	// DropToT mirrors a rate-study mode in the original tool: when the
	// chip is configured to omit ToT data from the stream entirely, the
	// decoder must not read a tot_field either, or the cursor would
	// desync on the next field. Hits are still emitted, with ToT 0.
	DropToT bool

	// EnablePrecision gates emission of precision ToT/ToA hits (qrow >=
	// 196). Their bits are always parsed regardless, to keep the cursor
	// aligned; this only controls whether they are materialized as
	// Hits, since the precision path's step counter is a provisional,
	// always-zero placeholder - see precisionStep.
	EnablePrecision bool
}

// DefaultOptions returns the Options a compressed, precision-enabled,
// full-ToT readout uses.
func DefaultOptions() Options {
	return Options{Compressed: true, EnablePrecision: true}
}

// Hit is one decoded pixel hit. Normal hits carry ToT; precision hits
// (Precision true) carry PToT/PToA instead.
type Hit struct {
	Col, Row  int
	ToT       uint8
	Precision bool
	PToT      uint16
	PToA      uint8
}

// Event is one trigger's worth of hits, tagged with either the stream's
// initial 8-bit header tag or an 11-bit internal tag carried by a CCOL
// escape.
type Event struct {
	Tag  uint16
	Hits []Hit
}

// Decode walks one framer.Stream's bit sequence and returns its Events in
// protocol order. On a malformed stream it returns the Events and Hits
// materialized before the failure alongside the error (§7) - callers may
// use the partial output for forensics even when decoding fails.
func Decode(s framer.Stream, opts Options) ([]Event, error) {
	r := bitio.NewReader(s.Blocks)

	ns, err := read(r, 1)
	if err != nil {
		return nil, err
	}
	if ns != 1 {
		return nil, decodeerr.MalformedHeader(s.Channel, r.Cursor()-1)
	}
	ch, err := read(r, 2)
	if err != nil {
		return nil, err
	}
	if uint8(ch) != s.Channel {
		return nil, decodeerr.MalformedHeader(s.Channel, r.Cursor()-2)
	}
	tag, err := read(r, 8)
	if err != nil {
		return nil, err
	}

	var events []Event
	cur := Event{Tag: uint16(tag)}

	for {
		ccol, err := read(r, 6)
		if err != nil {
			events = append(events, cur)
			return events, err
		}

		switch {
		case ccol == 0:
			events = append(events, cur)
			return events, nil

		case ccol >= ccolEscapeMin:
			events = append(events, cur)
			cont, err := read(r, 5)
			if err != nil {
				return events, err
			}
			cur = Event{Tag: uint16(ccol<<5) | uint16(cont)}

		default:
			hits, err := decodeCoreColumn(r, uint8(ccol), opts)
			cur.Hits = append(cur.Hits, hits...)
			if err != nil {
				events = append(events, cur)
				return events, err
			}
		}
	}
}

// decodeCoreColumn runs the hit-record loop for one CCOL until IS_LAST=1.
// qrow resets to 0 on entry, per §4.5's hit_record grammar.
func decodeCoreColumn(r *bitio.Reader, ccol uint8, opts Options) ([]Hit, error) {
	var hits []Hit
	var qrow uint8

	for {
		isLast, err := read(r, 1)
		if err != nil {
			return hits, err
		}
		isNeighbor, err := read(r, 1)
		if err != nil {
			return hits, err
		}

		if isNeighbor == 1 {
			qrow++
		} else {
			q, err := read(r, 8)
			if err != nil {
				return hits, err
			}
			qrow = uint8(q)
		}

		hm, err := hitmap.Resolve(r, opts.Compressed)
		if err != nil {
			return hits, wrapReadErr(r, err)
		}

		var more []Hit
		if qrow >= precisionQRow {
			more, err = decodePrecision(r, ccol, qrow, hm, opts)
		} else {
			more, err = decodeNormal(r, ccol, qrow, hm, opts)
		}
		hits = append(hits, more...)
		if err != nil {
			return hits, err
		}

		if isLast == 1 {
			return hits, nil
		}
	}
}

// decodeNormal resolves the normal ToT path: a hit exists for every set
// bit in hm, each paired with a 4-bit ToT field unless opts.DropToT
// suppresses the entire tot_section.
func decodeNormal(r *bitio.Reader, ccol, qrow uint8, hm uint16, opts Options) ([]Hit, error) {
	n := decodetab.PlainHMapToColRowArrSize[hm]
	if n == 0 {
		return nil, decodeerr.NoTot(ccol, qrow, hm, r.Cursor())
	}

	var totField uint64
	if !opts.DropToT {
		v, err := readWide(r, uint(4*n))
		if err != nil {
			return nil, err
		}
		totField = v
	}

	hits := make([]Hit, 0, n)
	for i := uint8(0); i < n; i++ {
		packed := decodetab.PlainHMapToColRow[hm][i]
		col, row, err := pixel.Normal(ccol, qrow, packed)
		if err != nil {
			return hits, err
		}
		if opts.DropToT {
			hits = append(hits, Hit{Col: col, Row: row})
			continue
		}
		tot := uint8((totField >> (uint(i) * 4)) & 0xF)
		if tot == 0 {
			continue
		}
		hits = append(hits, Hit{Col: col, Row: row, ToT: tot})
	}
	return hits, nil
}

// readWide reads an n-bit field (1 <= n <= 64) as two cursor-ordered reads
// when n exceeds bitio.Reader's 32-bit-per-call limit. The hit map's
// population count can reach 16, so a normal-path tot_section can be up to
// 64 bits wide - wider than a single Read call accepts - but the field is
// still one contiguous, MSB-first run from the stream's point of view, so
// the first chunk read contributes the more significant bits.
func readWide(r *bitio.Reader, n uint) (uint64, error) {
	if n <= 32 {
		v, err := read(r, n)
		return uint64(v), err
	}
	hi, err := read(r, n-32)
	if err != nil {
		return 0, err
	}
	lo, err := read(r, 32)
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}

// precisionStep is the precision-path step counter. The reference
// implementation this protocol is drawn from hard-codes it to zero rather
// than incrementing across precision hit records within a stream; this
// decoder preserves that behavior rather than inventing an increment rule
// the chip documentation doesn't confirm.
const precisionStep = 0

// decodePrecision resolves the precision ToT/ToA path: one hit per active
// ibus lane, its 16-bit buffer built from the 4-bit nibbles of whichever
// iread slots hitbus marks as present.
func decodePrecision(r *bitio.Reader, ccol, qrow uint8, hm uint16, opts Options) ([]Hit, error) {
	var hits []Hit
	for ibus := 0; ibus < 4; ibus++ {
		hitbus := (hm >> uint(ibus*4)) & 0xF
		if hitbus == 0 {
			continue
		}

		buf := uint16(0xFFFF)
		for iread := 0; iread < 4; iread++ {
			if hitbus&(1<<uint(iread)) == 0 {
				continue
			}
			nibble, err := read(r, 4)
			if err != nil {
				return hits, err
			}
			shift := uint(iread * 4)
			buf = (buf &^ (uint16(0xF) << shift)) | (uint16(nibble) << shift)
		}

		if !opts.EnablePrecision {
			continue
		}
		col, row, err := pixel.Precision(ccol, qrow, precisionStep, ibus)
		if err != nil {
			return hits, err
		}
		hits = append(hits, Hit{
			Col:       col,
			Row:       row,
			Precision: true,
			PToT:      buf & 0x7FF,
			PToA:      uint8(buf >> 11),
		})
	}
	return hits, nil
}

// read wraps bitio.Reader.Read, translating its ErrCursorOverflow into
// the public decodeerr taxonomy so every caller sees one consistent
// error family regardless of which layer ran out of bits.
func read(r *bitio.Reader, n uint) (uint32, error) {
	v, err := r.Read(n)
	if err != nil {
		return 0, wrapReadErr(r, err)
	}
	return v, nil
}

func wrapReadErr(r *bitio.Reader, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*bitio.ErrCursorOverflow); ok {
		return decodeerr.CursorOverflow(r.Cursor())
	}
	return err
}
