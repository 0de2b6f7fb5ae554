// Package rd53b decodes the compressed event stream an ITkPix (RD53B)
// pixel-detector readout chip returns: pairing 32-bit hardware words into
// 64-bit blocks, reassembling per-channel streams from their framing
// bits, and walking the variable-length bit protocol into Events and
// Hits with absolute (col, row) pixel coordinates.
//
// Configuring the chip itself (register writes, pixel masks, trigger
// setup) and producing the raw 32-bit words are out of scope - this
// package only consumes the word sequence a hardware controller already
// produced.
package rd53b

import (
	"github.com/dantrim/itkpix-decode/internal/framer"
	"github.com/dantrim/itkpix-decode/internal/stream"
)

// Hit and Event re-export internal/stream's decoded value types. The
// split keeps the bit-level state machine (internal/stream) unexported
// while this package stays the thin orchestration surface callers use.
type Hit = stream.Hit
type Event = stream.Event

// Options controls decode-time behavior that the chip's own
// configuration registers would otherwise drive; see
// internal/stream.Options for field documentation.
type Options = stream.Options

// DefaultOptions returns the Options a compressed, precision-enabled,
// full-ToT readout uses.
func DefaultOptions() Options {
	return stream.DefaultOptions()
}

// Config selects which channels a Decoder accepts blocks on and how it
// decodes the streams it reassembles.
type Config struct {
	// Channels lists the channel IDs (chip-id low 2 bits) this Decoder
	// expects blocks on. A block on any other channel is dropped.
	Channels []uint8

	// Options is passed through to every stream decode.
	Options Options

	// OnDrop, if non-nil, is called for every block on an unconfigured
	// channel - the framer always drops it, this only gives visibility.
	OnDrop func(channel uint8, block uint64)
}

// Decoder reassembles interleaved 32-bit hardware words into per-channel
// streams and decodes each into Events as they complete.
type Decoder struct {
	framer *framer.Framer
	opts   Options
}

// NewDecoder creates a Decoder configured per cfg.
func NewDecoder(cfg Config) *Decoder {
	return &Decoder{
		framer: framer.New(cfg.Channels, cfg.OnDrop),
		opts:   cfg.Options,
	}
}

// PushWords pairs words into 64-bit blocks (big-endian: word0 is the MS
// half) and routes each to its channel's stream buffer. The word count
// must be even.
func (d *Decoder) PushWords(words []uint32) error {
	return d.framer.PushWords(words)
}

// Flush closes any stream still accumulating blocks, across all
// channels, making it available from DecodeChannel. Call it once no
// more blocks are coming - a trailing stream has no later NS=1 block to
// trigger its own emission.
func (d *Decoder) Flush() {
	d.framer.Flush()
}

// DecodeChannel decodes every completed stream reassembled so far for
// ch, returning their Events in arrival order. It stops at the first
// malformed stream, returning the Events decoded up to that point
// alongside the error for forensic use.
func (d *Decoder) DecodeChannel(ch uint8) ([]Event, error) {
	var all []Event
	for _, s := range d.framer.StreamsFor(ch) {
		events, err := stream.Decode(s, d.opts)
		all = append(all, events...)
		if err != nil {
			return all, err
		}
	}
	return all, nil
}

// Decode is a one-shot convenience wrapper over Decoder: it pairs words,
// closes out any trailing stream, and decodes every configured channel.
// The returned map is populated per-channel even when a later channel's
// decode fails, and the first error encountered (if any) is returned
// alongside it.
func Decode(words []uint32, cfg Config) (map[uint8][]Event, error) {
	d := NewDecoder(cfg)
	if err := d.PushWords(words); err != nil {
		return nil, err
	}
	d.Flush()

	out := make(map[uint8][]Event, len(cfg.Channels))
	var firstErr error
	for _, ch := range cfg.Channels {
		events, err := d.DecodeChannel(ch)
		out[ch] = events
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return out, firstErr
}
