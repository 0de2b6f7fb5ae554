// Package framer reassembles interleaved 32-bit words from the hardware
// controller into per-channel Streams of 64-bit ITkPix blocks.
//
// A chip-id's low 2 bits select its channel, so CH is a 2-bit field; a
// single Framer can therefore multiplex up to four channels from one
// interleaved word sequence, exactly as the original multi-channel framer
// did by keeping one in-progress buffer per channel.
package framer

import (
	"github.com/dantrim/itkpix-decode/internal/decodeerr"
)

// Stream is an ordered sequence of 64-bit blocks sharing one channel,
// delimited by NS=1 on the first block only.
type Stream struct {
	Channel uint8
	Blocks  []uint64
}

// OnDrop is called whenever a block's channel is not among the channels
// the Framer was configured to accept. The Framer always drops such
// blocks; OnDrop only gives the caller visibility into the decision.
type OnDrop func(channel uint8, block uint64)

// Framer ingests interleaved 32-bit words and produces per-channel
// Streams. It is push-only and single-threaded: all mutation happens on
// the goroutine calling PushWords/PushBlock.
type Framer struct {
	expected map[uint8]bool
	onDrop   OnDrop

	inProgress map[uint8]*Stream
	completed  map[uint8][]Stream
}

// New creates a Framer accepting blocks only on the given channels. onDrop
// may be nil, in which case dropped blocks are silently discarded.
func New(expectedChannels []uint8, onDrop OnDrop) *Framer {
	expected := make(map[uint8]bool, len(expectedChannels))
	for _, ch := range expectedChannels {
		expected[ch] = true
	}
	if onDrop == nil {
		onDrop = func(uint8, uint64) {}
	}
	return &Framer{
		expected:   expected,
		onDrop:     onDrop,
		inProgress: make(map[uint8]*Stream),
		completed:  make(map[uint8][]Stream),
	}
}

const (
	nsShift = 63
	chShift = 61
	chMask  = 0x3
)

// PushWords pairs consecutive 32-bit words into 64-bit blocks
// (word0 << 32 | word1, word0 is the MS half) and pushes each. The word
// count must be even.
func (f *Framer) PushWords(words []uint32) error {
	if len(words)%2 != 0 {
		return decodeerr.OddWordCount(len(words))
	}
	for i := 0; i < len(words); i += 2 {
		block := uint64(words[i])<<32 | uint64(words[i+1])
		f.PushBlock(block)
	}
	return nil
}

// PushBlock ingests a single 64-bit block, routing it to its channel's
// buffer and emitting a completed Stream whenever a new-stream block
// arrives on a channel whose buffer is non-empty.
func (f *Framer) PushBlock(block uint64) {
	ns := block>>nsShift&1 == 1
	ch := uint8(block >> chShift & chMask)

	if !f.expected[ch] {
		f.onDrop(ch, block)
		return
	}

	if ns {
		if cur, ok := f.inProgress[ch]; ok && len(cur.Blocks) > 0 {
			f.completed[ch] = append(f.completed[ch], *cur)
			delete(f.inProgress, ch)
		}
	}

	cur, ok := f.inProgress[ch]
	if !ok {
		cur = &Stream{Channel: ch}
		f.inProgress[ch] = cur
	}
	cur.Blocks = append(cur.Blocks, block)
}

// StreamsFor returns the Streams completed so far for channel ch. A
// Stream still being accumulated (no later NS=1 block has closed it) is
// not included until Flush is called.
func (f *Framer) StreamsFor(ch uint8) []Stream {
	return append([]Stream(nil), f.completed[ch]...)
}

// Flush closes out any in-progress streams across all channels, moving
// them into the completed set. Call it once the caller knows no more
// blocks are coming (e.g. end of run), since a trailing stream has no
// following NS=1 block to trigger its own emission.
func (f *Framer) Flush() {
	for ch, cur := range f.inProgress {
		if len(cur.Blocks) > 0 {
			f.completed[ch] = append(f.completed[ch], *cur)
		}
		delete(f.inProgress, ch)
	}
}
