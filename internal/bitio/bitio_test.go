package bitio

import "testing"

func TestReader_WithinBlock(t *testing.T) {
	// Block 0: NS=1, CH=0b01, tag=0xAB, then some payload.
	block := uint64(1)<<63 | uint64(0b01)<<61 | uint64(0xAB)<<53
	r := NewReader([]uint64{block})

	ns, err := r.Read(1)
	if err != nil || ns != 1 {
		t.Fatalf("NS = %d, err = %v, want 1, nil", ns, err)
	}
	ch, err := r.Read(2)
	if err != nil || ch != 0b01 {
		t.Fatalf("CH = %d, err = %v, want 1, nil", ch, err)
	}
	tag, err := r.Read(8)
	if err != nil || tag != 0xAB {
		t.Fatalf("tag = %#x, err = %v, want 0xab, nil", tag, err)
	}
	if r.Cursor() != 11 {
		t.Errorf("cursor = %d, want 11", r.Cursor())
	}
}

func TestReader_RewindReread(t *testing.T) {
	block := uint64(0b101)<<61 | uint64(0x3C)<<53
	r := NewReader([]uint64{block})
	if _, err := r.Read(11); err != nil {
		t.Fatal(err)
	}
	r.Rewind(8)
	if r.Cursor() != 3 {
		t.Fatalf("cursor after rewind = %d, want 3", r.Cursor())
	}
	tag, err := r.Read(8)
	if err != nil || tag != 0x3C {
		t.Fatalf("reread tag = %#x, err = %v, want 0x3c, nil", tag, err)
	}
}

// TestReader_CrossBlockSkipsFraming builds a CCOL (6-bit) field straddling
// two blocks, 3 bits in block 0's low bits and 3 bits in block 1, such that
// the reader must skip block 1's 3-bit NS+CH prefix to land on the right
// value (scenario S6).
func TestReader_CrossBlockSkipsFraming(t *testing.T) {
	// Position the cursor so that exactly 3 bits of CCOL remain in block 0
	// (its lowest 3 bits) and the other 3 live in block 1, directly below
	// its NS+CH prefix (bits 60..58).
	wantCCOL := uint32(0b101011)
	msb3 := (wantCCOL >> 3) & 0x7 // the 3 bits read first, from block 0's tail
	lsb3 := wantCCOL & 0x7        // the 3 bits read second, from block 1 below its prefix

	block0 := uint64(msb3) // occupies bits 2..0 of block 0; bits 63..3 are burned by a prior 61-bit read
	block1 := uint64(0b110)<<61 | uint64(lsb3)<<58

	r := NewReader([]uint64{block0, block1})
	// Prime the cursor to 61 with two reads, since Read only accepts widths
	// up to 32 bits and 61 alone would exceed that.
	if _, err := r.Read(32); err != nil {
		t.Fatalf("priming read (32) failed: %v", err)
	}
	if _, err := r.Read(29); err != nil {
		t.Fatalf("priming read (29) failed: %v", err)
	}
	if r.Cursor() != 61 {
		t.Fatalf("cursor after priming = %d, want 61", r.Cursor())
	}
	ccol, err := r.Read(6)
	if err != nil {
		t.Fatalf("cross-block read failed: %v", err)
	}
	if ccol != wantCCOL {
		t.Errorf("ccol = %06b, want %06b", ccol, wantCCOL)
	}
	if r.Cursor() != 67 {
		t.Errorf("cursor = %d, want 67", r.Cursor())
	}
}

func TestReader_CursorOverflow(t *testing.T) {
	r := NewReader([]uint64{0})
	if _, err := r.Read(32); err != nil {
		t.Fatalf("unexpected error reading within bounds: %v", err)
	}
	if _, err := r.Read(33); err == nil {
		t.Fatal("expected overflow error, got nil")
	} else if _, ok := err.(*ErrCursorOverflow); !ok {
		t.Errorf("error type = %T, want *ErrCursorOverflow", err)
	}
}

func TestReader_InvariantNeverExceedsBudget(t *testing.T) {
	blocks := []uint64{0xFFFFFFFFFFFFFFFF, 0xFFFFFFFFFFFFFFFF, 0xFFFFFFFFFFFFFFFF}
	r := NewReader(blocks)
	total := uint(0)
	for {
		if _, err := r.Read(13); err != nil {
			break
		}
		total += 13
	}
	if r.Cursor() > uint(61*len(blocks)) {
		// Property #3: the cursor of a successfully decoded stream never
		// exceeds 61 bits per block, though the raw bitio cursor (which
		// counts framing bits too) can legitimately reach 64*n; this just
		// checks we didn't run away past the hard block budget.
		if r.Cursor() > uint(blockBits*len(blocks)) {
			t.Fatalf("cursor %d exceeds total block budget", r.Cursor())
		}
	}
}
