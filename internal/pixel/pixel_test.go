package pixel

import (
	"testing"

	"github.com/dantrim/itkpix-decode/internal/decodeerr"
)

func TestNormal_OriginSlot(t *testing.T) {
	col, row, err := Normal(1, 0, 0x00)
	if err != nil {
		t.Fatalf("Normal: %v", err)
	}
	if col != 0 || row != 0 {
		t.Errorf("(col,row) = (%d,%d), want (0,0)", col, row)
	}
}

func TestNormal_SecondSlot(t *testing.T) {
	// packedColRow 0x01: colOffset 0, rowOffset 1 - the slot directly above the origin.
	col, row, err := Normal(1, 0, 0x01)
	if err != nil {
		t.Fatalf("Normal: %v", err)
	}
	if col != 0 || row != 1 {
		t.Errorf("(col,row) = (%d,%d), want (0,1)", col, row)
	}
}

func TestNormal_HighCoreColumn(t *testing.T) {
	// CCOL 50 (the last of the array's 50 core columns), colOffset 7 (last
	// slot in the cell), qrow 191 (max in-bounds qrow): should land inside
	// [0,400)x[0,384).
	col, row, err := Normal(50, 191, 7<<4|1)
	if err != nil {
		t.Fatalf("Normal: %v", err)
	}
	wantCol := (50-1)*8 + 7
	wantRow := 191*2 + 1
	if col != wantCol || row != wantRow {
		t.Errorf("(col,row) = (%d,%d), want (%d,%d)", col, row, wantCol, wantRow)
	}
}

func TestNormal_OutOfBoundsRow(t *testing.T) {
	_, _, err := Normal(1, 192, 0x00) // qrow 192 * 2 = 384, out of [0,384)
	if err == nil {
		t.Fatal("expected out-of-bounds error, got nil")
	}
	de, ok := err.(*decodeerr.DecodeError)
	if !ok {
		t.Fatalf("error type = %T, want *decodeerr.DecodeError", err)
	}
	if de.Kind != decodeerr.KindOutOfBounds {
		t.Errorf("Kind = %v, want KindOutOfBounds", de.Kind)
	}
}

func TestNormal_OutOfBoundsColumn(t *testing.T) {
	_, _, err := Normal(56, 0, 0x00) // ccol 56 is an escape sentinel, never a real core column
	if err == nil {
		t.Fatal("expected out-of-bounds error, got nil")
	}
}

func TestPrecision_FirstStep(t *testing.T) {
	col, row, err := Precision(1, 196, 0, 0)
	if err != nil {
		t.Fatalf("Precision: %v", err)
	}
	if col != 1 || row != 1 {
		t.Errorf("(col,row) = (%d,%d), want (1,1)", col, row)
	}
}

func TestPrecision_StagingWrapsEveryFourSteps(t *testing.T) {
	// step=0 and step=4 share the same staging row (step%4 == 0).
	col0, row0, err := Precision(1, 196, 0, 2)
	if err != nil {
		t.Fatalf("Precision: %v", err)
	}
	col4, row4, err := Precision(1, 196, 4, 2)
	if err != nil {
		t.Fatalf("Precision: %v", err)
	}
	if col0 != col4 {
		t.Errorf("col at step 0 = %d, step 4 = %d, want equal staging column", col0, col4)
	}
	if row0 == row4 {
		t.Errorf("row at step 0 = %d, step 4 = %d, want different rows", row0, row4)
	}
}

func TestPrecision_OutOfBounds(t *testing.T) {
	_, _, err := Precision(56, 196, 0, 0)
	if err == nil {
		t.Fatal("expected out-of-bounds error, got nil")
	}
}
