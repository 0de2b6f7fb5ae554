package decodeerr

import "testing"

func TestKind_String(t *testing.T) {
	cases := map[Kind]string{
		KindMalformedHeader: "MalformedHeader",
		KindNoTot:           "NoTot",
		KindOutOfBounds:     "OutOfBounds",
		KindCursorOverflow:  "CursorOverflow",
		KindOddWordCount:    "OddWordCount",
		Kind(99):            "Unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestNoTot_CarriesForensicContext(t *testing.T) {
	err := NoTot(12, 34, 0x0000, 999)
	if err.Kind != KindNoTot {
		t.Errorf("Kind = %v, want KindNoTot", err.Kind)
	}
	if err.CCOL != 12 || err.QRow != 34 || err.HitMap != 0 || err.Cursor != 999 {
		t.Errorf("got %+v, want CCOL=12 QRow=34 HitMap=0 Cursor=999", err)
	}
	if err.Error() == "" {
		t.Error("Error() returned empty string")
	}
}

func TestOutOfBounds_CarriesColRow(t *testing.T) {
	err := OutOfBounds(5, 10, 400, 0)
	if err.Kind != KindOutOfBounds {
		t.Errorf("Kind = %v, want KindOutOfBounds", err.Kind)
	}
	if err.Col != 400 || err.Row != 0 {
		t.Errorf("got Col=%d Row=%d, want Col=400 Row=0", err.Col, err.Row)
	}
}

func TestOddWordCount_Message(t *testing.T) {
	err := OddWordCount(7)
	if err.NWords != 7 {
		t.Errorf("NWords = %d, want 7", err.NWords)
	}
	if err.Error() == "" {
		t.Error("Error() returned empty string")
	}
}
