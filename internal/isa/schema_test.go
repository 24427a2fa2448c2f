package isa

import "testing"

// TestTableEntriesRoundTrip checks that every schema entry's declared
// fields survive an encode/decode round trip and that Decode picks the
// same entry back out, per spec §4.A/§4.D.
func TestTableEntriesRoundTrip(t *testing.T) {
	for _, e := range Table {
		t.Run(e.Mnemonic, func(t *testing.T) {
			values := make(map[byte]uint64)
			for letter, positions := range e.positions {
				width := len(positions)
				var v uint64
				if width >= 64 {
					v = ^uint64(0)
				} else {
					v = (uint64(1) << uint(width)) - 1
				}
				// set every bit of the field (for reg|null and cond fields
				// that is the null sentinel); only raw bits are compared
				values[letter] = v &^ 0
			}
			word := e.Encode(values)
			if !e.Matches(word) {
				t.Fatalf("entry %q does not match its own encoded word %#010x", e.Mnemonic, word)
			}
			got, fields, ok := Decode(word)
			if !ok {
				t.Fatalf("Decode failed for %q's own word %#010x", e.Mnemonic, word)
			}
			if got.Mnemonic != e.Mnemonic || got.Op != e.Op {
				t.Fatalf("Decode returned %q/%v, want %q/%v", got.Mnemonic, got.Op, e.Mnemonic, e.Op)
			}
			for letter, want := range values {
				if fields[letter] != want {
					t.Errorf("field %q: got %#x, want %#x", letter, fields[letter], want)
				}
			}
		})
	}
}

func TestDecodeUnmatchedWordFails(t *testing.T) {
	// All opcode bits set to an unassigned pattern.
	_, _, ok := Decode(0xFFFFFFFF)
	if ok {
		t.Fatal("expected Decode to reject an unassigned opcode pattern")
	}
}

func TestRegNullRoundTrip(t *testing.T) {
	if got := DecodeRegNull(EncodeRegNull(NoRegister)); !got.None() {
		t.Fatalf("NoRegister round trip: got %+v", got)
	}
	r := SomeRegister(7)
	if got := DecodeRegNull(EncodeRegNull(r)); got != r {
		t.Fatalf("SomeRegister(7) round trip: got %+v", got)
	}
}

func TestCond8RoundTrip(t *testing.T) {
	for _, c := range cond8Names {
		v, ok := EncodeCond8(c)
		if !ok {
			t.Fatalf("EncodeCond8(%v) failed", c)
		}
		if got := DecodeCond8(v); got != c {
			t.Errorf("Cond8 round trip for %v: got %v", c, got)
		}
	}
	if _, ok := EncodeCond8(CondL); ok {
		t.Error("expected CondL to be unrepresentable in the 3-bit cjmp field")
	}
}
