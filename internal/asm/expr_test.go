package asm

import "testing"

type fakeCtx struct {
	labels map[string]uint64
	addr   uint64
}

func (c fakeCtx) Lookup(name string) (uint64, bool) { v, ok := c.labels[name]; return v, ok }
func (c fakeCtx) CurrentAddress() uint64             { return c.addr }

func eval(t *testing.T, expr string, ctx ExprContext) uint64 {
	t.Helper()
	v, err := ParseEvalExpr(expr, Position{Filename: "t", Line: 1}, ctx)
	if err != nil {
		t.Fatalf("ParseEvalExpr(%q): %v", expr, err)
	}
	return v
}

func TestExprPrecedence(t *testing.T) {
	ctx := fakeCtx{labels: map[string]uint64{}}
	cases := map[string]uint64{
		"1 + 2 * 3":     7,
		"(1 + 2) * 3":   9,
		"1 << 4":        16,
		"0xFF & 0x0F":   0x0F,
		"1 | 2 ^ 3":     1 | (2 ^ 3),
		"10 - 4 - 3":    3,
		"2 * 3 + 4 * 5": 26,
		"7 % 3":         1,
		"8 / 2 / 2":     2,
	}
	for expr, want := range cases {
		if got := eval(t, expr, ctx); got != want {
			t.Errorf("%q = %d, want %d", expr, got, want)
		}
	}
}

func TestExprCurrentAddress(t *testing.T) {
	ctx := fakeCtx{labels: map[string]uint64{}, addr: 0x1000}
	if got := eval(t, ". + 4", ctx); got != 0x1004 {
		t.Errorf(". + 4 = %#x, want %#x", got, 0x1004)
	}
}

func TestExprLabelLookup(t *testing.T) {
	ctx := fakeCtx{labels: map[string]uint64{"start": 0x0400}}
	if got := eval(t, "start + 8", ctx); got != 0x0408 {
		t.Errorf("start + 8 = %#x, want %#x", got, 0x0408)
	}
}

func TestExprUndefinedIdentifierFails(t *testing.T) {
	ctx := fakeCtx{labels: map[string]uint64{}}
	_, err := ParseEvalExpr("missing_symbol", Position{Filename: "t", Line: 1}, ctx)
	if err == nil {
		t.Fatal("expected an error for an undefined identifier")
	}
}

func TestExprDivisionByZero(t *testing.T) {
	ctx := fakeCtx{labels: map[string]uint64{}}
	_, err := ParseEvalExpr("1 / 0", Position{Filename: "t", Line: 1}, ctx)
	if err == nil {
		t.Fatal("expected a division-by-zero error")
	}
}

func TestExprCharLiteral(t *testing.T) {
	ctx := fakeCtx{labels: map[string]uint64{}}
	if got := eval(t, "'A'", ctx); got != 65 {
		t.Errorf("'A' = %d, want 65", got)
	}
	if got := eval(t, "'\\n'", ctx); got != 10 {
		t.Errorf(`'\n' = %d, want 10`, got)
	}
}

func TestExprNumberBases(t *testing.T) {
	ctx := fakeCtx{labels: map[string]uint64{}}
	cases := map[string]uint64{
		"0x1F":    31,
		"0b1010":  10,
		"0o17":    15,
		"1_000":   1000,
		"0d42":    42,
	}
	for expr, want := range cases {
		if got := eval(t, expr, ctx); got != want {
			t.Errorf("%q = %d, want %d", expr, got, want)
		}
	}
}

func TestExprArithmeticShiftRight(t *testing.T) {
	ctx := fakeCtx{labels: map[string]uint64{}}
	// -8 >>> 1 should sign-extend-replicate like an arithmetic shift.
	got := eval(t, "0xFFFFFFFFFFFFFFF8 >>> 1", ctx)
	want := uint64(0xFFFFFFFFFFFFFFFC)
	if got != want {
		t.Errorf("arithmetic shift = %#x, want %#x", got, want)
	}
}
