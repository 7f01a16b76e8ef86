package vm

import (
	"bytes"
	"strings"
	"testing"
)

func newTestVM(in string) (*VM, *bytes.Buffer) {
	var out bytes.Buffer
	m := New(2000, strings.NewReader(in), &out)
	return m, &out
}

func TestRunEmptyProgramHalts(t *testing.T) {
	img := NewImage(10)
	img.Emit(SIOHalt, 0, 0, 3)

	m, _ := newTestVM("")
	if err := m.Run(img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunArithmetic(t *testing.T) {
	img := NewImage(10)
	img.Emit(LIT, 0, 0, 3)
	img.Emit(LIT, 1, 0, 4)
	img.Emit(ADD, 0, 0, 1)
	img.Emit(SIOWrite, 0, 0, 1)
	img.Emit(SIOHalt, 0, 0, 3)

	m, out := newTestVM("")
	if err := m.Run(img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "7" {
		t.Errorf("output = %q, want %q", out.String(), "7")
	}
}

func TestRunDivisionByZeroErrors(t *testing.T) {
	img := NewImage(10)
	img.Emit(LIT, 0, 0, 10)
	img.Emit(LIT, 1, 0, 0)
	img.Emit(DIV, 0, 0, 1)
	img.Emit(SIOHalt, 0, 0, 3)

	m, _ := newTestVM("")
	if err := m.Run(img); err == nil {
		t.Fatal("expected division-by-zero error")
	}
}

func TestRunRelops(t *testing.T) {
	tests := []struct {
		op   Op
		a, b int
		want int32
	}{
		{EQL, 3, 3, 1}, {EQL, 3, 4, 0},
		{NEQ, 3, 4, 1}, {NEQ, 3, 3, 0},
		{LSS, 3, 4, 1}, {LSS, 4, 3, 0},
		{LEQ, 3, 3, 1}, {LEQ, 4, 3, 0},
		{GTR, 4, 3, 1}, {GTR, 3, 4, 0},
		{GEQ, 3, 3, 1}, {GEQ, 3, 4, 0},
	}
	for _, tt := range tests {
		img := NewImage(10)
		img.Emit(LIT, 0, 0, tt.a)
		img.Emit(LIT, 1, 0, tt.b)
		img.Emit(tt.op, 0, 0, 1)
		img.Emit(SIOHalt, 0, 0, 3)

		m, _ := newTestVM("")
		if err := m.Run(img); err != nil {
			t.Fatalf("op %v: unexpected error: %v", tt.op, err)
		}
		if m.RF[0] != tt.want {
			t.Errorf("op %v(%d,%d) = %d, want %d", tt.op, tt.a, tt.b, m.RF[0], tt.want)
		}
	}
}

func TestRunOddNormalizesSign(t *testing.T) {
	img := NewImage(10)
	img.Emit(LIT, 0, 0, -3)
	img.Emit(ODD, 0, 0, 0)
	img.Emit(SIOHalt, 0, 0, 3)

	m, _ := newTestVM("")
	if err := m.Run(img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.RF[0] != 1 {
		t.Errorf("ODD(-3) = %d, want 1", m.RF[0])
	}
}

func TestRunSioRead(t *testing.T) {
	img := NewImage(10)
	img.Emit(SIORead, 0, 0, 2)
	img.Emit(SIOWrite, 0, 0, 1)
	img.Emit(SIOHalt, 0, 0, 3)

	m, out := newTestVM("42")
	if err := m.Run(img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "42" {
		t.Errorf("output = %q, want %q", out.String(), "42")
	}
}

func TestRunVarStorageRoundTrip(t *testing.T) {
	// LOD/STO against a stack slot reserved by an INC, at the top level
	// (base(0) == BP).
	img := NewImage(10)
	img.Emit(INC, 0, 0, 2) // reserve BP+0 and BP+1
	img.Emit(LIT, 0, 0, 99)
	img.Emit(STO, 0, 0, 1) // store into BP+1
	img.Emit(LOD, 1, 0, 1) // load it back
	img.Emit(SIOWrite, 1, 0, 1)
	img.Emit(SIOHalt, 0, 0, 3)

	m, out := newTestVM("")
	if err := m.Run(img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "99" {
		t.Errorf("output = %q, want %q", out.String(), "99")
	}
}

func TestRunIllegalRegisterErrors(t *testing.T) {
	img := NewImage(10)
	img.Emit(LIT, 16, 0, 1)
	img.Emit(SIOHalt, 0, 0, 3)

	m, _ := newTestVM("")
	if err := m.Run(img); err == nil {
		t.Fatal("expected an out-of-range register error")
	}
}

func TestRunStackOverflowErrors(t *testing.T) {
	img := NewImage(10)
	img.Emit(INC, 0, 0, 5)
	img.Emit(SIOHalt, 0, 0, 3)

	m, _ := newTestVM("")
	m.maxStackHeight = 3
	m.stack = make([]int32, 3)
	if err := m.Run(img); err == nil {
		t.Fatal("expected a stack overflow error")
	}
}
