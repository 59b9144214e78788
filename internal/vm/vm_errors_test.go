package vm

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// runChunkExpectError runs chunk, expecting a runtime fault, and returns it.
// Fails the test if the chunk runs successfully or prints anything.
func runChunkExpectError(t *testing.T, chunk *Chunk) *RuntimeError {
	t.Helper()
	var out bytes.Buffer
	machine := New(chunk)
	machine.SetOutput(&out)

	_, err := machine.Run()
	if err == nil {
		t.Fatalf("expected runtime error, but chunk ran successfully (output %q)", out.String())
	}
	if out.Len() != 0 {
		t.Errorf("faulted run printed %q", out.String())
	}
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("error %T is not *RuntimeError", err)
	}
	return rerr
}

// =============================================================================
// Stack underflow
// =============================================================================

func TestVMError_StackUnderflow(t *testing.T) {
	tests := []struct {
		name       string
		program    []any
		wantOffset int
		wantOp     Opcode
	}{
		{"add on empty stack", []any{OP_ADD, OP_RETURN}, 0, OP_ADD},
		{"subtract with one operand", []any{1.0, OP_SUBTRACT, OP_RETURN}, 1, OP_SUBTRACT},
		{"multiply with one operand", []any{1.0, OP_MULTIPLY, OP_RETURN}, 1, OP_MULTIPLY},
		{"divide with one operand", []any{1.0, OP_DIVIDE, OP_RETURN}, 1, OP_DIVIDE},
		{"negate on empty stack", []any{OP_NEGATE, OP_RETURN}, 0, OP_NEGATE},
		{"return on empty stack", []any{OP_RETURN}, 0, OP_RETURN},
		{"underflow after work", []any{1.0, 2.0, OP_ADD, OP_ADD, OP_RETURN}, 3, OP_ADD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rerr := runChunkExpectError(t, buildChunk(t, tt.program...))
			if !errors.Is(rerr, ErrStackUnderflow) {
				t.Errorf("error %v should wrap ErrStackUnderflow", rerr)
			}
			if rerr.Offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", rerr.Offset, tt.wantOffset)
			}
			if rerr.Op != tt.wantOp {
				t.Errorf("op = %s, want %s", rerr.Op, tt.wantOp)
			}
		})
	}
}

func TestVMError_UnderflowKeepsOperand(t *testing.T) {
	// A failed binary op must not consume the lone operand.
	machine := New(buildChunk(t, 5.0, OP_ADD, OP_RETURN))
	machine.SetOutput(&bytes.Buffer{})
	if _, err := machine.Run(); err == nil {
		t.Fatal("expected underflow")
	}
	if machine.StackDepth() != 1 {
		t.Errorf("stack depth = %d, want 1", machine.StackDepth())
	}
}

// =============================================================================
// Running off the end
// =============================================================================

func TestVMError_MissingReturn(t *testing.T) {
	chunk := NewChunk()
	if err := chunk.WriteConstant(1, Position{Line: 3}); err != nil {
		t.Fatal(err)
	}
	if err := chunk.WriteConstant(2, Position{Line: 4}); err != nil {
		t.Fatal(err)
	}

	rerr := runChunkExpectError(t, chunk)
	if !errors.Is(rerr, ErrMissingReturn) {
		t.Errorf("error %v should wrap ErrMissingReturn", rerr)
	}
	if rerr.Offset != 2 {
		t.Errorf("offset = %d, want 2 (one past the last instruction)", rerr.Offset)
	}
	if rerr.Position.Line != 4 {
		t.Errorf("line = %d, want 4", rerr.Position.Line)
	}
}

func TestVMError_EmptyChunk(t *testing.T) {
	rerr := runChunkExpectError(t, NewChunk())
	if !errors.Is(rerr, ErrMissingReturn) {
		t.Errorf("error %v should wrap ErrMissingReturn", rerr)
	}
	if rerr.Offset != 0 {
		t.Errorf("offset = %d, want 0", rerr.Offset)
	}
}

// =============================================================================
// Stack overflow
// =============================================================================

func TestVMError_StackOverflow(t *testing.T) {
	chunk := NewChunk()
	idx := chunk.AddConstant(1)
	for i := 0; i <= MaxStackSize; i++ {
		if err := chunk.Write(LoadConstant(idx), line1); err != nil {
			t.Fatal(err)
		}
	}
	if err := chunk.WriteOp(OP_RETURN, line1); err != nil {
		t.Fatal(err)
	}

	rerr := runChunkExpectError(t, chunk)
	if !errors.Is(rerr, ErrStackOverflow) {
		t.Errorf("error %v should wrap ErrStackOverflow", rerr)
	}
	if rerr.Offset != MaxStackSize {
		t.Errorf("offset = %d, want %d", rerr.Offset, MaxStackSize)
	}
}

func TestRuntimeErrorMessage(t *testing.T) {
	chunk := NewChunk()
	if err := chunk.WriteOp(OP_NEGATE, Position{Line: 12}); err != nil {
		t.Fatal(err)
	}
	rerr := runChunkExpectError(t, chunk)
	msg := rerr.Error()
	for _, want := range []string{"line 12", "0000", "stack underflow"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q should contain %q", msg, want)
		}
	}
}
