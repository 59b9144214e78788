package vm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
)

var (
	ErrStackUnderflow = errors.New("stack underflow")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrMissingReturn  = errors.New("reached end of chunk without return")
)

// Initial capacity of the operand stack
const InitialStackSize = 256

// Maximum operand stack size to prevent OOM
const MaxStackSize = 1 << 16

// InterpretResult is the terminal status of one interpretation run.
type InterpretResult int

const (
	InterpretOk InterpretResult = iota
	InterpretSyntaxError
	InterpretCompileError
	InterpretRuntimeError
)

func (r InterpretResult) String() string {
	switch r {
	case InterpretOk:
		return "ok"
	case InterpretSyntaxError:
		return "syntax error"
	case InterpretCompileError:
		return "compile error"
	case InterpretRuntimeError:
		return "runtime error"
	}
	return fmt.Sprintf("InterpretResult(%d)", int(r))
}

// RuntimeError is a fault raised by a dispatch step. Offset is the index of
// the faulting instruction.
type RuntimeError struct {
	Offset   int
	Op       Opcode
	Position Position
	Err      error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[line %d] runtime error at %04d: %v", e.Position.Line, e.Offset, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// VM is the virtual machine that executes bytecode
type VM struct {
	chunk *Chunk
	ip    int
	stack []Value

	// Output writer (defaults to os.Stdout)
	out io.Writer

	tracer Tracer
}

// New creates a VM that owns chunk for the duration of its runs. The chunk
// is only read.
func New(chunk *Chunk) *VM {
	return &VM{
		chunk: chunk,
		stack: make([]Value, 0, InitialStackSize),
		out:   os.Stdout,
	}
}

// SetOutput sets the writer that OP_RETURN prints to
func (vm *VM) SetOutput(w io.Writer) {
	vm.out = w
}

// SetTracer installs an observer called before every dispatch step. nil
// disables tracing.
func (vm *VM) SetTracer(t Tracer) {
	vm.tracer = t
}

// Interpret runs the chunk and reports only the terminal status.
func (vm *VM) Interpret() InterpretResult {
	if _, err := vm.Run(); err != nil {
		return InterpretRuntimeError
	}
	return InterpretOk
}

// Run executes the chunk from the first instruction until OP_RETURN. The
// returned value is the one OP_RETURN printed. A fault stops the run
// immediately with a *RuntimeError.
func (vm *VM) Run() (Value, error) {
	vm.ip = 0
	vm.stack = vm.stack[:0]

	for {
		if vm.ip >= vm.chunk.Len() {
			return 0, vm.faultAt(vm.ip, ErrMissingReturn)
		}

		offset := vm.ip
		ins := vm.chunk.code[offset]
		if vm.tracer != nil {
			vm.tracer.Trace(vm.chunk, offset, slices.Clone(vm.stack))
		}
		vm.ip++

		result, done, err := vm.step(ins)
		if err != nil {
			return 0, vm.faultAt(offset, err)
		}
		if done {
			return result, nil
		}
	}
}

// step executes one instruction. done is set once OP_RETURN completes.
func (vm *VM) step(ins Instruction) (result Value, done bool, err error) {
	switch ins.Op {
	case OP_CONSTANT:
		return 0, false, vm.push(vm.chunk.constants[ins.Operand])

	case OP_ADD, OP_SUBTRACT, OP_MULTIPLY, OP_DIVIDE:
		return 0, false, vm.binaryOp(ins.Op)

	case OP_NEGATE:
		v, err := vm.pop()
		if err != nil {
			return 0, false, err
		}
		return 0, false, vm.push(-v)

	case OP_RETURN:
		v, err := vm.pop()
		if err != nil {
			return 0, false, err
		}
		if _, err := fmt.Fprintln(vm.out, v.String()); err != nil {
			return 0, false, fmt.Errorf("write result: %w", err)
		}
		return v, true, nil
	}
	return 0, false, fmt.Errorf("%w: %d", ErrUnknownOpcode, byte(ins.Op))
}

// binaryOp pops right then left and pushes left op right. Nothing is popped
// unless both operands are present.
func (vm *VM) binaryOp(op Opcode) error {
	if len(vm.stack) < 2 {
		return ErrStackUnderflow
	}
	b, _ := vm.pop()
	a, _ := vm.pop()

	var r Value
	switch op {
	case OP_ADD:
		r = a + b
	case OP_SUBTRACT:
		r = a - b
	case OP_MULTIPLY:
		r = a * b
	case OP_DIVIDE:
		r = a / b
	}
	return vm.push(r)
}

func (vm *VM) push(v Value) error {
	if len(vm.stack) >= MaxStackSize {
		return ErrStackOverflow
	}
	vm.stack = append(vm.stack, v)
	return nil
}

func (vm *VM) pop() (Value, error) {
	n := len(vm.stack)
	if n == 0 {
		return 0, ErrStackUnderflow
	}
	v := vm.stack[n-1]
	vm.stack = vm.stack[:n-1]
	return v, nil
}

// faultAt builds the error for the instruction at offset. An offset past the
// end borrows the position of the last instruction.
func (vm *VM) faultAt(offset int, err error) *RuntimeError {
	rerr := &RuntimeError{Offset: offset, Err: err}
	if offset < vm.chunk.Len() {
		rerr.Op = vm.chunk.code[offset].Op
		rerr.Position = vm.chunk.positions[offset]
	} else if n := vm.chunk.Len(); n > 0 {
		rerr.Position = vm.chunk.positions[n-1]
	}
	return rerr
}

// StackDepth returns the number of values currently on the operand stack.
func (vm *VM) StackDepth() int {
	return len(vm.stack)
}
