package vm

import (
	"errors"
	"fmt"
)

// MaxConstants bounds the constant pool of a single chunk.
const MaxConstants = 1 << 16

var (
	ErrInvalidConstantIndex = errors.New("invalid constant index")
	ErrUnknownOpcode        = errors.New("unknown opcode")
	ErrTooManyConstants     = errors.New("too many constants in one chunk")
)

// Position maps an instruction back to the source (for errors and disassembly).
type Position struct {
	Line   int
	Column int
}

// Chunk represents a sequence of bytecode instructions.
//
// Instructions and positions are index-aligned and only grow through Write,
// which validates each instruction against the constant pool. The VM relies
// on that and never re-checks constant indices.
type Chunk struct {
	code      []Instruction
	positions []Position
	constants []Value

	// File is the source file name
	File string
}

// NewChunk creates a new empty chunk
func NewChunk() *Chunk {
	return &Chunk{
		code:      make([]Instruction, 0, 64),
		positions: make([]Position, 0, 64),
		constants: make([]Value, 0, 16),
	}
}

// Write appends an instruction and its source position in lock-step.
// An OP_CONSTANT whose operand is outside the constant pool is rejected and
// the chunk is left unchanged.
func (c *Chunk) Write(ins Instruction, pos Position) error {
	if _, ok := OpcodeNames[ins.Op]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownOpcode, byte(ins.Op))
	}
	if ins.Op == OP_CONSTANT && (ins.Operand < 0 || ins.Operand >= len(c.constants)) {
		return fmt.Errorf("%w: %d (pool has %d)", ErrInvalidConstantIndex, ins.Operand, len(c.constants))
	}
	c.code = append(c.code, ins)
	c.positions = append(c.positions, pos)
	return nil
}

// WriteOp writes an operand-less opcode to the chunk
func (c *Chunk) WriteOp(op Opcode, pos Position) error {
	return c.Write(Simple(op), pos)
}

// AddConstant adds a constant to the pool and returns its index
func (c *Chunk) AddConstant(value Value) int {
	c.constants = append(c.constants, value)
	return len(c.constants) - 1
}

// WriteConstant adds value to the pool and writes the OP_CONSTANT loading it
func (c *Chunk) WriteConstant(value Value, pos Position) error {
	if len(c.constants) >= MaxConstants {
		return fmt.Errorf("%w (max %d)", ErrTooManyConstants, MaxConstants)
	}
	return c.Write(LoadConstant(c.AddConstant(value)), pos)
}

// Len returns the number of instructions in the chunk
func (c *Chunk) Len() int {
	return len(c.code)
}

// Instruction returns the instruction at offset.
func (c *Chunk) Instruction(offset int) Instruction {
	return c.code[offset]
}

// PositionAt returns the source position of the instruction at offset.
func (c *Chunk) PositionAt(offset int) Position {
	return c.positions[offset]
}

// Constant returns the pool entry at idx.
func (c *Chunk) Constant(idx int) Value {
	return c.constants[idx]
}

// ConstantCount returns the size of the constant pool.
func (c *Chunk) ConstantCount() int {
	return len(c.constants)
}
