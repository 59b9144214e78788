// Package vm implements the bytecode container and the stack machine that
// executes it.
package vm

import "fmt"

// Opcode represents a single VM instruction
type Opcode byte

const (
	OP_CONSTANT Opcode = iota // Push constant from pool

	// Arithmetic
	OP_ADD      // +
	OP_SUBTRACT // -
	OP_MULTIPLY // *
	OP_DIVIDE   // /
	OP_NEGATE   // Unary minus

	OP_RETURN // Pop and print the top of stack, then stop
)

// OpcodeNames maps opcodes to their string names (for debugging)
var OpcodeNames = map[Opcode]string{
	OP_CONSTANT: "OP_CONSTANT",
	OP_ADD:      "OP_ADD",
	OP_SUBTRACT: "OP_SUBTRACT",
	OP_MULTIPLY: "OP_MULTIPLY",
	OP_DIVIDE:   "OP_DIVIDE",
	OP_NEGATE:   "OP_NEGATE",
	OP_RETURN:   "OP_RETURN",
}

func (op Opcode) String() string {
	if name, ok := OpcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP_UNKNOWN(%d)", byte(op))
}

// Instruction is one slot of a chunk. Operand is only meaningful for
// OP_CONSTANT, where it indexes the constant pool.
type Instruction struct {
	Op      Opcode
	Operand int
}

// LoadConstant returns an OP_CONSTANT instruction for pool index idx.
func LoadConstant(idx int) Instruction {
	return Instruction{Op: OP_CONSTANT, Operand: idx}
}

// Simple returns an instruction without an operand.
func Simple(op Opcode) Instruction {
	return Instruction{Op: op}
}

func (ins Instruction) String() string {
	if ins.Op == OP_CONSTANT {
		return fmt.Sprintf("%s %d", ins.Op, ins.Operand)
	}
	return ins.Op.String()
}
