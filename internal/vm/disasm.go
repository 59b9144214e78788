package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable representation of the bytecode
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== %s ==\n", name))

	for offset := 0; offset < chunk.Len(); offset++ {
		disassembleInstruction(&sb, chunk, offset)
	}

	return sb.String()
}

// DisassembleInstruction disassembles the single instruction at offset
func DisassembleInstruction(chunk *Chunk, offset int) string {
	var sb strings.Builder
	disassembleInstruction(&sb, chunk, offset)
	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int) {
	sb.WriteString(fmt.Sprintf("%04d ", offset))

	// Print line number
	if offset > 0 && chunk.positions[offset].Line == chunk.positions[offset-1].Line {
		sb.WriteString("   | ")
	} else {
		sb.WriteString(fmt.Sprintf("%4d ", chunk.positions[offset].Line))
	}

	ins := chunk.code[offset]
	switch ins.Op {
	case OP_CONSTANT:
		constantInstruction(sb, ins.Op.String(), chunk, ins.Operand)
	default:
		simpleInstruction(sb, ins.Op.String())
	}
}

func simpleInstruction(sb *strings.Builder, name string) {
	sb.WriteString(name + "\n")
}

func constantInstruction(sb *strings.Builder, name string, chunk *Chunk, idx int) {
	sb.WriteString(fmt.Sprintf("%-16s %4d '%s'\n", name, idx, chunk.constants[idx]))
}
