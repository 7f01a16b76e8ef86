// Package vm implements the register+stack virtual machine of spec.md §4.5:
// a fetch/execute loop over a 16-register file and a shared activation-record
// stack with lexical-level static-link chaining.
package vm

import "fmt"

// Op is one of the closed opcode set of spec.md §4.5. Values are part of
// the external instruction-file format (spec.md §6) and must not be
// reordered.
type Op int

const (
	LIT Op = iota + 1
	RTN
	LOD
	STO
	CAL
	INC
	JMP
	JPC
	SIOWrite
	SIORead
	SIOHalt
	NEG
	ADD
	SUB
	MUL
	DIV
	ODD
	MOD
	EQL
	NEQ
	LSS
	LEQ
	GTR
	GEQ
)

var mnemonics = map[Op]string{
	LIT:      "LIT",
	RTN:      "RTN",
	LOD:      "LOD",
	STO:      "STO",
	CAL:      "CAL",
	INC:      "INC",
	JMP:      "JMP",
	JPC:      "JPC",
	SIOWrite: "SIO_WRITE",
	SIORead:  "SIO_READ",
	SIOHalt:  "SIO_HALT",
	NEG:      "NEG",
	ADD:      "ADD",
	SUB:      "SUB",
	MUL:      "MUL",
	DIV:      "DIV",
	ODD:      "ODD",
	MOD:      "MOD",
	EQL:      "EQL",
	NEQ:      "NEQ",
	LSS:      "LSS",
	LEQ:      "LEQ",
	GTR:      "GTR",
	GEQ:      "GEQ",
}

func (op Op) String() string {
	if m, ok := mnemonics[op]; ok {
		return m
	}
	return fmt.Sprintf("OP(%d)", int(op))
}

// mnemonicToOp supports the text instruction-file reader and any future
// assembler-style front end; built once from mnemonics.
var mnemonicToOp = func() map[string]Op {
	m := make(map[string]Op, len(mnemonics))
	for op, name := range mnemonics {
		m[name] = op
	}
	return m
}()

// Instruction is the four-field value of spec.md §3: op, register index,
// lexical-level delta, and a constant/address/code-index payload.
type Instruction struct {
	Op Op
	R  int
	L  int
	M  int
}

func (ins Instruction) String() string {
	return fmt.Sprintf("%d %d %d %d", int(ins.Op), ins.R, ins.L, ins.M)
}
