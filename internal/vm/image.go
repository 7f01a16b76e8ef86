package vm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Image is an ordered instruction sequence, indexed from 0, capped at
// MaxCodeLength (spec.md §3/§6). Emission appends; backpatching mutates a
// previously appended instruction's M field.
type Image struct {
	Code          []Instruction
	MaxCodeLength int
}

// NewImage creates an empty Image with the given capacity limit.
func NewImage(maxCodeLength int) *Image {
	return &Image{MaxCodeLength: maxCodeLength}
}

// Len returns the next code index emission would use.
func (img *Image) Len() int {
	return len(img.Code)
}

// Emit appends an instruction and returns its index, or an error if doing
// so would exceed MaxCodeLength.
func (img *Image) Emit(op Op, r, l, m int) (int, error) {
	if len(img.Code) >= img.MaxCodeLength {
		return 0, fmt.Errorf("code generator: instruction image exceeds MAX_CODE_LENGTH (%d)", img.MaxCodeLength)
	}
	idx := len(img.Code)
	img.Code = append(img.Code, Instruction{Op: op, R: r, L: l, M: m})
	return idx, nil
}

// Backpatch mutates the M field of a previously emitted instruction,
// typically a forward JMP/JPC target discovered after the fact.
func (img *Image) Backpatch(index, m int) {
	img.Code[index].M = m
}

// Write renders the image in the plain-text instruction file format of
// spec.md §6: one instruction per line, four whitespace-separated decimal
// integers `op r l m`.
func (img *Image) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, ins := range img.Code {
		if _, err := fmt.Fprintf(bw, "%d %d %d %d\n", int(ins.Op), ins.R, ins.L, ins.M); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadImage parses the plain-text instruction file format, reading until
// EOF. It rejects images exceeding maxCodeLength. The opcode field accepts
// either its numeric form (the format spec.md §6 and Write produce) or its
// mnemonic (LIT, SIO_WRITE, ...), so a hand-written fixture can read the
// same way Disassemble renders, without a round trip through a number.
func ReadImage(r io.Reader, maxCodeLength int) (*Image, error) {
	img := NewImage(maxCodeLength)
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("instruction image: line %d: expected 4 fields, got %d", lineNum, len(fields))
		}
		op, err := parseOp(fields[0])
		if err != nil {
			return nil, fmt.Errorf("instruction image: line %d: %w", lineNum, err)
		}
		nums := make([]int, 3)
		for i, f := range fields[1:] {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("instruction image: line %d: %w", lineNum, err)
			}
			nums[i] = n
		}
		if _, err := img.Emit(op, nums[0], nums[1], nums[2]); err != nil {
			return nil, fmt.Errorf("instruction image: line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return img, nil
}

// parseOp accepts either a numeric opcode or its mnemonic spelling.
func parseOp(field string) (Op, error) {
	if op, ok := mnemonicToOp[strings.ToUpper(field)]; ok {
		return op, nil
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("unrecognized opcode %q", field)
	}
	return Op(n), nil
}

// Disassemble renders the image with mnemonic names and a code-index
// prefix per line, the PL/0 analogue of the teacher's bytecode disassembler.
func (img *Image) Disassemble() string {
	var sb strings.Builder
	for i, ins := range img.Code {
		fmt.Fprintf(&sb, "%4d: %-9s r=%d l=%d m=%d\n", i, ins.Op.String(), ins.R, ins.L, ins.M)
	}
	return sb.String()
}
