package vm

import (
	"bufio"
	"fmt"
	"io"

	"github.com/MatthewMSaucedo/pl0/internal/perr"
	"github.com/MatthewMSaucedo/pl0/internal/token"
)

const numRegisters = 16

// VM is the runtime state of spec.md §3/§4.5: a 16-register file, a shared
// stack of BP-relative activation records, and PC/BP/SP control registers.
// All integers are 32-bit signed per spec.md, represented here as int32.
type VM struct {
	RF    [numRegisters]int32
	stack []int32
	PC    int
	BP    int
	SP    int

	maxStackHeight int
	in             *bufio.Reader
	out            io.Writer
	halted         bool
}

// New creates a VM with the given stack height limit and I/O streams.
func New(maxStackHeight int, in io.Reader, out io.Writer) *VM {
	return &VM{
		stack:          make([]int32, maxStackHeight),
		BP:             1,
		maxStackHeight: maxStackHeight,
		in:             bufio.NewReader(in),
		out:            out,
	}
}

// Run fetches, decodes, and executes image.Code starting at PC=0 until
// SIO_HALT is executed, per spec.md §4.5's contract.
func (m *VM) Run(image *Image) error {
	codeLen := image.Len()

	for !m.halted {
		if m.PC < 0 || m.PC >= codeLen {
			return m.errf("illegal instruction fetch: PC=%d out of [0,%d)", m.PC, codeLen)
		}
		ins := image.Code[m.PC]
		m.PC++

		if err := m.execute(ins); err != nil {
			return err
		}
	}
	return nil
}

func (m *VM) errf(format string, args ...any) error {
	return perr.New(perr.VM, 0, token.Position{}, fmt.Sprintf(format, args...))
}

// base follows the static-link chain L hops from BP, per spec.md §4.5.
func (m *VM) base(l int) int {
	b := m.BP
	for ; l > 0; l-- {
		b = int(m.stack[b+1])
	}
	return b
}

func (m *VM) checkRegister(r int) error {
	if r < 0 || r >= numRegisters {
		return m.errf("register index %d out of range [0,%d)", r, numRegisters)
	}
	return nil
}

func (m *VM) checkRegisters(rs ...int) error {
	for _, r := range rs {
		if err := m.checkRegister(r); err != nil {
			return err
		}
	}
	return nil
}

func (m *VM) push() error {
	if m.SP+1 >= m.maxStackHeight {
		return m.errf("stack overflow: SP would exceed MAX_STACK_HEIGHT (%d)", m.maxStackHeight)
	}
	m.SP++
	return nil
}

func (m *VM) execute(ins Instruction) error {
	switch ins.Op {
	case LIT:
		if err := m.checkRegister(ins.R); err != nil {
			return err
		}
		m.RF[ins.R] = int32(ins.M)

	case RTN:
		m.SP = m.BP - 1
		m.BP = int(m.stack[m.SP+3])
		m.PC = int(m.stack[m.SP+4])

	case LOD:
		if err := m.checkRegister(ins.R); err != nil {
			return err
		}
		addr := m.base(ins.L) + ins.M
		if err := m.checkStackAddr(addr); err != nil {
			return err
		}
		m.RF[ins.R] = m.stack[addr]

	case STO:
		if err := m.checkRegister(ins.R); err != nil {
			return err
		}
		addr := m.base(ins.L) + ins.M
		if err := m.checkStackAddr(addr); err != nil {
			return err
		}
		m.stack[addr] = m.RF[ins.R]

	case CAL:
		base := m.base(ins.L)
		if err := m.checkStackAddr(m.SP + 4); err != nil {
			return err
		}
		m.stack[m.SP+1] = 0           // return value slot, reserved
		m.stack[m.SP+2] = int32(base) // static link
		m.stack[m.SP+3] = int32(m.BP) // dynamic link
		m.stack[m.SP+4] = int32(m.PC) // return address (already past CAL)
		m.BP = m.SP + 1
		m.PC = ins.M
		// The callee's prologue emits `INC 0 0 4` to advance SP past these
		// four reserved slots; CAL itself leaves SP unchanged.

	case INC:
		for i := 0; i < ins.M; i++ {
			if err := m.push(); err != nil {
				return err
			}
		}

	case JMP:
		m.PC = ins.M

	case JPC:
		if err := m.checkRegister(ins.R); err != nil {
			return err
		}
		if m.RF[ins.R] == 0 {
			m.PC = ins.M
		}

	case SIOWrite:
		if err := m.checkRegister(ins.R); err != nil {
			return err
		}
		fmt.Fprintf(m.out, "%d", m.RF[ins.R])

	case SIORead:
		if err := m.checkRegister(ins.R); err != nil {
			return err
		}
		var n int32
		if _, err := fmt.Fscan(m.in, &n); err != nil {
			return m.errf("SIO_READ: %v", err)
		}
		m.RF[ins.R] = n

	case SIOHalt:
		m.halted = true

	case NEG:
		if err := m.checkRegisters(ins.R, ins.L); err != nil {
			return err
		}
		m.RF[ins.R] = -m.RF[ins.L]

	case ADD:
		if err := m.checkRegisters(ins.R, ins.L, ins.M); err != nil {
			return err
		}
		m.RF[ins.R] = m.RF[ins.L] + m.RF[ins.M]

	case SUB:
		if err := m.checkRegisters(ins.R, ins.L, ins.M); err != nil {
			return err
		}
		m.RF[ins.R] = m.RF[ins.L] - m.RF[ins.M]

	case MUL:
		if err := m.checkRegisters(ins.R, ins.L, ins.M); err != nil {
			return err
		}
		m.RF[ins.R] = m.RF[ins.L] * m.RF[ins.M]

	case DIV:
		if err := m.checkRegisters(ins.R, ins.L, ins.M); err != nil {
			return err
		}
		if m.RF[ins.M] == 0 {
			m.halted = true
			return m.errf("division by zero")
		}
		m.RF[ins.R] = m.RF[ins.L] / m.RF[ins.M]

	case MOD:
		if err := m.checkRegisters(ins.R, ins.L, ins.M); err != nil {
			return err
		}
		if m.RF[ins.M] == 0 {
			m.halted = true
			return m.errf("division by zero")
		}
		m.RF[ins.R] = m.RF[ins.L] % m.RF[ins.M]

	case ODD:
		if err := m.checkRegister(ins.R); err != nil {
			return err
		}
		m.RF[ins.R] = m.RF[ins.R] % 2
		if m.RF[ins.R] < 0 {
			m.RF[ins.R] = -m.RF[ins.R]
		}

	case EQL:
		return m.relop(ins, func(a, b int32) bool { return a == b })
	case NEQ:
		return m.relop(ins, func(a, b int32) bool { return a != b })
	case LSS:
		return m.relop(ins, func(a, b int32) bool { return a < b })
	case LEQ:
		return m.relop(ins, func(a, b int32) bool { return a <= b })
	case GTR:
		return m.relop(ins, func(a, b int32) bool { return a > b })
	case GEQ:
		return m.relop(ins, func(a, b int32) bool { return a >= b })

	default:
		return m.errf("illegal instruction: opcode %d", int(ins.Op))
	}
	return nil
}

func (m *VM) relop(ins Instruction, cmp func(a, b int32) bool) error {
	if err := m.checkRegisters(ins.R, ins.L, ins.M); err != nil {
		return err
	}
	if cmp(m.RF[ins.L], m.RF[ins.M]) {
		m.RF[ins.R] = 1
	} else {
		m.RF[ins.R] = 0
	}
	return nil
}

func (m *VM) checkStackAddr(addr int) error {
	if addr < 0 || addr >= m.maxStackHeight {
		return m.errf("stack address %d out of range [0,%d)", addr, m.maxStackHeight)
	}
	return nil
}
