package vm

import (
	"fmt"
	"io"
	"strconv"

	"dis/lexer"
	"dis/parser"
)

// Step advances the machine by one instruction. Precondition: Halted
// == false. If PC has run off the end of the program, Step halts
// instead of faulting.
func (m *VM) Step() *RuntimeError {
	if m.Halted {
		return nil
	}
	if m.PC >= len(m.Program) {
		m.Halted = true
		m.State = StateHalted
		return nil
	}
	m.State = StateRunning

	stmt := m.Program[m.PC]
	jumped := false

	switch stmt.Op {
	case parser.OpMOV:
		if err := m.execMove(stmt); err != nil {
			return m.die(err)
		}
	case parser.OpADD:
		if err := m.execArith(stmt, func(dst, src uint16) uint16 { return dst + src }); err != nil {
			return m.die(err)
		}
	case parser.OpSUB:
		if err := m.execArith(stmt, func(dst, src uint16) uint16 { return dst - src }); err != nil {
			return m.die(err)
		}
	case parser.OpCMP:
		if err := m.execCompare(stmt); err != nil {
			return m.die(err)
		}
	case parser.OpJEQ:
		jumped = m.CompareFlags&FlagEQ != 0
		if jumped {
			m.PC = m.Labels[stmt.Body[0].Name]
		}
	case parser.OpJNE:
		jumped = m.CompareFlags&FlagEQ == 0
		if jumped {
			m.PC = m.Labels[stmt.Body[0].Name]
		}
	case parser.OpJLT:
		jumped = m.CompareFlags&FlagLT != 0
		if jumped {
			m.PC = m.Labels[stmt.Body[0].Name]
		}
	case parser.OpJGT:
		jumped = m.CompareFlags&FlagGT != 0
		if jumped {
			m.PC = m.Labels[stmt.Body[0].Name]
		}
	case parser.OpJMP:
		m.PC = m.Labels[stmt.Body[0].Name]
		jumped = true
	case parser.OpRUN:
		if len(m.ReturnStack) >= StackCap {
			return m.die(m.fault(ErrorStackOverflow, "return stack is full"))
		}
		m.ReturnStack = append(m.ReturnStack, m.PC)
		m.PC = m.Labels[stmt.Body[0].Name]
		jumped = true
	case parser.OpRET:
		if len(m.ReturnStack) == 0 {
			return m.die(m.fault(ErrorStackUnderflow, "return stack is empty"))
		}
		top := m.ReturnStack[len(m.ReturnStack)-1]
		m.ReturnStack = m.ReturnStack[:len(m.ReturnStack)-1]
		m.PC = top
	case parser.OpDIE:
		m.Halted = true
		m.State = StateHalted
		return nil
	case parser.OpOUT:
		if err := m.execOut(stmt); err != nil {
			return m.die(err)
		}
	case parser.OpPRT:
		if err := m.execPrt(stmt); err != nil {
			return m.die(err)
		}
	case parser.OpDBG:
		if err := m.execDbg(stmt); err != nil {
			return m.die(err)
		}
	case parser.OpRDN:
		if err := m.execRdn(stmt); err != nil {
			return m.die(err)
		}
	case parser.OpRDC:
		if err := m.execRdc(stmt); err != nil {
			return m.die(err)
		}
	case parser.OpRLN:
		if err := m.execRln(stmt); err != nil {
			return m.die(err)
		}
	case parser.OpNOP:
		// no operation
	case parser.OpINC:
		return m.die(m.fault(ErrorInternalFault, "INC survived include expansion; this is a linker bug"))
	}

	if !jumped {
		m.PC++
	}
	return nil
}

func (m *VM) die(err *RuntimeError) *RuntimeError {
	m.LastError = err
	m.Halted = true
	m.State = StateHalted
	return err
}

// Run repeatedly steps the machine until it halts or a runtime error
// occurs.
func (m *VM) Run() *RuntimeError {
	for !m.Halted {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (m *VM) execMove(stmt parser.Statement) *RuntimeError {
	v, err := m.readValue(stmt.Body[0])
	if err != nil {
		return err
	}
	return m.writePlace(stmt.Body[1], v)
}

func (m *VM) execArith(stmt parser.Statement, op func(dst, src uint16) uint16) *RuntimeError {
	src, err := m.readValue(stmt.Body[0])
	if err != nil {
		return err
	}
	dst, err := m.readValue(stmt.Body[1])
	if err != nil {
		return err
	}
	return m.writePlace(stmt.Body[1], op(dst, src))
}

func (m *VM) execCompare(stmt parser.Statement) *RuntimeError {
	a, err := m.readValue(stmt.Body[0])
	if err != nil {
		return err
	}
	b, err := m.readValue(stmt.Body[1])
	if err != nil {
		return err
	}
	var flags uint8
	if a == b {
		flags |= FlagEQ
	}
	if a < b {
		flags |= FlagLT
	}
	if a > b {
		flags |= FlagGT
	}
	m.CompareFlags = flags
	return nil
}

func (m *VM) execOut(stmt parser.Statement) *RuntimeError {
	v, err := m.readValue(stmt.Body[0])
	if err != nil {
		return err
	}
	_, werr := m.Out.Write([]byte{byte(v & 0xFF)})
	if werr != nil {
		return m.fault(ErrorIO, werr.Error())
	}
	m.flushOutput()
	return nil
}

func (m *VM) execPrt(stmt parser.Statement) *RuntimeError {
	v, err := m.readValue(stmt.Body[0])
	if err != nil {
		return err
	}
	_, werr := fmt.Fprintf(m.Out, "%d", v)
	if werr != nil {
		return m.fault(ErrorIO, werr.Error())
	}
	m.flushOutput()
	return nil
}

func (m *VM) execDbg(stmt parser.Statement) *RuntimeError {
	operand := stmt.Body[0]
	var line string
	switch operand.Kind() {
	case lexer.TokenNumber:
		line = fmt.Sprintf("DBG %s: %d", operand, operand.Num)
	case lexer.TokenChar:
		line = fmt.Sprintf("DBG %s: %d", operand, uint16(operand.Ch))
	case lexer.TokenRegister:
		line = fmt.Sprintf("DBG #%s: %d", operand.Reg, m.Registers[operand.Reg])
	case lexer.TokenMemory:
		addr, err := m.resolveAddress(operand)
		if err != nil {
			return err
		}
		if operand.IsIndirect {
			line = fmt.Sprintf("DBG &#%s (&%d): %d", operand.IndirectOf, addr, m.Memory[addr])
		} else {
			line = fmt.Sprintf("DBG &%d: %d", addr, m.Memory[addr])
		}
	}
	_, werr := fmt.Fprintln(m.Out, line)
	if werr != nil {
		return m.fault(ErrorIO, werr.Error())
	}
	m.flushOutput()
	return nil
}

func (m *VM) execRdn(stmt parser.Statement) *RuntimeError {
	line, err := m.In.ReadLine()
	if err == io.EOF {
		m.Registers[ErrRegisterID] = 1
		return nil
	}
	if err != nil {
		return m.fault(ErrorIO, err.Error())
	}
	n, perr := strconv.ParseUint(trimLine(line), 10, 16)
	if perr != nil {
		m.Registers[ErrRegisterID] = 1
		return nil
	}
	m.Registers[ErrRegisterID] = 0
	return m.writePlace(stmt.Body[0], uint16(n))
}

func (m *VM) execRdc(stmt parser.Statement) *RuntimeError {
	line, err := m.In.ReadLine()
	if err != nil && err != io.EOF {
		return m.fault(ErrorIO, err.Error())
	}
	if err == io.EOF || len(trimLine(line)) == 0 {
		m.Registers[ErrRegisterID] = 1
		return nil
	}
	r := []rune(trimLine(line))
	m.Registers[ErrRegisterID] = 0
	return m.writePlace(stmt.Body[0], uint16(r[0]))
}

func (m *VM) execRln(stmt parser.Statement) *RuntimeError {
	dst := stmt.Body[0]
	maxVal, err := m.readValue(stmt.Body[1])
	if err != nil {
		return err
	}

	line, rerr := m.In.ReadLine()
	if rerr != nil && rerr != io.EOF {
		return m.fault(ErrorIO, rerr.Error())
	}
	if rerr == io.EOF {
		line = ""
	}
	line = trimLine(line)

	n := len(line)
	if maxVal != 0 && int(maxVal) < n {
		n = int(maxVal)
	}
	line = line[:n]

	m.Registers[LengthRegisterID] = uint16(n)

	addr, aerr := m.resolveAddress(dst)
	if aerr != nil {
		return aerr
	}
	for i, ch := range []rune(line) {
		if addr+i >= MemSize {
			return m.fault(ErrorMemoryBounds, "rln write ran past end of memory")
		}
		m.Memory[addr+i] = uint16(ch)
	}
	return nil
}

func trimLine(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\r' || s[len(s)-1] == '\n') {
		s = s[:len(s)-1]
	}
	return s
}
