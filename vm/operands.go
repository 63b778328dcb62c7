package vm

import "dis/lexer"

// readValue implements read_value: every Value operand kind resolves
// to a u16.
func (m *VM) readValue(tok lexer.Token) (uint16, *RuntimeError) {
	switch tok.Kind() {
	case lexer.TokenNumber:
		return tok.Num, nil
	case lexer.TokenChar:
		return uint16(tok.Ch), nil
	case lexer.TokenRegister:
		return m.Registers[tok.Reg], nil
	case lexer.TokenMemory:
		addr, err := m.resolveAddress(tok)
		if err != nil {
			return 0, err
		}
		return m.Memory[addr], nil
	}
	return 0, m.fault(ErrorInternalFault, "operand is not a readable value")
}

// writePlace implements write_place for Register and Memory operands.
func (m *VM) writePlace(tok lexer.Token, v uint16) *RuntimeError {
	switch tok.Kind() {
	case lexer.TokenRegister:
		m.Registers[tok.Reg] = v
		return nil
	case lexer.TokenMemory:
		addr, err := m.resolveAddress(tok)
		if err != nil {
			return err
		}
		m.Memory[addr] = v
		return nil
	}
	return m.fault(ErrorInternalFault, "operand is not a writable place")
}

// resolveAddress resolves a Memory token (direct or register
// indirect) to a bounds-checked memory index.
func (m *VM) resolveAddress(tok lexer.Token) (int, *RuntimeError) {
	var addr int
	if tok.IsIndirect {
		addr = int(m.Registers[tok.IndirectOf])
	} else {
		addr = int(tok.Addr)
	}
	if addr < 0 || addr >= MemSize {
		return 0, m.fault(ErrorMemoryBounds, "memory address out of range")
	}
	return addr, nil
}
