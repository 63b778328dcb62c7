// Package vm implements the DIS virtual machine: register file, flat
// memory, compare flags, bounded return stack, and the step/run
// execution loop.
package vm

import (
	"io"
	"os"

	"dis/parser"
)

// State is the machine's lifecycle stage.
type State int

const (
	StateFresh State = iota
	StateLoaded
	StateRunning
	StateHalted
)

var stateNames = map[State]string{
	StateFresh:   "fresh",
	StateLoaded:  "loaded",
	StateRunning: "running",
	StateHalted:  "halted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// VM is an instance of the DIS machine. It owns all mutable state;
// the host may read between ticks but must not mutate it directly.
type VM struct {
	Registers    map[string]uint16
	Memory       [MemSize]uint16
	CompareFlags uint8
	ReturnStack  []int
	PC           int
	Halted       bool
	State        State

	Program []parser.Statement
	Labels  map[string]int

	In  LineReader
	Out io.Writer

	LastError *RuntimeError
}

// New creates a zeroed machine with an empty program, stdin/stdout
// bound to the process by default.
func New() *VM {
	m := &VM{
		In:  NewLineReader(os.Stdin),
		Out: os.Stdout,
	}
	m.reset()
	return m
}

func (m *VM) reset() {
	m.Registers = make(map[string]uint16, len(registerIDs))
	for _, id := range registerIDs {
		m.Registers[id] = 0
	}
	m.Memory = [MemSize]uint16{}
	m.CompareFlags = 0
	m.ReturnStack = m.ReturnStack[:0]
	m.PC = 0
	m.Halted = false
	m.Program = nil
	m.Labels = nil
	m.LastError = nil
	m.State = StateFresh
}

// Load resets the machine, then lexes, parses, include-expands and
// label-resolves the program at path, transitioning Fresh|Halted ->
// Loaded on success. Load-time errors leave the machine in Fresh.
func (m *VM) Load(path string) *parser.Error {
	m.reset()
	prog, err := parser.Load(path)
	if err != nil {
		return err
	}
	m.Program = prog.Statements
	m.Labels = prog.Labels
	m.State = StateLoaded
	return nil
}

// LoadProgram installs an already-parsed program directly, useful for
// tests and tooling that build a Program without touching the
// filesystem.
func (m *VM) LoadProgram(prog *parser.Program) {
	m.reset()
	m.Program = prog.Statements
	m.Labels = prog.Labels
	m.State = StateLoaded
}
