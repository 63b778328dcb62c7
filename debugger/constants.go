package debugger

// Code view context constants
const (
	// CodeContextLinesBeforeCompact is the number of statements shown
	// before PC in the TUI source panel
	CodeContextLinesBeforeCompact = 5

	// CodeContextLinesAfterCompact is the number of statements shown
	// after PC in the TUI source panel
	CodeContextLinesAfterCompact = 10
)

// Memory panel constants
const (
	// MemoryDisplayRows is the number of rows in the memory dump panel
	MemoryDisplayRows = 16

	// MemoryDisplayColumns is the number of u16 cells per row
	MemoryDisplayColumns = 8
)

// Register panel constants
const (
	// RegisterViewRows is the fixed height of the register panel: the
	// 9 registers in 3 rows, a blank line, the pc/flags/state lines and
	// the two border rows take 9 rows, leaving 3 spare
	RegisterViewRows = 12

	// RegisterGroupSize is the number of registers displayed per row
	RegisterGroupSize = 3
)
