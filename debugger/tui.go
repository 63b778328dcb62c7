package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"dis/lexer"
	"dis/tools"
	"dis/vm"
)

// TUI is the full-screen text user interface for the debugger: a
// source view centered on PC, register/memory/return-stack panels,
// a breakpoints/watchpoints panel, an output log, and a command line.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	SourceView      *tview.TextView
	RegisterView    *tview.TextView
	MemoryView      *tview.TextView
	StackView       *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	MemoryAddress int

	formatter *tools.Formatter
}

// NewTUI creates a new text user interface over dbg.
func NewTUI(dbg *Debugger) *TUI {
	return newTUI(dbg, nil)
}

// NewTUIWithScreen creates a TUI bound to an explicit tcell.Screen,
// for driving the application under a simulation screen in tests.
func NewTUIWithScreen(dbg *Debugger, screen tcell.Screen) *TUI {
	return newTUI(dbg, screen)
}

func newTUI(dbg *Debugger, screen tcell.Screen) *TUI {
	t := &TUI{
		Debugger:      dbg,
		App:           tview.NewApplication(),
		MemoryAddress: 0,
		formatter:     tools.NewFormatter(tools.CompactFormatOptions()),
	}

	if screen != nil {
		t.App.SetScreen(screen)
	}

	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()

	return t
}

// initializeViews creates all the view panels.
func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.RegisterView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.StackView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.StackView.SetBorder(true).SetTitle(" Return Stack ")

	t.BreakpointsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints/Watchpoints ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

// buildLayout constructs the TUI layout.
func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.SourceView, 0, 1, false)

	rightTop := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, RegisterViewRows, 0, false).
		AddItem(t.MemoryView, 0, 1, false).
		AddItem(t.StackView, 0, 1, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(rightTop, 0, 3, false).
		AddItem(t.BreakpointsView, 8, 0, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().
		AddPage("main", t.MainLayout, true, true)
}

// setupKeyBindings sets up keyboard shortcuts.
func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF9:
			t.executeCommand("break")
			return nil
		case tcell.KeyF10:
			t.executeCommand("next")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

// handleCommand processes command input.
func (t *TUI) handleCommand(key tcell.Key) {
	if key == tcell.KeyEnter {
		cmd := t.CommandInput.GetText()
		if cmd != "" {
			t.executeCommand(cmd)
			t.CommandInput.SetText("")
		}
	}
}

// executeCommand runs a debugger command, drains its output to the
// output view, then steps the machine to completion if the command
// armed running/stepping, refreshing every panel afterward.
func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()

	err := t.Debugger.ExecuteCommand(cmd)
	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output := t.Debugger.GetOutput(); output != "" {
		t.WriteOutput(output)
	}

	for t.Debugger.Running {
		if t.Debugger.VM.Halted {
			t.Debugger.Running = false
			t.WriteOutput("Program halted\n")
			break
		}
		if shouldBreak, reason := t.Debugger.ShouldBreak(); shouldBreak {
			t.Debugger.Running = false
			t.WriteOutput(fmt.Sprintf("Stopped: %s at pc=%d\n", reason, t.Debugger.VM.PC))
			break
		}
		if stepErr := t.Debugger.VM.Step(); stepErr != nil {
			t.Debugger.Running = false
			t.WriteOutput(fmt.Sprintf("[red]Runtime error:[white] %v\n", stepErr))
			break
		}
	}

	t.RefreshAll()
}

// WriteOutput writes to the output view.
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll refreshes all view panels.
func (t *TUI) RefreshAll() {
	t.UpdateSourceView()
	t.UpdateRegisterView()
	t.UpdateMemoryView()
	t.UpdateStackView()
	t.UpdateBreakpointsView()
}

// UpdateSourceView updates the source code view, centered on PC.
func (t *TUI) UpdateSourceView() {
	t.SourceView.Clear()

	prog := t.Debugger.VM.Program
	if len(prog) == 0 {
		t.SourceView.SetText("[yellow]No program loaded[white]")
		return
	}

	pc := t.Debugger.VM.PC
	start := pc - CodeContextLinesBeforeCompact
	if start < 0 {
		start = 0
	}
	end := pc + CodeContextLinesAfterCompact + 1
	if end > len(prog) {
		end = len(prog)
	}

	var lines []string
	for i := start; i < end; i++ {
		marker := "  "
		color := "white"
		if i == pc {
			marker = "->"
			color = "yellow"
		}
		if t.Debugger.Breakpoints.GetBreakpoint(i) != nil {
			marker = "* "
		}
		lines = append(lines, fmt.Sprintf("[%s]%s %3d: %s[white]", color, marker, i, t.formatter.FormatStatement(prog[i])))
	}

	t.SourceView.SetText(strings.Join(lines, "\n"))
}

// UpdateRegisterView updates the register view.
func (t *TUI) UpdateRegisterView() {
	t.RegisterView.Clear()

	var lines []string
	var cols []string
	for i, id := range lexer.RegisterIDs {
		cols = append(cols, fmt.Sprintf("#%-2s: %5d", id, t.Debugger.VM.Registers[id]))
		if (i+1)%RegisterGroupSize == 0 {
			lines = append(lines, strings.Join(cols, "  "))
			cols = nil
		}
	}
	if len(cols) > 0 {
		lines = append(lines, strings.Join(cols, "  "))
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("pc: %d", t.Debugger.VM.PC))

	flags := ""
	if t.Debugger.VM.CompareFlags&vm.FlagEQ != 0 {
		flags += "[green]EQ[white] "
	}
	if t.Debugger.VM.CompareFlags&vm.FlagLT != 0 {
		flags += "[green]LT[white] "
	}
	if t.Debugger.VM.CompareFlags&vm.FlagGT != 0 {
		flags += "[green]GT[white] "
	}
	if flags == "" {
		flags = "(none)"
	}
	lines = append(lines, fmt.Sprintf("flags: %s", flags))
	lines = append(lines, fmt.Sprintf("state: %s", t.Debugger.VM.State))

	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

// UpdateMemoryView updates the memory view.
func (t *TUI) UpdateMemoryView() {
	t.MemoryView.Clear()

	addr := t.MemoryAddress
	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]Address: &%d[white]", addr))

	for row := 0; row < MemoryDisplayRows; row++ {
		rowAddr := addr + row*MemoryDisplayColumns
		if rowAddr >= vm.MemSize {
			break
		}

		var cells []string
		for col := 0; col < MemoryDisplayColumns; col++ {
			cellAddr := rowAddr + col
			if cellAddr >= vm.MemSize {
				break
			}
			cells = append(cells, fmt.Sprintf("%5d", t.Debugger.VM.Memory[cellAddr]))
		}

		lines = append(lines, fmt.Sprintf("&%-5d: %s", rowAddr, strings.Join(cells, " ")))
	}

	t.MemoryView.SetText(strings.Join(lines, "\n"))
}

// UpdateStackView updates the return stack view.
func (t *TUI) UpdateStackView() {
	t.StackView.Clear()

	stack := t.Debugger.VM.ReturnStack
	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]Depth: %d[white]", len(stack)))

	for i := len(stack) - 1; i >= 0; i-- {
		marker := "  "
		if i == len(stack)-1 {
			marker = "->"
		}
		lines = append(lines, fmt.Sprintf("%s #%d: returns to statement %d", marker, len(stack)-1-i, stack[i]))
	}

	t.StackView.SetText(strings.Join(lines, "\n"))
}

// UpdateBreakpointsView updates the breakpoints and watchpoints view.
func (t *TUI) UpdateBreakpointsView() {
	t.BreakpointsView.Clear()

	var lines []string

	bps := t.Debugger.Breakpoints.GetAllBreakpoints()
	if len(bps) > 0 {
		lines = append(lines, "[yellow]Breakpoints:[white]")
		for _, bp := range bps {
			status := "enabled"
			color := "green"
			if !bp.Enabled {
				status = "disabled"
				color = "red"
			}

			line := fmt.Sprintf("  %d: [%s]%s[white] statement %d", bp.ID, color, status, bp.PC)
			if bp.Condition != "" {
				line += fmt.Sprintf(" if %s", bp.Condition)
			}
			line += fmt.Sprintf(" (hits: %d)", bp.HitCount)

			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "[yellow]No breakpoints set[white]")
	}

	lines = append(lines, "")

	wps := t.Debugger.Watchpoints.GetAllWatchpoints()
	if len(wps) > 0 {
		lines = append(lines, "[yellow]Watchpoints:[white]")
		for _, wp := range wps {
			lines = append(lines, fmt.Sprintf("  %d: %s = %d", wp.ID, wp.Expression, wp.LastValue))
		}
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI application.
func (t *TUI) Run() error {
	t.RefreshAll()

	t.WriteOutput("[green]DIS Debugger[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F10 to step over, F11 to step\n")
	t.WriteOutput("Type 'help' for command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop stops the TUI application.
func (t *TUI) Stop() {
	t.App.Stop()
}
