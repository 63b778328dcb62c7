// Package debugger implements an interactive step debugger over a
// *vm.VM: breakpoints, watchpoints, command history, and an
// expression language for inspecting registers and memory, driven
// through the same New -> Load -> Step surface any other host uses.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"dis/vm"
)

// Debugger wraps a *vm.VM with breakpoints, watchpoints, an
// expression evaluator and command history, and dispatches the
// command language the CLI and TUI front ends both drive.
type Debugger struct {
	VM *vm.VM

	// Breakpoint management
	Breakpoints *BreakpointManager

	// Watchpoint management
	Watchpoints *WatchpointManager

	// Command history
	History *CommandHistory

	// Expression evaluator
	Evaluator *ExpressionEvaluator

	// Execution control
	Running      bool
	StepMode     StepMode
	StepOverPC   int // statement index to resume at after stepping over a RUN
	StepOutDepth int // return-stack depth at which StepOut should stop

	// Last command (for repeat on empty input)
	LastCommand string

	// Output buffer
	Output strings.Builder
}

// StepMode represents different stepping modes
type StepMode int

const (
	StepNone   StepMode = iota // Not stepping
	StepSingle                 // Step one instruction
	StepOver                   // Step over a RUN call
	StepOut                    // Run until the return stack unwinds
)

// NewDebugger wraps an already-created machine for interactive
// stepping. The machine need not be loaded yet; cmdLoad/cmdRun handle
// that.
func NewDebugger(machine *vm.VM) *Debugger {
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(),
		Evaluator:   NewExpressionEvaluator(),
		Running:     false,
		StepMode:    StepNone,
	}
}

// ResolveTarget resolves a label name or decimal statement index to a
// program index, the way breakpoints and step commands name a
// location in DIS (there are no memory addresses to branch to, only
// statement indices).
func (d *Debugger) ResolveTarget(s string) (int, error) {
	if idx, ok := d.VM.Labels[s]; ok {
		return idx, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not a label or statement index: %s", s)
	}
	return n, nil
}

// ExecuteCommand processes and executes a debugger command
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)

	// Empty command repeats last command (for step, next, etc.)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}

	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	return d.handleCommand(cmd, args)
}

// handleCommand dispatches commands to appropriate handlers
func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	// Execution control
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)
	case "finish", "fin":
		return d.cmdFinish(args)

	// Breakpoints
	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)

	// Watchpoints
	case "watch", "w":
		return d.cmdWatch(args)

	// Inspection
	case "print", "p":
		return d.cmdPrint(args)
	case "x":
		return d.cmdExamine(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "backtrace", "bt", "where":
		return d.cmdBacktrace(args)
	case "list", "l":
		return d.cmdList(args)

	// State modification
	case "set":
		return d.cmdSet(args)

	// Program control
	case "load":
		return d.cmdLoad(args)
	case "reset":
		return d.cmdReset(args)

	// Help
	case "help", "h", "?":
		return d.cmdHelp(args)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak checks if execution should pause before the statement
// now at PC, and reports why.
func (d *Debugger) ShouldBreak() (bool, string) {
	pc := d.VM.PC

	switch d.StepMode {
	case StepSingle:
		d.StepMode = StepNone
		return true, "single step"

	case StepOver:
		if pc == d.StepOverPC {
			d.StepMode = StepNone
			return true, "step over complete"
		}

	case StepOut:
		if len(d.VM.ReturnStack) < d.StepOutDepth {
			d.StepMode = StepNone
			return true, "step out complete"
		}
	}

	if bp := d.Breakpoints.GetBreakpoint(pc); bp != nil {
		if !bp.Enabled {
			return false, ""
		}

		if bp.Condition != "" {
			result, err := d.Evaluator.Evaluate(bp.Condition, d.VM)
			if err != nil {
				return true, fmt.Sprintf("breakpoint %d (condition error: %v)", bp.ID, err)
			}
			if !result {
				return false, ""
			}
		}

		hit := d.Breakpoints.ProcessHit(pc)
		return true, fmt.Sprintf("breakpoint %d", hit.ID)
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.VM); changed {
		return true, fmt.Sprintf("watchpoint %d: %s", wp.ID, wp.Expression)
	}

	return false, ""
}

// GetOutput returns and clears the output buffer
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

// Printf writes formatted output to the output buffer
func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

// Println writes a line to the output buffer
func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}

// SetStepOver arms step-over: when the statement at PC is a RUN, this
// runs until control returns to the statement after it; otherwise it
// behaves like a single step, since there is nothing to step over.
func (d *Debugger) SetStepOver() {
	if d.VM.PC < 0 || d.VM.PC >= len(d.VM.Program) {
		d.StepMode = StepSingle
		d.Running = true
		return
	}

	if d.VM.Program[d.VM.PC].Op.String() == "run" {
		d.StepOverPC = d.VM.PC + 1
		d.StepMode = StepOver
		d.Running = true
	} else {
		d.StepMode = StepSingle
		d.Running = true
	}
}

// SetStepOut arms step-out: run until the return stack unwinds below
// its depth at the moment finish was invoked.
func (d *Debugger) SetStepOut() {
	d.StepOutDepth = len(d.VM.ReturnStack)
	d.StepMode = StepOut
	d.Running = true
}
