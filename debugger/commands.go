package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"dis/lexer"
	"dis/parser"
	"dis/tools"
	"dis/vm"
)

// Command handler implementations

// cmdRun (re)starts program execution from the beginning, reloading
// the currently installed program so registers, memory and the
// return stack are back at their initial state.
func (d *Debugger) cmdRun(args []string) error {
	if d.VM.Program == nil {
		return fmt.Errorf("no program loaded")
	}
	d.VM.LoadProgram(&parser.Program{Statements: d.VM.Program, Labels: d.VM.Labels})
	d.Running = true
	d.StepMode = StepNone

	d.Println("Starting program execution...")
	return nil
}

// cmdContinue resumes execution from the current point.
func (d *Debugger) cmdContinue(args []string) error {
	if d.VM.Halted {
		return fmt.Errorf("program is not running")
	}

	d.Running = true
	d.StepMode = StepNone

	d.Println("Continuing...")
	return nil
}

// cmdStep executes a single statement.
func (d *Debugger) cmdStep(args []string) error {
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

// cmdNext steps over a run call (or single-steps, if the current
// statement isn't one).
func (d *Debugger) cmdNext(args []string) error {
	d.SetStepOver()
	return nil
}

// cmdFinish runs until the current subroutine returns.
func (d *Debugger) cmdFinish(args []string) error {
	d.SetStepOut()
	return nil
}

// cmdBreak sets a breakpoint at a label or statement index.
func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <label|statement-index> [if <condition>]")
	}

	pc, err := d.ResolveTarget(args[0])
	if err != nil {
		return err
	}

	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}

	bp := d.Breakpoints.AddBreakpoint(pc, false, condition)

	if condition != "" {
		d.Printf("Breakpoint %d at statement %d (condition: %s)\n", bp.ID, pc, condition)
	} else {
		d.Printf("Breakpoint %d at statement %d\n", bp.ID, pc)
	}

	return nil
}

// cmdTBreak sets a temporary breakpoint (auto-deletes after it hits).
func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <label|statement-index>")
	}

	pc, err := d.ResolveTarget(args[0])
	if err != nil {
		return err
	}

	bp := d.Breakpoints.AddBreakpoint(pc, true, "")
	d.Printf("Temporary breakpoint %d at statement %d\n", bp.ID, pc)

	return nil
}

// cmdDelete deletes breakpoint(s).
func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

// cmdEnable enables a breakpoint.
func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.EnableBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

// cmdDisable disables a breakpoint.
func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.DisableBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

// cmdWatch sets a watchpoint on a register or memory cell.
func (d *Debugger) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <#register|&address>")
	}

	expression := strings.Join(args, " ")
	isRegister, register, address, err := d.parseWatchExpression(expression)
	if err != nil {
		return err
	}

	wp := d.Watchpoints.AddWatchpoint(expression, address, isRegister, register)

	if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.VM); err != nil {
		d.Watchpoints.DeleteWatchpoint(wp.ID)
		return err
	}

	d.Printf("Watchpoint %d: %s\n", wp.ID, expression)
	return nil
}

// parseWatchExpression parses a watch target: "#id" for a register or
// "&n" for a direct memory cell.
func (d *Debugger) parseWatchExpression(expr string) (isRegister bool, register string, address int, err error) {
	expr = strings.TrimSpace(expr)

	switch {
	case strings.HasPrefix(expr, "#"):
		id := expr[1:]
		if !lexer.IsValidRegisterID(id) {
			return false, "", 0, fmt.Errorf("unknown register #%s", id)
		}
		return true, id, 0, nil

	case strings.HasPrefix(expr, "&"):
		addr, convErr := strconv.Atoi(expr[1:])
		if convErr != nil {
			return false, "", 0, fmt.Errorf("invalid memory address %q", expr)
		}
		if addr < 0 || addr >= vm.MemSize {
			return false, "", 0, fmt.Errorf("memory address %d out of range", addr)
		}
		return false, "", addr, nil

	default:
		return false, "", 0, fmt.Errorf("watch expression must be #register or &address")
	}
}

// cmdPrint evaluates and prints an expression.
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <expression>")
	}

	expression := strings.Join(args, " ")
	result, err := d.Evaluator.EvaluateExpression(expression, d.VM)
	if err != nil {
		return err
	}

	d.Printf("= %d (0x%04X)\n", result, result)
	return nil
}

// cmdExamine dumps memory cells starting at an address.
func (d *Debugger) cmdExamine(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: x <address> [count]")
	}

	addr, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid address: %s", args[0])
	}

	count := 1
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			count = n
		}
	}

	for i := 0; i < count; i++ {
		a := addr + i
		if a < 0 || a >= vm.MemSize {
			break
		}
		d.Printf("&%d: %d (0x%04X)\n", a, d.VM.Memory[a], d.VM.Memory[a])
	}

	return nil
}

// cmdInfo displays information about program state.
func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <registers|breakpoints|watchpoints|stack>")
	}

	switch strings.ToLower(args[0]) {
	case "registers", "reg", "r":
		return d.showRegisters()
	case "breakpoints", "break", "b":
		return d.showBreakpoints()
	case "watchpoints", "watch", "w":
		return d.showWatchpoints()
	case "stack", "s":
		return d.showStack()
	default:
		return fmt.Errorf("unknown info command: %s", args[0])
	}
}

// showRegisters displays every register and the compare flags.
func (d *Debugger) showRegisters() error {
	d.Println("Registers:")
	for _, id := range lexer.RegisterIDs {
		d.Printf("  #%-2s = %5d (0x%04X)\n", id, d.VM.Registers[id], d.VM.Registers[id])
	}
	d.Printf("  pc   = %d\n", d.VM.PC)

	var flags []string
	if d.VM.CompareFlags&vm.FlagEQ != 0 {
		flags = append(flags, "EQ")
	}
	if d.VM.CompareFlags&vm.FlagLT != 0 {
		flags = append(flags, "LT")
	}
	if d.VM.CompareFlags&vm.FlagGT != 0 {
		flags = append(flags, "GT")
	}
	if len(flags) == 0 {
		d.Println("  flags = (none)")
	} else {
		d.Printf("  flags = %s\n", strings.Join(flags, " "))
	}

	return nil
}

// showBreakpoints displays all breakpoints.
func (d *Debugger) showBreakpoints() error {
	breakpoints := d.Breakpoints.GetAllBreakpoints()
	if len(breakpoints) == 0 {
		d.Println("No breakpoints")
		return nil
	}

	d.Println("Breakpoints:")
	for _, bp := range breakpoints {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}

		temp := ""
		if bp.Temporary {
			temp = " (temporary)"
		}

		condition := ""
		if bp.Condition != "" {
			condition = fmt.Sprintf(" if %s", bp.Condition)
		}

		d.Printf("  %d: statement %d %s%s%s (hit %d times)\n",
			bp.ID, bp.PC, status, temp, condition, bp.HitCount)
	}

	return nil
}

// showWatchpoints displays all watchpoints.
func (d *Debugger) showWatchpoints() error {
	watchpoints := d.Watchpoints.GetAllWatchpoints()
	if len(watchpoints) == 0 {
		d.Println("No watchpoints")
		return nil
	}

	d.Println("Watchpoints:")
	for _, wp := range watchpoints {
		status := "enabled"
		if !wp.Enabled {
			status = "disabled"
		}

		d.Printf("  %d: %s %s (hit %d times, last value: %d)\n",
			wp.ID, wp.Expression, status, wp.HitCount, wp.LastValue)
	}

	return nil
}

// showStack displays the return stack.
func (d *Debugger) showStack() error {
	d.Printf("Return stack (%d frame(s)):\n", len(d.VM.ReturnStack))
	for i := len(d.VM.ReturnStack) - 1; i >= 0; i-- {
		d.Printf("  #%d  returns to statement %d\n", len(d.VM.ReturnStack)-1-i, d.VM.ReturnStack[i])
	}
	return nil
}

// cmdBacktrace shows the current position and the return stack.
func (d *Debugger) cmdBacktrace(args []string) error {
	d.Println("Call stack:")
	d.Printf("  #0  pc=%d\n", d.VM.PC)
	for i := len(d.VM.ReturnStack) - 1; i >= 0; i-- {
		d.Printf("  #%d  pc=%d\n", len(d.VM.ReturnStack)-i, d.VM.ReturnStack[i])
	}
	return nil
}

// cmdList shows source statements around the current PC.
func (d *Debugger) cmdList(args []string) error {
	if d.VM.Program == nil {
		return fmt.Errorf("no program loaded")
	}

	pc := d.VM.PC
	formatter := tools.NewFormatter(tools.CompactFormatOptions())

	start := pc - 3
	if start < 0 {
		start = 0
	}
	end := pc + 4
	if end > len(d.VM.Program) {
		end = len(d.VM.Program)
	}

	for i := start; i < end; i++ {
		marker := "  "
		if i == pc {
			marker = "=>"
		}
		d.Printf("%s %3d: %s\n", marker, i, formatter.FormatStatement(d.VM.Program[i]))
	}

	return nil
}

// cmdSet modifies a register or memory cell.
func (d *Debugger) cmdSet(args []string) error {
	if len(args) < 3 || args[1] != "=" {
		return fmt.Errorf("usage: set <#register|&address> = <expression>")
	}

	target := args[0]
	valueExpr := strings.Join(args[2:], " ")

	value, err := d.Evaluator.EvaluateExpression(valueExpr, d.VM)
	if err != nil {
		return err
	}

	switch {
	case strings.HasPrefix(target, "#"):
		id := target[1:]
		if !lexer.IsValidRegisterID(id) {
			return fmt.Errorf("unknown register #%s", id)
		}
		d.VM.Registers[id] = value
		d.Printf("#%s set to %d\n", id, value)
		return nil

	case strings.HasPrefix(target, "&"):
		addr, convErr := strconv.Atoi(target[1:])
		if convErr != nil {
			return fmt.Errorf("invalid memory address %q", target)
		}
		if addr < 0 || addr >= vm.MemSize {
			return fmt.Errorf("memory address %d out of range", addr)
		}
		d.VM.Memory[addr] = value
		d.Printf("&%d set to %d\n", addr, value)
		return nil

	default:
		return fmt.Errorf("target must be #register or &address")
	}
}

// cmdLoad loads a new program file, clearing breakpoints and
// watchpoints from the previous one.
func (d *Debugger) cmdLoad(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: load <filename>")
	}

	if err := d.VM.Load(args[0]); err != nil {
		return err
	}

	d.Breakpoints.Clear()
	d.Watchpoints.Clear()
	d.Running = false
	d.StepMode = StepNone

	d.Printf("Loaded %s\n", args[0])
	return nil
}

// cmdReset reloads the current program, resetting registers, memory
// and the return stack to their initial state without touching
// breakpoints or watchpoints.
func (d *Debugger) cmdReset(args []string) error {
	if d.VM.Program == nil {
		return fmt.Errorf("no program loaded")
	}

	d.VM.LoadProgram(&parser.Program{Statements: d.VM.Program, Labels: d.VM.Labels})
	d.Running = false
	d.StepMode = StepNone

	d.Println("VM reset")
	return nil
}

// cmdHelp displays help information.
func (d *Debugger) cmdHelp(args []string) error {
	if len(args) > 0 {
		return d.showCommandHelp(args[0])
	}

	d.Println("DIS Debugger Commands:")
	d.Println()
	d.Println("Execution Control:")
	d.Println("  run (r)           - Start program execution from the top")
	d.Println("  continue (c)      - Continue execution")
	d.Println("  step (s, si)      - Execute a single statement")
	d.Println("  next (n)          - Step over a run call")
	d.Println("  finish (fin)      - Run until the current subroutine returns")
	d.Println()
	d.Println("Breakpoints:")
	d.Println("  break (b) <loc>   - Set breakpoint at a label or statement index")
	d.Println("  tbreak (tb) <loc> - Set temporary breakpoint")
	d.Println("  delete (d) [id]   - Delete breakpoint(s)")
	d.Println("  enable <id>       - Enable breakpoint")
	d.Println("  disable <id>      - Disable breakpoint")
	d.Println()
	d.Println("Watchpoints:")
	d.Println("  watch (w) <expr>  - Watch a register (#n) or memory cell (&n) for changes")
	d.Println()
	d.Println("Inspection:")
	d.Println("  print (p) <expr>  - Evaluate expression")
	d.Println("  x <addr> [count]  - Examine memory")
	d.Println("  info (i) <what>   - Show information")
	d.Println("  backtrace (bt)    - Show call stack")
	d.Println("  list (l)          - List source code")
	d.Println()
	d.Println("Modification:")
	d.Println("  set <target> = <expr> - Modify a register or memory cell")
	d.Println()
	d.Println("Control:")
	d.Println("  load <file>       - Load a program")
	d.Println("  reset             - Reset the VM")
	d.Println("  help (h, ?)       - Show this help")
	d.Println()
	d.Println("Type 'help <command>' for detailed help on a specific command.")

	return nil
}

// showCommandHelp shows detailed help for a specific command.
func (d *Debugger) showCommandHelp(cmd string) error {
	helpText := map[string]string{
		"break": "break <label|statement-index> [if <condition>]\n  Set a breakpoint at the given location.\n  Optional condition is evaluated each time it's hit.",
		"step":  "step\n  Execute a single statement.",
		"next":  "next\n  Step over a run call (single steps anything else).",
		"print": "print <expression>\n  Evaluate and print an expression.\n  Supports registers (#n), memory (&n, &#n), char literals (.x),\n  value history ($n), arithmetic and comparison operators.",
		"x":     "x <address> [count]\n  Examine memory cells starting at address.",
		"info":  "info <registers|breakpoints|watchpoints|stack>\n  Display information about program state.",
		"watch": "watch <#register|&address>\n  Break when the register or memory cell changes value.",
		"set":   "set <#register|&address> = <expression>\n  Modify a register or memory cell.",
	}

	if help, exists := helpText[cmd]; exists {
		d.Println(help)
		return nil
	}

	return fmt.Errorf("no help available for command: %s", cmd)
}
