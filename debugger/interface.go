package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// RunCLI runs the command-line debugger interface.
func RunCLI(dbg *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("(dis-dbg) ")

		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())

		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		if err := dbg.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

		if output := dbg.GetOutput(); output != "" {
			fmt.Print(output)
		}

		for dbg.Running {
			if dbg.VM.Halted {
				dbg.Running = false
				fmt.Println("Program halted")
				break
			}

			if shouldBreak, reason := dbg.ShouldBreak(); shouldBreak {
				dbg.Running = false
				fmt.Printf("Stopped: %s at pc=%d\n", reason, dbg.VM.PC)
				break
			}

			if err := dbg.VM.Step(); err != nil {
				fmt.Printf("Runtime error: %v\n", err)
				dbg.Running = false
				break
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}

	return nil
}

// RunTUI runs the text user interface debugger.
func RunTUI(dbg *Debugger) error {
	tui := NewTUI(dbg)
	return tui.Run()
}
