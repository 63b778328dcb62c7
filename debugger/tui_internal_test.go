package debugger

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"dis/vm"
)

// TestExecuteCommandAsync verifies that executeCommand completes
// promptly for a command that doesn't arm continued execution.
func TestExecuteCommandAsync(t *testing.T) {
	machine := vm.New()
	dbg := NewDebugger(machine)
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("failed to init simulation screen: %v", err)
	}
	defer screen.Fini()

	tui := NewTUIWithScreen(dbg, screen)

	done := make(chan bool, 1)
	go func() {
		tui.executeCommand("help")
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(time.Second * 2):
		t.Fatal("executeCommand blocked for more than 2 seconds")
	}
}

// TestHandleCommandAsync verifies that handleCommand drains the
// command input and completes promptly.
func TestHandleCommandAsync(t *testing.T) {
	machine := vm.New()
	dbg := NewDebugger(machine)
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("failed to init simulation screen: %v", err)
	}
	defer screen.Fini()

	tui := NewTUIWithScreen(dbg, screen)
	tui.CommandInput.SetText("help")

	done := make(chan bool, 1)
	go func() {
		tui.handleCommand(tcell.KeyEnter)
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(time.Second * 2):
		t.Fatal("handleCommand blocked for more than 2 seconds")
	}

	if tui.CommandInput.GetText() != "" {
		t.Error("command input should be cleared after Enter")
	}
}
