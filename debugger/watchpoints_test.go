package debugger

import (
	"testing"

	"dis/vm"
)

func TestWatchpointManager_AddWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()

	wp := wm.AddWatchpoint("#0", 0, true, "0")

	if wp == nil {
		t.Fatal("AddWatchpoint returned nil")
	}

	if wp.ID != 1 {
		t.Errorf("Expected ID 1, got %d", wp.ID)
	}

	if wp.Expression != "#0" {
		t.Errorf("Expression = %s, want #0", wp.Expression)
	}

	if !wp.IsRegister {
		t.Error("Should be register watchpoint")
	}

	if !wp.Enabled {
		t.Error("Watchpoint should be enabled by default")
	}

	if wp.HitCount != 0 {
		t.Errorf("Initial hit count should be 0, got %d", wp.HitCount)
	}
}

func TestWatchpointManager_AddMultiple(t *testing.T) {
	wm := NewWatchpointManager()

	wp1 := wm.AddWatchpoint("#0", 0, true, "0")
	wp2 := wm.AddWatchpoint("&100", 100, false, "")

	if wp1.ID == wp2.ID {
		t.Error("Watchpoint IDs should be unique")
	}

	if wm.Count() != 2 {
		t.Errorf("Expected 2 watchpoints, got %d", wm.Count())
	}
}

func TestWatchpointManager_DeleteWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()

	wp := wm.AddWatchpoint("#0", 0, true, "0")

	err := wm.DeleteWatchpoint(wp.ID)
	if err != nil {
		t.Fatalf("DeleteWatchpoint failed: %v", err)
	}

	// Try to delete non-existent watchpoint
	err = wm.DeleteWatchpoint(999)
	if err == nil {
		t.Error("Expected error when deleting non-existent watchpoint")
	}
}

func TestWatchpointManager_CheckWatchpoints_Register(t *testing.T) {
	wm := NewWatchpointManager()
	machine := vm.New()

	wp := wm.AddWatchpoint("#0", 0, true, "0")

	machine.Registers["0"] = 100
	err := wm.InitializeWatchpoint(wp.ID, machine)
	if err != nil {
		t.Fatalf("InitializeWatchpoint failed: %v", err)
	}

	if wp.LastValue != 100 {
		t.Errorf("LastValue = %d, want 100", wp.LastValue)
	}

	// No change
	triggered, changed := wm.CheckWatchpoints(machine)
	if triggered != nil || changed {
		t.Error("Should not trigger when value hasn't changed")
	}

	// Change value
	machine.Registers["0"] = 200
	triggered, changed = wm.CheckWatchpoints(machine)
	if triggered == nil || !changed {
		t.Fatal("Should trigger when value changes")
	}

	if triggered.ID != wp.ID {
		t.Errorf("Wrong watchpoint triggered: got %d, want %d", triggered.ID, wp.ID)
	}

	if wp.HitCount != 1 {
		t.Errorf("Hit count = %d, want 1", wp.HitCount)
	}

	if wp.LastValue != 200 {
		t.Errorf("LastValue not updated: got %d, want 200", wp.LastValue)
	}
}

func TestWatchpointManager_CheckWatchpoints_Memory(t *testing.T) {
	wm := NewWatchpointManager()
	machine := vm.New()

	addr := 100

	wp := wm.AddWatchpoint("&100", addr, false, "")

	machine.Memory[addr] = 1234
	err := wm.InitializeWatchpoint(wp.ID, machine)
	if err != nil {
		t.Fatalf("InitializeWatchpoint failed: %v", err)
	}

	// No change
	triggered, changed := wm.CheckWatchpoints(machine)
	if triggered != nil || changed {
		t.Error("Should not trigger when value hasn't changed")
	}

	// Change value
	machine.Memory[addr] = 5678
	triggered, changed = wm.CheckWatchpoints(machine)
	if triggered == nil || !changed {
		t.Fatal("Should trigger when value changes")
	}

	if triggered.ID != wp.ID {
		t.Errorf("Wrong watchpoint triggered: got %d, want %d", triggered.ID, wp.ID)
	}
}

func TestWatchpointManager_Disabled(t *testing.T) {
	wm := NewWatchpointManager()
	machine := vm.New()

	wp := wm.AddWatchpoint("#0", 0, true, "0")
	wm.InitializeWatchpoint(wp.ID, machine)
	wp.Enabled = false

	machine.Registers["0"] = 100

	triggered, _ := wm.CheckWatchpoints(machine)
	if triggered != nil {
		t.Error("Disabled watchpoint should not trigger")
	}
}

func TestWatchpointManager_GetAllWatchpoints(t *testing.T) {
	wm := NewWatchpointManager()

	wm.AddWatchpoint("#0", 0, true, "0")
	wm.AddWatchpoint("#1", 0, true, "1")
	wm.AddWatchpoint("&100", 100, false, "")

	all := wm.GetAllWatchpoints()

	if len(all) != 3 {
		t.Errorf("Expected 3 watchpoints, got %d", len(all))
	}
}

func TestWatchpointManager_Clear(t *testing.T) {
	wm := NewWatchpointManager()

	wm.AddWatchpoint("#0", 0, true, "0")
	wm.AddWatchpoint("#1", 0, true, "1")

	wm.Clear()

	if wm.Count() != 0 {
		t.Errorf("Expected 0 watchpoints after clear, got %d", wm.Count())
	}
}

func TestWatchpointManager_InitializeUnknown(t *testing.T) {
	wm := NewWatchpointManager()
	machine := vm.New()

	if err := wm.InitializeWatchpoint(999, machine); err == nil {
		t.Error("Expected error initializing unknown watchpoint")
	}
}

func TestWatchpointManager_MemoryOutOfRangeIsSkipped(t *testing.T) {
	wm := NewWatchpointManager()
	machine := vm.New()

	wm.AddWatchpoint("&99999", 99999, false, "")

	triggered, changed := wm.CheckWatchpoints(machine)
	if triggered != nil || changed {
		t.Error("Out-of-range memory watchpoint should never trigger")
	}
}
