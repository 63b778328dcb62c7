package debugger

import (
	"fmt"
	"sync"

	"dis/vm"
)

// Watchpoint monitors a register or a memory cell for value changes.
// It detects any change rather than distinguishing reads from writes:
// DIS's instruction set has no separate read/write barrier to hook.
type Watchpoint struct {
	ID         int
	Expression string // display text, e.g. "#0" or "&100"
	Address    int    // resolved memory index, if !IsRegister
	IsRegister bool
	Register   string // register ID, if IsRegister
	Enabled    bool
	LastValue  uint16
	HitCount   int
}

// WatchpointManager manages all watchpoints.
type WatchpointManager struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

// NewWatchpointManager creates a new watchpoint manager.
func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{
		watchpoints: make(map[int]*Watchpoint),
		nextID:      1,
	}
}

// AddWatchpoint adds a new watchpoint.
func (wm *WatchpointManager) AddWatchpoint(expression string, address int, isRegister bool, register string) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp := &Watchpoint{
		ID:         wm.nextID,
		Expression: expression,
		Address:    address,
		IsRegister: isRegister,
		Register:   register,
		Enabled:    true,
	}

	wm.watchpoints[wp.ID] = wp
	wm.nextID++

	return wp
}

// DeleteWatchpoint removes a watchpoint by ID.
func (wm *WatchpointManager) DeleteWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if _, exists := wm.watchpoints[id]; !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	delete(wm.watchpoints, id)
	return nil
}

// GetAllWatchpoints returns all watchpoints.
func (wm *WatchpointManager) GetAllWatchpoints() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	result := make([]*Watchpoint, 0, len(wm.watchpoints))
	for _, wp := range wm.watchpoints {
		result = append(result, wp)
	}
	return result
}

// CheckWatchpoints checks all watchpoints against the current machine
// state and returns the first one whose value has changed.
func (wm *WatchpointManager) CheckWatchpoints(machine *vm.VM) (*Watchpoint, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for _, wp := range wm.watchpoints {
		if !wp.Enabled {
			continue
		}

		var current uint16
		if wp.IsRegister {
			current = machine.Registers[wp.Register]
		} else {
			if wp.Address < 0 || wp.Address >= vm.MemSize {
				continue
			}
			current = machine.Memory[wp.Address]
		}

		if current != wp.LastValue {
			wp.HitCount++
			wp.LastValue = current
			return wp, true
		}
	}

	return nil, false
}

// InitializeWatchpoint seeds LastValue from the current machine state
// so the first CheckWatchpoints call doesn't spuriously fire.
func (wm *WatchpointManager) InitializeWatchpoint(id int, machine *vm.VM) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	if wp.IsRegister {
		wp.LastValue = machine.Registers[wp.Register]
	} else if wp.Address >= 0 && wp.Address < vm.MemSize {
		wp.LastValue = machine.Memory[wp.Address]
	}

	return nil
}

// Clear removes all watchpoints.
func (wm *WatchpointManager) Clear() {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.watchpoints = make(map[int]*Watchpoint)
}

// Count returns the number of watchpoints.
func (wm *WatchpointManager) Count() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return len(wm.watchpoints)
}
