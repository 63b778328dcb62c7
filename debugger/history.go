package debugger

import (
	"strings"
	"sync"
)

const historyCapacity = 1000

// CommandHistory keeps the debugger's executed commands for arrow-key
// navigation and prefix search. Consecutive duplicates collapse into
// one entry, and the buffer is trimmed to a fixed capacity.
type CommandHistory struct {
	mu       sync.RWMutex
	commands []string
	position int // navigation cursor; len(commands) means "past the end"
}

// NewCommandHistory creates an empty history.
func NewCommandHistory() *CommandHistory {
	return &CommandHistory{commands: make([]string, 0, 100)}
}

// Add records a command and resets the navigation cursor to the end.
// Empty commands and repeats of the most recent entry are skipped.
func (h *CommandHistory) Add(cmd string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cmd == "" {
		return
	}
	if n := len(h.commands); n > 0 && h.commands[n-1] == cmd {
		h.position = n
		return
	}

	h.commands = append(h.commands, cmd)
	if len(h.commands) > historyCapacity {
		h.commands = h.commands[len(h.commands)-historyCapacity:]
	}
	h.position = len(h.commands)
}

// Previous moves the cursor one entry back and returns it, or ""
// when already at the oldest entry.
func (h *CommandHistory) Previous() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.commands) == 0 || h.position == 0 {
		return ""
	}
	h.position--
	return h.commands[h.position]
}

// Next moves the cursor one entry forward and returns it, or "" when
// the cursor walks off the newest entry.
func (h *CommandHistory) Next() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.commands) == 0 {
		return ""
	}
	if h.position >= len(h.commands)-1 {
		h.position = len(h.commands)
		return ""
	}
	h.position++
	return h.commands[h.position]
}

// GetLast returns the most recent command without moving the cursor.
func (h *CommandHistory) GetLast() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.commands) == 0 {
		return ""
	}
	return h.commands[len(h.commands)-1]
}

// GetAll returns a copy of the history, oldest first.
func (h *CommandHistory) GetAll() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, len(h.commands))
	copy(out, h.commands)
	return out
}

// Clear empties the history and resets the cursor.
func (h *CommandHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.commands = h.commands[:0]
	h.position = 0
}

// Size returns the number of stored commands.
func (h *CommandHistory) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.commands)
}

// Search returns every stored command beginning with prefix, oldest
// first.
func (h *CommandHistory) Search(prefix string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []string
	for _, cmd := range h.commands {
		if strings.HasPrefix(cmd, prefix) {
			out = append(out, cmd)
		}
	}
	return out
}
