// Package service manages DIS execution sessions for the HTTP/WebSocket
// event feed: a Session wraps a single *vm.VM instance and serializes
// access to it, broadcasting one event per executed statement through
// an api.Broadcaster-shaped sink.
package service

import (
	"bytes"
	"sync"
	"time"

	"dis/parser"
	"dis/vm"
)

// EventSink receives one notification per executed statement plus
// state transitions. It is satisfied by *api.Broadcaster without this
// package importing api (api imports service, not the reverse).
type EventSink interface {
	BroadcastState(sessionID string, data map[string]interface{})
	BroadcastOutput(sessionID string, stream string, content string)
	BroadcastExecutionEvent(sessionID string, eventName string, details map[string]interface{})
}

// Session is a single named DIS execution context: a *vm.VM plus the
// bookkeeping the API layer needs to report status without reaching
// into VM internals from another package.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	machine *vm.VM
	out     *bytes.Buffer
	sink    EventSink
}

// New creates a session bound to a fresh VM. Output written by the
// guest program is captured and, when sink is non-nil, mirrored to it
// as an "output" event.
func New(id string, sink EventSink) *Session {
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		machine:   vm.New(),
		out:       &bytes.Buffer{},
		sink:      sink,
	}
	s.machine.Out = &broadcastWriter{s: s}
	return s
}

// broadcastWriter mirrors VM output into the session's buffer and,
// when a sink is attached, onto the session's output event stream.
type broadcastWriter struct{ s *Session }

func (w *broadcastWriter) Write(p []byte) (int, error) {
	n, err := w.s.out.Write(p)
	if err == nil && w.s.sink != nil {
		w.s.sink.BroadcastOutput(w.s.ID, "stdout", string(p))
	}
	return n, err
}

// Load parses and label-resolves the program at path into the
// session's machine, resetting any prior execution state.
func (s *Session) Load(path string) *parser.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.Reset()
	if err := s.machine.Load(path); err != nil {
		return err
	}
	s.emitState()
	return nil
}

// Step executes a single statement and emits a state event describing
// the machine afterward.
func (s *Session) Step() *vm.RuntimeError {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine.Halted {
		return nil
	}
	err := s.machine.Step()
	s.emitState()
	if err != nil {
		s.emitFault(err)
	} else if s.machine.Halted {
		s.emitHalt()
	}
	return err
}

// Run executes statements until the machine halts or faults, emitting
// a state event after every statement. There are no breakpoints at
// this layer; a remote visualiser that wants per-step control calls
// Step instead.
func (s *Session) Run() *vm.RuntimeError {
	for {
		s.mu.Lock()
		if s.machine.Halted {
			s.mu.Unlock()
			return nil
		}
		err := s.machine.Step()
		s.emitState()
		halted := s.machine.Halted
		s.mu.Unlock()
		if err != nil {
			s.emitFault(err)
			return err
		}
		if halted {
			s.emitHalt()
			return nil
		}
	}
}

// SendInput feeds a line of text to the session's line reader, for
// guest programs blocked on RDN/RDC/RLN.
func (s *Session) SendInput(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.In = vm.NewLineReader(newConstReader(line))
}

// Status is a point-in-time snapshot of the session suitable for JSON
// encoding.
type Status struct {
	SessionID    string            `json:"sessionId"`
	State        string            `json:"state"`
	PC           int               `json:"pc"`
	Registers    map[string]uint16 `json:"registers"`
	CompareFlags uint8             `json:"compareFlags"`
	Halted       bool              `json:"halted"`
	Error        string            `json:"error,omitempty"`
	Output       string            `json:"output"`
}

// Status returns a snapshot of the current machine state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		SessionID:    s.ID,
		State:        s.machine.State.String(),
		PC:           s.machine.PC,
		Registers:    copyRegisters(s.machine.Registers),
		CompareFlags: s.machine.CompareFlags,
		Halted:       s.machine.Halted,
		Output:       s.out.String(),
	}
	if s.machine.LastError != nil {
		st.Error = s.machine.LastError.Error()
	}
	return st
}

func (s *Session) emitState() {
	if s.sink == nil {
		return
	}
	s.sink.BroadcastState(s.ID, map[string]interface{}{
		"pc":           s.machine.PC,
		"registers":    copyRegisters(s.machine.Registers),
		"compareFlags": s.machine.CompareFlags,
		"halted":       s.machine.Halted,
		"state":        s.machine.State.String(),
	})
}

func (s *Session) emitHalt() {
	if s.sink == nil {
		return
	}
	s.sink.BroadcastExecutionEvent(s.ID, "halted", nil)
}

func (s *Session) emitFault(err *vm.RuntimeError) {
	if s.sink == nil {
		return
	}
	s.sink.BroadcastExecutionEvent(s.ID, "error", map[string]interface{}{
		"kind":    err.Kind.String(),
		"message": err.Error(),
	})
}

func copyRegisters(regs map[string]uint16) map[string]uint16 {
	out := make(map[string]uint16, len(regs))
	for k, v := range regs {
		out[k] = v
	}
	return out
}
