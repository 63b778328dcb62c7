package lexer

import "fmt"

// ErrorKind classifies a lexical error.
type ErrorKind int

const (
	ErrorIO ErrorKind = iota
	ErrorBadChar
	ErrorBadNumber
)

var errorKindNames = map[ErrorKind]string{
	ErrorIO:        "io error",
	ErrorBadChar:   "malformed char literal",
	ErrorBadNumber: "malformed number",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a lexical error with source position.
type Error struct {
	Loc     Location
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Message)
}

func newError(loc Location, kind ErrorKind, message string) *Error {
	return &Error{Loc: loc, Kind: kind, Message: message}
}
