package parser

import (
	"fmt"
	"strings"

	"dis/lexer"
)

// ErrorKind categorizes the type of load-time error.
type ErrorKind int

const (
	ErrorSyntax ErrorKind = iota
	ErrorUndefinedLabel
	ErrorDuplicateLabel
	ErrorIncludeIO
	ErrorCircularInclude
)

var errorKindNames = map[ErrorKind]string{
	ErrorSyntax:          "syntax error",
	ErrorUndefinedLabel:  "undefined label",
	ErrorDuplicateLabel:  "duplicate label",
	ErrorIncludeIO:       "include io error",
	ErrorCircularInclude: "circular include",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a load-time error with source position and, for
// DuplicateLabel, the location of the first (conflicting) definition.
type Error struct {
	Loc      lexer.Location
	Kind     ErrorKind
	Message  string
	OtherLoc *lexer.Location
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s: %s", e.Loc, e.Kind, e.Message))
	if e.OtherLoc != nil {
		sb.WriteString(fmt.Sprintf(" (first defined at %s)", *e.OtherLoc))
	}
	return sb.String()
}

func newError(loc lexer.Location, kind ErrorKind, message string) *Error {
	return &Error{Loc: loc, Kind: kind, Message: message}
}

// ErrorList collects errors encountered while loading a program.
// Loading stops at the first error, so the list usually holds one
// entry; the collection type exists for callers that want to render
// errors from several files uniformly.
type ErrorList struct {
	Errors []*Error
}

func (el *ErrorList) AddError(err *Error) { el.Errors = append(el.Errors, err) }
func (el *ErrorList) HasErrors() bool     { return len(el.Errors) > 0 }

func (el *ErrorList) Error() string {
	var sb strings.Builder
	for _, err := range el.Errors {
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}
