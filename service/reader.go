package service

import "strings"

// newConstReader wraps a single line of text (as sent over the API's
// stdin endpoint) as an io.Reader a vm.LineReader can consume.
func newConstReader(line string) *strings.Reader {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	return strings.NewReader(line)
}
