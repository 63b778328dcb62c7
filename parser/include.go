package parser

import (
	"fmt"
	"os"
	"path/filepath"

	"dis/lexer"
)

// resolver expands `@name` statements into the statements of
// `<dir>/name.dis`, recursively, detecting cycles via the stack of
// files currently being expanded (their normalised absolute paths).
type resolver struct {
	stack []string
}

// ParseFile loads, lexes, parses and include-expands the program
// rooted at path. It does not index or verify labels; call
// IndexAndVerify on the result.
func ParseFile(path string) ([]Statement, *Error) {
	r := &resolver{}
	return r.load(path)
}

func (r *resolver) load(path string) ([]Statement, *Error) {
	abs, absErr := filepath.Abs(path)
	if absErr != nil {
		abs = path
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(lexer.Location{File: path}, ErrorIncludeIO,
			fmt.Sprintf("cannot read `%s`: %s", path, err))
	}

	lx := lexer.New(string(text), path)
	toks := lx.TokenizeAll()
	if lexErrs := lx.Errors(); len(lexErrs) > 0 {
		first := lexErrs[0]
		return nil, newError(first.Loc, ErrorSyntax, first.Message)
	}

	stmts, perr := NewParser(toks).Parse()
	if perr != nil {
		return nil, perr
	}

	r.stack = append(r.stack, abs)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	return r.expand(filepath.Dir(path), stmts)
}

func (r *resolver) expand(dir string, stmts []Statement) ([]Statement, *Error) {
	out := make([]Statement, 0, len(stmts))
	for _, s := range stmts {
		if s.Op != OpINC {
			out = append(out, s)
			continue
		}

		name := s.Body[0].Name
		childPath := filepath.Join(dir, name+".dis")
		childAbs, absErr := filepath.Abs(childPath)
		if absErr != nil {
			childAbs = childPath
		}

		for _, inProgress := range r.stack {
			if inProgress == childAbs {
				return nil, newError(s.Loc, ErrorCircularInclude,
					fmt.Sprintf("include of `%s` forms a cycle", name))
			}
		}

		childStmts, err := r.load(childPath)
		if err != nil {
			if err.Kind == ErrorIncludeIO && err.Loc.Line == 0 {
				return nil, newError(s.Loc, ErrorIncludeIO, err.Message)
			}
			return nil, err
		}
		out = append(out, childStmts...)
	}
	return out, nil
}
