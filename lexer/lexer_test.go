package lexer_test

import (
	"testing"

	"dis/lexer"
)

func tokensOf(t *testing.T, src string) []lexer.Token {
	t.Helper()
	l := lexer.New(src, "test.dis")
	toks := l.TokenizeAll()
	if errs := l.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	return toks
}

func TestPriorityCharBeforeLabel(t *testing.T) {
	toks := tokensOf(t, ".x:")
	if len(toks) != 1 {
		t.Fatalf("want 1 token, got %d: %v", len(toks), toks)
	}
	if toks[0].Kind() != lexer.TokenChar {
		t.Fatalf("want Char, got %s", toks[0].Kind())
	}
	if toks[0].Ch != 'x' {
		t.Fatalf("want char 'x', got %q", toks[0].Ch)
	}
}

func TestLabelSuffix(t *testing.T) {
	toks := tokensOf(t, "loop:")
	if toks[0].Kind() != lexer.TokenLabel || toks[0].Name != "loop" {
		t.Fatalf("want Label(loop), got %v", toks[0])
	}
}

func TestRegisterAndMemory(t *testing.T) {
	toks := tokensOf(t, "#0 &10 &#3")
	if toks[0].Kind() != lexer.TokenRegister || toks[0].Reg != "0" {
		t.Fatalf("want Register(0), got %v", toks[0])
	}
	if toks[1].Kind() != lexer.TokenMemory || toks[1].IsIndirect || toks[1].Addr != 10 {
		t.Fatalf("want Memory(10), got %v", toks[1])
	}
	if toks[2].Kind() != lexer.TokenMemory || !toks[2].IsIndirect || toks[2].IndirectOf != "3" {
		t.Fatalf("want Memory(indirect #3), got %v", toks[2])
	}
}

func TestKeywords(t *testing.T) {
	toks := tokensOf(t, "mov add sub cmp jmp jlt jgt jeq jne run ret die out prt dbg @ rdn rdc rln")
	for _, tok := range toks {
		if tok.Kind() != lexer.TokenKeyword {
			t.Fatalf("want Keyword, got %v", tok)
		}
	}
	if toks[15].Word != "@" {
		t.Fatalf("want @ keyword, got %v", toks[15])
	}
}

func TestNopIsAKeyword(t *testing.T) {
	toks := tokensOf(t, "a: nop")
	if toks[1].Kind() != lexer.TokenKeyword || toks[1].Word != "nop" {
		t.Fatalf("want Keyword(nop), got %v", toks[1])
	}
}

func TestNumberFitsU16(t *testing.T) {
	toks := tokensOf(t, "0 65535")
	if toks[0].Kind() != lexer.TokenNumber || toks[0].Num != 0 {
		t.Fatalf("want Number(0), got %v", toks[0])
	}
	if toks[1].Kind() != lexer.TokenNumber || toks[1].Num != 65535 {
		t.Fatalf("want Number(65535), got %v", toks[1])
	}
}

func TestNumberOverflowFallsThroughToIdentifier(t *testing.T) {
	toks := tokensOf(t, "99999999")
	if toks[0].Kind() != lexer.TokenIdentifier || toks[0].Name != "99999999" {
		t.Fatalf("want Identifier(99999999), got %v", toks[0])
	}
}

func TestIdentifierFallback(t *testing.T) {
	toks := tokensOf(t, "greet foo_bar")
	for _, tok := range toks {
		if tok.Kind() != lexer.TokenIdentifier {
			t.Fatalf("want Identifier, got %v", tok)
		}
	}
}

func TestLineCommentSkipped(t *testing.T) {
	toks := tokensOf(t, "mov 1 #0 - this is a comment\nadd 1 #0")
	if len(toks) != 6 {
		t.Fatalf("want 6 tokens (comment skipped), got %d: %v", len(toks), toks)
	}
}

func TestEmptyCharLiteralIsLexError(t *testing.T) {
	l := lexer.New(".", "test.dis")
	_ = l.TokenizeAll()
	if len(l.Errors()) != 1 {
		t.Fatalf("want 1 lex error, got %d", len(l.Errors()))
	}
	if l.Errors()[0].Kind != lexer.ErrorBadChar {
		t.Fatalf("want ErrorBadChar, got %v", l.Errors()[0].Kind)
	}
}

func TestInvalidMemorySpecIsNotALexError(t *testing.T) {
	toks := tokensOf(t, "&bogus")
	if toks[0].Kind() != lexer.TokenMemory {
		t.Fatalf("want Memory token, got %v", toks[0])
	}
	if toks[0].MemValid {
		t.Fatalf("want MemValid=false for &bogus")
	}
}

func TestLocationTracksLineAndColumn(t *testing.T) {
	toks := tokensOf(t, "mov 1 #0\nadd 1 #0")
	if toks[0].Loc.Line != 1 {
		t.Fatalf("want line 1, got %d", toks[0].Loc.Line)
	}
	if toks[4].Loc.Line != 2 {
		t.Fatalf("want line 2 for second statement, got %d", toks[4].Loc.Line)
	}
}

func TestRoundTripViaString(t *testing.T) {
	src := "mov .H #0 out #0 mov .i #0 out #0 die"
	toks := tokensOf(t, src)
	re := lexer.New(renderWords(toks), "test.dis")
	again := re.TokenizeAll()
	if len(again) != len(toks) {
		t.Fatalf("round trip token count mismatch: %d vs %d", len(again), len(toks))
	}
	for i := range toks {
		if toks[i].String() != again[i].String() {
			t.Fatalf("round trip mismatch at %d: %q vs %q", i, toks[i].String(), again[i].String())
		}
	}
}

func renderWords(toks []lexer.Token) string {
	s := ""
	for i, tok := range toks {
		if i > 0 {
			s += " "
		}
		s += tok.String()
	}
	return s
}
