package tools

import (
	"strings"
	"testing"
)

func TestFormat_BasicInstruction(t *testing.T) {
	result, err := NewFormatter(DefaultFormatOptions()).FormatString("mov 10 #0", "test.dis")
	if err != nil {
		t.Fatalf("FormatString error: %v", err)
	}
	if !strings.Contains(result, "mov") {
		t.Errorf("expected mov in output, got %q", result)
	}
	if !strings.Contains(result, "10") || !strings.Contains(result, "#0") {
		t.Errorf("expected operands in output, got %q", result)
	}
}

func TestFormat_WithLabel(t *testing.T) {
	result, err := NewFormatter(DefaultFormatOptions()).FormatString("loop: add 1 #0", "test.dis")
	if err != nil {
		t.Fatalf("FormatString error: %v", err)
	}
	if !strings.HasPrefix(result, "loop:") {
		t.Errorf("expected label prefix, got %q", result)
	}
}

func TestFormat_LabelOnlyStatement(t *testing.T) {
	result, err := NewFormatter(DefaultFormatOptions()).FormatString("die top:", "test.dis")
	if err != nil {
		t.Fatalf("FormatString error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(result, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), result)
	}
	if strings.TrimSpace(lines[1]) != "top:" {
		t.Errorf("want bare label line, got %q", lines[1])
	}
}

func TestFormat_CompactStyle(t *testing.T) {
	result, err := NewFormatter(CompactFormatOptions()).FormatString("loop: add 1 #0", "test.dis")
	if err != nil {
		t.Fatalf("FormatString error: %v", err)
	}
	if result != "loop: add 1 #0\n" {
		t.Errorf("want tight compact rendering, got %q", result)
	}
}

func TestFormat_NoOperandInstruction(t *testing.T) {
	result, err := NewFormatter(DefaultFormatOptions()).FormatString("die", "test.dis")
	if err != nil {
		t.Fatalf("FormatString error: %v", err)
	}
	if !strings.Contains(strings.TrimSpace(result), "die") {
		t.Errorf("expected die in output, got %q", result)
	}
}

func TestFormat_PreservesIncludeDirective(t *testing.T) {
	result, err := NewFormatter(DefaultFormatOptions()).FormatString("@ helpers", "test.dis")
	if err != nil {
		t.Fatalf("FormatString error: %v", err)
	}
	if !strings.Contains(result, "@") || !strings.Contains(result, "helpers") {
		t.Errorf("expected include directive preserved, got %q", result)
	}
}

func TestFormat_RoundTripsTokens(t *testing.T) {
	source := "mov .H #0  out #0  die"
	result, err := NewFormatter(CompactFormatOptions()).FormatString(source, "test.dis")
	if err != nil {
		t.Fatalf("FormatString error: %v", err)
	}
	result2, err := NewFormatter(CompactFormatOptions()).FormatString(result, "test.dis")
	if err != nil {
		t.Fatalf("second FormatString error: %v", err)
	}
	if result != result2 {
		t.Errorf("format is not idempotent: %q != %q", result, result2)
	}
}

func TestFormat_RejectsBadSource(t *testing.T) {
	_, err := NewFormatter(DefaultFormatOptions()).FormatString("mov 1 2", "test.dis")
	if err == nil {
		t.Fatal("expected parse error for invalid destination operand")
	}
}
