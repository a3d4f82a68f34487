package ui

import (
	"strings"
	"testing"
)

func TestTable_Render(t *testing.T) {
	table := NewTable([]TableColumn{
		{Header: "ASSET ID"},
		{Header: "NAME", MaxWidth: 8},
		{Header: "QTY", Align: "right"},
	})
	table.AddRow([]string{"AST-1", "Rifle A", "2"})
	table.AddRow([]string{"AST-22", "Armoured Truck", "10"})

	out := table.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, separator and 2 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "Armoure…") {
		t.Errorf("expected long name to be truncated, got:\n%s", out)
	}
	if strings.Contains(out, "Armoured Truck") {
		t.Errorf("long name was not truncated:\n%s", out)
	}
}

func TestTable_EmptyColumns(t *testing.T) {
	if got := NewTable(nil).Render(); got != "" {
		t.Errorf("expected empty render, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in       string
		max      int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly8", 8, "exactly8"},
		{"too long text", 6, "too l…"},
		{"no limit", 0, "no limit"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.expected)
		}
	}
}

func TestPadString(t *testing.T) {
	tests := []struct {
		s, align string
		width    int
		expected string
	}{
		{"ab", "left", 4, "ab  "},
		{"ab", "right", 4, "  ab"},
		{"ab", "center", 5, " ab  "},
		{"abcdef", "left", 3, "abcdef"},
	}
	for _, tt := range tests {
		if got := padString(tt.s, tt.width, tt.align); got != tt.expected {
			t.Errorf("padString(%q, %d, %q) = %q, want %q", tt.s, tt.width, tt.align, got, tt.expected)
		}
	}
}
