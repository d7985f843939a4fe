package main

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"ID", "Name"},
		[][]string{{"1", "Aoi"}, {"22"}},
		[]columnAlignment{alignRight, alignLeft},
	)
	lines := strings.Split(out, "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "╭") || !strings.Contains(lines[1], "ID") {
		t.Fatalf("unexpected header:\n%s", out)
	}
	if !strings.Contains(lines[3], "  1 │ Aoi") {
		t.Fatalf("expected right-aligned id, got %q", lines[3])
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Audio", statusWarn, "2 files missing", false)
	want := fmt.Sprintf("  %-*s %s", statusLabelWidth, "Audio:", "[WARN] 2 files missing")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Script", statusOK, "ok", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
	if plain := renderStatusLine("Script", statusInfo, "ok", true); strings.Contains(plain, "\x1b[") {
		t.Fatalf("info lines are not colored, got %q", plain)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatal("expected non-file writer to disable color")
	}
}
