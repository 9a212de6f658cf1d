package output

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/rahidz/oeismatcher/internal/combination"
	"github.com/rahidz/oeismatcher/internal/matcher"
)

func TestStatusIcons(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlain(&buf)

	w.Success("index built")
	w.Warning("names file missing")
	w.Error("store unreadable")
	w.Status("", "plain line")

	out := buf.String()
	for _, want := range []string{"✅ index built", "⚠️  names file missing", "❌ store unreadable", "   plain line"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPlainWriterHasNoANSI(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlain(&buf)
	w.Success("done")
	w.Heading("Results")
	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("NewPlain output contains ANSI escapes: %q", buf.String())
	}
}

func TestSetColor(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlain(&buf)
	w.SetColor(true)
	w.Heading("Results")
	if !strings.Contains(buf.String(), "\033[1m") {
		t.Errorf("expected bold escape after SetColor(true): %q", buf.String())
	}
}

func TestCode(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlain(&buf)
	w.Code("a(n) = 2*A000027(n)")
	if !strings.Contains(buf.String(), "  a(n) = 2*A000027(n)") {
		t.Errorf("code block not indented: %q", buf.String())
	}
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlain(&buf)
	w.Progress(5, 10, "parsing stripped")
	out := buf.String()
	if !strings.Contains(out, "50%") {
		t.Errorf("expected 50%% in progress output: %q", out)
	}
	if !strings.Contains(out, "█") || !strings.Contains(out, "░") {
		t.Errorf("expected bar characters: %q", out)
	}

	buf.Reset()
	w.Progress(10, 10, "done")
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("completed progress should end with newline")
	}
}

func TestRenderProgressBarBounds(t *testing.T) {
	if got := renderProgressBar(0, 0, 10); got != strings.Repeat("░", 10) {
		t.Errorf("zero total should render empty bar, got %q", got)
	}
	if got := renderProgressBar(20, 10, 10); got != strings.Repeat("█", 10) {
		t.Errorf("overfull bar should clamp, got %q", got)
	}
}

func TestExactMatchesOutput(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlain(&buf)

	w.ExactMatches([]matcher.Match{
		{ID: "A000045", Name: "Fibonacci numbers", Kind: matcher.Prefix, Offset: 0, Length: 6, Score: 6,
			Snippet: []*big.Int{big.NewInt(0), big.NewInt(1), big.NewInt(1)}},
	})

	out := buf.String()
	if !strings.Contains(out, "A000045") || !strings.Contains(out, "Fibonacci") {
		t.Errorf("match line incomplete: %q", out)
	}
	if !strings.Contains(out, "0, 1, 1") {
		t.Errorf("snippet missing: %q", out)
	}

	buf.Reset()
	w.ExactMatches(nil)
	if !strings.Contains(buf.String(), "no exact matches") {
		t.Errorf("empty case: %q", buf.String())
	}
}

func TestCombinationsOutput(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlain(&buf)

	w.Combinations([]combination.Match{
		{IDs: []string{"A000027", "A000012"}, Expression: "a(n) = 2*A000027(n) + 1*A000012(n)", Length: 5, Score: 1.2},
	})
	if !strings.Contains(buf.String(), "2*A000027(n) + 1*A000012(n)") {
		t.Errorf("expression missing: %q", buf.String())
	}
}
