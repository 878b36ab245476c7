package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/agbru/mpcalc/internal/mp"
	"github.com/agbru/mpcalc/internal/orchestration"
)

func runREPL(t *testing.T, script string) string {
	t.Helper()
	repl := NewREPL(REPLConfig{
		Timeout:    10 * time.Second,
		Strategies: orchestration.DefaultStrategies(0),
	})
	var out bytes.Buffer
	repl.SetInput(strings.NewReader(script))
	repl.SetOutput(&out)
	repl.Start()
	return out.String()
}

func assertContainsAll(t *testing.T, output string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestREPLSessions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		script string
		wants  []string
	}{
		{
			name:   "exptmod",
			script: "set a 4\nset b 13\nset c 497\nexptmod a b c d\nshow d\n",
			wants:  []string{"Successful", "d = 445 (9 bits)"},
		},
		{
			name:   "exptmod rejects a zero modulus and keeps the destination",
			script: "set a 4\nset b 13\nset d 7\nexptmod a b p d\nshow d\n",
			wants:  []string{"Value out of range", "d = 7"},
		},
		{
			name:   "signs",
			script: "set a -5\nabs a b\nshow b\nneg b c\nshow c\naddd a 7 e\nshow e\ncmp a b\n",
			wants:  []string{"b = 5", "c = -5", "e = 2", "a LT b"},
		},
		{
			name:   "aliasing",
			script: "set a 6\nadd a a a\nshow a\n",
			wants:  []string{"a = 12"},
		},
		{
			name:   "binary operations",
			script: "set a 3\nset b 11\ninvmod a b c\nshow c\nmod a z y\n",
			wants:  []string{"c = 4", "Value out of range"},
		},
		{
			name:   "error codes",
			script: "err -3\nerr 0\nerr 42\nerr x\n",
			wants:  []string{"-3: Value out of range", "0: Successful", "42: Invalid error code", "Invalid code: x"},
		},
		{
			name:   "conversions",
			script: "set g 0x100000001\nget g\neven g\nset h 0x10000000000000000\nget h\n",
			wants:  []string{"i32 = 1, mag32 = 1", "int64 = 4294967297", "g is odd", "Integer overflow"},
		},
		{
			name:   "radix",
			script: "set f 255\nradix 16\nshow f\nradix 99\n",
			wants:  []string{"Display radix: 16", "f = FF", "Radix must be between 2 and 64"},
		},
		{
			name:   "set rejects bad digits",
			script: "set a 12z\n",
			wants:  []string{"Value out of range"},
		},
		{
			name:   "compare",
			script: "set a 2\nset b 100\nset c 1000000007\ncompare a b c\n",
			wants:  []string{"--- Comparison Summary ---", "bigint", "montgomery", "consistent", "976371285"},
		},
		{
			name:   "list and clear",
			script: "set q 9\nlist\nclear q\nzero q\nlist\n",
			wants:  []string{"q = 9", "(all zero)"},
		},
		{
			name:   "usage errors",
			script: "set A 1\nneg a\nfrobnicate\naddd a x b\n",
			wants:  []string{"Unknown register: A", "Usage: neg r s", "Unknown command: frobnicate", "Invalid digit: x"},
		},
		{
			name:   "input without trailing newline",
			script: "set a 5\nshow a",
			wants:  []string{"a = 5", "Goodbye!"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assertContainsAll(t, runREPL(t, tt.script), tt.wants...)
		})
	}
}

func TestREPLExitStopsProcessing(t *testing.T) {
	t.Parallel()
	output := runREPL(t, "exit\nset a 1\n")
	if !strings.Contains(output, "Goodbye!") {
		t.Errorf("missing farewell:\n%s", output)
	}
	if strings.Contains(output, mp.ErrorToString(mp.Okay)) {
		t.Error("commands after exit must not run")
	}
}

func TestREPLCompareWithoutStrategies(t *testing.T) {
	t.Parallel()
	repl := NewREPL(REPLConfig{Radix: 1})
	var out bytes.Buffer
	repl.SetOutput(&out)
	repl.processCommand("compare a b c")
	if !strings.Contains(out.String(), "No strategies configured") {
		t.Errorf("output = %q", out.String())
	}
	if repl.radix != 10 {
		t.Errorf("an invalid initial radix should fall back to 10, got %d", repl.radix)
	}
}

func TestREPLBannerAndHelp(t *testing.T) {
	t.Parallel()
	assertContainsAll(t, runREPL(t, ""), "mpcalc register machine", "26 registers", "exptmod g x p y", "err <code>")
}
