// Package cli provides the terminal front end of mpcalc: result display,
// progress reporting, shell completion and the interactive register REPL.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/mpcalc/internal/format"
	"github.com/agbru/mpcalc/internal/mp"
	"github.com/agbru/mpcalc/internal/orchestration"
	"github.com/agbru/mpcalc/internal/ui"
)

// NumRegisters is the number of REPL registers, named a through z.
const NumRegisters = 26

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// Timeout bounds each compare command.
	Timeout time.Duration
	// Radix is the initial display radix.
	Radix int
	// Expt configures the exptmod command.
	Expt mp.ExptOptions
	// Strategies is the set run by the compare command. Nil disables it.
	Strategies *orchestration.StrategyRegistry
}

// REPL is an interactive register machine over the engine. Every command
// reports the engine result code description of its last operation.
type REPL struct {
	config REPLConfig
	regs   [NumRegisters]mp.Int
	radix  int
	in     io.Reader
	out    io.Writer
}

// errMismatch reports strategies that disagree; it carries no engine code.
var errMismatch = errors.New("strategies disagree")

// binaryOps are the three-register commands "op x y z" computing z = x op y.
var binaryOps = map[string]func(z, x, y *mp.Int) error{
	"add":    (*mp.Int).Add,
	"sub":    (*mp.Int).Sub,
	"mul":    (*mp.Int).Mul,
	"mod":    (*mp.Int).Mod,
	"gcd":    (*mp.Int).GCD,
	"lcm":    (*mp.Int).LCM,
	"invmod": (*mp.Int).InvMod,
}

// NewREPL creates a new REPL instance reading stdin and writing stdout.
func NewREPL(config REPLConfig) *REPL {
	radix := config.Radix
	if radix < mp.MinRadix || radix > mp.MaxRadix {
		radix = 10
	}
	return &REPL{
		config: config,
		radix:  radix,
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start runs the read-eval-print loop until exit or end of input.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)
	for {
		fmt.Fprint(r.out, ui.ColorGreen()+"mp> "+ui.ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			return
		}
		eof := err != nil

		if line := strings.TrimSpace(input); line != "" && !strings.HasPrefix(line, "#") {
			if !r.processCommand(line) {
				return
			}
		}
		if eof {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	styles := ui.GetStyles()
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, styles.Title.Render(" mpcalc register machine "))
	fmt.Fprintf(r.out, "%s%d registers (a..z), %d-bit digits%s\n\n", ui.ColorGrey(), NumRegisters, mp.DigitBit, ui.ColorReset())
}

func (r *REPL) printHelp() {
	cmds := []struct{ usage, desc string }{
		{"set r <value>", "Load a value (0x, 0b, 0o prefixes accepted)"},
		{"show r", "Print a register in the current radix"},
		{"get r", "Print the 32-bit and checked 64-bit conversions"},
		{"neg r s / abs r s", "s = -r / s = |r|"},
		{"addd r <d> s", "s = r + d for a single digit d"},
		{"add|sub|mul|mod|gcd|lcm|invmod x y z", "z = x op y"},
		{"cmp r s", "Compare two registers"},
		{"exptmod g x p y", "y = g^x mod p"},
		{"compare g x p", "Run g^x mod p with every strategy"},
		{"zero r / clear r", "Reset a register / release its storage"},
		{"even r", "Report the parity of a register"},
		{"err <code>", "Describe an engine result code"},
		{"radix <n>", "Set the display radix (2..64)"},
		{"list", "Show non-zero registers and settings"},
		{"help", "Display this help"},
		{"exit / quit", "Leave the REPL"},
	}
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), ui.ColorReset())
	for _, c := range cmds {
		fmt.Fprintf(r.out, "  %s%-38s%s %s\n", ui.ColorYellow(), c.usage, ui.ColorReset(), c.desc)
	}
}

// processCommand parses and executes one command line.
// Returns false if the REPL should exit.
func (r *REPL) processCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	if fn, ok := binaryOps[cmd]; ok {
		r.cmdBinary(cmd, fn, args)
		return true
	}

	switch cmd {
	case "set":
		r.cmdSet(args)
	case "show", "p":
		r.cmdShow(args)
	case "get":
		r.cmdGet(args)
	case "neg", "abs":
		r.cmdUnary(cmd, args)
	case "addd":
		r.cmdAddD(args)
	case "cmp":
		r.cmdCmp(args)
	case "exptmod":
		r.cmdExptMod(args)
	case "compare":
		r.cmdCompare(args)
	case "zero", "clear":
		r.cmdReset(cmd, args)
	case "even":
		r.cmdEven(args)
	case "err":
		r.cmdErr(args)
	case "radix":
		r.cmdRadix(args)
	case "list", "ls", "status", "st":
		r.cmdList()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ui.ColorRed(), cmd, ui.ColorReset())
		fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ui.ColorYellow(), ui.ColorReset())
	}
	return true
}

// registers resolves register names. It prints the usage line and returns
// nil when the count or a name is wrong.
func (r *REPL) registers(args []string, usage string) []*mp.Int {
	names := strings.Fields(usage)[1:]
	if len(args) != len(names) {
		fmt.Fprintf(r.out, "%sUsage: %s%s\n", ui.ColorRed(), usage, ui.ColorReset())
		return nil
	}
	regs := make([]*mp.Int, 0, len(args))
	for i, a := range args {
		if strings.HasPrefix(names[i], "<") {
			regs = append(regs, nil)
			continue
		}
		reg := r.register(a)
		if reg == nil {
			fmt.Fprintf(r.out, "%sUnknown register: %s (use a..z)%s\n", ui.ColorRed(), a, ui.ColorReset())
			return nil
		}
		regs = append(regs, reg)
	}
	return regs
}

func (r *REPL) register(name string) *mp.Int {
	if len(name) != 1 || name[0] < 'a' || name[0] > 'z' {
		return nil
	}
	return &r.regs[name[0]-'a']
}

// status prints the result code description of err.
func (r *REPL) status(err error) {
	code := mp.CodeOf(err)
	color := ui.ColorGreen()
	if code != mp.Okay {
		color = ui.ColorRed()
	}
	fmt.Fprintf(r.out, "  %s%s%s\n", color, mp.ErrorToString(code), ui.ColorReset())
}

func (r *REPL) render(x *mp.Int) string {
	s, err := x.ToRadix(r.radix)
	if err != nil {
		return "<" + mp.ErrorToString(mp.CodeOf(err)) + ">"
	}
	return format.TruncateDigits(s, TruncationLimit, DisplayEdges)
}

func (r *REPL) cmdSet(args []string) {
	regs := r.registers(args, "set r <value>")
	if regs == nil {
		return
	}
	r.status(regs[0].SetString(args[1], 0))
}

func (r *REPL) cmdShow(args []string) {
	regs := r.registers(args, "show r")
	if regs == nil {
		return
	}
	fmt.Fprintf(r.out, "  %s = %s%s%s (%d bits)\n", args[0], ui.ColorCyan(), r.render(regs[0]), ui.ColorReset(), regs[0].CountBits())
}

func (r *REPL) cmdGet(args []string) {
	regs := r.registers(args, "get r")
	if regs == nil {
		return
	}
	x := regs[0]
	fmt.Fprintf(r.out, "  i32 = %d, mag32 = %d\n", x.GetI32(), x.GetMag32())
	v, err := x.Int64()
	if err == nil {
		fmt.Fprintf(r.out, "  int64 = %d\n", v)
	}
	r.status(err)
}

func (r *REPL) cmdUnary(cmd string, args []string) {
	regs := r.registers(args, cmd+" r s")
	if regs == nil {
		return
	}
	if cmd == "neg" {
		r.status(regs[1].Neg(regs[0]))
		return
	}
	r.status(regs[1].Abs(regs[0]))
}

func (r *REPL) cmdBinary(cmd string, fn func(z, x, y *mp.Int) error, args []string) {
	regs := r.registers(args, cmd+" x y z")
	if regs == nil {
		return
	}
	r.status(fn(regs[2], regs[0], regs[1]))
}

func (r *REPL) cmdAddD(args []string) {
	regs := r.registers(args, "addd r <d> s")
	if regs == nil {
		return
	}
	d, err := strconv.ParseUint(args[1], 0, 32)
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid digit: %s%s\n", ui.ColorRed(), args[1], ui.ColorReset())
		r.status(mp.ErrValue)
		return
	}
	r.status(regs[2].AddD(regs[0], mp.Digit(d)))
}

func (r *REPL) cmdCmp(args []string) {
	regs := r.registers(args, "cmp r s")
	if regs == nil {
		return
	}
	fmt.Fprintf(r.out, "  %s %s %s\n", args[0], regs[0].Cmp(regs[1]), args[1])
	r.status(nil)
}

func (r *REPL) cmdExptMod(args []string) {
	regs := r.registers(args, "exptmod g x p y")
	if regs == nil {
		return
	}
	start := time.Now()
	err := regs[3].ExptModWith(regs[0], regs[1], regs[2], r.config.Expt)
	if err == nil {
		fmt.Fprintf(r.out, "  %s = %s%s%s in %s\n", args[3], ui.ColorCyan(), r.render(regs[3]), ui.ColorReset(),
			CLIResultPresenter{}.FormatDuration(time.Since(start)))
	}
	r.status(err)
}

func (r *REPL) cmdCompare(args []string) {
	regs := r.registers(args, "compare g x p")
	if regs == nil {
		return
	}
	if r.config.Strategies == nil {
		fmt.Fprintf(r.out, "%sNo strategies configured%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	strategies := orchestration.ForModulus(orchestration.GetStrategiesToRun(true, "", r.config.Strategies), regs[2])

	ctx := context.Background()
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}
	in := orchestration.Inputs{G: regs[0], X: regs[1], P: regs[2], Rounds: 1}
	results := orchestration.ExecuteStrategies(ctx, strategies, in, orchestration.NullProgressReporter{}, r.out)

	presenter := CLIResultPresenter{}
	presenter.PresentComparisonTable(results, r.out)

	var first *orchestration.CalculationResult
	var firstErr error
	for i := range results {
		res := &results[i]
		if res.Err != nil {
			if firstErr == nil {
				firstErr = res.Err
			}
			continue
		}
		if first == nil {
			first = res
			continue
		}
		if res.Result.Cmp(first.Result) != mp.EQ {
			fmt.Fprintf(r.out, "  %s✗ %s and %s disagree%s\n", ui.ColorRed(), first.Name, res.Name, ui.ColorReset())
			r.status(errMismatch)
			return
		}
	}
	if first != nil {
		fmt.Fprintf(r.out, "  %s✓ consistent%s: %s\n", ui.ColorGreen(), ui.ColorReset(), r.render(first.Result))
		r.status(nil)
		return
	}
	r.status(firstErr)
}

func (r *REPL) cmdReset(cmd string, args []string) {
	regs := r.registers(args, cmd+" r")
	if regs == nil {
		return
	}
	if cmd == "clear" {
		regs[0].Clear()
	} else {
		regs[0].Zero()
	}
	r.status(nil)
}

func (r *REPL) cmdEven(args []string) {
	regs := r.registers(args, "even r")
	if regs == nil {
		return
	}
	parity := "odd"
	if regs[0].IsEven() {
		parity = "even"
	}
	fmt.Fprintf(r.out, "  %s is %s\n", args[0], parity)
	r.status(nil)
}

func (r *REPL) cmdErr(args []string) {
	if len(args) != 1 {
		fmt.Fprintf(r.out, "%sUsage: err <code>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	code, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid code: %s%s\n", ui.ColorRed(), args[0], ui.ColorReset())
		return
	}
	fmt.Fprintf(r.out, "  %d: %s\n", code, mp.ErrorToString(mp.Code(code)))
}

func (r *REPL) cmdRadix(args []string) {
	if len(args) != 1 {
		fmt.Fprintf(r.out, "%sUsage: radix <n>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < mp.MinRadix || n > mp.MaxRadix {
		fmt.Fprintf(r.out, "%sRadix must be between %d and %d%s\n", ui.ColorRed(), mp.MinRadix, mp.MaxRadix, ui.ColorReset())
		r.status(mp.ErrValue)
		return
	}
	r.radix = n
	fmt.Fprintf(r.out, "Display radix: %s%d%s\n", ui.ColorGreen(), n, ui.ColorReset())
}

func (r *REPL) cmdList() {
	fmt.Fprintf(r.out, "\n%sSettings:%s radix=%d reduction=%s window=%s\n",
		ui.ColorBold(), ui.ColorReset(), r.radix, r.config.Expt.Reduction, windowLabel(r.config.Expt.WindowBits))
	fmt.Fprintf(r.out, "%sRegisters:%s\n", ui.ColorBold(), ui.ColorReset())
	empty := true
	for i := range r.regs {
		if r.regs[i].IsZero() {
			continue
		}
		empty = false
		fmt.Fprintf(r.out, "  %c = %s\n", 'a'+i, r.render(&r.regs[i]))
	}
	if empty {
		fmt.Fprintf(r.out, "  %s(all zero)%s\n", ui.ColorGrey(), ui.ColorReset())
	}
	fmt.Fprintln(r.out)
}
